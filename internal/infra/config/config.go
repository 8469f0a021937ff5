package config

import "os"

// Config holds the process environment for the API.
type Config struct {
	Port        string
	AllowOrigin string
	AppBaseURL  string

	GCPCreds           string
	FirestoreProjectID string
	FirebaseProjectID  string

	// Orders persistence: "firestore" (default) or "postgres".
	OrdersBackend string
	DatabaseURL   string

	// FedaPay gateway. The secret key may come straight from env or,
	// when FEDAPAY_SECRET_NAME is set, from Secret Manager.
	FedaPayMode       string
	FedaPaySecretKey  string
	FedaPaySecretName string
	FedaPayPushToken  string

	SendGridAPIKey string
	MailFrom       string

	// Directory for the device-local cart records.
	CartStoreDir string
}

// Load reads the environment and returns the Config.
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "agrifarm-benin")

	return &Config{
		Port:        getenvDefault("PORT", "8080"),
		AllowOrigin: os.Getenv("CORS_ALLOW_ORIGIN"),
		AppBaseURL:  os.Getenv("APP_BASE_URL"),

		GCPCreds:           os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID: getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirebaseProjectID:  getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		OrdersBackend: getenvDefault("ORDERS_BACKEND", "firestore"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),

		FedaPayMode:       getenvDefault("FEDAPAY_MODE", "sandbox"),
		FedaPaySecretKey:  os.Getenv("FEDAPAY_PRIVATE_KEY"),
		FedaPaySecretName: os.Getenv("FEDAPAY_SECRET_NAME"),
		FedaPayPushToken:  os.Getenv("FEDAPAY_TOKEN"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       getenvDefault("MAIL_FROM", "no-reply@agrifarm.bj"),

		CartStoreDir: os.Getenv("CART_STORE_DIR"),
	}
}

// CallbackURL is where the gateway posts transaction status changes.
func (c *Config) CallbackURL() string {
	if c.AppBaseURL == "" {
		return ""
	}
	return c.AppBaseURL + "/api/payment-callback"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
