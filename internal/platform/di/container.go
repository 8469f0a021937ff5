package di

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"

	httpin "agrifarm/internal/adapters/in/http"
	"agrifarm/internal/adapters/out/db"
	"agrifarm/internal/adapters/out/fedapay"
	fs "agrifarm/internal/adapters/out/firestore"
	"agrifarm/internal/adapters/out/localstore"
	"agrifarm/internal/adapters/out/mail"
	usecase "agrifarm/internal/application/usecase"
	orderdom "agrifarm/internal/domain/order"
	productdom "agrifarm/internal/domain/product"
	"agrifarm/internal/infra/config"
	"agrifarm/internal/infra/secrets"
)

// Container bundles everything main.go needs, so main stays thin.
type Container struct {
	Config *config.Config

	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	PaymentUC  *usecase.PaymentUsecase

	Orders orderdom.Repository

	products productdom.Reader

	fsClient *firestore.Client
	sqlDB    *sql.DB
	fbAuth   *firebaseauth.Client
}

// NewContainer wires clients, repositories and usecases. Optional pieces
// (Firebase Auth, SendGrid, Postgres) degrade with a WARN instead of
// failing boot; the Firestore client and the gateway key are required.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := config.Load()

	// 1. Firestore
	fsClient, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		return nil, fmt.Errorf("di: firestore init (project=%s): %w", cfg.FirestoreProjectID, err)
	}
	log.Println("[di] Firestore connected to project:", cfg.FirestoreProjectID)

	// 2. Firebase Auth (token verification at the boundary)
	var fbAuth *firebaseauth.Client
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
	if err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v", err)
	} else if authClient, err := fbApp.Auth(ctx); err != nil {
		log.Printf("[di] WARN: firebase auth init failed: %v", err)
	} else {
		fbAuth = authClient
		log.Printf("[di] Firebase Auth initialized")
	}

	// 3. Gateway secret: env first, Secret Manager fallback
	secretKey := strings.TrimSpace(cfg.FedaPaySecretKey)
	if secretKey == "" && cfg.FedaPaySecretName != "" {
		key, err := secrets.LoadFedaPaySecretKey(ctx, cfg.FirestoreProjectID, cfg.FedaPaySecretName)
		if err != nil {
			log.Printf("[di] WARN: fedapay secret load failed: %v", err)
		} else {
			secretKey = key
			log.Printf("[di] FedaPay secret loaded from Secret Manager")
		}
	}
	gateway := fedapay.NewClient(cfg.FedaPayMode, secretKey, cfg.FedaPayPushToken, cfg.CallbackURL())

	// 4. Order repository: Firestore by default, Postgres when selected
	var (
		orders orderdom.Repository
		sqlDB  *sql.DB
	)
	switch strings.ToLower(strings.TrimSpace(cfg.OrdersBackend)) {
	case "postgres":
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("di: orders backend postgres: %w", err)
		}
		if pingErr := conn.PingContext(ctx); pingErr != nil {
			log.Printf("[di] WARN: db ping failed: %v", pingErr)
		}
		sqlDB = conn
		orders = db.NewOrderRepositoryPG(conn)
		log.Printf("[di] orders backend = postgres")
	default:
		orders = fs.NewOrderRepositoryFS(fsClient)
		log.Printf("[di] orders backend = firestore")
	}

	// 5. Remaining outbound adapters
	cartLocal, err := localstore.NewCartStore(cfg.CartStoreDir)
	if err != nil {
		return nil, fmt.Errorf("di: cart local store: %w", err)
	}
	cartRemote := fs.NewCartRepositoryFS(fsClient)
	profileRepo := fs.NewProfileRepositoryFS(fsClient)
	productReader := fs.NewProductReaderFS(fsClient)

	var notifier usecase.CompletionNotifier
	if cfg.SendGridAPIKey != "" {
		notifier = mail.NewOrderMailer(cfg.SendGridAPIKey, cfg.MailFrom, profileRepo)
		log.Printf("[di] completion mail enabled from=%s", cfg.MailFrom)
	} else {
		log.Printf("[di] WARN: SENDGRID_API_KEY empty, completion mail disabled")
	}

	// 6. Usecases
	cartUC := usecase.NewCartUsecase(cartLocal, cartRemote)
	paymentUC := usecase.NewPaymentUsecase(orders, gateway, notifier)
	checkoutUC := usecase.NewCheckoutUsecase(cartUC, orders, paymentUC, profileRepo)

	return &Container{
		Config:     cfg,
		CartUC:     cartUC,
		CheckoutUC: checkoutUC,
		PaymentUC:  paymentUC,
		Orders:     orders,
		products:   productReader,
		fsClient:   fsClient,
		sqlDB:      sqlDB,
		fbAuth:     fbAuth,
	}, nil
}

// RouterDeps exposes the wired dependencies for the HTTP router.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		CartUC:       c.CartUC,
		CheckoutUC:   c.CheckoutUC,
		PaymentUC:    c.PaymentUC,
		Orders:       c.Orders,
		Products:     c.products,
		FirebaseAuth: c.fbAuth,
	}
}

// Close releases the underlying clients.
func (c *Container) Close() {
	if c.fsClient != nil {
		_ = c.fsClient.Close()
	}
	if c.sqlDB != nil {
		_ = c.sqlDB.Close()
	}
}
