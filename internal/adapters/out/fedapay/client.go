package fedapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cartdom "agrifarm/internal/domain/cart"
	paymentdom "agrifarm/internal/domain/payment"
)

const (
	liveBaseURL    = "https://api.fedapay.com"
	sandboxBaseURL = "https://sandbox-api.fedapay.com"
)

// Client implements payment.Gateway against the FedaPay REST API.
//
// Amounts are integer XOF (FedaPay expects whole currency units). The
// push token and callback URL are configuration, not per-call input: the
// callback URL is sent with every transaction so FedaPay posts status
// changes to /api/payment-callback.
type Client struct {
	baseURL     string
	secretKey   string
	pushToken   string
	callbackURL string
	http        *http.Client
}

// NewClient builds a gateway client. mode "live" selects the production
// API, anything else the sandbox.
func NewClient(mode, secretKey, pushToken, callbackURL string) *Client {
	base := sandboxBaseURL
	if strings.EqualFold(strings.TrimSpace(mode), "live") {
		base = liveBaseURL
	}
	return &Client{
		baseURL:     base,
		secretKey:   strings.TrimSpace(secretKey),
		pushToken:   strings.TrimSpace(pushToken),
		callbackURL: strings.TrimSpace(callbackURL),
		http:        &http.Client{Timeout: 20 * time.Second},
	}
}

// ----------------------------
// Wire shapes
// ----------------------------

type txBody struct {
	Description string            `json:"description"`
	Amount      int64             `json:"amount"`
	Currency    map[string]string `json:"currency"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Customer    *customerBody     `json:"customer,omitempty"`
}

type customerBody struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
}

type txEnvelope struct {
	Transaction txPayload `json:"v1/transaction"`
}

type txPayload struct {
	ID          json.Number `json:"id"`
	Status      string      `json:"status"`
	Amount      int64       `json:"amount"`
	Description string      `json:"description"`
}

type tokenEnvelope struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// ----------------------------
// payment.Gateway impl
// ----------------------------

func (c *Client) CreateTransaction(ctx context.Context, amount int64, description, customerPhone string) (paymentdom.Transaction, error) {
	if c == nil || c.secretKey == "" {
		return paymentdom.Transaction{}, errors.New("fedapay: client not configured")
	}

	body := txBody{
		Description: description,
		Amount:      amount,
		Currency:    map[string]string{"iso": cartdom.Currency},
		CallbackURL: c.callbackURL,
	}
	if p := strings.TrimSpace(customerPhone); p != "" {
		body.Customer = &customerBody{
			Firstname:   "Client",
			Lastname:    "AgriFarm",
			Email:       "client@agrifarm.bj",
			PhoneNumber: p,
		}
	}

	var env txEnvelope
	if err := c.do(ctx, http.MethodPost, "/v1/transactions", body, &env); err != nil {
		return paymentdom.Transaction{}, err
	}

	return paymentdom.Transaction{
		ID:          env.Transaction.ID.String(),
		Status:      env.Transaction.Status,
		Amount:      env.Transaction.Amount,
		Currency:    cartdom.Currency,
		Description: env.Transaction.Description,
	}, nil
}

// SendPush triggers the mobile money prompt on the customer's phone
// (the sendNowWithToken flow).
func (c *Client) SendPush(ctx context.Context, transactionID string) error {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return errors.New("fedapay: transaction id is empty")
	}
	body := map[string]string{"token": c.pushToken}
	return c.do(ctx, http.MethodPost, "/v1/transactions/"+tid+"/send_now", body, nil)
}

// HostedPaymentURL generates the provider-hosted payment page for a card
// transaction.
func (c *Client) HostedPaymentURL(ctx context.Context, transactionID string) (string, error) {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return "", errors.New("fedapay: transaction id is empty")
	}
	var env tokenEnvelope
	if err := c.do(ctx, http.MethodPost, "/v1/transactions/"+tid+"/token", nil, &env); err != nil {
		return "", err
	}
	if env.URL == "" {
		return "", errors.New("fedapay: empty payment url")
	}
	return env.URL, nil
}

func (c *Client) Retrieve(ctx context.Context, transactionID string) (paymentdom.Transaction, error) {
	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return paymentdom.Transaction{}, errors.New("fedapay: transaction id is empty")
	}
	var env txEnvelope
	if err := c.do(ctx, http.MethodGet, "/v1/transactions/"+tid, nil, &env); err != nil {
		return paymentdom.Transaction{}, err
	}
	return paymentdom.Transaction{
		ID:          env.Transaction.ID.String(),
		Status:      env.Transaction.Status,
		Amount:      env.Transaction.Amount,
		Currency:    cartdom.Currency,
		Description: env.Transaction.Description,
	}, nil
}

// ----------------------------
// HTTP plumbing
// ----------------------------

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("fedapay: marshal request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fedapay: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("fedapay: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("fedapay: %s %s: status=%d body=%s", method, path, resp.StatusCode, truncate(raw, 512))
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("fedapay: decode response: %w", err)
		}
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
