package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrifarm/internal/adapters/in/http/middleware"
	usecase "agrifarm/internal/application/usecase"
	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
)

// ----------------------------
// minimal fakes
// ----------------------------

type stubOrders struct {
	orders map[string]orderdom.Order
}

func (r *stubOrders) CreateWithItems(_ context.Context, o orderdom.Order, _ []orderdom.Item) (orderdom.Order, error) {
	r.orders[o.ID] = o
	return o, nil
}

func (r *stubOrders) GetByID(_ context.Context, id string) (orderdom.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	return o, nil
}

func (r *stubOrders) GetItems(_ context.Context, _ string) ([]orderdom.Item, error) {
	return nil, nil
}

func (r *stubOrders) GetByTransactionID(_ context.Context, tid string) (orderdom.Order, error) {
	for _, o := range r.orders {
		if o.GatewayTransactionID == tid {
			return o, nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (r *stubOrders) Save(_ context.Context, o orderdom.Order) (orderdom.Order, error) {
	r.orders[o.ID] = o
	return o, nil
}

type stubGateway struct {
	status string
}

func (g *stubGateway) CreateTransaction(_ context.Context, amount int64, description, _ string) (paymentdom.Transaction, error) {
	return paymentdom.Transaction{ID: "txn-1", Status: "pending", Amount: amount, Description: description}, nil
}

func (g *stubGateway) SendPush(_ context.Context, _ string) error { return nil }

func (g *stubGateway) HostedPaymentURL(_ context.Context, tid string) (string, error) {
	return "https://pay.example/" + tid, nil
}

func (g *stubGateway) Retrieve(_ context.Context, tid string) (paymentdom.Transaction, error) {
	return paymentdom.Transaction{ID: tid, Status: g.status}, nil
}

func seededPaymentUsecase(t *testing.T, gw paymentdom.Gateway) (*usecase.PaymentUsecase, *stubOrders) {
	t.Helper()
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	o, err := orderdom.New(
		"ord-1", "buyer-1", "farmer-1",
		2500, 250, 1000, 3750,
		"Rue 12, Fidjrossè", "Cotonou", "+22990000000", "2025-06-15", "",
		orderdom.MethodMobileMoney,
		now,
	)
	require.NoError(t, err)

	orders := &stubOrders{orders: map[string]orderdom.Order{"ord-1": o}}
	return usecase.NewPaymentUsecase(orders, gw, nil), orders
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return r.WithContext(middleware.WithUserUID(r.Context(), "buyer-1"))
}

// ----------------------------
// POST /api/create-payment
// ----------------------------

func TestCreatePaymentUnauthorized(t *testing.T) {
	uc, _ := seededPaymentUsecase(t, &stubGateway{})
	h := NewPaymentHandler(uc)

	req := httptest.NewRequest(http.MethodPost, "/api/create-payment", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePaymentUnsupportedMethod(t *testing.T) {
	uc, _ := seededPaymentUsecase(t, &stubGateway{})
	h := NewPaymentHandler(uc)

	body := `{"orderId":"ord-1","amount":3750,"paymentMethod":"wallet"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/create-payment", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePaymentSuccess(t *testing.T) {
	uc, orders := seededPaymentUsecase(t, &stubGateway{})
	h := NewPaymentHandler(uc)

	body := `{"orderId":"ord-1","amount":3750,"paymentMethod":"card"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/create-payment", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp createPaymentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "txn-1", resp.Payment.TransactionID)
	assert.Equal(t, "https://pay.example/txn-1", resp.Payment.PaymentURL)

	// transaction linked on the order
	o := orders.orders["ord-1"]
	assert.Equal(t, "txn-1", o.GatewayTransactionID)
	assert.Equal(t, orderdom.PaymentProcessing, o.PaymentStatus)
}

func TestCreatePaymentMethodNotAllowed(t *testing.T) {
	uc, _ := seededPaymentUsecase(t, &stubGateway{})
	h := NewPaymentHandler(uc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/create-payment", ""))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ----------------------------
// POST /api/payment-callback
// ----------------------------

func TestPaymentCallbackMissingTransactionID(t *testing.T) {
	uc, _ := seededPaymentUsecase(t, &stubGateway{status: "approved"})
	h := NewPaymentCallbackHandler(uc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment-callback", strings.NewReader(`{"status":"approved"}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentCallbackReconciles(t *testing.T) {
	gw := &stubGateway{status: "approved"}
	uc, orders := seededPaymentUsecase(t, gw)

	// link the transaction first (initiation)
	_, err := uc.Initiate(context.Background(), "ord-1", 3750, orderdom.MethodCard, "")
	require.NoError(t, err)

	h := NewPaymentCallbackHandler(uc)
	rec := httptest.NewRecorder()
	// reported status is ignored; the gateway is re-queried
	req := httptest.NewRequest(http.MethodPost, "/api/payment-callback", strings.NewReader(`{"transaction_id":"txn-1","status":"declined"}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp["status"])
	assert.Equal(t, orderdom.PaymentCompleted, orders.orders["ord-1"].PaymentStatus)
}

func TestPaymentCallbackUnknownTransactionAcknowledged(t *testing.T) {
	uc, _ := seededPaymentUsecase(t, &stubGateway{status: "approved"})
	h := NewPaymentCallbackHandler(uc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment-callback", strings.NewReader(`{"transaction_id":"txn-unknown"}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["status"])
}
