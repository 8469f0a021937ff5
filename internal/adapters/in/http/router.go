package httpin

import (
	"net/http"

	"agrifarm/internal/adapters/in/http/handlers"
	"agrifarm/internal/adapters/in/http/middleware"
	usecase "agrifarm/internal/application/usecase"
	orderdom "agrifarm/internal/domain/order"
	productdom "agrifarm/internal/domain/product"
)

// RouterDeps collects the usecases (and read ports) injected from main.go.
type RouterDeps struct {
	CartUC     *usecase.CartUsecase
	CheckoutUC *usecase.CheckoutUsecase
	PaymentUC  *usecase.PaymentUsecase

	Orders   orderdom.Repository
	Products productdom.Reader

	FirebaseAuth *middleware.FirebaseAuthClient
}

// NewRouter mounts the API. Everything under /api/* requires a verified
// Firebase token except /api/payment-callback, which the gateway posts
// without one.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	auth := &middleware.UserAuthMiddleware{FirebaseAuth: deps.FirebaseAuth}

	if deps.CartUC != nil {
		h := auth.Handler(handlers.NewCartHandler(deps.CartUC, deps.Products))
		mux.Handle("/api/cart", h)
		mux.Handle("/api/cart/", h)
	}

	if deps.CheckoutUC != nil {
		h := auth.Handler(handlers.NewCheckoutHandler(deps.CheckoutUC))
		mux.Handle("/api/checkout", h)
		mux.Handle("/api/checkout/", h)
	}

	if deps.PaymentUC != nil {
		mux.Handle("/api/create-payment", auth.Handler(handlers.NewPaymentHandler(deps.PaymentUC)))
		mux.Handle("/api/payment-callback", handlers.NewPaymentCallbackHandler(deps.PaymentUC))
	}

	if deps.Orders != nil {
		mux.Handle("/api/orders/", auth.Handler(handlers.NewOrderHandler(deps.Orders)))
	}

	return mux
}
