package handlers

import (
	"errors"
	"net/http"
	"strings"

	usecase "agrifarm/internal/application/usecase"
	orderdom "agrifarm/internal/domain/order"
	paymentdom "agrifarm/internal/domain/payment"
)

// PaymentHandler serves POST /api/create-payment: initiate the gateway
// flow for an order that already exists durably. The contract follows the
// web client's API route: 401 without a valid token, 400 for an
// unsupported payment method, 500 on unexpected failure.
type PaymentHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentHandler(uc *usecase.PaymentUsecase) http.Handler {
	return &PaymentHandler{uc: uc}
}

type createPaymentRequest struct {
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
	Phone         string `json:"phone,omitempty"`
	Network       string `json:"network,omitempty"`
}

type createPaymentResponse struct {
	Success bool                  `json:"success"`
	Payment paymentdom.Initiation `json:"payment"`
}

func (h *PaymentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if _, ok := CurrentUID(r); !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req createPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method := orderdom.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))

	init, err := h.uc.Initiate(r.Context(), req.OrderID, req.Amount, method, req.Phone)
	if err != nil {
		writePaymentErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createPaymentResponse{Success: true, Payment: init})
}

func writePaymentErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, paymentdom.ErrUnsupportedMethod),
		errors.Is(err, usecase.ErrPaymentOrderIDEmpty),
		errors.Is(err, usecase.ErrPaymentAmountInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, orderdom.ErrNotFound):
		code = http.StatusNotFound
	}
	writeError(w, code, err.Error())
}
