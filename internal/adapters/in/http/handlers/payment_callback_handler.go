package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	usecase "agrifarm/internal/application/usecase"
	orderdom "agrifarm/internal/domain/order"
)

// PaymentCallbackHandler serves POST /api/payment-callback, the webhook
// FedaPay posts on transaction status changes. It is mounted OUTSIDE the
// auth middleware (the gateway carries no buyer token); the payload status
// is never trusted, reconciliation re-fetches the transaction from the
// gateway.
type PaymentCallbackHandler struct {
	uc *usecase.PaymentUsecase
}

func NewPaymentCallbackHandler(uc *usecase.PaymentUsecase) http.Handler {
	return &PaymentCallbackHandler{uc: uc}
}

type paymentCallbackRequest struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"` // informational only
}

func (h *PaymentCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req paymentCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tid := strings.TrimSpace(req.TransactionID)
	if tid == "" {
		writeError(w, http.StatusBadRequest, "transaction_id is required")
		return
	}

	log.Printf("[payment_callback] received transactionId=%s reportedStatus=%s", tid, req.Status)

	status, err := h.uc.Reconcile(r.Context(), tid)
	if err != nil {
		if errors.Is(err, orderdom.ErrNotFound) {
			// no order carries this transaction; acknowledge so the
			// gateway stops retrying
			writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
