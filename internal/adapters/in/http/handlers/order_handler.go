package handlers

import (
	"errors"
	"net/http"
	"strings"

	orderdom "agrifarm/internal/domain/order"
)

// OrderHandler serves GET /api/orders/{id} for the confirmation view. The
// record is only visible to its buyer.
type OrderHandler struct {
	orders orderdom.Repository
}

func NewOrderHandler(orders orderdom.Repository) http.Handler {
	return &OrderHandler{orders: orders}
}

type orderResponse struct {
	orderdom.Order
	Items []orderdom.Item `json:"items"`
}

func (h *OrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid, ok := CurrentUID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if r.Method != http.MethodGet || !strings.HasPrefix(r.URL.Path, "/api/orders/") {
		notFound(w)
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/api/orders/"))
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	o, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		writeOrderErr(w, err)
		return
	}
	if o.BuyerID != uid {
		// hide existence from other buyers
		notFound(w)
		return
	}

	items, err := h.orders.GetItems(r.Context(), id)
	if err != nil {
		writeOrderErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{Order: o, Items: items})
}

func writeOrderErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, orderdom.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, orderdom.ErrInvalidID):
		code = http.StatusBadRequest
	}
	writeError(w, code, err.Error())
}
