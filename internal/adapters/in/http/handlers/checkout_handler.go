package handlers

import (
	"errors"
	"net/http"
	"strings"

	usecase "agrifarm/internal/application/usecase"
	checkoutdom "agrifarm/internal/domain/checkout"
	paymentdom "agrifarm/internal/domain/payment"
)

// CheckoutHandler drives the three-step checkout under /api/checkout.
//
//	POST /api/checkout/start     open a session from the current cart
//	GET  /api/checkout           current session
//	POST /api/checkout/delivery  submit delivery info (delivery -> payment)
//	POST /api/checkout/back      payment -> delivery, fields preserved
//	POST /api/checkout/payment   submit payment (creates the order)
//	POST /api/checkout/abandon   discard the session
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) http.Handler {
	return &CheckoutHandler{uc: uc}
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid, ok := CurrentUID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && path == "/api/checkout":
		h.session(w, uid)
	case r.Method == http.MethodPost && path == "/api/checkout/start":
		h.start(w, r, uid)
	case r.Method == http.MethodPost && path == "/api/checkout/delivery":
		h.delivery(w, r, uid)
	case r.Method == http.MethodPost && path == "/api/checkout/back":
		h.back(w, uid)
	case r.Method == http.MethodPost && path == "/api/checkout/payment":
		h.payment(w, r, uid)
	case r.Method == http.MethodPost && path == "/api/checkout/abandon":
		h.abandon(w, uid)
	default:
		notFound(w)
	}
}

func (h *CheckoutHandler) start(w http.ResponseWriter, r *http.Request, uid string) {
	s, err := h.uc.Start(r.Context(), uid)
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *CheckoutHandler) session(w http.ResponseWriter, uid string) {
	s, err := h.uc.Session(uid)
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *CheckoutHandler) delivery(w http.ResponseWriter, r *http.Request, uid string) {
	var info checkoutdom.DeliveryInfo
	if err := decodeJSON(r, &info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s, err := h.uc.SubmitDelivery(r.Context(), uid, info)
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *CheckoutHandler) back(w http.ResponseWriter, uid string) {
	s, err := h.uc.BackToDelivery(uid)
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *CheckoutHandler) payment(w http.ResponseWriter, r *http.Request, uid string) {
	var sel checkoutdom.PaymentSelection
	if err := decodeJSON(r, &sel); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.uc.SubmitPayment(r.Context(), uid, sel)
	if err != nil {
		writeCheckoutErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CheckoutHandler) abandon(w http.ResponseWriter, uid string) {
	h.uc.Abandon(uid)
	writeJSON(w, http.StatusOK, map[string]bool{"abandoned": true})
}

func writeCheckoutErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrCheckoutNoSession):
		code = http.StatusNotFound
	case errors.Is(err, usecase.ErrCheckoutInFlight),
		errors.Is(err, usecase.ErrCheckoutBusy):
		code = http.StatusConflict
	case errors.Is(err, usecase.ErrCheckoutInvalidArgument),
		errors.Is(err, checkoutdom.ErrEmptyCart),
		errors.Is(err, checkoutdom.ErrWrongStep),
		errors.Is(err, checkoutdom.ErrMissingField),
		errors.Is(err, checkoutdom.ErrBadDeliveryDate),
		errors.Is(err, checkoutdom.ErrPastDeliveryDate),
		errors.Is(err, checkoutdom.ErrInvalidSelection),
		errors.Is(err, checkoutdom.ErrUnknownMobileMoney),
		errors.Is(err, paymentdom.ErrUnsupportedMethod):
		code = http.StatusBadRequest
	case errors.Is(err, paymentdom.ErrGateway):
		code = http.StatusBadGateway
	}
	writeError(w, code, err.Error())
}
