package handlers

import (
	"errors"
	"net/http"
	"strings"

	usecase "agrifarm/internal/application/usecase"
	cartdom "agrifarm/internal/domain/cart"
	productdom "agrifarm/internal/domain/product"
)

// CartHandler serves the buyer's cart under /api/cart.
//
//	GET    /api/cart                      current ledger (totals recomputed)
//	POST   /api/cart/items                add or merge an item
//	PUT    /api/cart/items/{productId}    set quantity (0 removes)
//	DELETE /api/cart/items/{productId}    remove a line
//	DELETE /api/cart                      clear
type CartHandler struct {
	uc       *usecase.CartUsecase
	products productdom.Reader // optional; validates availability on add
}

func NewCartHandler(uc *usecase.CartUsecase, products productdom.Reader) http.Handler {
	return &CartHandler{uc: uc, products: products}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid, ok := CurrentUID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")

	switch {
	case r.Method == http.MethodGet && path == "/api/cart":
		h.get(w, r, uid)
	case r.Method == http.MethodDelete && path == "/api/cart":
		h.clear(w, r, uid)
	case r.Method == http.MethodPost && path == "/api/cart/items":
		h.addItem(w, r, uid)
	case r.Method == http.MethodPut && strings.HasPrefix(path, "/api/cart/items/"):
		h.setQuantity(w, r, uid, strings.TrimPrefix(path, "/api/cart/items/"))
	case r.Method == http.MethodDelete && strings.HasPrefix(path, "/api/cart/items/"):
		h.removeItem(w, r, uid, strings.TrimPrefix(path, "/api/cart/items/"))
	default:
		notFound(w)
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.uc.Load(r.Context(), uid)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Unit      string `json:"unit"`
	Quantity  int    `json:"quantity"`
	FarmerID  string `json:"farmerId"`
}

// POST /api/cart/items
func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, uid string) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	it := cartdom.Item{
		ProductID: strings.TrimSpace(req.ProductID),
		Name:      strings.TrimSpace(req.Name),
		UnitPrice: req.UnitPrice,
		Unit:      strings.TrimSpace(req.Unit),
		Quantity:  req.Quantity,
		FarmerID:  strings.TrimSpace(req.FarmerID),
	}

	// catalog check when the reader is wired: the denormalized fields come
	// from the catalog record, not from whatever the client sent
	if h.products != nil && it.ProductID != "" {
		p, err := h.products.GetByID(r.Context(), it.ProductID)
		if err != nil {
			if errors.Is(err, productdom.ErrNotFound) {
				writeError(w, http.StatusNotFound, "product not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "catalog lookup failed")
			return
		}
		if !p.Sellable() {
			writeError(w, http.StatusConflict, "product unavailable")
			return
		}
		it.Name = p.Name
		it.UnitPrice = p.Price
		it.Unit = p.Unit
		it.FarmerID = p.FarmerID
	}

	c, err := h.uc.AddItem(r.Context(), uid, it)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PUT /api/cart/items/{productId}
func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request, uid, productID string) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.uc.SetQuantity(r.Context(), uid, productID, req.Quantity)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DELETE /api/cart/items/{productId}
func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request, uid, productID string) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	c, err := h.uc.RemoveItem(r.Context(), uid, productID)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DELETE /api/cart
func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request, uid string) {
	c, err := h.uc.Clear(r.Context(), uid)
	if err != nil {
		writeCartErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeCartErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, cartdom.ErrInvalidItem), errors.Is(err, cartdom.ErrInvalidCart):
		code = http.StatusBadRequest
	}
	writeError(w, code, err.Error())
}
