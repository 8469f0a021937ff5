package cart

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCart = errors.New("cart: invalid")
	ErrInvalidItem = errors.New("cart: invalid item")
)

// Pricing policy. Amounts are integer XOF (no minor unit).
const (
	Currency = "XOF"

	// CommissionRatePercent is the marketplace commission applied to the
	// subtotal.
	CommissionRatePercent = 10

	// DeliveryFee is the flat delivery fee charged on any non-empty cart.
	DeliveryFee int64 = 1000
)

// Item represents one line item in a cart.
// Product fields are denormalized at add time so the ledger can price
// itself without a product lookup. Uniqueness is defined by ProductID.
type Item struct {
	ProductID string `json:"productId" firestore:"productId"`
	Name      string `json:"name" firestore:"name"`
	UnitPrice int64  `json:"unitPrice" firestore:"unitPrice"`
	Unit      string `json:"unit" firestore:"unit"`
	Quantity  int    `json:"quantity" firestore:"quantity"`
	FarmerID  string `json:"farmerId" firestore:"farmerId"`
}

// Totals is derived from Items on every mutation and never stored
// independently. Recomputing wholesale (instead of patching increments)
// is what keeps the ledger drift-free.
type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	Commission  int64 `json:"commission"`
	DeliveryFee int64 `json:"deliveryFee"`
	FinalTotal  int64 `json:"finalTotal"`
}

// Cart is the per-buyer ledger of selected items.
//   - docId = buyerId (Firestore, remote copy)
//   - Totals are always consistent with Items; there is no observable
//     intermediate state between a mutation and its recompute.
type Cart struct {
	// ID is the buyer id (Firestore docId for the remote copy).
	ID string `json:"id" firestore:"id"`

	Items  []Item `json:"items" firestore:"items"`
	Totals Totals `json:"totals" firestore:"-"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// New creates a cart for buyerID. items can be nil (treated as empty).
func New(buyerID string, items []Item, now time.Time) (*Cart, error) {
	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, ErrInvalidCart
	}

	c := &Cart{
		ID:        bid,
		Items:     cloneItems(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// AddItem merges quantity into an existing line for the same product, or
// appends a new line. it.Quantity must be >= 1.
func (c *Cart) AddItem(it Item, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	it.ProductID = strings.TrimSpace(it.ProductID)
	it.FarmerID = strings.TrimSpace(it.FarmerID)
	it.Name = strings.TrimSpace(it.Name)
	it.Unit = strings.TrimSpace(it.Unit)
	if it.ProductID == "" || it.FarmerID == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
		return ErrInvalidItem
	}

	idx := findIndex(c.Items, it.ProductID)
	if idx >= 0 {
		c.Items[idx].Quantity += it.Quantity
	} else {
		c.Items = append(c.Items, it)
	}

	c.touch(now)
	return c.validate()
}

// SetQuantity sets the quantity for productID. A quantity below 1 removes
// the line. This is the single authoritative zero-quantity guard; callers
// do not pre-filter.
func (c *Cart) SetQuantity(productID string, qty int, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidItem
	}

	idx := findIndex(c.Items, pid)

	if qty <= 0 {
		if idx >= 0 {
			c.Items = removeIndex(c.Items, idx)
		}
		c.touch(now)
		return c.validate()
	}

	if idx < 0 {
		return ErrInvalidItem
	}
	c.Items[idx].Quantity = qty

	c.touch(now)
	return c.validate()
}

// Remove drops productID from the cart. Absence is not an error.
func (c *Cart) Remove(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}

	pid := strings.TrimSpace(productID)
	if pid == "" {
		return ErrInvalidItem
	}
	if idx := findIndex(c.Items, pid); idx >= 0 {
		c.Items = removeIndex(c.Items, idx)
	}

	c.touch(now)
	return c.validate()
}

// Clear resets the ledger to empty; all totals become zero.
func (c *Cart) Clear(now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	c.Items = []Item{}
	c.touch(now)
	return c.validate()
}

// ReplaceItems swaps the whole item list (used when restoring a saved
// cart). Invalid lines are dropped, duplicates merged.
func (c *Cart) ReplaceItems(items []Item, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	c.Items = cloneItems(items)
	c.touch(now)
	return c.validate()
}

// IsEmpty reports whether the ledger holds no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// FirstFarmerID returns the farmer of the first line item, or "".
// Orders carry a single farmer (MVP limitation; see GroupByFarmer for the
// seam a future order-splitting change would use).
func (c *Cart) FirstFarmerID() string {
	if c == nil || len(c.Items) == 0 {
		return ""
	}
	return c.Items[0].FarmerID
}

// GroupByFarmer partitions current items by farmer for presentation.
// Pure read-only projection; the grouping is never stored.
func (c *Cart) GroupByFarmer() map[string][]Item {
	out := map[string][]Item{}
	if c == nil {
		return out
	}
	for _, it := range c.Items {
		out[it.FarmerID] = append(out[it.FarmerID], it)
	}
	return out
}

func (c *Cart) touch(now time.Time) {
	c.UpdatedAt = now
}

// validate normalizes items and recomputes totals; a cart that passes
// validate is always internally consistent.
func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	if strings.TrimSpace(c.ID) == "" {
		return ErrInvalidCart
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		return ErrInvalidCart
	}
	if c.UpdatedAt.Before(c.CreatedAt) {
		return ErrInvalidCart
	}

	c.Items = normalizeAndMerge(c.Items)

	for _, it := range c.Items {
		if it.ProductID == "" || it.FarmerID == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			return ErrInvalidItem
		}
	}

	c.recompute()
	return nil
}

// recompute derives Totals from Items from scratch.
// commission = subtotal * 10% rounded half up, so the integer identity
// finalTotal == subtotal + commission + deliveryFee always holds exactly.
func (c *Cart) recompute() {
	var subtotal int64
	for _, it := range c.Items {
		subtotal += it.UnitPrice * int64(it.Quantity)
	}

	commission := (subtotal*CommissionRatePercent + 50) / 100

	var fee int64
	if len(c.Items) > 0 {
		fee = DeliveryFee
	}

	c.Totals = Totals{
		Subtotal:    subtotal,
		Commission:  commission,
		DeliveryFee: fee,
		FinalTotal:  subtotal + commission + fee,
	}
}

// ----------------------------
// Helpers
// ----------------------------

func findIndex(items []Item, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func removeIndex(items []Item, idx int) []Item {
	if idx < 0 || idx >= len(items) {
		return items
	}
	// preserve order
	return append(items[:idx], items[idx+1:]...)
}

// normalizeAndMerge drops invalid lines and merges duplicate products,
// preserving first-seen order.
func normalizeAndMerge(src []Item) []Item {
	out := make([]Item, 0, len(src))
	pos := map[string]int{}

	for _, it := range src {
		pid := strings.TrimSpace(it.ProductID)
		fid := strings.TrimSpace(it.FarmerID)
		if pid == "" || fid == "" || it.Quantity <= 0 || it.UnitPrice < 0 {
			continue
		}

		if i, ok := pos[pid]; ok {
			out[i].Quantity += it.Quantity
			continue
		}

		it.ProductID = pid
		it.FarmerID = fid
		it.Name = strings.TrimSpace(it.Name)
		it.Unit = strings.TrimSpace(it.Unit)
		pos[pid] = len(out)
		out = append(out, it)
	}
	return out
}

func cloneItems(src []Item) []Item {
	if len(src) == 0 {
		return []Item{}
	}
	cp := make([]Item, 0, len(src))
	cp = append(cp, src...)
	return normalizeAndMerge(cp)
}
