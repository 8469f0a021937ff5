package cart

import (
	"context"
	"time"
)

// Repository is the remote persistence port for Cart (per-buyer sync copy).
//
// Storage (Firestore):
// - collection: carts
// - docId: buyerId
// - fields: items, createdAt, updatedAt
//
// Totals are never stored; they are recomputed from items on load.
type Repository interface {
	// GetByBuyerID returns (nil, nil) when no cart exists.
	GetByBuyerID(ctx context.Context, buyerID string) (*Cart, error)

	// Upsert saves the cart (create or update) keyed by cart.ID.
	Upsert(ctx context.Context, c *Cart) error

	// DeleteByBuyerID deletes the cart (e.g. after order confirmation).
	DeleteByBuyerID(ctx context.Context, buyerID string) error
}

// LocalRecord is the single namespaced record persisted on the buyer's
// device-local tier: the item list plus a write timestamp. Totals are
// deliberately excluded and never trusted from storage.
type LocalRecord struct {
	Items     []Item    `json:"items"`
	Timestamp time.Time `json:"timestamp"`
}

// LocalStore is the device-local persistence port (the browser
// localStorage analogue). Both operations are best-effort: a read or
// parse failure degrades to an empty cart, never a failed session.
type LocalStore interface {
	Load(buyerID string) (*LocalRecord, error)
	Save(buyerID string, rec LocalRecord) error
}
