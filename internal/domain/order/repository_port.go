package order

import (
	"context"
	"errors"
)

// Standard repository errors
var (
	ErrNotFound = errors.New("order: not found")
	ErrConflict = errors.New("order: conflict")
)

// Repository defines the persistence port for Order.
//
// The port deliberately has no Delete: orders are never deleted by this
// core (stale pending orders are timed out by an external reconciliation
// job).
type Repository interface {
	// CreateWithItems persists the order and its line batch as one logical
	// unit. Implementations must be atomic: if the item batch cannot be
	// written, the order must not survive (no orphaned orders).
	CreateWithItems(ctx context.Context, o Order, items []Item) (Order, error)

	GetByID(ctx context.Context, id string) (Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)

	// GetByTransactionID matches an order by its gateway transaction
	// reference (set at payment initiation).
	GetByTransactionID(ctx context.Context, transactionID string) (Order, error)

	// Save persists mutated payment linkage/status fields. Updates are
	// conditioned on the order id.
	Save(ctx context.Context, o Order) (Order, error)
}
