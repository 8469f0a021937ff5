package product

import (
	"context"
	"errors"
)

// Availability mirrors the catalog's stock state.
type Availability string

const (
	Available  Availability = "available"
	Preorder   Availability = "preorder"
	OutOfStock Availability = "out_of_stock"
)

// Product is the slice of the catalog record the cart needs: identity,
// pricing and the owning farmer.
type Product struct {
	ID           string       `firestore:"id"`
	FarmerID     string       `firestore:"farmerId"`
	Name         string       `firestore:"name"`
	Price        int64        `firestore:"price"` // XOF
	Unit         string       `firestore:"unit"`  // e.g. "kg", "sac"
	Availability Availability `firestore:"availability"`
	Active       bool         `firestore:"isActive"`
}

// Sellable reports whether the product can enter a cart.
func (p Product) Sellable() bool {
	return p.Active && p.Availability != OutOfStock
}

var ErrNotFound = errors.New("product: not found")

// Reader is the catalog read port consumed when adding items to a cart.
type Reader interface {
	GetByID(ctx context.Context, id string) (Product, error)
}
