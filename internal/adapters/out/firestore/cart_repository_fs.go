package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	cartdom "agrifarm/internal/domain/cart"
)

// CartRepositoryFS implements cart.Repository using Firestore.
//
// Collection design:
// - collection: carts
// - docId: buyerId (docId is the source of truth)
// - fields: items, createdAt, updatedAt
//
// Totals are never stored; the domain recomputes them from items on load.
type CartRepositoryFS struct {
	Client *firestore.Client
}

func NewCartRepositoryFS(client *firestore.Client) *CartRepositoryFS {
	return &CartRepositoryFS{Client: client}
}

func (r *CartRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

type cartDoc struct {
	Items     []cartdom.Item `firestore:"items"`
	CreatedAt time.Time      `firestore:"createdAt"`
	UpdatedAt time.Time      `firestore:"updatedAt"`
}

// GetByBuyerID returns (nil, nil) if not found (nil policy).
func (r *CartRepositoryFS) GetByBuyerID(ctx context.Context, buyerID string) (*cartdom.Cart, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_repository_fs: firestore client is nil")
	}

	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return nil, errors.New("cart_repository_fs: buyerID is empty")
	}

	snap, err := r.col().Doc(bid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	// rebuild through the domain so totals and item invariants hold
	c, err := cartdom.New(bid, doc.Items, createdAt)
	if err != nil {
		return nil, err
	}
	if !doc.UpdatedAt.IsZero() {
		c.UpdatedAt = doc.UpdatedAt
	}
	return c, nil
}

// Upsert saves the cart by docId=cart.ID (= buyerId). Full overwrite,
// simple and predictable.
func (r *CartRepositoryFS) Upsert(ctx context.Context, c *cartdom.Cart) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}
	if c == nil {
		return errors.New("cart_repository_fs: cart is nil")
	}

	bid := strings.TrimSpace(c.ID)
	if bid == "" {
		return errors.New("cart_repository_fs: Upsert requires cart.ID (= buyerId) as docId")
	}

	doc := cartDoc{
		Items:     c.Items,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}

	_, err := r.col().Doc(bid).Set(ctx, doc)
	return err
}

func (r *CartRepositoryFS) DeleteByBuyerID(ctx context.Context, buyerID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_repository_fs: firestore client is nil")
	}

	bid := strings.TrimSpace(buyerID)
	if bid == "" {
		return errors.New("cart_repository_fs: buyerID is empty")
	}

	_, err := r.col().Doc(bid).Delete(ctx)
	return err
}
