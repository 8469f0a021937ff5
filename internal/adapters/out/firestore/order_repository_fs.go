package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	orderdom "agrifarm/internal/domain/order"
)

// OrderRepositoryFS implements order.Repository using Firestore.
//
// Collection design:
// - collection: orders       docId: order id
// - collection: order_items  docId: "<orderId>__<productId>"
//
// CreateWithItems writes the order and its line batch inside one Firestore
// transaction so a failed item write cannot leave an orphaned order.
type OrderRepositoryFS struct {
	Client *firestore.Client
}

func NewOrderRepositoryFS(client *firestore.Client) *OrderRepositoryFS {
	return &OrderRepositoryFS{Client: client}
}

func (r *OrderRepositoryFS) orders() *firestore.CollectionRef {
	return r.Client.Collection("orders")
}

func (r *OrderRepositoryFS) items() *firestore.CollectionRef {
	return r.Client.Collection("order_items")
}

func itemDocID(it orderdom.Item) string {
	return it.OrderID + "__" + it.ProductID
}

func (r *OrderRepositoryFS) CreateWithItems(ctx context.Context, o orderdom.Order, items []orderdom.Item) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	if strings.TrimSpace(o.ID) == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}
	if len(items) == 0 {
		return orderdom.Order{}, orderdom.ErrInvalidItems
	}

	orderRef := r.orders().Doc(o.ID)

	err := r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// created exactly once per checkout attempt
		if _, err := tx.Get(orderRef); err == nil {
			return orderdom.ErrConflict
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(orderRef, o); err != nil {
			return err
		}
		for _, it := range items {
			if err := tx.Create(r.items().Doc(itemDocID(it)), it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return orderdom.Order{}, err
	}
	return o, nil
}

func (r *OrderRepositoryFS) GetByID(ctx context.Context, id string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(id)
	if oid == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}

	snap, err := r.orders().Doc(oid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}

	var o orderdom.Order
	if err := snap.DataTo(&o); err != nil {
		return orderdom.Order{}, err
	}
	o.ID = oid
	return o, nil
}

func (r *OrderRepositoryFS) GetItems(ctx context.Context, orderID string) ([]orderdom.Item, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("order_repository_fs: firestore client is nil")
	}

	oid := strings.TrimSpace(orderID)
	if oid == "" {
		return nil, orderdom.ErrInvalidID
	}

	it := r.items().Where("orderId", "==", oid).Documents(ctx)
	defer it.Stop()

	out := []orderdom.Item{}
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var line orderdom.Item
		if err := snap.DataTo(&line); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// GetByTransactionID matches the order carrying the gateway transaction
// reference written at payment initiation.
func (r *OrderRepositoryFS) GetByTransactionID(ctx context.Context, transactionID string) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}

	tid := strings.TrimSpace(transactionID)
	if tid == "" {
		return orderdom.Order{}, orderdom.ErrInvalidTransactionID
	}

	it := r.orders().Where("gatewayTransactionId", "==", tid).Limit(1).Documents(ctx)
	defer it.Stop()

	snap, err := it.Next()
	if err == iterator.Done {
		return orderdom.Order{}, orderdom.ErrNotFound
	}
	if err != nil {
		return orderdom.Order{}, err
	}

	var o orderdom.Order
	if err := snap.DataTo(&o); err != nil {
		return orderdom.Order{}, err
	}
	o.ID = snap.Ref.ID
	return o, nil
}

// Save overwrites the order doc keyed by its id (updates are conditioned
// on the id; line items are immutable and never rewritten here).
func (r *OrderRepositoryFS) Save(ctx context.Context, o orderdom.Order) (orderdom.Order, error) {
	if r == nil || r.Client == nil {
		return orderdom.Order{}, errors.New("order_repository_fs: firestore client is nil")
	}
	if strings.TrimSpace(o.ID) == "" {
		return orderdom.Order{}, orderdom.ErrInvalidID
	}

	if _, err := r.orders().Doc(o.ID).Set(ctx, o); err != nil {
		return orderdom.Order{}, fmt.Errorf("order_repository_fs: save: %w", err)
	}
	return o, nil
}
