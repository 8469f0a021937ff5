package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	productdom "agrifarm/internal/domain/product"
)

// ProductReaderFS implements product.Reader using Firestore.
// - collection: products
// - docId: product id
type ProductReaderFS struct {
	Client *firestore.Client
}

func NewProductReaderFS(client *firestore.Client) *ProductReaderFS {
	return &ProductReaderFS{Client: client}
}

func (r *ProductReaderFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r == nil || r.Client == nil {
		return productdom.Product{}, errors.New("product_reader_fs: firestore client is nil")
	}

	pid := strings.TrimSpace(id)
	if pid == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.Client.Collection("products").Doc(pid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}

	var p productdom.Product
	if err := snap.DataTo(&p); err != nil {
		return productdom.Product{}, err
	}
	p.ID = pid
	return p, nil
}
