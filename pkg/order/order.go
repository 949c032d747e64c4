package order

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"storefront/pkg/product"
)

// DefaultCapacity is the number of orders a store accepts before rejecting inserts.
const DefaultCapacity = 50

// Order bundles a snapshot of products taken when it was placed. The snapshot
// is never re-synced: later edits or deletions of a product leave it as it was.
type Order struct {
	ID       string            `json:"id"`
	Products []product.Product `json:"products"`
}

// New returns an order with a freshly generated ID.
func New(products []product.Product) Order {
	if products == nil {
		products = []product.Product{}
	}
	return Order{ID: uuid.NewString(), Products: products}
}

// Repository defines behavior for storing orders in insertion order.
type Repository interface {
	Create(ctx context.Context, o Order) error
	List(ctx context.Context) ([]Order, error)
}

// ErrCapacity indicates the store already holds its maximum number of orders.
var ErrCapacity = errors.New("order storage limit reached")
