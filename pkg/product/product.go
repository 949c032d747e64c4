package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of products a store accepts before rejecting inserts.
const DefaultCapacity = 50

// Product is a catalog entry.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// New returns a product with a freshly generated ID.
func New(name string, price Price) Product {
	return Product{ID: uuid.NewString(), Name: name, Price: price}
}

// Patch holds the fields of a partial update. A nil Name or an absent Price
// is left untouched; an explicit JSON null price overwrites.
type Patch struct {
	Name  *string `json:"name"`
	Price Price   `json:"price"`
}

// Apply returns p with the supplied patch fields overwritten.
func (pt Patch) Apply(p Product) Product {
	if pt.Name != nil {
		p.Name = *pt.Name
	}
	if pt.Price.Present() {
		p.Price = pt.Price
	}
	return p
}

// Repository defines behavior for storing products in insertion order.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id string) (Product, error)
	Update(ctx context.Context, id string, patch Patch) (Product, error)
	Delete(ctx context.Context, id string) error
}

var (
	// ErrNotFound indicates the requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCapacity indicates the store already holds its maximum number of products.
	ErrCapacity = errors.New("product storage limit reached")
)
