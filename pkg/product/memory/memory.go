// Package memory implements an in-memory product repository.
package memory

import (
	"context"
	"sync"

	"storefront/pkg/product"
)

// Repository keeps products in insertion order behind a single lock.
type Repository struct {
	mu       sync.Mutex
	capacity int
	products []product.Product
}

// New creates an empty repository holding at most capacity products.
func New(capacity int) *Repository {
	return &Repository{capacity: capacity}
}

// List returns all products in insertion order.
func (r *Repository) List(ctx context.Context) ([]product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]product.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

// Create appends the product unless the repository is full.
func (r *Repository) Create(ctx context.Context, p product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.products) >= r.capacity {
		return product.ErrCapacity
	}
	r.products = append(r.products, p)
	return nil
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.products[i], nil
	}
	return product.Product{}, product.ErrNotFound
}

// Update applies a partial update to an existing product.
func (r *Repository) Update(ctx context.Context, id string, patch product.Patch) (product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return product.Product{}, product.ErrNotFound
	}
	r.products[i] = patch.Apply(r.products[i])
	return r.products[i], nil
}

// Delete removes a product by ID, rebuilding the sequence without it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := make([]product.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(r.products) {
		return product.ErrNotFound
	}
	r.products = kept
	return nil
}

func (r *Repository) indexOf(id string) int {
	for i, p := range r.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
