// Package memory implements an in-memory order repository.
package memory

import (
	"context"
	"sync"

	"storefront/pkg/order"
)

// Repository provides an in-memory implementation of order.Repository.
type Repository struct {
	mu       sync.Mutex
	capacity int
	orders   []order.Order
}

// New creates a new in-memory repository holding at most capacity orders.
func New(capacity int) *Repository {
	return &Repository{capacity: capacity}
}

// Create stores the order unless the repository is full.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.orders) >= r.capacity {
		return order.ErrCapacity
	}
	r.orders = append(r.orders, o)
	return nil
}

// List returns all orders.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]order.Order, len(r.orders))
	copy(out, r.orders)
	return out, nil
}
