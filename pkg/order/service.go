package order

import (
	"context"
	"fmt"

	"storefront/pkg/product"
)

// ProductLister is the slice of product.Repository that order placement needs.
type ProductLister interface {
	List(ctx context.Context) ([]product.Product, error)
}

// Service places orders against the current product catalog.
type Service struct {
	orders   Repository
	products ProductLister
}

// NewService wires an order repository to a product source.
func NewService(orders Repository, products ProductLister) *Service {
	return &Service{orders: orders, products: products}
}

// Place creates an order holding every listed product whose ID appears in ids,
// in catalog order. IDs that match nothing are dropped without error.
func (s *Service) Place(ctx context.Context, ids []string) (Order, error) {
	catalog, err := s.products.List(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("list products: %w", err)
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	selected := make([]product.Product, 0, len(ids))
	for _, p := range catalog {
		if _, ok := wanted[p.ID]; ok {
			selected = append(selected, p)
		}
	}
	o := New(selected)
	if err := s.orders.Create(ctx, o); err != nil {
		return Order{}, err
	}
	return o, nil
}

// List returns all orders in insertion order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}
