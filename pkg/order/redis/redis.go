// Package redis stores orders in Redis as a list of JSON documents.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/pkg/order"
)

// KEYS[1] order list; ARGV capacity, encoded order.
var createScript = redis.NewScript(`
if redis.call('LLEN', KEYS[1]) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('RPUSH', KEYS[1], ARGV[2])
return 1
`)

// Repository persists orders in Redis.
type Repository struct {
	client   *redis.Client
	key      string
	capacity int
}

// New creates a Redis repository. The order list is stored under prefix:orders.
func New(client *redis.Client, prefix string, capacity int) *Repository {
	return &Repository{client: client, key: prefix + ":orders", capacity: capacity}
}

// Create appends the order unless the list is full.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	doc, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	ok, err := createScript.Run(ctx, r.client, []string{r.key}, r.capacity, string(doc)).Int()
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if ok == 0 {
		return order.ErrCapacity
	}
	return nil
}

// List returns all orders in insertion order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	docs, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders := make([]order.Order, 0, len(docs))
	for _, doc := range docs {
		var o order.Order
		if err := json.Unmarshal([]byte(doc), &o); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}
