// Package redis stores products in Redis: a list of IDs keeps insertion order
// and each product lives in its own hash.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/pkg/product"
)

var (
	// KEYS[1] id list, KEYS[2] product hash; ARGV capacity, id, name, price.
	createScript = redis.NewScript(`
if redis.call('LLEN', KEYS[1]) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[2], 'id', ARGV[2], 'name', ARGV[3], 'price', ARGV[4])
redis.call('RPUSH', KEYS[1], ARGV[2])
return 1
`)

	// KEYS[1] product hash; ARGV field/value pairs.
	updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
for i = 1, #ARGV, 2 do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
end
return 1
`)

	// KEYS[1] id list, KEYS[2] product hash; ARGV id.
	deleteScript = redis.NewScript(`
if redis.call('LREM', KEYS[1], 1, ARGV[1]) == 0 then
	return 0
end
redis.call('DEL', KEYS[2])
return 1
`)
)

// Repository persists products in Redis.
type Repository struct {
	client   *redis.Client
	prefix   string
	capacity int
}

// New creates a Redis repository. All keys are namespaced under prefix.
func New(client *redis.Client, prefix string, capacity int) *Repository {
	return &Repository{client: client, prefix: prefix, capacity: capacity}
}

func (r *Repository) listKey() string {
	return r.prefix + ":products"
}

func (r *Repository) itemKey(id string) string {
	return r.prefix + ":product:" + id
}

// List returns all products in insertion order.
func (r *Repository) List(ctx context.Context) ([]product.Product, error) {
	ids, err := r.client.LRange(ctx, r.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, r.itemKey(id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
	}
	products := make([]product.Product, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		p, err := decode(fields)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Create stores the product unless the list is full.
func (r *Repository) Create(ctx context.Context, p product.Product) error {
	ok, err := createScript.Run(ctx, r.client,
		[]string{r.listKey(), r.itemKey(p.ID)},
		r.capacity, p.ID, p.Name, p.Price.JSON()).Int()
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	if ok == 0 {
		return product.ErrCapacity
	}
	return nil
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (product.Product, error) {
	fields, err := r.client.HGetAll(ctx, r.itemKey(id)).Result()
	if err != nil {
		return product.Product{}, fmt.Errorf("get product: %w", err)
	}
	if len(fields) == 0 {
		return product.Product{}, product.ErrNotFound
	}
	return decode(fields)
}

// Update overwrites only the supplied fields.
func (r *Repository) Update(ctx context.Context, id string, patch product.Patch) (product.Product, error) {
	var args []any
	if patch.Name != nil {
		args = append(args, "name", *patch.Name)
	}
	if patch.Price.Present() {
		args = append(args, "price", patch.Price.JSON())
	}
	ok, err := updateScript.Run(ctx, r.client, []string{r.itemKey(id)}, args...).Int()
	if err != nil {
		return product.Product{}, fmt.Errorf("update product: %w", err)
	}
	if ok == 0 {
		return product.Product{}, product.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ok, err := deleteScript.Run(ctx, r.client, []string{r.listKey(), r.itemKey(id)}, id).Int()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ok == 0 {
		return product.ErrNotFound
	}
	return nil
}

func decode(fields map[string]string) (product.Product, error) {
	price, err := product.RawPrice([]byte(fields["price"]))
	if err != nil {
		return product.Product{}, fmt.Errorf("decode price of %s: %w", fields["id"], err)
	}
	return product.Product{ID: fields["id"], Name: fields["name"], Price: price}, nil
}
