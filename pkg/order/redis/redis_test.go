package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/order"
	"storefront/pkg/product"
)

func TestRepository(t *testing.T) {
	_ = godotenv.Load()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping Redis repository test")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	prefix := "storefront-test:" + uuid.NewString()
	t.Cleanup(func() {
		client.Del(ctx, prefix+":orders")
		client.Close()
	})
	repo := New(client, prefix, 2)

	first := order.New([]product.Product{product.New("Pen", product.TextPrice("1.50"))})
	second := order.New(nil)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.ErrorIs(t, repo.Create(ctx, order.New(nil)), order.ErrCapacity)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0])
	assert.Equal(t, second.ID, list[1].ID)
}
