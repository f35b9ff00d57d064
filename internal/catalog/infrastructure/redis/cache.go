package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/application"
	"github.com/CodeKhoVL/DoAn-Store/internal/catalog/domain"
	"github.com/redis/go-redis/v9"
)

const (
	// product:{id} -> JSON product
	keyProduct = "product:%s"

	ttlProduct = 5 * time.Minute
)

// Commands is the subset of the client the cache needs, satisfied by
// redis.Client.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

var _ Commands = (*redis.Client)(nil)

// Cache is a cache-aside decorator over the postgres repository for
// single-product reads, the hot path behind reservation existence checks and
// product pages. The database stays the source of truth; cache errors fall
// through to it.
type Cache struct {
	log   *slog.Logger
	rdb   Commands
	inner application.ProductRepository
}

func NewCache(log *slog.Logger, rdb Commands, inner application.ProductRepository) *Cache {
	return &Cache{log: log, rdb: rdb, inner: inner}
}

func (c *Cache) Get(ctx context.Context, id string) (domain.Product, error) {
	key := fmt.Sprintf(keyProduct, id)
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return p, nil
		}
	}

	p, err := c.inner.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if raw, err := json.Marshal(p); err == nil {
		if err := c.rdb.Set(ctx, key, raw, ttlProduct).Err(); err != nil {
			c.log.Debug("product cache set failed", "product_id", id, "err", err)
		}
	}
	return p, nil
}

func (c *Cache) List(ctx context.Context) ([]domain.Product, error) {
	return c.inner.List(ctx)
}

func (c *Cache) Related(ctx context.Context, id string) ([]domain.Product, error) {
	return c.inner.Related(ctx, id)
}

func (c *Cache) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return c.inner.Search(ctx, query)
}
