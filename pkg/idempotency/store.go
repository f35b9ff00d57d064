package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store records one-shot markers in Redis. Claim is a SETNX: the first caller
// for a key wins, everyone after loses. Used to keep the admin webhook at
// at-most-one delivery attempt per reservation.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(kind, id string) string {
	return fmt.Sprintf("idem:%s:%s", kind, id)
}

// Claim returns true when the key was free and is now held by the caller.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	return s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
}
