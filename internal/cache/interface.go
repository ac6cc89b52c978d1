package cache

import (
	"context"
	"time"
)

// Cache is the key-value slot the cart snapshots are written to. Values are
// stored as JSON. A ttl <= 0 falls back to the configured default, and a zero
// default keeps the key until it is overwritten or deleted.
type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func Key(prefix string, id string) string {
	return prefix + ":" + id
}

const (
	CartKeyPrefix = "cart"

	// DefaultCartKey is the slot used when no session scopes the cart.
	DefaultCartKey = "cart"
)
