package utils

import (
	"context"
	"time"
)

const DefaultStoreTimeout = 2 * time.Second

// WithStoreTimeout bounds a single call to an external store such as Redis.
func WithStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultStoreTimeout)
}
