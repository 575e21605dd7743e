// internal/pkg/cache/cache.go
package cache

import (
	"context"
	"time"
)

// Cache is the volatile boolean cache consumed by the session manager.
// Implementations must provide atomic single-key set/get; the manager layers
// no locking of its own on top.
type Cache interface {
	// GetBool returns the cached value and whether the key was present.
	GetBool(ctx context.Context, key string) (value bool, found bool, err error)
	SetBool(ctx context.Context, key string, value bool, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}
