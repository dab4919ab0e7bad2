package cache

import (
	"context"
	"time"
)

// Cache is the lookup cache used to avoid repeated upstream calls across
// invocations. Values are opaque JSON payloads; Get returns found=false on
// miss or expiry.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
