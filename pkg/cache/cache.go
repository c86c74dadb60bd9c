// Package cache stores rendered snapshots keyed by scenario content and
// render options.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] (one JSON file per entry under an XDG cache directory, for
// the CLI) and [RedisCache] (shared between `forge serve` instances).
// [Instrument] wraps any backend so hits, misses and writes reach the
// observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/forgewm/forge/pkg/observability"
)

// Cache is a byte store with per-entry expiry. Get reports a miss as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Instrument reports every Get and Set on c to observability.Cache().
func Instrument(c Cache) Cache {
	return &instrumented{Cache: c}
}

type instrumented struct {
	Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, key)
		} else {
			observability.Cache().OnCacheMiss(ctx, key)
		}
	}
	return data, hit, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
	return nil
}
