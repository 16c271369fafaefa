package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes fetched pages in Redis, keyed by entity kind, query
// signature and cursor. Entries expire after the freshness window;
// writes bump a per-kind version so stale pages are never served after
// a mutation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the page cache. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) versionKey(kind string) string {
	return "pages:" + kind + ":version"
}

func (c *Cache) version(ctx context.Context, kind string) (int64, error) {
	ver, err := c.client.Get(ctx, c.versionKey(kind)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, c.versionKey(kind), 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// FetchJSON loads a cached page or populates it using the loader.
// refresh forces the loader and overwrites whatever was cached.
func (c *Cache) FetchJSON(ctx context.Context, kind, sig, cursor string, refresh bool, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("listing: cache loader required")
	}
	if c == nil || c.client == nil {
		return loadInto(ctx, dest, loader)
	}

	ver, err := c.version(ctx, kind)
	if err != nil {
		// A broken cache must not take the listing down.
		return loadInto(ctx, dest, loader)
	}
	key := fmt.Sprintf("pages:%s:%d:%s:%s", kind, ver, sig, cursor)

	if !refresh {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			if json.Unmarshal(payload, dest) == nil {
				return nil
			}
			// A corrupt entry is a miss; the loader repopulates it below.
		} else if !errors.Is(err, redis.Nil) {
			return loadInto(ctx, dest, loader)
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	// A failed write-back must not fail a page the loader already
	// produced; the next request simply misses again.
	_ = c.client.Set(ctx, key, raw, c.ttl).Err()
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached page of the given kind.
func (c *Cache) Bump(ctx context.Context, kind string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, c.versionKey(kind)).Err()
}

func loadInto(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
