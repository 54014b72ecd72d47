// Package cache wraps a Redis-backed TTL cache for raw vendor payloads,
// keyed by vendor:date:endpoint. It is a pure response cache — it never
// sees a bmi.FeatureInputs, only raw bytes. The internal/ingest vendor
// clients do not read or write it.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// dayTTL is a fixed 24-hour expiry for a cached vendor payload. It is not
// trimmed to the end of the trading day, so an entry stored with it can
// outlive the day it describes.
const dayTTL = 24 * time.Hour

// VendorCache is a TTL-bounded response cache for vendor payloads.
type VendorCache struct {
	client *redis.Client
}

// New builds a VendorCache over an existing go-redis v8 client.
func New(client *redis.Client) *VendorCache {
	return &VendorCache{client: client}
}

// Dial connects to addr and verifies the connection with a PING.
func Dial(ctx context.Context, addr string) (*VendorCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return New(client), nil
}

// Key builds the cache key for one vendor endpoint on one trading day.
func Key(vendor, date, endpoint string) string {
	return fmt.Sprintf("%s:%s:%s", vendor, date, endpoint)
}

// Get retrieves a cached payload. A cache miss is reported as
// (nil, false, nil) — not an error.
func (c *VendorCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores a payload with a same-day expiry. ttl should never exceed
// the remainder of the UTC trading day — a cached vendor response is
// never meant to survive past midnight.
func (c *VendorCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *VendorCache) Close() error {
	return c.client.Close()
}
