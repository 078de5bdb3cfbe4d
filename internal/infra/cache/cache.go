// Package cache keeps short-lived catalog responses in Redis. Every call is a
// no-op when Redis is not configured, so callers never branch on it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"arvista/internal/infra/metrics"

	"github.com/redis/go-redis/v9"
)

const catalogVersionKey = "arvista:catalog:version"

var RDB *redis.Client

// Connect initialises the Redis client and verifies it with a ping.
func Connect(ctx context.Context, addr, password string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

func Enabled() bool { return RDB != nil }

func Close() error {
	if RDB == nil {
		return nil
	}
	err := RDB.Close()
	RDB = nil
	return err
}

// Get unmarshals the cached value into dest and reports a hit.
func Get(ctx context.Context, key string, dest interface{}) bool {
	if RDB == nil {
		return false
	}
	raw, err := RDB.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(raw, dest) != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return true
}

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RDB.Set(ctx, key, data, ttl).Err()
}

// CatalogKey namespaces key under the current catalog version. Bumping the
// version orphans every listing cached before it.
func CatalogKey(ctx context.Context, key string) string {
	var v int64
	if RDB != nil {
		v, _ = RDB.Get(ctx, catalogVersionKey).Int64()
	}
	return fmt.Sprintf("arvista:catalog:v%d:%s", v, key)
}

// InvalidateCatalog must be called after any write that changes listings.
func InvalidateCatalog(ctx context.Context) error {
	if RDB == nil {
		return nil
	}
	return RDB.Incr(ctx, catalogVersionKey).Err()
}
