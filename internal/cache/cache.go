// Package cache provides a key-value TTL cache in front of expensive
// aggregate computations. The cache is a pure optimization: every failure
// degrades to a miss and every caller must have a recompute path, so an
// unavailable backend costs latency, never correctness.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Key builds a cache key of the form "<resource>:user:<id>".
func Key(resource, userID string) string {
	return resource + ":user:" + userID
}

// Store is the cache contract. Get reports a miss (false) when the key is
// absent, expired, or the backend is disabled or unreachable; it never
// returns an error. Set and Del silently no-op on backend failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, key string)
}

// GetJSON reads key and unmarshals it into dest. A miss or an undecodable
// payload both report false.
func GetJSON(ctx context.Context, s Store, key string, dest any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

// SetJSON marshals value and stores it under key. Marshal failures are
// dropped like backend failures.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.Set(ctx, key, raw, ttl)
}

// Disabled is the Store used when no cache backend is configured. Every
// read is a miss and writes are dropped.
type Disabled struct{}

func (Disabled) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Disabled) Set(context.Context, string, []byte, time.Duration) {}
func (Disabled) Del(context.Context, string)                        {}

var _ Store = Disabled{}
