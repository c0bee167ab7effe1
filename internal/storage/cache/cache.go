// Package cache is the plain local key-value cache the extension clients
// use for best-effort copies of backend resources. Entries have no TTL and
// no eviction: they live until overwritten or until the user clears the
// cache. The cache is never a source of truth: a miss always falls back to
// a live fetch.
package cache

import (
	"context"
	"encoding/json"
)

type Store interface {
	// Get returns the cached value, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// GetJSON loads key and unmarshals it into v. It returns false on a miss.
// A malformed cached value is reported as an error so the caller can log it
// and fall back to a live fetch.
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
