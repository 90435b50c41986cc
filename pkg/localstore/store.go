// Package localstore persists session-scoped collections as string values under fixed keys.
package localstore

import (
	"context"
	"encoding/json"

	"github.com/okestore/storefront-sync/pkg/logger"
)

// Store is the durable key/value surface. Get reports ok=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// LoadJSON decodes the value under key into T. A missing, unreadable or malformed entry
// yields the zero value so callers always start from a valid state.
func LoadJSON[T any](ctx context.Context, store Store, logg *logger.Logger, key string) T {
	var out T
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		warn(ctx, logg, key, "local store read failed", err)
		return out
	}
	if !ok || raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		warn(ctx, logg, key, "malformed local entry, using empty default", err)
		var zero T
		return zero
	}
	return out
}

// SaveJSON encodes value and writes it under key.
func SaveJSON[T any](ctx context.Context, store Store, key string, value T) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, string(payload))
}

func warn(ctx context.Context, logg *logger.Logger, key, msg string, err error) {
	if logg == nil {
		return
	}
	ctx = logg.WithFields(ctx, map[string]any{"key": key, "error": err.Error()})
	logg.Warn(ctx, msg)
}
