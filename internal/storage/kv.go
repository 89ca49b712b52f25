// Package storage persists the tracker's JSON documents in a key-value
// store. Each key holds one complete document that is replaced on write.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys of the persisted documents.
const (
	KeyRoutines     = "rutinify-routines"
	KeyHistory      = "rutinify-history"
	KeyWeekSettings = "rutinify-week-settings"
)

// KV is a string-keyed blob store. Get reports false when the key was never
// written. Set replaces the value atomically from the caller's view.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// GetJSON decodes the document stored at key into v.
func GetJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, kv KV, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}
