package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"clickhelper/internal/models"
)

// GetJSON decodes a single key into out. It reports false when the key is absent.
func GetJSON(ctx context.Context, kv KVRepository, partition models.Partition, key string, out any) (bool, error) {
	values, err := kv.Get(ctx, partition, key)
	if err != nil {
		return false, err
	}
	raw, ok := values[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding %s/%s: %w", partition, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, kv KVRepository, partition models.Partition, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", partition, key, err)
	}
	return kv.Set(ctx, partition, map[string]json.RawMessage{key: raw})
}
