package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"clickhelper/internal/models"
)

type KVRepositoryMock struct {
	GetFunc     func(ctx context.Context, partition models.Partition, keys ...string) (map[string]json.RawMessage, error)
	SetFunc     func(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error
	RemoveFunc  func(ctx context.Context, partition models.Partition, keys ...string) error
	AllFunc     func(ctx context.Context, partition models.Partition) (map[string]json.RawMessage, error)
	ReplaceFunc func(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error
}

func (m *KVRepositoryMock) Get(ctx context.Context, partition models.Partition, keys ...string) (map[string]json.RawMessage, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, partition, keys...)
	}
	return map[string]json.RawMessage{}, nil
}

func (m *KVRepositoryMock) Set(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, partition, values)
	}
	return nil
}

func (m *KVRepositoryMock) Remove(ctx context.Context, partition models.Partition, keys ...string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, partition, keys...)
	}
	return nil
}

func (m *KVRepositoryMock) All(ctx context.Context, partition models.Partition) (map[string]json.RawMessage, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx, partition)
	}
	return map[string]json.RawMessage{}, nil
}

func (m *KVRepositoryMock) Replace(ctx context.Context, partition models.Partition, values map[string]json.RawMessage) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, partition, values)
	}
	return nil
}

// NewMemoryKV returns a mock whose funcs are backed by an in-memory map.
// Individual funcs can still be overridden afterwards to inject failures.
func NewMemoryKV() *KVRepositoryMock {
	var mu sync.Mutex
	store := map[models.Partition]map[string]json.RawMessage{}
	bucket := func(p models.Partition) map[string]json.RawMessage {
		if store[p] == nil {
			store[p] = map[string]json.RawMessage{}
		}
		return store[p]
	}
	copyRaw := func(raw json.RawMessage) json.RawMessage {
		return append(json.RawMessage(nil), raw...)
	}

	return &KVRepositoryMock{
		GetFunc: func(_ context.Context, p models.Partition, keys ...string) (map[string]json.RawMessage, error) {
			mu.Lock()
			defer mu.Unlock()
			out := map[string]json.RawMessage{}
			for _, k := range keys {
				if v, ok := bucket(p)[k]; ok {
					out[k] = copyRaw(v)
				}
			}
			return out, nil
		},
		SetFunc: func(_ context.Context, p models.Partition, values map[string]json.RawMessage) error {
			mu.Lock()
			defer mu.Unlock()
			for k, v := range values {
				bucket(p)[k] = copyRaw(v)
			}
			return nil
		},
		RemoveFunc: func(_ context.Context, p models.Partition, keys ...string) error {
			mu.Lock()
			defer mu.Unlock()
			for _, k := range keys {
				delete(bucket(p), k)
			}
			return nil
		},
		AllFunc: func(_ context.Context, p models.Partition) (map[string]json.RawMessage, error) {
			mu.Lock()
			defer mu.Unlock()
			out := map[string]json.RawMessage{}
			for k, v := range bucket(p) {
				out[k] = copyRaw(v)
			}
			return out, nil
		},
		ReplaceFunc: func(_ context.Context, p models.Partition, values map[string]json.RawMessage) error {
			mu.Lock()
			defer mu.Unlock()
			store[p] = map[string]json.RawMessage{}
			for k, v := range values {
				store[p][k] = copyRaw(v)
			}
			return nil
		},
	}
}
