package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ErrMiss is returned when a key has no cached value.
var ErrMiss = errors.New("querycache: miss")

// Store maps a query key to the last successful result.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Key joins query key parts, e.g. Key("progress", "kid-1") == "progress:kid-1".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Fetch returns the cached value for key or calls load and caches its result.
// Cache errors never fail the query; they only bypass the cache.
func Fetch[T any](ctx context.Context, store Store, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, err := store.Get(ctx, key); err == nil {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if raw, err := json.Marshal(value); err == nil {
		_ = store.Set(ctx, key, raw)
	}
	return value, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}
