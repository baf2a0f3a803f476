package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryStorage keeps entries in a map. Nothing survives the process.
type MemoryStorage struct {
	data      map[string]string
	failWrite error
	mu        sync.RWMutex
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

// FailWrites makes every following write return err. Pass nil to heal.
func (m *MemoryStorage) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	return m.SetMany(ctx, map[string]string{key: value})
}

func (m *MemoryStorage) SetMany(ctx context.Context, entries map[string]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEntries(entries); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	for key, value := range entries {
		m.data[key] = value
	}
	return nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	return m.DeleteMany(ctx, key)
}

func (m *MemoryStorage) DeleteMany(ctx context.Context, keys ...string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for _, key := range keys {
		if err := validateString(key, "key"); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *MemoryStorage) Keys(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Migrate is a no-op; there is no schema.
func (m *MemoryStorage) Migrate(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (m *MemoryStorage) Close() error {
	return nil
}
