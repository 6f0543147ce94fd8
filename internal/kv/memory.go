package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory is a map-backed Store. It backs the memory-only degraded mode and
// most tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Probe(ctx context.Context) error {
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Flaky wraps a Store with injectable faults for crash and rollback tests.
// A key present in CorruptKeys gets garbage written in place of the value
// before the write is reported as failed, simulating a torn write.
type Flaky struct {
	Inner       Store
	ProbeErr    error
	GetErr      error
	SetErr      error
	RemoveErr   error
	KeysErr     error
	CorruptKeys map[string]bool
}

func (f *Flaky) Probe(ctx context.Context) error {
	if f.ProbeErr != nil {
		return f.ProbeErr
	}
	return f.Inner.Probe(ctx)
}

func (f *Flaky) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	return f.Inner.Get(ctx, key)
}

func (f *Flaky) Set(ctx context.Context, key, value string) error {
	if f.CorruptKeys[key] {
		_ = f.Inner.Set(ctx, key, value[:len(value)/2])
		return ErrUnavailable
	}
	if f.SetErr != nil {
		return f.SetErr
	}
	return f.Inner.Set(ctx, key, value)
}

func (f *Flaky) Remove(ctx context.Context, key string) error {
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	return f.Inner.Remove(ctx, key)
}

func (f *Flaky) Keys(ctx context.Context) ([]string, error) {
	if f.KeysErr != nil {
		return nil, f.KeysErr
	}
	return f.Inner.Keys(ctx)
}
