package storage

import (
	"context"
	"sync"
)

// Memory is an in-process backend. Its failure and blocking hooks let tests
// simulate an unavailable store and a slow hydration read.
type Memory struct {
	mu         sync.Mutex
	data       map[string][]byte
	failReads  error
	failWrites error
	gate       chan struct{}
	writes     int
}

var _ Snapshots = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Read implements Snapshots.
func (m *Memory) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, false, m.failReads
	}
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Write implements Snapshots.
func (m *Memory) Write(ctx context.Context, key string, data []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	m.data[key] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Delete implements Snapshots.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	delete(m.data, key)
	return nil
}

// Close implements Snapshots.
func (m *Memory) Close() error { return nil }

// FailReads makes every Read return err until called again with nil.
func (m *Memory) FailReads(err error) {
	m.mu.Lock()
	m.failReads = err
	m.mu.Unlock()
}

// FailWrites makes every Write and Delete return err until called again
// with nil.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.failWrites = err
	m.mu.Unlock()
}

// BlockReads holds every Read until the returned release func is called.
func (m *Memory) BlockReads() (release func()) {
	gate := make(chan struct{})
	m.mu.Lock()
	m.gate = gate
	m.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(gate)
			m.mu.Lock()
			if m.gate == gate {
				m.gate = nil
			}
			m.mu.Unlock()
		})
	}
}

// Writes reports how many successful writes the store has seen.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Set seeds a snapshot without counting it as a write.
func (m *Memory) Set(key string, data []byte) {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), data...)
	m.mu.Unlock()
}
