package storage

import (
	"context"
	"sync"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// Memory keeps chunk bytes in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[chunk.Pos][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[chunk.Pos][]byte)}
}

// Load returns a copy of the bytes stored for pos.
func (m *Memory) Load(_ context.Context, pos chunk.Pos) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[pos]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, pos chunk.Pos, data []byte) error {
	m.mu.Lock()
	m.data[pos] = append([]byte(nil), data...)
	m.mu.Unlock()
	return nil
}

// Delete removes pos.
func (m *Memory) Delete(_ context.Context, pos chunk.Pos) error {
	m.mu.Lock()
	delete(m.data, pos)
	m.mu.Unlock()
	return nil
}

// Positions lists the stored positions in no particular order.
func (m *Memory) Positions(_ context.Context) ([]chunk.Pos, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]chunk.Pos, 0, len(m.data))
	for p := range m.data {
		out = append(out, p)
	}
	return out, nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
