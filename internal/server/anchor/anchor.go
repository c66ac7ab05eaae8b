// Package anchor tracks the positions that keep chunks loaded, such as the
// world spawn or connected viewers.
package anchor

import (
	"slices"
	"sync"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// Manager is a concurrency-safe set of named anchors.
type Manager struct {
	mu           sync.RWMutex
	anchors      map[string]chunk.BlockPos
	viewDistance int
}

// NewManager creates a manager whose anchors keep chunks within viewDistance loaded.
func NewManager(viewDistance int) *Manager {
	return &Manager{
		anchors:      make(map[string]chunk.BlockPos),
		viewDistance: viewDistance,
	}
}

// ViewDistance returns the radius, in chunks, kept loaded around each anchor.
func (m *Manager) ViewDistance() int { return m.viewDistance }

// Set adds or moves the anchor with the given id.
func (m *Manager) Set(id string, pos chunk.BlockPos) {
	m.mu.Lock()
	m.anchors[id] = pos
	m.mu.Unlock()
}

// Remove deletes an anchor and reports whether it existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.anchors[id]; !ok {
		return false
	}
	delete(m.anchors, id)
	return true
}

// Get returns the position of an anchor.
func (m *Manager) Get(id string) (chunk.BlockPos, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.anchors[id]
	return p, ok
}

// Len returns the number of anchors.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.anchors)
}

// Positions returns the distinct chunk positions holding an anchor, sorted.
func (m *Manager) Positions() []chunk.Pos {
	m.mu.RLock()
	seen := make(map[chunk.Pos]struct{}, len(m.anchors))
	for _, p := range m.anchors {
		seen[p.Chunk()] = struct{}{}
	}
	m.mu.RUnlock()

	out := make([]chunk.Pos, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b chunk.Pos) int {
		if a.X != b.X {
			return int(a.X) - int(b.X)
		}
		if a.Z != b.Z {
			return int(a.Z) - int(b.Z)
		}
		return int(a.Y) - int(b.Y)
	})
	return out
}

// Watched reports whether pos is within view distance of any anchor.
func (m *Manager) Watched(pos chunk.Pos) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.anchors {
		if InViewDistance(pos, p.Chunk(), m.viewDistance) {
			return true
		}
	}
	return false
}

// InViewDistance reports whether two chunk columns are within viewDist
// chunks of each other on both horizontal axes.
func InViewDistance(a, b chunk.Pos, viewDist int) bool {
	dx := int(a.X) - int(b.X)
	if dx < 0 {
		dx = -dx
	}
	dz := int(a.Z) - int(b.Z)
	if dz < 0 {
		dz = -dz
	}
	return dx <= viewDist && dz <= viewDist
}
