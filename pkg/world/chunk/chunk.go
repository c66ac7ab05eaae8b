// Package chunk holds the in-memory voxel data model: sections, chunks and
// the concurrent registry that owns loaded chunks.
package chunk

import (
	"slices"
	"sync"
	"time"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
)

const (
	// Height is the number of block layers addressable in a chunk.
	Height = 256
	// SectionCount is the number of sections stacked in a chunk.
	SectionCount = Height / SectionSize
)

// Chunk is a sparse vertical stack of sections. Missing sections read as air.
// Local x and z span 0..15; local y spans 0..255 and selects section y/16.
type Chunk struct {
	pos Pos

	mu       sync.RWMutex
	sections map[int32]*Section

	state        sync.Mutex
	dirty        bool
	version      uint64
	createdAt    int64
	lastModified int64
}

// New returns an empty chunk at pos created now.
func New(pos Pos) *Chunk {
	now := time.Now().Unix()
	return &Chunk{
		pos:          pos,
		sections:     make(map[int32]*Section),
		createdAt:    now,
		lastModified: now,
	}
}

// Pos returns the chunk's coordinate.
func (c *Chunk) Pos() Pos { return c.pos }

func inChunk(x, y, z int) bool {
	return x >= 0 && x < SectionSize && z >= 0 && z < SectionSize && y >= 0 && y < Height
}

// Block returns the block at local (x, y, z), or air when out of range.
func (c *Chunk) Block(x, y, z int) block.Block {
	if !inChunk(x, y, z) {
		return block.Block{}
	}
	s := c.Section(y / SectionSize)
	if s == nil {
		return block.Block{}
	}
	return s.Block(x, y%SectionSize, z)
}

// SetBlock stores b at local (x, y, z), creating the section when needed.
// It returns false for out-of-range coordinates and for blocks whose type id
// cannot be encoded (see block.MaxStorableType).
func (c *Chunk) SetBlock(x, y, z int, b block.Block) bool {
	if !inChunk(x, y, z) || !b.Storable() {
		return false
	}
	idx := int32(y / SectionSize)
	c.mu.RLock()
	s := c.sections[idx]
	c.mu.RUnlock()
	if s == nil {
		c.mu.Lock()
		if s = c.sections[idx]; s == nil {
			s = NewSection()
			c.sections[idx] = s
		}
		c.mu.Unlock()
	}
	s.SetBlock(x, y%SectionSize, z, b)
	c.touch()
	return true
}

// local converts a world coordinate into this chunk's local coordinate.
func (c *Chunk) local(p BlockPos) (x, y, z int, ok bool) {
	x = p.X - int(c.pos.X)*SectionSize
	z = p.Z - int(c.pos.Z)*SectionSize
	y = p.Y
	return x, y, z, inChunk(x, y, z)
}

// BlockAt returns the block at world coordinate p, or air when p is outside the chunk.
func (c *Chunk) BlockAt(p BlockPos) block.Block {
	x, y, z, ok := c.local(p)
	if !ok {
		return block.Block{}
	}
	return c.Block(x, y, z)
}

// SetBlockAt stores b at world coordinate p. It returns false when p is outside the chunk.
func (c *Chunk) SetBlockAt(p BlockPos, b block.Block) bool {
	x, y, z, ok := c.local(p)
	if !ok {
		return false
	}
	return c.SetBlock(x, y, z, b)
}

// Section returns the section at vertical index i, or nil when absent.
func (c *Chunk) Section(i int) *Section {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sections[int32(i)]
}

// HasSection reports whether a section exists at vertical index i.
func (c *Chunk) HasSection(i int) bool {
	return c.Section(i) != nil
}

// SetSection replaces the section at vertical index i. A nil section removes it.
// It returns false, changing nothing, when i is outside [0, SectionCount).
func (c *Chunk) SetSection(i int, s *Section) bool {
	if i < 0 || i >= SectionCount {
		return false
	}
	c.mu.Lock()
	if s == nil {
		delete(c.sections, int32(i))
	} else {
		c.sections[int32(i)] = s
	}
	c.mu.Unlock()
	c.touch()
	return true
}

// SectionIndices returns the indices of present sections in ascending order.
func (c *Chunk) SectionIndices() []int {
	c.mu.RLock()
	out := make([]int, 0, len(c.sections))
	for i := range c.sections {
		out = append(out, int(i))
	}
	c.mu.RUnlock()
	slices.Sort(out)
	return out
}

// NonAirBlocks sums the non-air counters of every section.
func (c *Chunk) NonAirBlocks() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, s := range c.sections {
		n += s.NonAirBlocks()
	}
	return n
}

// HeightAt returns the highest non-air local y in column (x, z), or -1.
func (c *Chunk) HeightAt(x, z int) int {
	if x < 0 || x >= SectionSize || z < 0 || z >= SectionSize {
		return -1
	}
	idx := c.SectionIndices()
	for i := len(idx) - 1; i >= 0; i-- {
		if idx[i] < 0 || idx[i] >= SectionCount {
			continue
		}
		s := c.Section(idx[i])
		for ly := SectionSize - 1; ly >= 0; ly-- {
			if !s.Block(x, ly, z).IsAir() {
				return idx[i]*SectionSize + ly
			}
		}
	}
	return -1
}

func (c *Chunk) touch() {
	c.state.Lock()
	c.dirty = true
	c.version++
	c.lastModified = time.Now().Unix()
	c.state.Unlock()
}

// Dirty reports whether the chunk changed since it was last marked clean.
func (c *Chunk) Dirty() bool {
	c.state.Lock()
	defer c.state.Unlock()
	return c.dirty
}

// Version returns a counter incremented by every mutation.
func (c *Chunk) Version() uint64 {
	c.state.Lock()
	defer c.state.Unlock()
	return c.version
}

// MarkClean clears the dirty flag. Call it only after a durable save.
func (c *Chunk) MarkClean() {
	c.state.Lock()
	c.dirty = false
	c.state.Unlock()
}

// MarkCleanIf clears the dirty flag only if no mutation happened since
// Version returned v. It reports whether the flag was cleared.
func (c *Chunk) MarkCleanIf(v uint64) bool {
	c.state.Lock()
	defer c.state.Unlock()
	if c.version != v {
		return false
	}
	c.dirty = false
	return true
}

// CreatedAt returns the creation time with second precision.
func (c *Chunk) CreatedAt() time.Time {
	c.state.Lock()
	defer c.state.Unlock()
	return time.Unix(c.createdAt, 0)
}

// LastModified returns the time of the last mutation with second precision.
func (c *Chunk) LastModified() time.Time {
	c.state.Lock()
	defer c.state.Unlock()
	return time.Unix(c.lastModified, 0)
}
