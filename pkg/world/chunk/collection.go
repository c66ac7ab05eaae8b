package chunk

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
)

const shardCount = 64

type shard struct {
	mu     sync.RWMutex
	chunks map[int64]*Chunk
}

// Collection is a concurrency-safe registry of loaded chunks keyed by
// position. It holds at most one chunk per position.
type Collection struct {
	shards [shardCount]shard
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	c := &Collection{}
	for i := range c.shards {
		c.shards[i].chunks = make(map[int64]*Chunk)
	}
	return c
}

func (c *Collection) shard(key int64) *shard {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return &c.shards[xxhash.Sum64(b[:])%shardCount]
}

// Chunk returns the chunk at pos.
func (c *Collection) Chunk(pos Pos) (*Chunk, bool) {
	key := pos.Key()
	s := c.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.chunks[key]
	return ch, ok
}

// Insert stores ch, replacing any chunk at the same position.
func (c *Collection) Insert(ch *Chunk) {
	key := ch.Pos().Key()
	s := c.shard(key)
	s.mu.Lock()
	s.chunks[key] = ch
	s.mu.Unlock()
}

// InsertIfAbsent stores ch unless a chunk already exists at its position.
// It returns the resident chunk and whether ch was inserted.
func (c *Collection) InsertIfAbsent(ch *Chunk) (*Chunk, bool) {
	key := ch.Pos().Key()
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.chunks[key]; ok {
		return existing, false
	}
	s.chunks[key] = ch
	return ch, true
}

// Remove deletes the chunk at pos and reports whether one was present.
func (c *Collection) Remove(pos Pos) bool {
	key := pos.Key()
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[key]; !ok {
		return false
	}
	delete(s.chunks, key)
	return true
}

// Contains reports whether a chunk is loaded at pos.
func (c *Collection) Contains(pos Pos) bool {
	_, ok := c.Chunk(pos)
	return ok
}

func (c *Collection) each(fn func(*Chunk)) {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		for _, ch := range s.chunks {
			fn(ch)
		}
		s.mu.RUnlock()
	}
}

// InRadius returns the chunks within radius of center on every axis, bounds inclusive.
func (c *Collection) InRadius(center Pos, radius int) []*Chunk {
	var out []*Chunk
	c.each(func(ch *Chunk) {
		p := ch.Pos()
		if abs(int(p.X)-int(center.X)) <= radius &&
			abs(int(p.Y)-int(center.Y)) <= radius &&
			abs(int(p.Z)-int(center.Z)) <= radius {
			out = append(out, ch)
		}
	})
	return out
}

// All returns every loaded chunk in no particular order.
func (c *Collection) All() []*Chunk {
	out := make([]*Chunk, 0, c.Len())
	c.each(func(ch *Chunk) { out = append(out, ch) })
	return out
}

// Positions returns the position of every loaded chunk.
func (c *Collection) Positions() []Pos {
	out := make([]Pos, 0, c.Len())
	c.each(func(ch *Chunk) { out = append(out, ch.Pos()) })
	return out
}

// DirtyPositions returns the set of positions whose chunk is dirty.
func (c *Collection) DirtyPositions() map[Pos]struct{} {
	out := make(map[Pos]struct{})
	c.each(func(ch *Chunk) {
		if ch.Dirty() {
			out[ch.Pos()] = struct{}{}
		}
	})
	return out
}

// Len returns the number of loaded chunks.
func (c *Collection) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.chunks)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes every chunk.
func (c *Collection) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		clear(s.chunks)
		s.mu.Unlock()
	}
}

// Block returns the block at world coordinate p, or air when its chunk is not loaded.
func (c *Collection) Block(p BlockPos) block.Block {
	ch, ok := c.Chunk(p.Chunk())
	if !ok {
		return block.Block{}
	}
	return ch.BlockAt(p)
}
