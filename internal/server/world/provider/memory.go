package provider

import (
	"context"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

var _ Provider = (*Memory)(nil)

// Memory keeps chunks only in memory and generates every miss.
type Memory struct {
	cache
}

// NewMemory returns a provider backed by g. A nil generator makes every miss fail
// with ErrChunkNotFound.
func NewMemory(g gen.Generator, opts ...Option) *Memory {
	m := &Memory{cache: cache{
		chunks:  chunk.NewCollection(),
		gen:     g,
		options: buildOptions(opts),
	}}
	m.fill = func(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
		return m.generate(ctx, pos, m.gen)
	}
	return m
}

// SaveChunk does nothing; memory chunks are never persisted.
func (m *Memory) SaveChunk(context.Context, *chunk.Chunk) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }
