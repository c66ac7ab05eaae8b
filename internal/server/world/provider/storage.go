package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

var _ Provider = (*Storage)(nil)

// Storage loads chunks from a store and generates the ones never saved.
type Storage struct {
	cache
	store storage.Store
}

// NewStorage returns a provider reading from and writing to store. g may be nil,
// in which case chunks absent from the store fail with ErrChunkNotFound.
func NewStorage(store storage.Store, g gen.Generator, opts ...Option) *Storage {
	s := &Storage{
		cache: cache{
			chunks:  chunk.NewCollection(),
			gen:     g,
			options: buildOptions(opts),
		},
		store: store,
	}
	s.fill = s.load
	return s
}

func (s *Storage) load(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	stop := s.prof.Measure("chunk.load")
	data, err := s.store.Load(ctx, pos)
	stop()
	if errors.Is(err, storage.ErrNotFound) {
		return s.generate(ctx, pos, s.gen)
	}
	if err != nil {
		return nil, fmt.Errorf("load chunk %v: %w", pos, err)
	}

	c, err := chunk.Decode(data)
	if err != nil {
		s.log.Error("stored chunk is corrupt", "pos", pos, "error", err)
		return nil, fmt.Errorf("decode chunk %v: %w", pos, err)
	}
	if c.Pos() != pos {
		return nil, fmt.Errorf("decode chunk %v: %w: stored position %v", pos, chunk.ErrCorruptChunk, c.Pos())
	}
	return c, nil
}

// SaveChunk encodes and stores c, then clears its dirty flag unless it was
// modified while being written.
func (s *Storage) SaveChunk(ctx context.Context, c *chunk.Chunk) error {
	defer s.prof.Measure("chunk.save")()
	v := c.Version()
	if err := s.store.Save(ctx, c.Pos(), c.Encode()); err != nil {
		return fmt.Errorf("save chunk %v: %w", c.Pos(), err)
	}
	c.MarkCleanIf(v)
	return nil
}

// Store returns the underlying chunk store.
func (s *Storage) Store() storage.Store { return s.store }

// Close closes the underlying store.
func (s *Storage) Close() error {
	return s.store.Close()
}
