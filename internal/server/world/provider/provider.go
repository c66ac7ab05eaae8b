// Package provider mediates chunk requests between the loaded-chunk registry,
// persistent storage and terrain generation.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/OCharnyshevich/worldstore/internal/server/profile"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

// ErrChunkNotFound is returned when a chunk has no stored data and no generator can create it.
var ErrChunkNotFound = errors.New("chunk not found")

// Provider supplies chunks on demand.
type Provider interface {
	// ChunkExists reports whether pos is loaded. It never loads or generates.
	ChunkExists(pos chunk.Pos) bool
	// Chunk returns the chunk at pos, loading or generating it on a miss.
	// Concurrent callers for the same missing position share one load and
	// receive the same chunk.
	Chunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error)
	// LoadedChunk returns the chunk at pos only if it is already loaded.
	LoadedChunk(pos chunk.Pos) (*chunk.Chunk, bool)
	// UnloadChunk evicts pos without saving it.
	UnloadChunk(pos chunk.Pos) bool
	// SaveChunk persists c.
	SaveChunk(ctx context.Context, c *chunk.Chunk) error
	// ForceGenerate regenerates pos with g and replaces any loaded chunk.
	ForceGenerate(ctx context.Context, pos chunk.Pos, g gen.Generator) (*chunk.Chunk, error)
	// LoadedChunks returns every loaded chunk.
	LoadedChunks() []*chunk.Chunk
	// Generator returns the generator used on misses, which may be nil.
	Generator() gen.Generator
	Close() error
}

// Option configures a provider.
type Option func(*options)

type options struct {
	log  *slog.Logger
	prof *profile.Profiler
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithProfiler records generate, load and save timings on p.
func WithProfiler(p *profile.Profiler) Option {
	return func(o *options) { o.prof = p }
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cache holds the registry and the single-flight group shared by both providers.
type cache struct {
	chunks *chunk.Collection
	gen    gen.Generator
	group  singleflight.Group
	options

	// fill produces a chunk on a miss. It runs detached from any caller's cancellation.
	fill func(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error)
}

func (c *cache) ChunkExists(pos chunk.Pos) bool {
	return c.chunks.Contains(pos)
}

func (c *cache) LoadedChunk(pos chunk.Pos) (*chunk.Chunk, bool) {
	return c.chunks.Chunk(pos)
}

func (c *cache) UnloadChunk(pos chunk.Pos) bool {
	return c.chunks.Remove(pos)
}

func (c *cache) LoadedChunks() []*chunk.Chunk {
	return c.chunks.All()
}

func (c *cache) Generator() gen.Generator {
	return c.gen
}

func (c *cache) Chunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if ch, ok := c.chunks.Chunk(pos); ok {
		return ch, nil
	}

	key := strconv.FormatInt(pos.Key(), 36)
	res := c.group.DoChan(key, func() (any, error) {
		if ch, ok := c.chunks.Chunk(pos); ok {
			return ch, nil
		}
		ch, err := c.fill(context.WithoutCancel(ctx), pos)
		if err != nil {
			return nil, err
		}
		resident, _ := c.chunks.InsertIfAbsent(ch)
		return resident, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-res:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*chunk.Chunk), nil
	}
}

func (c *cache) generate(ctx context.Context, pos chunk.Pos, g gen.Generator) (*chunk.Chunk, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: %v", ErrChunkNotFound, pos)
	}
	defer c.prof.Measure("chunk.generate")()
	ch, err := g.GenerateChunk(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("generate chunk %v: %w", pos, err)
	}
	return ch, nil
}

func (c *cache) ForceGenerate(ctx context.Context, pos chunk.Pos, g gen.Generator) (*chunk.Chunk, error) {
	ch, err := c.generate(ctx, pos, g)
	if err != nil {
		return nil, err
	}
	c.chunks.Insert(ch)
	c.log.Debug("chunk regenerated", "pos", pos, "generator", g.Name())
	return ch, nil
}
