// Package world ties a chunk provider and a terrain generator to the
// world-level state that is persisted in world.json.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/worldstore/internal/server/world/provider"
	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

// DayLength is the number of ticks in a full day cycle.
const DayLength = 24000

// ErrOutOfBounds is returned when a block write targets a y outside [0, 256).
var ErrOutOfBounds = errors.New("block position out of bounds")

// ErrUnstorableBlock is returned when a block's type id cannot be persisted.
var ErrUnstorableBlock = errors.New("block type id cannot be stored")

// World is a live world: a chunk provider plus time, weather and spawn state.
type World struct {
	id            uuid.UUID
	name          string
	seed          int64
	generatorType string
	gameMode      GameMode
	structures    bool
	hardcore      bool
	storage       string

	provider provider.Provider
	log      *slog.Logger

	mu         sync.RWMutex
	time       int64
	raining    bool
	thundering bool
	spawn      chunk.BlockPos
	createdAt  time.Time
	lastPlayed time.Time
}

// New builds a World from cfg around an already constructed provider.
// A nil logger falls back to slog.Default().
func New(cfg Config, p provider.Provider, log *slog.Logger) *World {
	if log == nil {
		log = slog.Default()
	}
	w := &World{
		id:            cfg.ID,
		name:          cfg.Name,
		seed:          cfg.Seed,
		generatorType: cfg.GeneratorType,
		gameMode:      cfg.GameMode,
		structures:    cfg.GenerateStructures,
		hardcore:      cfg.Hardcore,
		storage:       cfg.Storage,
		provider:      p,
		log:           log.With("world", cfg.Name),
		time:          wrapTime(cfg.Time),
		raining:       cfg.IsRaining,
		thundering:    cfg.IsThundering,
		spawn:         cfg.Spawn(),
		createdAt:     time.Unix(cfg.CreatedAt, 0),
		lastPlayed:    time.Unix(cfg.LastPlayed, 0),
	}
	if cfg.CreatedAt == 0 {
		w.createdAt = time.Now()
		w.lastPlayed = w.createdAt
	}
	return w
}

// ID returns the world's unique id.
func (w *World) ID() uuid.UUID { return w.id }

// Name returns the display name.
func (w *World) Name() string { return w.name }

// Seed returns the terrain seed.
func (w *World) Seed() int64 { return w.seed }

// GeneratorType returns the generator kind the world was created with.
func (w *World) GeneratorType() string { return w.generatorType }

// Provider returns the chunk provider backing the world.
func (w *World) Provider() provider.Provider { return w.provider }

// Generator returns the provider's terrain generator, which may be nil.
func (w *World) Generator() gen.Generator { return w.provider.Generator() }

// Block returns the block at pos, loading or generating its chunk.
// Positions above or below the world read as air.
func (w *World) Block(ctx context.Context, pos chunk.BlockPos) (block.Block, error) {
	if pos.Y < 0 || pos.Y >= chunk.Height {
		return block.Block{}, nil
	}
	c, err := w.provider.Chunk(ctx, pos.Chunk())
	if err != nil {
		return block.Block{}, fmt.Errorf("get chunk %v: %w", pos.Chunk(), err)
	}
	return c.BlockAt(pos), nil
}

// SetBlock writes b at pos through the owning section's lock.
func (w *World) SetBlock(ctx context.Context, pos chunk.BlockPos, b block.Block) error {
	if pos.Y < 0 || pos.Y >= chunk.Height {
		return fmt.Errorf("set block %v: %w", pos, ErrOutOfBounds)
	}
	if !b.Storable() {
		return fmt.Errorf("set block %v to %d: %w", pos, b.Type, ErrUnstorableBlock)
	}
	c, err := w.provider.Chunk(ctx, pos.Chunk())
	if err != nil {
		return fmt.Errorf("get chunk %v: %w", pos.Chunk(), err)
	}
	if !c.SetBlockAt(pos, b) {
		return fmt.Errorf("set block %v: %w", pos, ErrOutOfBounds)
	}
	return nil
}

// Chunk returns the chunk at pos, loading or generating it on a miss.
func (w *World) Chunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	return w.provider.Chunk(ctx, pos)
}

// ChunkExists reports whether pos is loaded.
func (w *World) ChunkExists(pos chunk.Pos) bool { return w.provider.ChunkExists(pos) }

// LoadedChunk returns the chunk at pos if it is loaded.
func (w *World) LoadedChunk(pos chunk.Pos) (*chunk.Chunk, bool) {
	return w.provider.LoadedChunk(pos)
}

func wrapTime(t int64) int64 {
	t %= DayLength
	if t < 0 {
		t += DayLength
	}
	return t
}

// Time returns the time of day in [0, DayLength).
func (w *World) Time() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.time
}

// SetTime sets the time of day, wrapping into [0, DayLength).
func (w *World) SetTime(t int64) {
	w.mu.Lock()
	w.time = wrapTime(t)
	w.mu.Unlock()
}

// IncrementTime advances the time of day by d ticks.
func (w *World) IncrementTime(d int64) {
	w.mu.Lock()
	w.time = wrapTime(w.time + d%DayLength)
	w.mu.Unlock()
}

// Tick advances the time of day by one tick.
func (w *World) Tick() { w.IncrementTime(1) }

// Raining reports whether it is raining.
func (w *World) Raining() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.raining
}

// SetRaining starts or stops rain.
func (w *World) SetRaining(v bool) {
	w.mu.Lock()
	w.raining = v
	w.mu.Unlock()
}

// Thundering reports whether a thunderstorm is active.
func (w *World) Thundering() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.thundering
}

// SetThundering starts or stops a thunderstorm.
func (w *World) SetThundering(v bool) {
	w.mu.Lock()
	w.thundering = v
	w.mu.Unlock()
}

// Spawn returns the spawn position.
func (w *World) Spawn() chunk.BlockPos {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.spawn
}

// SetSpawn sets the spawn position.
func (w *World) SetSpawn(p chunk.BlockPos) {
	w.mu.Lock()
	w.spawn = p
	w.mu.Unlock()
}

// CreatedAt returns when the world was created.
func (w *World) CreatedAt() time.Time { return w.createdAt }

// LastPlayed returns the last time Touch was called.
func (w *World) LastPlayed() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastPlayed
}

// Touch records now as the last time the world was played.
func (w *World) Touch() {
	w.mu.Lock()
	w.lastPlayed = time.Now()
	w.mu.Unlock()
}

// FindSpawn returns a standable position above the terrain at the origin
// column when the generator can report heights, and the current spawn otherwise.
func (w *World) FindSpawn() chunk.BlockPos {
	hs, ok := w.Generator().(gen.HeightSource)
	if !ok {
		return w.Spawn()
	}
	y := hs.HeightAt(0, 0) + 1
	if y >= chunk.Height {
		y = chunk.Height - 1
	}
	return chunk.BlockPos{X: 0, Y: y, Z: 0}
}

// UnloadDistantChunks evicts every loaded chunk whose Manhattan distance to
// all active positions exceeds radius. Dirty chunks are evicted too; callers
// that need them persisted save first. It returns the number evicted.
func (w *World) UnloadDistantChunks(active []chunk.Pos, radius int) int {
	return w.UnloadChunksExcept(func(pos chunk.Pos) bool {
		return near(pos, active, radius)
	})
}

// UnloadChunksExcept evicts every loaded chunk for which keep returns false
// and returns the number evicted.
func (w *World) UnloadChunksExcept(keep func(chunk.Pos) bool) int {
	n := 0
	for _, c := range w.provider.LoadedChunks() {
		if keep(c.Pos()) {
			continue
		}
		if w.provider.UnloadChunk(c.Pos()) {
			n++
		}
	}
	if n > 0 {
		w.log.Debug("unloaded chunks", "count", n)
	}
	return n
}

func near(pos chunk.Pos, active []chunk.Pos, radius int) bool {
	for _, a := range active {
		if pos.Manhattan(a) <= radius {
			return true
		}
	}
	return false
}

// SaveDirtyChunks saves every loaded dirty chunk through the provider and
// returns how many were saved. The first failure stops the pass.
func (w *World) SaveDirtyChunks(ctx context.Context) (int, error) {
	n := 0
	for _, c := range w.provider.LoadedChunks() {
		if !c.Dirty() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := w.provider.SaveChunk(ctx, c); err != nil {
			return n, fmt.Errorf("save chunk %v: %w", c.Pos(), err)
		}
		n++
	}
	return n, nil
}

// PreGenerate loads or generates every chunk in gen.Positions(center, radius)
// through the provider, so the chunks stay resident. A non-nil limiter paces
// the requests. It returns the number of chunks requested.
func (w *World) PreGenerate(ctx context.Context, center chunk.Pos, radius int, limiter *rate.Limiter) (int, error) {
	positions := gen.Positions(center, radius)
	start := time.Now()

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	var waitErr error
	for _, pos := range positions {
		if limiter != nil {
			if waitErr = limiter.Wait(gctx); waitErr != nil {
				break
			}
		}
		eg.Go(func() error {
			if _, err := w.provider.Chunk(gctx, pos); err != nil {
				return fmt.Errorf("pre-generate %v: %w", pos, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	if waitErr != nil {
		return 0, fmt.Errorf("pre-generate: %w", waitErr)
	}

	w.log.Info("pre-generated chunks", "center", center, "radius", radius,
		"count", len(positions), "elapsed", time.Since(start))
	return len(positions), nil
}

// Config returns the persisted projection of the world.
func (w *World) Config() Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Config{
		ID:                 w.id,
		Name:               w.name,
		Seed:               w.seed,
		GeneratorType:      w.generatorType,
		SpawnPosition:      [3]int{w.spawn.X, w.spawn.Y, w.spawn.Z},
		GameMode:           w.gameMode,
		GenerateStructures: w.structures,
		Hardcore:           w.hardcore,
		Time:               w.time,
		IsRaining:          w.raining,
		IsThundering:       w.thundering,
		CreatedAt:          w.createdAt.Unix(),
		LastPlayed:         w.lastPlayed.Unix(),
		Storage:            w.storage,
	}
}

// Close releases the provider.
func (w *World) Close() error { return w.provider.Close() }
