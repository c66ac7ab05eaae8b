package world

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/internal/server/world/provider"
	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

func newFlatWorld(t *testing.T) *World {
	t.Helper()
	cfg := DefaultWorldConfig("flat", 0)
	cfg.GeneratorType = gen.KindFlat
	return New(cfg, provider.NewMemory(gen.NewFlat(0)), nil)
}

func TestWorldTimeWraps(t *testing.T) {
	w := newFlatWorld(t)

	w.SetTime(23999)
	w.IncrementTime(2)
	if got := w.Time(); got != 1 {
		t.Errorf("Time() = %d, want 1", got)
	}

	tests := []struct {
		set, inc, want int64
	}{
		{0, 0, 0},
		{23999, 1, 0},
		{-1, 0, 23999},
		{48001, 0, 1},
		{100, -200, 23900},
		{5, 24000 * 3, 5},
	}
	for _, tt := range tests {
		w.SetTime(tt.set)
		w.IncrementTime(tt.inc)
		if got := w.Time(); got != tt.want {
			t.Errorf("SetTime(%d)+IncrementTime(%d): Time() = %d, want %d", tt.set, tt.inc, got, tt.want)
		}
	}

	w.SetTime(DayLength - 1)
	w.Tick()
	if got := w.Time(); got != 0 {
		t.Errorf("Time() after Tick = %d, want 0", got)
	}
}

func TestWorldBlockFromFlatGenerator(t *testing.T) {
	w := newFlatWorld(t)
	ctx := context.Background()

	tests := []struct {
		pos  chunk.BlockPos
		want uint16
	}{
		{chunk.BlockPos{X: 0, Y: 0, Z: 0}, block.Bedrock},
		{chunk.BlockPos{X: 7, Y: 2, Z: 9}, block.Stone},
		{chunk.BlockPos{X: -1, Y: 4, Z: -17}, block.Dirt},
		{chunk.BlockPos{X: 100, Y: 5, Z: -3}, block.Grass},
		{chunk.BlockPos{X: 5, Y: 64, Z: 10}, block.Air},
		{chunk.BlockPos{X: 0, Y: -1, Z: 0}, block.Air},
		{chunk.BlockPos{X: 0, Y: 300, Z: 0}, block.Air},
	}
	for _, tt := range tests {
		got, err := w.Block(ctx, tt.pos)
		if err != nil {
			t.Fatalf("Block(%v): %v", tt.pos, err)
		}
		if got.Type != tt.want {
			t.Errorf("Block(%v) = %v, want type %d", tt.pos, got, tt.want)
		}
	}
}

func TestWorldSetBlock(t *testing.T) {
	w := newFlatWorld(t)
	ctx := context.Background()

	pos := chunk.BlockPos{X: -3, Y: 10, Z: 5}
	if err := w.SetBlock(ctx, pos, block.New(block.Cobblestone)); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	got, err := w.Block(ctx, pos)
	if err != nil {
		t.Fatalf("Block: %v", err)
	}
	if got.Type != block.Cobblestone {
		t.Errorf("Block(%v) = %v, want cobblestone", pos, got)
	}

	c, ok := w.LoadedChunk(pos.Chunk())
	if !ok {
		t.Fatalf("chunk %v not loaded after SetBlock", pos.Chunk())
	}
	if !c.Dirty() {
		t.Error("chunk should be dirty after SetBlock")
	}

	err = w.SetBlock(ctx, chunk.BlockPos{Y: chunk.Height}, block.New(block.Stone))
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("SetBlock above the world: err = %v, want ErrOutOfBounds", err)
	}

	err = w.SetBlock(ctx, pos, block.New(block.MaxStorableType+1))
	if !errors.Is(err, ErrUnstorableBlock) {
		t.Errorf("SetBlock with type 4096: err = %v, want ErrUnstorableBlock", err)
	}
	if got, _ := w.Block(ctx, pos); got.Type != block.Cobblestone {
		t.Errorf("Block(%v) after rejected write = %v, want cobblestone", pos, got)
	}
}

func TestWorldUnloadDistantChunks(t *testing.T) {
	w := newFlatWorld(t)
	ctx := context.Background()

	for _, pos := range []chunk.Pos{{}, {X: 3}, {X: 2, Z: 2}, {X: 10}, {Z: -7}} {
		if _, err := w.Chunk(ctx, pos); err != nil {
			t.Fatalf("Chunk(%v): %v", pos, err)
		}
	}

	n := w.UnloadDistantChunks([]chunk.Pos{{}}, 4)
	if n != 2 {
		t.Errorf("UnloadDistantChunks = %d, want 2", n)
	}
	for _, pos := range []chunk.Pos{{}, {X: 3}, {X: 2, Z: 2}} {
		if !w.ChunkExists(pos) {
			t.Errorf("ChunkExists(%v) = false, want true", pos)
		}
	}
	for _, pos := range []chunk.Pos{{X: 10}, {Z: -7}} {
		if w.ChunkExists(pos) {
			t.Errorf("ChunkExists(%v) = true, want false", pos)
		}
	}

	if n := w.UnloadDistantChunks([]chunk.Pos{{X: 10}, {X: 3}}, 0); n != 2 {
		t.Errorf("second UnloadDistantChunks = %d, want 2", n)
	}
}

func TestWorldSaveDirtyChunks(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	cfg := DefaultWorldConfig("stored", 0)
	w := New(cfg, provider.NewStorage(store, gen.NewFlat(0)), nil)

	// Only the y=0 chunk of a flat world has blocks, so only it starts dirty.
	for _, pos := range []chunk.Pos{{}, {Y: 1}, {X: 1}} {
		if _, err := w.Chunk(ctx, pos); err != nil {
			t.Fatalf("Chunk(%v): %v", pos, err)
		}
	}

	n, err := w.SaveDirtyChunks(ctx)
	if err != nil {
		t.Fatalf("SaveDirtyChunks: %v", err)
	}
	if n != 2 {
		t.Errorf("SaveDirtyChunks = %d, want 2", n)
	}
	if n, _ := w.SaveDirtyChunks(ctx); n != 0 {
		t.Errorf("second SaveDirtyChunks = %d, want 0", n)
	}

	if err := w.SetBlock(ctx, chunk.BlockPos{X: 1, Y: 20, Z: 1}, block.New(block.Cobblestone)); err != nil {
		t.Fatalf("SetBlock: %v", err)
	}
	if n, _ := w.SaveDirtyChunks(ctx); n != 1 {
		t.Errorf("SaveDirtyChunks after write = %d, want 1", n)
	}

	positions, err := store.Positions(ctx)
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(positions) != 3 {
		t.Errorf("stored %d chunks, want 3", len(positions))
	}
}

func TestWorldPreGenerate(t *testing.T) {
	w := newFlatWorld(t)

	n, err := w.PreGenerate(context.Background(), chunk.Pos{}, 2, rate.NewLimiter(rate.Inf, 1))
	if err != nil {
		t.Fatalf("PreGenerate: %v", err)
	}
	want := len(gen.Positions(chunk.Pos{}, 2))
	if n != want {
		t.Errorf("PreGenerate = %d, want %d", n, want)
	}
	if got := len(w.Provider().LoadedChunks()); got != want {
		t.Errorf("loaded chunks = %d, want %d", got, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := w.PreGenerate(ctx, chunk.Pos{X: 50}, 1, rate.NewLimiter(1, 1)); err == nil {
		t.Error("PreGenerate with cancelled context should fail")
	}
}

func TestWorldFindSpawn(t *testing.T) {
	w := newFlatWorld(t)
	// Default flat layers end with grass at y=5.
	if got := w.FindSpawn(); got != (chunk.BlockPos{X: 0, Y: 6, Z: 0}) {
		t.Errorf("FindSpawn() = %v, want (0, 6, 0)", got)
	}

	noGen := New(DefaultWorldConfig("void", 0), provider.NewMemory(nil), nil)
	if got := noGen.FindSpawn(); got != DefaultSpawn {
		t.Errorf("FindSpawn() without generator = %v, want %v", got, DefaultSpawn)
	}
}

func TestWorldConfigProjection(t *testing.T) {
	cfg := DefaultWorldConfig("proj", 42)
	cfg.Time = 1234
	cfg.IsRaining = true
	cfg.GameMode = Creative
	cfg.CreatedAt = 1700000000
	cfg.LastPlayed = 1700000100

	w := New(cfg, provider.NewMemory(gen.NewFlat(42)), nil)
	w.SetThundering(true)
	w.SetSpawn(chunk.BlockPos{X: 1, Y: 2, Z: 3})

	got := w.Config()
	cfg.IsThundering = true
	cfg.SpawnPosition = [3]int{1, 2, 3}
	if got != cfg {
		t.Errorf("Config() = %+v, want %+v", got, cfg)
	}
}
