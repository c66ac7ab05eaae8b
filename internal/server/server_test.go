package server

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/OCharnyshevich/worldstore/internal/server/config"
	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/internal/server/world"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.WorldsDir = t.TempDir()
	cfg.WorldName = "test"
	cfg.Seed = "1"
	cfg.GeneratorType = gen.KindFlat
	cfg.Storage = storage.BackendSQLite
	cfg.SpawnRadius = 0
	cfg.ViewDistance = 2
	cfg.TickRate = 200
	cfg.AutosaveSeconds = 0
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServerStartCreatesAndReopensWorld(t *testing.T) {
	cfg := testConfig(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	srv := New(cfg, discardLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := srv.World().Config()
	if first.Time == 0 {
		t.Error("world time did not advance while running")
	}
	if first.Seed != 1 {
		t.Errorf("Seed = %d, want 1", first.Seed)
	}

	loader, err := world.NewLoader(cfg.WorldsDir)
	if err != nil {
		t.Fatal(err)
	}
	worlds, err := loader.ListWorlds()
	if err != nil {
		t.Fatal(err)
	}
	if len(worlds) != 1 || worlds[0].ID != first.ID {
		t.Fatalf("ListWorlds() = %+v, want the single created world", worlds)
	}
	if worlds[0].Time != first.Time {
		t.Errorf("persisted time = %d, want %d", worlds[0].Time, first.Time)
	}

	srv2 := New(cfg, discardLogger())
	if err := srv2.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer srv2.Shutdown()
	if srv2.World().ID() != first.ID {
		t.Errorf("reopened world id = %v, want %v", srv2.World().ID(), first.ID)
	}
}

func TestServerMaintainUnloadsUnwatchedChunks(t *testing.T) {
	cfg := testConfig(t)
	srv := New(cfg, discardLogger())
	ctx := context.Background()
	if err := srv.Open(ctx); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer srv.Shutdown()

	w := srv.World()
	near := chunk.Pos{X: 1, Z: 1}
	far := chunk.Pos{X: 20, Z: -20}
	for _, pos := range []chunk.Pos{near, far} {
		if _, err := w.Chunk(ctx, pos); err != nil {
			t.Fatalf("Chunk(%v): %v", pos, err)
		}
	}

	if err := srv.Maintain(ctx); err != nil {
		t.Fatalf("Maintain: %v", err)
	}
	if !w.ChunkExists(near) {
		t.Errorf("chunk %v near spawn was unloaded", near)
	}
	if w.ChunkExists(far) {
		t.Errorf("chunk %v far from every anchor is still loaded", far)
	}

	// The far chunk was saved before eviction and loads back from storage.
	if _, err := w.Chunk(ctx, far); err != nil {
		t.Fatalf("reload %v: %v", far, err)
	}
	if got := srv.Profiler().Summary(); len(got) == 0 {
		t.Error("profiler recorded nothing")
	}
}

func TestServerOpenUnknownWorldID(t *testing.T) {
	cfg := testConfig(t)
	cfg.WorldID = "0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11"
	if err := New(cfg, discardLogger()).Open(context.Background()); err == nil {
		t.Error("Open with an unknown world id should fail")
	}
	cfg.WorldID = "not-a-uuid"
	if err := New(cfg, discardLogger()).Open(context.Background()); err == nil {
		t.Error("Open with a malformed world id should fail")
	}
}
