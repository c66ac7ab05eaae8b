package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

func newLoader(t *testing.T, opts ...LoaderOption) *Loader {
	t.Helper()
	opts = append([]LoaderOption{WithSpawnRadius(1)}, opts...)
	l, err := NewLoader(filepath.Join(t.TempDir(), "worlds"), opts...)
	require.NoError(t, err)
	return l
}

func TestLoaderCreateWorld(t *testing.T) {
	l := newLoader(t)
	cfg := DefaultWorldConfig("alpha", 7)
	cfg.GeneratorType = "flat"

	w, err := l.CreateWorld(context.Background(), cfg)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, cfg.ID, w.ID())
	assert.Equal(t, gen.KindFlat, w.GeneratorType())
	assert.Equal(t, chunk.BlockPos{X: 0, Y: 6, Z: 0}, w.Spawn(), "default spawn resolved above terrain")
	assert.Len(t, w.Provider().LoadedChunks(), len(gen.Positions(chunk.Pos{}, 1)))
	assert.FileExists(t, filepath.Join(l.WorldDir(cfg.ID), ConfigFile))
}

func TestLoaderCreateWorldKeepsExplicitSpawnAndDefaultsGenerator(t *testing.T) {
	l := newLoader(t, WithSpawnRadius(-1))
	cfg := DefaultWorldConfig("beta", 1)
	cfg.ID = uuid.Nil
	cfg.GeneratorType = "amplified"
	cfg.SpawnPosition = [3]int{100, 70, -40}

	w, err := l.CreateWorld(context.Background(), cfg)
	require.NoError(t, err)
	defer w.Close()

	assert.NotEqual(t, uuid.Nil, w.ID())
	assert.Equal(t, gen.KindOverworld, w.GeneratorType())
	assert.Equal(t, chunk.BlockPos{X: 100, Y: 70, Z: -40}, w.Spawn())
	assert.Empty(t, w.Provider().LoadedChunks())
}

func TestLoaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t)
	cfg := DefaultWorldConfig("gamma", -99)
	cfg.GeneratorType = gen.KindFlat
	cfg.Hardcore = true

	w, err := l.CreateWorld(ctx, cfg)
	require.NoError(t, err)
	w.SetTime(6000)
	w.SetRaining(true)
	require.NoError(t, l.SaveWorld(ctx, w))
	require.NoError(t, w.Close())

	loaded, err := l.LoadWorld(ctx, cfg.ID)
	require.NoError(t, err)
	defer loaded.Close()

	got := loaded.Config()
	assert.Equal(t, "gamma", got.Name)
	assert.Equal(t, int64(-99), got.Seed)
	assert.Equal(t, gen.KindFlat, got.GeneratorType)
	assert.Equal(t, int64(6000), got.Time)
	assert.True(t, got.IsRaining)
	assert.True(t, got.Hardcore)
	assert.Equal(t, w.Spawn(), loaded.Spawn())
	assert.Equal(t, w.CreatedAt().Unix(), loaded.CreatedAt().Unix())
}

func TestLoaderPersistsChunksWithStorageBackend(t *testing.T) {
	for _, backend := range []string{storage.BackendLevelDB, storage.BackendSQLite, storage.BackendRegion} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			l := newLoader(t, WithStorage(backend), WithSpawnRadius(0))
			cfg := DefaultWorldConfig("persist", 3)
			cfg.GeneratorType = gen.KindFlat

			w, err := l.CreateWorld(ctx, cfg)
			require.NoError(t, err)
			pos := chunk.BlockPos{X: 9, Y: 12, Z: -4}
			require.NoError(t, w.SetBlock(ctx, pos, block.New(block.GoldOre)))
			require.NoError(t, l.SaveWorld(ctx, w))
			require.NoError(t, w.Close())
			_, err = os.Stat(l.ChunkStorePath(w.Config()))
			require.NoError(t, err, "chunk store should exist on disk")

			loaded, err := l.LoadWorld(ctx, cfg.ID)
			require.NoError(t, err)
			defer loaded.Close()
			assert.Equal(t, backend, loaded.Config().Storage)

			b, err := loaded.Block(ctx, pos)
			require.NoError(t, err)
			assert.Equal(t, block.GoldOre, b.Type)
		})
	}
}

func TestLoaderLoadMissingWorld(t *testing.T) {
	l := newLoader(t)
	_, err := l.LoadWorld(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrWorldNotFound)
}

func TestLoaderListWorldsSkipsInvalid(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, WithSpawnRadius(-1))

	for _, name := range []string{"one", "two"} {
		w, err := l.CreateWorld(ctx, DefaultWorldConfig(name, 0))
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}

	bad := filepath.Join(l.Root(), "broken")
	require.NoError(t, os.MkdirAll(bad, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, ConfigFile), []byte(`{"name": 5}`), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(l.Root(), "empty"), 0o755))

	worlds, err := l.ListWorlds()
	require.NoError(t, err)
	names := make([]string, 0, len(worlds))
	for _, w := range worlds {
		names = append(names, w.Name)
	}
	assert.ElementsMatch(t, []string{"one", "two"}, names)
}

func TestLoaderDeleteWorld(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t, WithSpawnRadius(-1))
	w, err := l.CreateWorld(ctx, DefaultWorldConfig("doomed", 0))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, l.DeleteWorld(w.ID()))
	assert.NoDirExists(t, l.WorldDir(w.ID()))
	require.NoError(t, l.DeleteWorld(w.ID()), "deleting a missing world is not an error")

	_, err = l.LoadWorld(ctx, w.ID())
	require.ErrorIs(t, err, ErrWorldNotFound)
}

func TestLoaderRejectsUnknownBackend(t *testing.T) {
	_, err := NewLoader(t.TempDir(), WithStorage("tape"))
	require.Error(t, err)
}

func TestParseConfigSchema(t *testing.T) {
	valid := `{
	  "id": "0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11",
	  "name": "schema",
	  "seed": -9223372036854775808,
	  "generator_type": "flat",
	  "spawn_position": [0, 64, 0],
	  "game_mode": 1,
	  "time": 23999
	}`
	cfg, err := ParseConfig([]byte(valid))
	require.NoError(t, err)
	assert.Equal(t, int64(-9223372036854775808), cfg.Seed)
	assert.Equal(t, Creative, cfg.GameMode)
	assert.Equal(t, DefaultSpawn, cfg.Spawn())

	tests := map[string]string{
		"not json":        `{`,
		"missing id":      `{"name":"x","seed":1,"generator_type":"flat","spawn_position":[0,0,0]}`,
		"bad id":          `{"id":"nope","name":"x","seed":1,"generator_type":"flat","spawn_position":[0,0,0]}`,
		"short spawn":     `{"id":"0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11","name":"x","seed":1,"generator_type":"flat","spawn_position":[0,0]}`,
		"time too large":  `{"id":"0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11","name":"x","seed":1,"generator_type":"flat","spawn_position":[0,0,0],"time":24000}`,
		"fractional seed": `{"id":"0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11","name":"x","seed":1.5,"generator_type":"flat","spawn_position":[0,0,0]}`,
		"bad game mode":   `{"id":"0b7e2f4c-3f55-4c1e-9d1b-6c2a8f0e9a11","name":"x","seed":1,"generator_type":"flat","spawn_position":[0,0,0],"game_mode":3}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}
