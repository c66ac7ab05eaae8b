package world

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/worldstore/internal/server/profile"
	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/internal/server/world/provider"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

// ErrWorldNotFound is returned when no world.json exists for an id.
var ErrWorldNotFound = errors.New("world not found")

// DefaultSpawnRadius is the pre-generation radius, in chunks, around a new world's spawn.
const DefaultSpawnRadius = 8

// Loader creates, loads and saves worlds under a root directory, one
// subdirectory per world id.
type Loader struct {
	root        string
	log         *slog.Logger
	prof        *profile.Profiler
	backend     string
	spawnRadius int
	limiter     *rate.Limiter
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger passed to worlds and providers.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) { ld.log = l }
}

// WithProfiler attaches p to every provider the loader builds.
func WithProfiler(p *profile.Profiler) LoaderOption {
	return func(ld *Loader) { ld.prof = p }
}

// WithStorage makes new worlds persist chunks with the named storage backend.
func WithStorage(backend string) LoaderOption {
	return func(ld *Loader) { ld.backend = backend }
}

// WithSpawnRadius sets the spawn pre-generation radius. Negative disables it.
func WithSpawnRadius(r int) LoaderOption {
	return func(ld *Loader) { ld.spawnRadius = r }
}

// WithPregenLimiter paces spawn pre-generation.
func WithPregenLimiter(l *rate.Limiter) LoaderOption {
	return func(ld *Loader) { ld.limiter = l }
}

// NewLoader returns a Loader rooted at root, creating the directory if needed.
func NewLoader(root string, opts ...LoaderOption) (*Loader, error) {
	l := &Loader{
		root:        root,
		log:         slog.Default(),
		spawnRadius: DefaultSpawnRadius,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.backend != "" && !slices.Contains(storage.Backends, l.backend) {
		return nil, fmt.Errorf("unknown storage backend %q", l.backend)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create worlds dir: %w", err)
	}
	return l, nil
}

// Root returns the worlds directory.
func (l *Loader) Root() string { return l.root }

// WorldDir returns the directory of the world with the given id.
func (l *Loader) WorldDir(id uuid.UUID) string {
	return filepath.Join(l.root, id.String())
}

// ChunkStorePath returns where the world's chunks are persisted, or "" when
// its chunks live only in memory.
func (l *Loader) ChunkStorePath(cfg Config) string {
	return storage.Path(cfg.Storage, l.WorldDir(cfg.ID))
}

func (l *Loader) configPath(id uuid.UUID) string {
	return filepath.Join(l.WorldDir(id), ConfigFile)
}

// ListWorlds returns the configs of every world under the root. Directories
// with a missing or invalid world.json are skipped.
func (l *Loader) ListWorlds() ([]Config, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("read worlds dir: %w", err)
	}
	var out []Config
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(l.root, e.Name(), ConfigFile)
		cfg, err := readConfig(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				l.log.Warn("skipping world", "dir", e.Name(), "error", err)
			}
			continue
		}
		out = append(out, cfg)
	}
	return out, nil
}

// CreateWorld persists cfg, builds the world's generator and provider,
// resolves a default spawn and pre-generates the spawn area.
func (l *Loader) CreateWorld(ctx context.Context, cfg Config) (*World, error) {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if cfg.Name == "" {
		cfg.Name = cfg.ID.String()
	}
	if cfg.Storage == "" {
		cfg.Storage = l.backend
	}
	cfg.Time = wrapTime(cfg.Time)

	if err := os.MkdirAll(l.WorldDir(cfg.ID), 0o755); err != nil {
		return nil, fmt.Errorf("create world dir: %w", err)
	}

	w, err := l.open(cfg)
	if err != nil {
		return nil, err
	}
	if w.Spawn() == DefaultSpawn {
		w.SetSpawn(w.FindSpawn())
	}
	if err := writeConfig(l.configPath(cfg.ID), w.Config()); err != nil {
		w.Close()
		return nil, fmt.Errorf("write world config: %w", err)
	}

	if l.spawnRadius >= 0 {
		if _, err := w.PreGenerate(ctx, w.Spawn().Chunk(), l.spawnRadius, l.limiter); err != nil {
			w.Close()
			return nil, fmt.Errorf("generate spawn area: %w", err)
		}
	}

	l.log.Info("world created", "id", cfg.ID, "name", cfg.Name,
		"generator", w.GeneratorType(), "seed", cfg.Seed, "spawn", w.Spawn())
	return w, nil
}

// LoadWorld opens the world with the given id.
func (l *Loader) LoadWorld(ctx context.Context, id uuid.UUID) (*World, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := readConfig(l.configPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load world %s: %w", id, ErrWorldNotFound)
		}
		return nil, fmt.Errorf("load world %s: %w", id, err)
	}
	w, err := l.open(cfg)
	if err != nil {
		return nil, err
	}
	w.Touch()
	l.log.Info("world loaded", "id", id, "name", cfg.Name, "storage", cfg.Storage)
	return w, nil
}

// SaveWorld writes the world's config and then saves its dirty chunks.
func (l *Loader) SaveWorld(ctx context.Context, w *World) error {
	if err := writeConfig(l.configPath(w.ID()), w.Config()); err != nil {
		return fmt.Errorf("write world config: %w", err)
	}
	n, err := w.SaveDirtyChunks(ctx)
	if err != nil {
		return fmt.Errorf("save world %s: %w", w.ID(), err)
	}
	l.log.Debug("world saved", "id", w.ID(), "chunks", n)
	return nil
}

// DeleteWorld removes the world's directory. A missing world is not an error.
func (l *Loader) DeleteWorld(id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("delete world: nil id")
	}
	if err := os.RemoveAll(l.WorldDir(id)); err != nil {
		return fmt.Errorf("delete world %s: %w", id, err)
	}
	return nil
}

// open builds the generator, provider and World for cfg.
func (l *Loader) open(cfg Config) (*World, error) {
	g := gen.New(cfg.GeneratorType, cfg.Seed)
	cfg.GeneratorType = g.Name()

	log := l.log.With("world", cfg.Name)
	popts := []provider.Option{provider.WithLogger(log), provider.WithProfiler(l.prof)}

	var p provider.Provider
	if cfg.Storage == "" || cfg.Storage == storage.BackendMemory {
		p = provider.NewMemory(g, popts...)
	} else {
		store, err := storage.Open(cfg.Storage, l.WorldDir(cfg.ID))
		if err != nil {
			return nil, fmt.Errorf("open chunk store: %w", err)
		}
		p = provider.NewStorage(store, g, popts...)
	}
	return New(cfg, p, l.log), nil
}
