// Package server runs a world: it opens or creates it, advances its clock,
// autosaves dirty chunks and unloads chunks nobody is near.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/OCharnyshevich/worldstore/internal/server/anchor"
	"github.com/OCharnyshevich/worldstore/internal/server/config"
	"github.com/OCharnyshevich/worldstore/internal/server/profile"
	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/internal/server/world"
)

// SpawnAnchor is the anchor id that keeps the spawn area loaded.
const SpawnAnchor = "spawn"

// Server owns one live world and its background maintenance.
type Server struct {
	cfg     *config.Config
	log     *slog.Logger
	prof    *profile.Profiler
	loader  *world.Loader
	world   *world.World
	anchors *anchor.Manager
}

// New creates a new Server with the given config and logger.
func New(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		log:     log,
		prof:    profile.New(),
		anchors: anchor.NewManager(cfg.ViewDistance),
	}
}

// World returns the open world, or nil before Open.
func (s *Server) World() *world.World { return s.world }

// Anchors returns the anchors that keep chunks loaded.
func (s *Server) Anchors() *anchor.Manager { return s.anchors }

// Profiler returns the chunk timing profiler.
func (s *Server) Profiler() *profile.Profiler { return s.prof }

// Open loads the configured world, or creates it when it does not exist.
func (s *Server) Open(ctx context.Context) error {
	var limiter *rate.Limiter
	if s.cfg.PregenRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.PregenRate), max(1, int(s.cfg.PregenRate)))
	}
	loader, err := world.NewLoader(s.cfg.WorldsDir,
		world.WithLogger(s.log),
		world.WithProfiler(s.prof),
		world.WithStorage(s.cfg.Storage),
		world.WithSpawnRadius(s.cfg.SpawnRadius),
		world.WithPregenLimiter(limiter),
	)
	if err != nil {
		return err
	}
	s.loader = loader

	w, err := s.openWorld(ctx)
	if err != nil {
		return err
	}
	s.world = w
	s.anchors.Set(SpawnAnchor, w.Spawn())
	return nil
}

func (s *Server) openWorld(ctx context.Context) (*world.World, error) {
	if s.cfg.WorldID != "" {
		id, err := uuid.Parse(s.cfg.WorldID)
		if err != nil {
			return nil, fmt.Errorf("parse world id: %w", err)
		}
		return s.loader.LoadWorld(ctx, id)
	}

	worlds, err := s.loader.ListWorlds()
	if err != nil {
		return nil, err
	}
	for _, cfg := range worlds {
		if cfg.Name == s.cfg.WorldName {
			return s.loader.LoadWorld(ctx, cfg.ID)
		}
	}

	cfg := world.DefaultWorldConfig(s.cfg.WorldName, config.ParseSeed(s.cfg.Seed))
	cfg.GeneratorType = s.cfg.GeneratorType
	return s.loader.CreateWorld(ctx, cfg)
}

// Start opens the world and runs it until the context is cancelled, then
// saves and closes it.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("open world: %w", err)
	}

	s.log.Info("server started",
		"world", s.world.Name(),
		"id", s.world.ID(),
		"generator", s.world.GeneratorType(),
		"seed", s.world.Seed(),
		"storage", s.cfg.Storage,
	)

	s.run(ctx)
	s.log.Info("server shutting down")
	return s.Shutdown()
}

func (s *Server) run(ctx context.Context) {
	tick := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
	defer tick.Stop()

	var autosave <-chan time.Time
	if s.cfg.AutosaveSeconds > 0 {
		t := time.NewTicker(time.Duration(s.cfg.AutosaveSeconds) * time.Second)
		defer t.Stop()
		autosave = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.world.Tick()
		case <-autosave:
			if err := s.Maintain(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("autosave", "error", err)
			}
		}
	}
}

// Maintain saves the world and then unloads chunks outside every anchor's
// view distance. Worlds without persistent storage keep their chunks.
func (s *Server) Maintain(ctx context.Context) error {
	if err := s.loader.SaveWorld(ctx, s.world); err != nil {
		return err
	}
	if s.persistent() {
		s.world.UnloadChunksExcept(s.anchors.Watched)
	}
	return nil
}

func (s *Server) persistent() bool {
	st := s.world.Config().Storage
	return st != "" && st != storage.BackendMemory
}

// Shutdown saves the world, closes it and logs chunk timings.
func (s *Server) Shutdown() error {
	if s.world == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.world.Touch()
	saveErr := s.loader.SaveWorld(ctx, s.world)
	closeErr := s.world.Close()
	s.log.Info("chunk timings", "profile", s.prof)
	if saveErr != nil {
		return fmt.Errorf("save world: %w", saveErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close world: %w", closeErr)
	}
	return nil
}
