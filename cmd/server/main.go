package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OCharnyshevich/worldstore/internal/server"
	"github.com/OCharnyshevich/worldstore/internal/server/config"
)

func main() {
	cfg := config.DefaultConfig()

	configPath := flag.String("config", "", "path to a .toml, .yaml or .json config file")
	flag.StringVar(&cfg.WorldsDir, "worlds-dir", cfg.WorldsDir, "directory holding one subdirectory per world")
	flag.StringVar(&cfg.WorldID, "world", cfg.WorldID, "id of an existing world to open")
	flag.StringVar(&cfg.WorldName, "name", cfg.WorldName, "world name to open or create")
	flag.StringVar(&cfg.Seed, "seed", cfg.Seed, "world seed for new worlds (integer or text, empty = random)")
	flag.StringVar(&cfg.GeneratorType, "generator", cfg.GeneratorType, "terrain generator: overworld or flat")
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "chunk storage: memory, leveldb, sqlite or region")
	flag.IntVar(&cfg.SpawnRadius, "spawn-radius", cfg.SpawnRadius, "spawn pre-generation radius in chunks")
	flag.IntVar(&cfg.ViewDistance, "view-distance", cfg.ViewDistance, "chunks kept loaded around each anchor")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "world ticks per second")
	flag.IntVar(&cfg.AutosaveSeconds, "autosave", cfg.AutosaveSeconds, "autosave interval in seconds (0 = on shutdown only)")
	flag.Float64Var(&cfg.PregenRate, "pregen-rate", cfg.PregenRate, "pre-generation chunks per second (0 = unlimited)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	flag.Parse()

	if *configPath != "" {
		explicit := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

		fromFile, err := config.Load(*configPath)
		if err != nil {
			slog.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	log := slog.New(handler)
	slog.SetDefault(log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := server.New(cfg, log)
	if err := srv.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
