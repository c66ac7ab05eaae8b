// Command worldfetch downloads a world directory from any go-getter source
// (git, http archive, s3, gcs, local path) into a worlds directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	getter "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/worldstore/internal/server/world"
)

func main() {
	var (
		src       = flag.String("src", "", "world source, e.g. git::https://example.com/worlds.git//alpha or https://example.com/alpha.tar.gz")
		worldsDir = flag.String("worlds-dir", "worlds", "destination worlds directory")
		force     = flag.Bool("force", false, "replace an existing world with the same id")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *src == "" {
		log.Error("source required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := fetch(ctx, *src, *worldsDir, *force, log)
	if err != nil {
		log.Error("fetch world", "src", *src, "error", err)
		os.Exit(1)
	}
	log.Info("world installed", "id", cfg.ID, "name", cfg.Name, "dir", filepath.Join(*worldsDir, cfg.ID.String()))
}

// fetch downloads src into a staging directory, validates its world.json and
// moves it to <worldsDir>/<id>.
func fetch(ctx context.Context, src, worldsDir string, force bool, log *slog.Logger) (world.Config, error) {
	if err := os.MkdirAll(worldsDir, 0o755); err != nil {
		return world.Config{}, fmt.Errorf("create worlds dir: %w", err)
	}
	staging, err := os.MkdirTemp(worldsDir, ".fetch-")
	if err != nil {
		return world.Config{}, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	dst := filepath.Join(staging, "world")
	log.Info("start downloading world", "src", src)
	pwd, err := os.Getwd()
	if err != nil {
		return world.Config{}, fmt.Errorf("getwd: %w", err)
	}
	getters := maps.Clone(getter.Getters)
	getters["file"] = &getter.FileGetter{Copy: true}
	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    getter.ClientModeDir,
		Getters: getters,
	}
	if err := client.Get(); err != nil {
		return world.Config{}, fmt.Errorf("download: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, world.ConfigFile))
	if err != nil {
		return world.Config{}, fmt.Errorf("read %s: %w", world.ConfigFile, err)
	}
	cfg, err := world.ParseConfig(data)
	if err != nil {
		return world.Config{}, err
	}

	target := filepath.Join(worldsDir, cfg.ID.String())
	if _, err := os.Stat(target); err == nil {
		if !force {
			return world.Config{}, fmt.Errorf("world %s already exists", cfg.ID)
		}
		if err := os.RemoveAll(target); err != nil {
			return world.Config{}, fmt.Errorf("remove existing world: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return world.Config{}, fmt.Errorf("stat %s: %w", target, err)
	}

	if err := os.Rename(dst, target); err != nil {
		return world.Config{}, fmt.Errorf("install world: %w", err)
	}
	return cfg, nil
}
