// Package config loads server settings from flags and an optional config file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/pkg/world/gen"
)

// ErrUnsupportedFormat is returned by Load for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds the server configuration.
type Config struct {
	WorldsDir       string  `json:"worlds_dir" toml:"worlds_dir" yaml:"worlds_dir"`
	WorldID         string  `json:"world_id" toml:"world_id" yaml:"world_id"` // empty creates a new world
	WorldName       string  `json:"world_name" toml:"world_name" yaml:"world_name"`
	Seed            string  `json:"seed" toml:"seed" yaml:"seed"`                               // integer or any string; empty is random
	GeneratorType   string  `json:"generator_type" toml:"generator_type" yaml:"generator_type"` // "overworld" or "flat"
	Storage         string  `json:"storage" toml:"storage" yaml:"storage"`
	SpawnRadius     int     `json:"spawn_radius" toml:"spawn_radius" yaml:"spawn_radius"`
	ViewDistance    int     `json:"view_distance" toml:"view_distance" yaml:"view_distance"`
	TickRate        int     `json:"tick_rate" toml:"tick_rate" yaml:"tick_rate"`
	AutosaveSeconds int     `json:"autosave_seconds" toml:"autosave_seconds" yaml:"autosave_seconds"`
	PregenRate      float64 `json:"pregen_rate" toml:"pregen_rate" yaml:"pregen_rate"` // chunks per second, 0 = unlimited
	LogLevel        string  `json:"log_level" toml:"log_level" yaml:"log_level"`
	LogFormat       string  `json:"log_format" toml:"log_format" yaml:"log_format"` // "text" or "json"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		WorldsDir:       "worlds",
		WorldName:       "world",
		GeneratorType:   gen.KindOverworld,
		Storage:         storage.BackendLevelDB,
		SpawnRadius:     8,
		ViewDistance:    8,
		TickRate:        20,
		AutosaveSeconds: 300,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads a config file, choosing the decoder by extension
// (.toml, .yaml, .yml or .json). Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["worlds-dir"] {
		cfg.WorldsDir = fromFile.WorldsDir
	}
	if !explicitFlags["world"] {
		cfg.WorldID = fromFile.WorldID
	}
	if !explicitFlags["name"] {
		cfg.WorldName = fromFile.WorldName
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["generator"] {
		cfg.GeneratorType = fromFile.GeneratorType
	}
	if !explicitFlags["storage"] {
		cfg.Storage = fromFile.Storage
	}
	if !explicitFlags["spawn-radius"] {
		cfg.SpawnRadius = fromFile.SpawnRadius
	}
	if !explicitFlags["view-distance"] {
		cfg.ViewDistance = fromFile.ViewDistance
	}
	if !explicitFlags["tick-rate"] {
		cfg.TickRate = fromFile.TickRate
	}
	if !explicitFlags["autosave"] {
		cfg.AutosaveSeconds = fromFile.AutosaveSeconds
	}
	if !explicitFlags["pregen-rate"] {
		cfg.PregenRate = fromFile.PregenRate
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
	if !explicitFlags["log-format"] {
		cfg.LogFormat = fromFile.LogFormat
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.WorldsDir == "":
		return errors.New("worlds_dir must not be empty")
	case !slices.Contains(storage.Backends, c.Storage):
		return fmt.Errorf("storage must be one of %v, got %q", storage.Backends, c.Storage)
	case c.SpawnRadius < 0:
		return fmt.Errorf("spawn_radius must be >= 0, got %d", c.SpawnRadius)
	case c.ViewDistance < 1:
		return fmt.Errorf("view_distance must be >= 1, got %d", c.ViewDistance)
	case c.TickRate < 1 || c.TickRate > 1000:
		return fmt.Errorf("tick_rate must be in [1, 1000], got %d", c.TickRate)
	case c.AutosaveSeconds < 0:
		return fmt.Errorf("autosave_seconds must be >= 0, got %d", c.AutosaveSeconds)
	case c.PregenRate < 0:
		return fmt.Errorf("pregen_rate must be >= 0, got %g", c.PregenRate)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseSeed turns a configured seed into a world seed: empty picks a random
// seed, an integer is used as is and any other string is hashed.
func ParseSeed(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return rand.Int64()
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return gen.SeedFromString(s)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
