package world

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/OCharnyshevich/worldstore/internal/server/storage"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// ConfigFile is the name of the per-world configuration file.
const ConfigFile = "world.json"

// GameMode is the default game mode of a world.
type GameMode int

const (
	Survival GameMode = iota
	Creative
)

func (m GameMode) String() string {
	switch m {
	case Survival:
		return "survival"
	case Creative:
		return "creative"
	default:
		return fmt.Sprintf("GameMode(%d)", int(m))
	}
}

// DefaultSpawn is the placeholder spawn that CreateWorld replaces with a
// position above the generated terrain.
var DefaultSpawn = chunk.BlockPos{X: 0, Y: 64, Z: 0}

// Config is the persisted projection of a World.
type Config struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Seed               int64     `json:"seed"`
	GeneratorType      string    `json:"generator_type"`
	SpawnPosition      [3]int    `json:"spawn_position"`
	GameMode           GameMode  `json:"game_mode"`
	GenerateStructures bool      `json:"generate_structures"`
	Hardcore           bool      `json:"hardcore"`
	Time               int64     `json:"time"`
	IsRaining          bool      `json:"is_raining"`
	IsThundering       bool      `json:"is_thundering"`
	CreatedAt          int64     `json:"created_at,omitempty"`
	LastPlayed         int64     `json:"last_played,omitempty"`
	// Storage names the chunk backend. Empty keeps chunks in memory only.
	Storage string `json:"storage,omitempty"`
}

// DefaultWorldConfig returns a config for a new overworld with a fresh id.
func DefaultWorldConfig(name string, seed int64) Config {
	return Config{
		ID:                 uuid.New(),
		Name:               name,
		Seed:               seed,
		GeneratorType:      "overworld",
		SpawnPosition:      [3]int{DefaultSpawn.X, DefaultSpawn.Y, DefaultSpawn.Z},
		GameMode:           Survival,
		GenerateStructures: true,
	}
}

// Spawn returns the spawn position as a block coordinate.
func (c Config) Spawn() chunk.BlockPos {
	return chunk.BlockPos{X: c.SpawnPosition[0], Y: c.SpawnPosition[1], Z: c.SpawnPosition[2]}
}

//go:embed world.schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString(ConfigFile, configSchemaJSON)

// ParseConfig validates data against the world.json schema and decodes it.
func ParseConfig(data []byte) (Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", ConfigFile, err)
	}
	if err := configSchema.Validate(doc); err != nil {
		return Config{}, fmt.Errorf("validate %s: %w", ConfigFile, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseConfig(data)
}

func writeConfig(path string, cfg Config) error {
	return storage.WriteJSON(path, cfg)
}
