// Package gen synthesizes chunks procedurally from a world seed.
package gen

import (
	"context"
	"errors"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// ErrInvalidParameters is returned when a generator is configured with values it cannot use.
var ErrInvalidParameters = errors.New("invalid generator parameters")

// Generator kinds understood by New.
const (
	KindFlat      = "flat"
	KindOverworld = "overworld"
)

// Generator produces chunks deterministically from a seed. A failed or
// cancelled generation returns no chunk.
type Generator interface {
	GenerateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error)
	Name() string
	Seed() int64
}

// HeightSource is implemented by generators that can report the surface
// height of a world column without generating it.
type HeightSource interface {
	HeightAt(x, z int) int
}

// New returns the generator for kind. Unknown kinds produce an overworld generator.
func New(kind string, seed int64) Generator {
	if kind == KindFlat {
		return NewFlat(seed)
	}
	return NewOverworld(seed)
}
