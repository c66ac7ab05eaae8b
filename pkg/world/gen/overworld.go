package gen

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// Default overworld parameters.
const (
	DefaultSeaLevel = 64
	DefaultScale    = 1.0
)

// Overworld generates rolling noise terrain with water, beaches, caves, ores and trees.
type Overworld struct {
	seaLevel int
	scale    float64
	noise    *NoiseGenerator
}

// OverworldOption configures an Overworld generator.
type OverworldOption func(*Overworld)

// WithSeaLevel sets the water level.
func WithSeaLevel(y int) OverworldOption {
	return func(g *Overworld) { g.seaLevel = y }
}

// WithScale sets the horizontal scale factor. Values above 1 make features smaller.
func WithScale(s float64) OverworldOption {
	return func(g *Overworld) { g.scale = s }
}

// NewOverworld creates an Overworld generator from a seed.
func NewOverworld(seed int64, opts ...OverworldOption) *Overworld {
	g := &Overworld{
		seaLevel: DefaultSeaLevel,
		scale:    DefaultScale,
		noise:    NewNoiseGenerator(seed),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns KindOverworld.
func (g *Overworld) Name() string { return KindOverworld }

// Seed returns the world seed.
func (g *Overworld) Seed() int64 { return g.noise.Seed() }

// SeaLevel returns the configured water level.
func (g *Overworld) SeaLevel() int { return g.seaLevel }

// Noise exposes the generator's noise source.
func (g *Overworld) Noise() *NoiseGenerator { return g.noise }

// HeightAt returns the surface height of world column (x, z).
func (g *Overworld) HeightAt(x, z int) int {
	return g.noise.SurfaceHeight(x, z, g.scale)
}

// GenerateChunk builds the terrain of pos from the seed alone, so the result
// does not depend on which chunks were generated before it.
func (g *Overworld) GenerateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if g.scale <= 0 {
		return nil, fmt.Errorf("%w: scale %v", ErrInvalidParameters, g.scale)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	heights := g.noise.Heightmap(int(pos.X), int(pos.Z), g.scale)
	c := chunk.New(pos)

	if pos.Y < 0 || int(pos.Y) > topSection(&heights, g.seaLevel) {
		return c, nil
	}

	caves := g.noise.CaveNoise(int(pos.X), int(pos.Y), int(pos.Z), g.scale)
	r := g.noise.ChunkRand(int(pos.X), int(pos.Y), int(pos.Z))
	baseY := int(pos.Y) * chunk.SectionSize

	for x := 0; x < chunk.SectionSize; x++ {
		for z := 0; z < chunk.SectionSize; z++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			h := heights[x][z]
			for ly := 0; ly < chunk.SectionSize; ly++ {
				y := baseY + ly
				sample := caves[x][ly][z]
				b := g.classify(y, h, sample, r)
				if b.IsAir() || carved(b, sample) {
					continue
				}
				c.SetBlock(x, y, z, b)
			}
		}
	}

	g.placeTrees(c, &heights)
	return c, nil
}

// topSection returns the highest vertical chunk index that can hold terrain,
// water or tree canopy. Everything above it is air.
func topSection(heights *[16][16]int, seaLevel int) int {
	maxH := heights[0][0]
	for x := range heights {
		for _, h := range heights[x] {
			maxH = max(maxH, h)
		}
	}
	return min(max(maxH/chunk.SectionSize+1, seaLevel/chunk.SectionSize), chunk.SectionCount-1)
}
