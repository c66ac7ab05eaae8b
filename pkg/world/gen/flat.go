package gen

import (
	"context"
	"fmt"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// Layer is a horizontal band of a single block type.
type Layer struct {
	Block     block.Block
	Thickness int
}

// DefaultFlatLayers returns bedrock×1, stone×3, dirt×1, grass×1.
func DefaultFlatLayers() []Layer {
	return []Layer{
		{Block: block.New(block.Bedrock), Thickness: 1},
		{Block: block.New(block.Stone), Thickness: 3},
		{Block: block.New(block.Dirt), Thickness: 1},
		{Block: block.New(block.Grass), Thickness: 1},
	}
}

// Flat generates a superflat world. Only chunks at vertical index 0 contain
// blocks; layers stack upward from y=0 and stop at y=15.
type Flat struct {
	seed   int64
	layers []Layer
}

// NewFlat creates a Flat generator with the default layers.
func NewFlat(seed int64) *Flat {
	return &Flat{seed: seed, layers: DefaultFlatLayers()}
}

// NewFlatWithLayers creates a Flat generator with custom layers.
func NewFlatWithLayers(seed int64, layers []Layer) (*Flat, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: flat generator needs at least one layer", ErrInvalidParameters)
	}
	for i, l := range layers {
		if l.Thickness < 0 {
			return nil, fmt.Errorf("%w: layer %d has negative thickness %d", ErrInvalidParameters, i, l.Thickness)
		}
	}
	return &Flat{seed: seed, layers: append([]Layer(nil), layers...)}, nil
}

// Name returns KindFlat.
func (g *Flat) Name() string { return KindFlat }

// Seed returns the seed the generator was built with. Flat output ignores it.
func (g *Flat) Seed() int64 { return g.seed }

// Layers returns a copy of the configured layers.
func (g *Flat) Layers() []Layer { return append([]Layer(nil), g.layers...) }

// GenerateChunk lays the layers bottom up from y=0. Only the chunk at Y=0
// receives blocks, and layers past its first section are dropped.
func (g *Flat) GenerateChunk(ctx context.Context, pos chunk.Pos) (*chunk.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := chunk.New(pos)
	if pos.Y != 0 {
		return c, nil
	}

	y := 0
	for _, l := range g.layers {
		for i := 0; i < l.Thickness && y < chunk.SectionSize; i++ {
			for x := 0; x < chunk.SectionSize; x++ {
				for z := 0; z < chunk.SectionSize; z++ {
					c.SetBlock(x, y, z, l.Block)
				}
			}
			y++
		}
		if y >= chunk.SectionSize {
			break
		}
	}
	return c, nil
}

// HeightAt returns the y of the top layer, or -1 when the layers are all empty.
func (g *Flat) HeightAt(_, _ int) int {
	total := 0
	for _, l := range g.layers {
		total += l.Thickness
	}
	return min(total, chunk.SectionSize) - 1
}
