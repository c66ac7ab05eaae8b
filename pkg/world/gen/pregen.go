package gen

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// Positions returns the chunk positions covered by a pre-generation of the
// given radius: every (x, z) with dx²+dz² ≤ radius² and y in [center.Y-1, center.Y+1].
// The order is x-major, then z, then y.
func Positions(center chunk.Pos, radius int) []chunk.Pos {
	if radius < 0 {
		return nil
	}
	var out []chunk.Pos
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx*dx+dz*dz > radius*radius {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				out = append(out, chunk.Pos{
					X: center.X + int32(dx),
					Y: center.Y + int32(dy),
					Z: center.Z + int32(dz),
				})
			}
		}
	}
	return out
}

// PreGenerate generates every chunk in Positions(center, radius) in parallel
// and returns them in that order. The first failure cancels the rest.
func PreGenerate(ctx context.Context, g Generator, center chunk.Pos, radius int) ([]*chunk.Chunk, error) {
	positions := Positions(center, radius)
	out := make([]*chunk.Chunk, len(positions))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, pos := range positions {
		eg.Go(func() error {
			c, err := g.GenerateChunk(ctx, pos)
			if err != nil {
				return fmt.Errorf("generate chunk %v: %w", pos, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSpawnArea pre-generates the chunks around the world origin.
func CreateSpawnArea(ctx context.Context, g Generator, radius int) ([]*chunk.Chunk, error) {
	return PreGenerate(ctx, g, chunk.Pos{}, radius)
}
