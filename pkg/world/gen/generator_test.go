package gen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

func TestFlatGeneratorLayers(t *testing.T) {
	g := NewFlat(0)
	c, err := g.GenerateChunk(context.Background(), chunk.Pos{})
	if err != nil {
		t.Fatalf("GenerateChunk: %v", err)
	}

	tests := []struct {
		y    int
		want uint16
	}{
		{0, block.Bedrock},
		{1, block.Stone},
		{2, block.Stone},
		{3, block.Stone},
		{4, block.Dirt},
		{5, block.Grass},
		{6, block.Air},
		{15, block.Air},
	}
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			for _, tt := range tests {
				if got := c.Block(x, tt.y, z); got.Type != tt.want {
					t.Fatalf("Block(%d,%d,%d) = %v, want type %d", x, tt.y, z, got, tt.want)
				}
			}
		}
	}
	if got := g.HeightAt(0, 0); got != 5 {
		t.Errorf("HeightAt = %d, want 5", got)
	}
}

func TestFlatGeneratorUpperChunkEmpty(t *testing.T) {
	g := NewFlat(0)
	for _, y := range []int32{1, -1, 4} {
		c, err := g.GenerateChunk(context.Background(), chunk.Pos{Y: y})
		if err != nil {
			t.Fatalf("GenerateChunk: %v", err)
		}
		if n := c.NonAirBlocks(); n != 0 {
			t.Errorf("chunk at y=%d has %d blocks, want 0", y, n)
		}
	}
}

func TestFlatGeneratorTruncatesLayers(t *testing.T) {
	g, err := NewFlatWithLayers(0, []Layer{
		{Block: block.New(block.Stone), Thickness: 10},
		{Block: block.New(block.Dirt), Thickness: 10},
		{Block: block.New(block.Grass), Thickness: 1},
	})
	if err != nil {
		t.Fatalf("NewFlatWithLayers: %v", err)
	}
	c, err := g.GenerateChunk(context.Background(), chunk.Pos{})
	if err != nil {
		t.Fatalf("GenerateChunk: %v", err)
	}
	if got := c.Block(0, 15, 0); got.Type != block.Dirt {
		t.Errorf("Block(0,15,0) = %v, want dirt", got)
	}
	if got := c.Block(0, 16, 0); !got.IsAir() {
		t.Errorf("Block(0,16,0) = %v, want air", got)
	}
	if got := c.NonAirBlocks(); got != chunk.SectionVolume {
		t.Errorf("NonAirBlocks() = %d, want %d", got, chunk.SectionVolume)
	}
}

func TestFlatGeneratorInvalidLayers(t *testing.T) {
	if _, err := NewFlatWithLayers(0, nil); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("empty layers: err = %v, want ErrInvalidParameters", err)
	}
	_, err := NewFlatWithLayers(0, []Layer{{Block: block.New(block.Stone), Thickness: -1}})
	if !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("negative thickness: err = %v, want ErrInvalidParameters", err)
	}
}

func TestOverworldDeterministic(t *testing.T) {
	ctx := context.Background()
	positions := []chunk.Pos{{}, {Y: 4}, {X: -3, Y: 5, Z: 7}, {X: 2, Y: 6, Z: -1}}

	for _, p := range positions {
		c1, err := NewOverworld(42).GenerateChunk(ctx, p)
		if err != nil {
			t.Fatalf("GenerateChunk(%v): %v", p, err)
		}
		c2, err := NewOverworld(42).GenerateChunk(ctx, p)
		if err != nil {
			t.Fatalf("GenerateChunk(%v): %v", p, err)
		}
		// Timestamps may straddle a second boundary; compare the block payload.
		b1, b2 := c1.Encode(), c2.Encode()
		if !bytes.Equal(b1[:len(b1)-16], b2[:len(b2)-16]) {
			t.Errorf("chunk %v differs between runs", p)
		}
	}
}

func TestOverworldOrderIndependent(t *testing.T) {
	ctx := context.Background()
	target := chunk.Pos{X: 1, Y: 4, Z: 1}

	fresh, err := NewOverworld(9).GenerateChunk(ctx, target)
	if err != nil {
		t.Fatal(err)
	}

	g := NewOverworld(9)
	for _, p := range []chunk.Pos{{Y: 4}, {X: 5, Y: 5, Z: 5}} {
		if _, err := g.GenerateChunk(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.Noise().RandomInt(0, 100)
	later, err := g.GenerateChunk(ctx, target)
	if err != nil {
		t.Fatal(err)
	}

	b1, b2 := fresh.Encode(), later.Encode()
	if !bytes.Equal(b1[:len(b1)-16], b2[:len(b2)-16]) {
		t.Error("chunk content depends on generation order")
	}
}

func TestOverworldBedrockFloor(t *testing.T) {
	g := NewOverworld(12345)
	c, err := g.GenerateChunk(context.Background(), chunk.Pos{})
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 16; x++ {
		for z := 0; z < 16; z++ {
			if got := c.Block(x, 0, z); got.Type != block.Bedrock {
				t.Fatalf("Block(%d,0,%d) = %v, want bedrock", x, z, got)
			}
			for y := 1; y <= 4; y++ {
				switch c.Block(x, y, z).Type {
				case block.Bedrock, block.Stone, block.Air:
				default:
					t.Fatalf("Block(%d,%d,%d) = %v, want bedrock, stone or carved air", x, y, z, c.Block(x, y, z))
				}
			}
		}
	}
}

func TestOverworldSurface(t *testing.T) {
	g := NewOverworld(2024)
	ctx := context.Background()

	for x := 0; x < 16; x += 5 {
		for z := 0; z < 16; z += 5 {
			h := g.HeightAt(x, z)
			c, err := g.GenerateChunk(ctx, chunk.Pos{Y: int32(h / 16)})
			if err != nil {
				t.Fatal(err)
			}
			b := c.Block(x, h, z)
			switch {
			case b.IsAir():
				// carved by a cave
			case h <= g.SeaLevel()+2 && b.Type != block.Sand:
				t.Errorf("surface at (%d,%d,%d) = %v, want sand", x, h, z, b)
			case h > g.SeaLevel()+2 && b.Type != block.Grass:
				t.Errorf("surface at (%d,%d,%d) = %v, want grass", x, h, z, b)
			}
		}
	}
}

func TestOverworldAboveTerrainEmpty(t *testing.T) {
	g := NewOverworld(1)
	c, err := g.GenerateChunk(context.Background(), chunk.Pos{Y: 15})
	if err != nil {
		t.Fatal(err)
	}
	if n := c.NonAirBlocks(); n != 0 {
		t.Errorf("chunk at y=15 has %d blocks, want 0", n)
	}
}

func TestOverworldInvalidScale(t *testing.T) {
	g := NewOverworld(1, WithScale(0))
	c, err := g.GenerateChunk(context.Background(), chunk.Pos{})
	if !errors.Is(err, ErrInvalidParameters) || c != nil {
		t.Errorf("GenerateChunk = %v, %v; want nil, ErrInvalidParameters", c, err)
	}
}

func TestOverworldCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := NewOverworld(1).GenerateChunk(ctx, chunk.Pos{Y: 4})
	if !errors.Is(err, context.Canceled) || c != nil {
		t.Errorf("GenerateChunk = %v, %v; want nil, context.Canceled", c, err)
	}
}

func TestNewPicksGenerator(t *testing.T) {
	tests := []struct {
		kind string
		want string
	}{
		{"flat", KindFlat},
		{"overworld", KindOverworld},
		{"amplified", KindOverworld},
		{"", KindOverworld},
	}
	for _, tt := range tests {
		g := New(tt.kind, 7)
		if g.Name() != tt.want || g.Seed() != 7 {
			t.Errorf("New(%q) = %s/%d, want %s/7", tt.kind, g.Name(), g.Seed(), tt.want)
		}
	}
}
