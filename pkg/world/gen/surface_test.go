package gen

import (
	"testing"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
)

func TestClassify(t *testing.T) {
	g := NewOverworld(1)
	tests := []struct {
		name   string
		y      int
		height int
		sample float64
		want   uint16
	}{
		{"water at sea level", 64, 50, 0, block.Water},
		{"air above sea level", 65, 50, 0, block.Air},
		{"sand below sea level", 60, 60, 0, block.Sand},
		{"sand at sea+2", 66, 66, 0, block.Sand},
		{"grass at sea+3", 67, 67, 0, block.Grass},
		{"dirt below surface", 69, 70, 0, block.Dirt},
		{"dirt three below surface", 67, 70, 0, block.Dirt},
		{"stone under dirt", 66, 70, 0, block.Stone},
		{"stone at ore threshold", 20, 70, oreThreshold, block.Stone},
		{"stone above ore ceiling", 21, 70, 0.99, block.Stone},
		{"bedrock floor", 0, 70, 0.99, block.Bedrock},
		{"stone at bedrock ceiling", 5, 70, 0.99, block.Stone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.classify(tt.y, tt.height, tt.sample, NewRand(7)); got.Type != tt.want {
				t.Errorf("classify(%d, %d, %v) = %v, want type %d", tt.y, tt.height, tt.sample, got, tt.want)
			}
		})
	}
}

func TestClassifyOreBand(t *testing.T) {
	g := NewOverworld(1)
	for seed := uint64(0); seed < 64; seed++ {
		want := oreFor(NewRand(seed).Float64())
		if got := g.classify(oreCeiling, 70, 0.71, NewRand(seed)); got != want {
			t.Fatalf("seed %d: classify(20, 70, 0.71) = %v, want %v", seed, got, want)
		}
		for y := 1; y <= bedrockCeiling; y++ {
			got := g.classify(y, 70, 0.99, NewRand(seed))
			if got.Type != block.Bedrock && got.Type != block.Stone {
				t.Fatalf("seed %d: classify(%d, 70, 0.99) = %v, want bedrock or stone", seed, y, got)
			}
		}
	}
}

func TestOreFor(t *testing.T) {
	tests := []struct {
		v    float64
		want uint16
	}{
		{0, block.CoalOre},
		{0.39, block.CoalOre},
		{0.40, block.IronOre},
		{0.69, block.IronOre},
		{0.70, block.GoldOre},
		{0.84, block.GoldOre},
		{0.85, block.RedstoneOre},
		{0.94, block.RedstoneOre},
		{0.95, block.DiamondOre},
		{0.999, block.DiamondOre},
	}
	for _, tt := range tests {
		if got := oreFor(tt.v); got.Type != tt.want {
			t.Errorf("oreFor(%v) = %v, want type %d", tt.v, got, tt.want)
		}
	}
}

func TestCarved(t *testing.T) {
	tests := []struct {
		b      block.Block
		sample float64
		want   bool
	}{
		{block.New(block.Stone), -0.3, true},
		{block.New(block.Stone), -0.9, true},
		{block.New(block.Stone), -0.29, false},
		{block.New(block.Dirt), -0.5, true},
		{block.New(block.Bedrock), -1, false},
		{block.Block{}, -1, false},
	}
	for _, tt := range tests {
		if got := carved(tt.b, tt.sample); got != tt.want {
			t.Errorf("carved(%v, %v) = %v, want %v", tt.b, tt.sample, got, tt.want)
		}
	}
}
