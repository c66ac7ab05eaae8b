package gen

import "github.com/OCharnyshevich/worldstore/pkg/world/block"

const (
	oreCeiling   = 20
	oreThreshold = 0.7
)

// oreTable maps cumulative probability thresholds to ore types.
var oreTable = []struct {
	below float64
	ore   uint16
}{
	{0.40, block.CoalOre},
	{0.70, block.IronOre},
	{0.85, block.GoldOre},
	{0.95, block.RedstoneOre},
}

func pickOre(r *Rand) block.Block {
	return oreFor(r.Float64())
}

// oreFor maps a uniform draw in [0,1) onto oreTable.
func oreFor(v float64) block.Block {
	for _, o := range oreTable {
		if v < o.below {
			return block.New(o.ore)
		}
	}
	return block.New(block.DiamondOre)
}
