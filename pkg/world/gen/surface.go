package gen

import "github.com/OCharnyshevich/worldstore/pkg/world/block"

const (
	bedrockCeiling = 5
	dirtDepth      = 3
	beachHeight    = 2
)

// classify picks the block for world height y in a column whose surface is at
// height. r supplies the bedrock and ore draws; sample is the cave noise at the cell.
func (g *Overworld) classify(y, height int, sample float64, r *Rand) block.Block {
	switch {
	case y > height:
		if y <= g.seaLevel {
			return block.New(block.Water)
		}
		return block.Block{}
	case y == height:
		if y <= g.seaLevel+beachHeight {
			return block.New(block.Sand)
		}
		return block.New(block.Grass)
	case y >= height-dirtDepth:
		return block.New(block.Dirt)
	case y <= bedrockCeiling:
		return bedrockLayer(y, r)
	case y <= oreCeiling:
		if sample > oreThreshold {
			return pickOre(r)
		}
		return block.New(block.Stone)
	default:
		return block.New(block.Stone)
	}
}

// bedrockLayer returns bedrock at y=0, a coin flip between bedrock and stone
// for y in [1,4], and stone at y=5.
func bedrockLayer(y int, r *Rand) block.Block {
	if y <= 0 {
		return block.New(block.Bedrock)
	}
	if y < bedrockCeiling && r.Bool(0.5) {
		return block.New(block.Bedrock)
	}
	return block.New(block.Stone)
}
