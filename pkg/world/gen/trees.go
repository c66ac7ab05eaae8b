package gen

import (
	"github.com/OCharnyshevich/worldstore/pkg/world/block"
	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

const (
	treeChance     = 0.02
	treeMaxHeight  = 100
	treeMargin     = 2
	trunkMin       = 4
	trunkMax       = 6
	leafKeepChance = 0.9
)

// placeTrees decorates the chunk with trees. Each candidate column draws from
// its own stream, so a tree is identical in every vertical chunk it spans and
// each chunk writes only the cells inside its own y range.
func (g *Overworld) placeTrees(c *chunk.Chunk, heights *[16][16]int) {
	pos := c.Pos()
	minY := int(pos.Y) * chunk.SectionSize
	maxY := minY + chunk.SectionSize

	for x := treeMargin; x < chunk.SectionSize-treeMargin; x++ {
		for z := treeMargin; z < chunk.SectionSize-treeMargin; z++ {
			h := heights[x][z]
			if h <= g.seaLevel+beachHeight || h >= treeMaxHeight {
				continue
			}
			r := g.noise.ColumnRand(int(pos.X)*chunk.SectionSize+x, int(pos.Z)*chunk.SectionSize+z)
			if !r.Bool(treeChance) {
				continue
			}
			placeTree(c, x, h+1, z, r, minY, maxY)
		}
	}
}

func placeTree(c *chunk.Chunk, x, baseY, z int, r *Rand, minY, maxY int) {
	trunk := r.IntRange(trunkMin, trunkMax)
	top := baseY + trunk - 1

	set := func(lx, y, lz int, b block.Block, onlyAir bool) {
		if y < minY || y >= maxY || lx < 0 || lx >= chunk.SectionSize || lz < 0 || lz >= chunk.SectionSize {
			return
		}
		if onlyAir && !c.Block(lx, y, lz).IsAir() {
			return
		}
		c.SetBlock(lx, y, lz, b)
	}

	for y := baseY; y <= top; y++ {
		set(x, y, z, block.New(block.Log), false)
	}

	// The leaf draws happen for every cell so the stream stays aligned
	// regardless of which cells this chunk owns.
	for y := top - 2; y <= top+1; y++ {
		radius := 2
		if y == top+1 {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if abs(dx) == radius && abs(dz) == radius {
					continue
				}
				if dx == 0 && dz == 0 && y <= top {
					continue
				}
				if !r.Bool(leafKeepChance) {
					continue
				}
				set(x+dx, y, z+dz, block.New(block.Leaves), true)
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
