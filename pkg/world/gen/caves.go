package gen

import "github.com/OCharnyshevich/worldstore/pkg/world/block"

// caveThreshold is the cave noise value at or below which solid cells are carved.
const caveThreshold = -0.3

// carved reports whether b at a cell with the given cave noise becomes air.
// Bedrock and air are never carved.
func carved(b block.Block, sample float64) bool {
	if b.IsAir() || b.Type == block.Bedrock {
		return false
	}
	return sample <= caveThreshold
}
