package chunk

import "fmt"

// Pos is a chunk-space coordinate. Each axis spans 16 blocks.
type Pos struct {
	X, Y, Z int32
}

const (
	keyHorizontalBits = 26
	keyVerticalBits   = 12

	horizontalMask = 1<<keyHorizontalBits - 1
	verticalMask   = 1<<keyVerticalBits - 1
)

// Key packs p into a single integer: x in the top 26 bits, z in the next 26
// and y in the low 12. It is bijective for x,z in [-2^25, 2^25) and
// y in [-2048, 2048).
func (p Pos) Key() int64 {
	u := uint64(uint32(p.X)&horizontalMask)<<(keyHorizontalBits+keyVerticalBits) |
		uint64(uint32(p.Z)&horizontalMask)<<keyVerticalBits |
		uint64(uint32(p.Y)&verticalMask)
	return int64(u)
}

// PosFromKey is the inverse of Pos.Key.
func PosFromKey(k int64) Pos {
	u := uint64(k)
	return Pos{
		X: signExtend(u>>(keyHorizontalBits+keyVerticalBits)&horizontalMask, keyHorizontalBits),
		Z: signExtend(u>>keyVerticalBits&horizontalMask, keyHorizontalBits),
		Y: signExtend(u&verticalMask, keyVerticalBits),
	}
}

func signExtend(v uint64, bits uint) int32 {
	shift := 64 - bits
	return int32(int64(v<<shift) >> shift)
}

// Manhattan returns |dx|+|dy|+|dz| between p and o.
func (p Pos) Manhattan(o Pos) int {
	return abs(int(p.X)-int(o.X)) + abs(int(p.Y)-int(o.Y)) + abs(int(p.Z)-int(o.Z))
}

// Origin returns the world block coordinate of the chunk's minimum corner.
func (p Pos) Origin() BlockPos {
	return BlockPos{X: int(p.X) * SectionSize, Y: int(p.Y) * SectionSize, Z: int(p.Z) * SectionSize}
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// BlockPos is a world-space block coordinate.
type BlockPos struct {
	X, Y, Z int
}

// Chunk returns the position of the chunk containing b.
func (b BlockPos) Chunk() Pos {
	return Pos{X: int32(b.X >> 4), Y: int32(b.Y >> 4), Z: int32(b.Z >> 4)}
}

// Add returns b offset by (dx, dy, dz).
func (b BlockPos) Add(dx, dy, dz int) BlockPos {
	return BlockPos{X: b.X + dx, Y: b.Y + dy, Z: b.Z + dz}
}

func (b BlockPos) String() string {
	return fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
