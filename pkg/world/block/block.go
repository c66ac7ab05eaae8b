// Package block defines the value type stored in every cell of the world grid.
package block

import "fmt"

// Block type ids of the built-in classic table.
const (
	Air         uint16 = 0
	Stone       uint16 = 1
	Grass       uint16 = 2
	Dirt        uint16 = 3
	Cobblestone uint16 = 4
	Planks      uint16 = 5
	Bedrock     uint16 = 7
	Water       uint16 = 9
	Lava        uint16 = 11
	Sand        uint16 = 12
	Gravel      uint16 = 13
	GoldOre     uint16 = 14
	IronOre     uint16 = 15
	CoalOre     uint16 = 16
	Log         uint16 = 17
	Leaves      uint16 = 18
	DiamondOre  uint16 = 56
	RedstoneOre uint16 = 73
)

// MaxStorableType is the largest type id that survives the 16-bit storage form.
const MaxStorableType uint16 = 0xFFF

// Block is a (type id, metadata) pair. Type 0 is air; metadata on air is ignored.
type Block struct {
	Type     uint16
	Metadata uint16
}

// New returns a block of the given type with zero metadata.
func New(typeID uint16) Block {
	return Block{Type: typeID}
}

// WithMetadata returns a block of the given type and metadata.
func WithMetadata(typeID, metadata uint16) Block {
	return Block{Type: typeID, Metadata: metadata}
}

// IsAir reports whether b is air.
func (b Block) IsAir() bool { return b.Type == Air }

// Pack encodes b as (type<<16)|metadata.
func (b Block) Pack() uint32 {
	return uint32(b.Type)<<16 | uint32(b.Metadata)
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) Block {
	return Block{Type: uint16(v >> 16), Metadata: uint16(v)}
}

// State returns the 16-bit storage form (type<<4)|(metadata&0xF).
// Type ids above 4095 and metadata above 15 do not survive this form.
func (b Block) State() uint16 {
	return b.Type<<4 | b.Metadata&0xF
}

// Storable reports whether b's type id fits the 16-bit storage form.
func (b Block) Storable() bool { return b.Type <= MaxStorableType }

// FromState is the inverse of State.
func FromState(s uint16) Block {
	return Block{Type: s >> 4, Metadata: s & 0xF}
}

func (b Block) String() string {
	if p, ok := registry().ByID(int(b.Type)); ok {
		if b.Metadata == 0 {
			return p.Name
		}
		return fmt.Sprintf("%s:%d", p.Name, b.Metadata)
	}
	return fmt.Sprintf("block(%d:%d)", b.Type, b.Metadata)
}
