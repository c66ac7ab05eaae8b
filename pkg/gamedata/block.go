package gamedata

// Block describes the static properties of one block type.
type Block struct {
	ID          int
	Name        string
	DisplayName string
	// Hardness is nil for unbreakable blocks.
	Hardness    *float64
	Solid       bool
	Transparent bool
	Fluid       bool
	Gravity     bool
	Flammable   bool
	EmitLight   int
	Resistance  float64
	Tool        string
	Drops       []Drop
}

type Drop struct {
	ID       int
	Metadata int
	MinCount int
	MaxCount int
}

// Breakable reports whether the block can be mined at all.
func (b Block) Breakable() bool {
	return b.Hardness != nil
}
