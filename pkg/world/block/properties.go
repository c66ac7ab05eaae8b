package block

import (
	"sync/atomic"

	"github.com/OCharnyshevich/worldstore/pkg/gamedata"
)

var active atomic.Pointer[gamedata.BlockRegistry]

// UseRegistry replaces the registry consulted by the property queries.
func UseRegistry(r gamedata.BlockRegistry) {
	active.Store(&r)
}

func registry() gamedata.BlockRegistry {
	if r := active.Load(); r != nil {
		return *r
	}
	r, err := gamedata.Load(gamedata.DefaultVersion)
	if err != nil {
		r = gamedata.NewBlockRegistry(nil)
	}
	active.CompareAndSwap(nil, &r)
	return *active.Load()
}

func (b Block) properties() (gamedata.Block, bool) {
	return registry().ByID(int(b.Type))
}

// Solid reports whether entities collide with b. Unknown types are solid.
func (b Block) Solid() bool {
	if b.IsAir() {
		return false
	}
	p, ok := b.properties()
	return !ok || p.Solid
}

// Transparent reports whether light passes through b. Unknown types are opaque.
func (b Block) Transparent() bool {
	if b.IsAir() {
		return true
	}
	p, ok := b.properties()
	return ok && p.Transparent
}

// Fluid reports whether b is a liquid.
func (b Block) Fluid() bool {
	if b.IsAir() {
		return false
	}
	p, ok := b.properties()
	return ok && p.Fluid
}

// LightEmission returns the light level b emits, 0..15.
func (b Block) LightEmission() int {
	if b.IsAir() {
		return 0
	}
	p, _ := b.properties()
	return p.EmitLight
}

// Hardness returns the mining hardness of b, or -1 when b cannot be broken.
func (b Block) Hardness() float64 {
	if b.IsAir() {
		return 0
	}
	p, ok := b.properties()
	if !ok {
		return 0
	}
	if p.Hardness == nil {
		return -1
	}
	return *p.Hardness
}

// BlastResistance returns the explosion resistance of b.
func (b Block) BlastResistance() float64 {
	if b.IsAir() {
		return 0
	}
	p, _ := b.properties()
	return p.Resistance
}
