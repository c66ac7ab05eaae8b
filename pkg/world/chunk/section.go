package chunk

import (
	"fmt"
	"sync"

	"github.com/OCharnyshevich/worldstore/pkg/world/block"
)

const (
	// SectionSize is the edge length of a section in blocks.
	SectionSize = 16
	// SectionVolume is the number of cells in a section.
	SectionVolume = SectionSize * SectionSize * SectionSize
)

// Section is a 16×16×16 cube of blocks indexed y*256 + z*16 + x.
// All methods are safe for concurrent use.
type Section struct {
	mu     sync.RWMutex
	blocks [SectionVolume]uint32
	nonAir int
}

// NewSection returns an all-air section.
func NewSection() *Section {
	return &Section{}
}

func sectionIndex(x, y, z int) int {
	return y*SectionSize*SectionSize + z*SectionSize + x
}

func inSection(x, y, z int) bool {
	return x >= 0 && x < SectionSize && y >= 0 && y < SectionSize && z >= 0 && z < SectionSize
}

// Block returns the block at (x, y, z), or air when out of range.
func (s *Section) Block(x, y, z int) block.Block {
	if !inSection(x, y, z) {
		return block.Block{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return block.Unpack(s.blocks[sectionIndex(x, y, z)])
}

// SetBlock stores b at (x, y, z). Out-of-range coordinates are ignored.
func (s *Section) SetBlock(x, y, z int, b block.Block) {
	if !inSection(x, y, z) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(sectionIndex(x, y, z), b.Pack())
}

func (s *Section) set(idx int, v uint32) {
	wasAir := s.blocks[idx]>>16 == 0
	isAir := v>>16 == 0
	switch {
	case wasAir && !isAir:
		s.nonAir++
	case !wasAir && isAir:
		s.nonAir--
	}
	s.blocks[idx] = v
}

// Fill overwrites every cell with b.
func (s *Section) Fill(b block.Block) {
	v := b.Pack()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.blocks {
		s.blocks[i] = v
	}
	if b.IsAir() {
		s.nonAir = 0
	} else {
		s.nonAir = SectionVolume
	}
}

// Empty reports whether every cell is air.
func (s *Section) Empty() bool { return s.NonAirBlocks() == 0 }

// Full reports whether no cell is air.
func (s *Section) Full() bool { return s.NonAirBlocks() == SectionVolume }

// NonAirBlocks returns the number of cells whose type is not air.
func (s *Section) NonAirBlocks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nonAir
}

// Clone returns an independent copy of s.
func (s *Section) Clone() *Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Section{blocks: s.blocks, nonAir: s.nonAir}
}

// States returns the 16-bit storage form of every cell in index order.
func (s *Section) States() []uint16 {
	out := make([]uint16, SectionVolume)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, v := range s.blocks {
		out[i] = block.Unpack(v).State()
	}
	return out
}

// SectionFromStates builds a section from exactly 4096 storage values.
func SectionFromStates(states []uint16) (*Section, error) {
	if len(states) != SectionVolume {
		return nil, fmt.Errorf("section has %d blocks, want %d", len(states), SectionVolume)
	}
	s := &Section{}
	for i, st := range states {
		s.set(i, block.FromState(st).Pack())
	}
	return s, nil
}
