package gamedata

import "sort"

type BlockRegistry interface {
	ByID(id int) (Block, bool)
	ByName(name string) (Block, bool)
	All() []Block
}

// tableRegistry is a BlockRegistry over a fixed block table.
type tableRegistry struct {
	byID   map[int]Block
	byName map[string]Block
	all    []Block
}

// NewBlockRegistry indexes blocks by id and name. Later entries win on duplicate keys.
func NewBlockRegistry(blocks []Block) BlockRegistry {
	r := &tableRegistry{
		byID:   make(map[int]Block, len(blocks)),
		byName: make(map[string]Block, len(blocks)),
	}
	for _, b := range blocks {
		r.byID[b.ID] = b
		r.byName[b.Name] = b
	}
	r.all = make([]Block, 0, len(r.byID))
	for _, b := range r.byID {
		r.all = append(r.all, b)
	}
	sort.Slice(r.all, func(i, j int) bool { return r.all[i].ID < r.all[j].ID })
	return r
}

func (r *tableRegistry) ByID(id int) (Block, bool) {
	b, ok := r.byID[id]
	return b, ok
}

func (r *tableRegistry) ByName(name string) (Block, bool) {
	b, ok := r.byName[name]
	return b, ok
}

func (r *tableRegistry) All() []Block {
	out := make([]Block, len(r.all))
	copy(out, r.all)
	return out
}
