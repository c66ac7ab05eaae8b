package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrCorruptChunk is returned by Decode for malformed input.
var ErrCorruptChunk = errors.New("corrupt chunk data")

const (
	headerBytes        = 3*4 + 8
	sectionHeaderBytes = 4 + 8
	sectionDataBytes   = SectionVolume * 2
	trailerBytes       = 8 + 8
)

// Encode serializes the chunk in little-endian order:
//
//	i32 x, i32 y, i32 z
//	u64 section count
//	per section, ascending index: i32 index, u64 4096, 4096 × u16 block state
//	u64 last modified, u64 created at (Unix seconds)
func (c *Chunk) Encode() []byte {
	indices := c.SectionIndices()
	buf := make([]byte, 0, headerBytes+len(indices)*(sectionHeaderBytes+sectionDataBytes)+trailerBytes)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.pos.X))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.pos.Y))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(c.pos.Z))

	type entry struct {
		idx    int
		states []uint16
	}
	sections := make([]entry, 0, len(indices))
	for _, i := range indices {
		if s := c.Section(i); s != nil {
			sections = append(sections, entry{idx: i, states: s.States()})
		}
	}

	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(sections)))
	for _, e := range sections {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(e.idx)))
		buf = binary.LittleEndian.AppendUint64(buf, SectionVolume)
		for _, st := range e.states {
			buf = binary.LittleEndian.AppendUint16(buf, st)
		}
	}

	c.state.Lock()
	modified, created := c.lastModified, c.createdAt
	c.state.Unlock()
	buf = binary.LittleEndian.AppendUint64(buf, uint64(modified))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(created))
	return buf
}

type decoder struct {
	b   []byte
	off int
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || len(d.b)-d.off < n {
		return nil, fmt.Errorf("%w: truncated at offset %d", ErrCorruptChunk, d.off)
	}
	v := d.b[d.off : d.off+n]
	d.off += n
	return v, nil
}

func (d *decoder) u32() (uint32, error) {
	v, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

func (d *decoder) u64() (uint64, error) {
	v, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v), nil
}

// Decode parses data produced by Encode. The result is not dirty.
func Decode(data []byte) (*Chunk, error) {
	d := &decoder{b: data}

	var coords [3]int32
	for i := range coords {
		v, err := d.u32()
		if err != nil {
			return nil, err
		}
		coords[i] = int32(v)
	}

	count, err := d.u64()
	if err != nil {
		return nil, err
	}
	if count > SectionCount {
		return nil, fmt.Errorf("%w: %d sections", ErrCorruptChunk, count)
	}

	sections := make(map[int32]*Section, count)
	for range count {
		rawIdx, err := d.u32()
		if err != nil {
			return nil, err
		}
		idx := int32(rawIdx)
		if idx < 0 || idx >= SectionCount {
			return nil, fmt.Errorf("%w: section index %d out of range", ErrCorruptChunk, idx)
		}
		if _, dup := sections[idx]; dup {
			return nil, fmt.Errorf("%w: duplicate section %d", ErrCorruptChunk, idx)
		}
		n, err := d.u64()
		if err != nil {
			return nil, err
		}
		if n != SectionVolume {
			return nil, fmt.Errorf("%w: section %d has %d blocks", ErrCorruptChunk, idx, n)
		}
		raw, err := d.take(sectionDataBytes)
		if err != nil {
			return nil, err
		}
		states := make([]uint16, SectionVolume)
		for i := range states {
			states[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		s, err := SectionFromStates(states)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
		}
		sections[idx] = s
	}

	modified, err := d.u64()
	if err != nil {
		return nil, err
	}
	created, err := d.u64()
	if err != nil {
		return nil, err
	}
	if d.off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptChunk, len(data)-d.off)
	}

	return &Chunk{
		pos:          Pos{X: coords[0], Y: coords[1], Z: coords[2]},
		sections:     sections,
		createdAt:    int64(created),
		lastModified: int64(modified),
	}, nil
}
