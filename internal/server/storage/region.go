package storage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/brentp/intintmap"
	"github.com/klauspost/compress/zlib"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

const (
	regionShift     = 5
	regionSize      = 1 << regionShift
	regionSlots     = regionSize * regionSize
	sectorSize      = 4096
	headerSectors   = 2 // location table + timestamp table
	compressionZlib = 2
	maxSectorCount  = 0xFF
)

// Region stores chunks in region files of 32×32 chunk slots. A file holds one
// vertical layer: r.<x>>5>.<y>.<z>>5>.mca.
type Region struct {
	dir string

	mu    sync.Mutex
	files map[regionKey]*regionFile
}

type regionKey struct{ x, y, z int32 }

// regionFile caches a file's header. locations maps slot -> sector<<8 | count;
// used marks occupied sectors and is empty until the file exists.
type regionFile struct {
	path       string
	locations  *intintmap.Map
	timestamps [regionSlots]uint32
	used       []bool
}

// OpenRegion opens a region store rooted at dir.
func OpenRegion(dir string) (*Region, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create region dir: %w", err)
	}
	return &Region{dir: dir, files: make(map[regionKey]*regionFile)}, nil
}

func regionOf(pos chunk.Pos) (regionKey, int) {
	key := regionKey{x: pos.X >> regionShift, y: pos.Y, z: pos.Z >> regionShift}
	slot := int(pos.X&(regionSize-1)) + int(pos.Z&(regionSize-1))*regionSize
	return key, slot
}

func (r *Region) path(key regionKey) string {
	return filepath.Join(r.dir, fmt.Sprintf("r.%d.%d.%d.mca", key.x, key.y, key.z))
}

// file returns the cached header for key, reading it from disk on first use.
// The caller holds r.mu.
func (r *Region) file(key regionKey) (*regionFile, error) {
	if rf, ok := r.files[key]; ok {
		return rf, nil
	}
	rf := &regionFile{path: r.path(key), locations: intintmap.New(64, 0.6)}

	f, err := os.Open(rf.path)
	if errors.Is(err, os.ErrNotExist) {
		r.files[key] = rf
		return rf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerSectors*sectorSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read region header %s: %w", rf.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat region file: %w", err)
	}
	rf.used = make([]bool, (info.Size()+sectorSize-1)/sectorSize)
	for i := 0; i < headerSectors; i++ {
		rf.used[i] = true
	}
	for slot := 0; slot < regionSlots; slot++ {
		loc := int64(binary.BigEndian.Uint32(header[slot*4:]))
		if loc != 0 {
			rf.locations.Put(int64(slot), loc)
			rf.mark(loc, true)
		}
		rf.timestamps[slot] = binary.BigEndian.Uint32(header[sectorSize+slot*4:])
	}
	r.files[key] = rf
	return rf, nil
}

// mark sets the occupancy of the sectors covered by loc.
func (rf *regionFile) mark(loc int64, used bool) {
	start, count := int(loc>>8), int(loc&0xFF)
	for i := start; i < start+count && i < len(rf.used); i++ {
		rf.used[i] = used
	}
}

// allocate returns the first run of n free sectors, growing the file when none fits.
func (rf *regionFile) allocate(n int) int {
	run := 0
	for i := headerSectors; i < len(rf.used); i++ {
		if rf.used[i] {
			run = 0
			continue
		}
		run++
		if run == n {
			return i - n + 1
		}
	}
	start := len(rf.used) - run
	rf.used = append(rf.used, make([]bool, n-run)...)
	return start
}

// shrink truncates free sectors off the end of the file.
func (rf *regionFile) shrink(f *os.File) error {
	n := len(rf.used)
	for n > headerSectors && !rf.used[n-1] {
		n--
	}
	if n == len(rf.used) {
		return nil
	}
	if err := f.Truncate(int64(n) * sectorSize); err != nil {
		return fmt.Errorf("truncate region file: %w", err)
	}
	rf.used = rf.used[:n]
	return nil
}

// writeHeader patches the location and timestamp entries of one slot.
func writeHeader(f *os.File, slot int, loc int64, ts uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(loc))
	if _, err := f.WriteAt(b[:], int64(slot*4)); err != nil {
		return fmt.Errorf("write region location: %w", err)
	}
	binary.BigEndian.PutUint32(b[:], ts)
	if _, err := f.WriteAt(b[:], int64(sectorSize+slot*4)); err != nil {
		return fmt.Errorf("write region timestamp: %w", err)
	}
	return nil
}

// write stores compressed in slot. The new sectors are written before the
// header points at them and the old ones are freed afterwards; nothing else in
// the file is touched.
func (rf *regionFile) write(slot int, compressed []byte, ts uint32) error {
	f, err := os.OpenFile(rf.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	if len(rf.used) == 0 {
		if _, err := f.WriteAt(make([]byte, headerSectors*sectorSize), 0); err != nil {
			return fmt.Errorf("write region header: %w", err)
		}
		rf.used = slices.Repeat([]bool{true}, headerSectors)
	}

	count := (4 + 1 + len(compressed) + sectorSize - 1) / sectorSize
	start := rf.allocate(count)
	loc := int64(start)<<8 | int64(count)

	// 4 bytes length + 1 byte compression type + compressed data, padded to a sector.
	buf := make([]byte, count*sectorSize)
	binary.BigEndian.PutUint32(buf, uint32(len(compressed)+1))
	buf[4] = compressionZlib
	copy(buf[5:], compressed)
	if _, err := f.WriteAt(buf, int64(start)*sectorSize); err != nil {
		return fmt.Errorf("write region sectors: %w", err)
	}
	if err := writeHeader(f, slot, loc, ts); err != nil {
		return err
	}

	if old, had := rf.locations.Get(int64(slot)); had {
		rf.mark(old, false)
	}
	rf.mark(loc, true)
	rf.locations.Put(int64(slot), loc)
	rf.timestamps[slot] = ts
	return rf.shrink(f)
}

// payload extracts the compressed bytes from a slot's sectors.
func payload(sectors []byte) ([]byte, error) {
	if len(sectors) < 5 {
		return nil, fmt.Errorf("region sectors truncated at %d bytes", len(sectors))
	}
	length := int(binary.BigEndian.Uint32(sectors))
	if length < 1 || 4+length > len(sectors) {
		return nil, fmt.Errorf("region payload length %d out of range", length)
	}
	if sectors[4] != compressionZlib {
		return nil, fmt.Errorf("unsupported region compression %d", sectors[4])
	}
	return sectors[5 : 4+length], nil
}

// readSectors reads the sectors covered by loc. A short read at the end of the
// file returns what is there.
func readSectors(path string, loc int64) ([]byte, error) {
	start, count := loc>>8, loc&0xFF
	if start < headerSectors || count == 0 {
		return nil, fmt.Errorf("%w: region location %#x", chunk.ErrCorruptChunk, loc)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()

	buf := make([]byte, count*sectorSize)
	n, err := f.ReadAt(buf, start*sectorSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read region sectors: %w", err)
	}
	return buf[:n], nil
}

// Load returns the inflated bytes stored in pos's slot.
func (r *Region) Load(ctx context.Context, pos chunk.Pos) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, slot := regionOf(pos)

	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.file(key)
	if err != nil {
		return nil, err
	}
	loc, ok := rf.locations.Get(int64(slot))
	if !ok {
		return nil, ErrNotFound
	}
	sectors, err := readSectors(rf.path, loc)
	if err != nil {
		return nil, fmt.Errorf("chunk %v: %w", pos, err)
	}
	compressed, err := payload(sectors)
	if err != nil {
		return nil, fmt.Errorf("chunk %v: %w: %w", pos, chunk.ErrCorruptChunk, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("chunk %v: open zlib: %w: %w", pos, chunk.ErrCorruptChunk, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("chunk %v: inflate: %w: %w", pos, chunk.ErrCorruptChunk, err)
	}
	return out, nil
}

// Save deflates data into pos's slot and stamps its timestamp.
func (r *Region) Save(ctx context.Context, pos chunk.Pos, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var cbuf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&cbuf, zlib.DefaultCompression)
	if err != nil {
		return fmt.Errorf("create zlib writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return fmt.Errorf("compress chunk %v: %w", pos, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close zlib writer: %w", err)
	}
	if 4+1+cbuf.Len() > maxSectorCount*sectorSize {
		return fmt.Errorf("chunk %v too large for region file: %d bytes", pos, cbuf.Len())
	}

	key, slot := regionOf(pos)
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.file(key)
	if err != nil {
		return err
	}
	return rf.write(slot, cbuf.Bytes(), uint32(time.Now().Unix()))
}

// Delete clears the slot's header entries and frees its sectors. The last
// chunk leaving a file removes the file.
func (r *Region) Delete(ctx context.Context, pos chunk.Pos) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, slot := regionOf(pos)
	r.mu.Lock()
	defer r.mu.Unlock()

	rf, err := r.file(key)
	if err != nil {
		return err
	}
	loc, ok := rf.locations.Get(int64(slot))
	if !ok {
		return nil
	}
	if rf.locations.Size() == 1 {
		if err := os.Remove(rf.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove region file: %w", err)
		}
		delete(r.files, key)
		return nil
	}

	f, err := os.OpenFile(rf.path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open region file: %w", err)
	}
	defer f.Close()
	if err := writeHeader(f, slot, 0, 0); err != nil {
		return err
	}
	rf.locations.Del(int64(slot))
	rf.timestamps[slot] = 0
	rf.mark(loc, false)
	return rf.shrink(f)
}

// Positions scans every region file in the directory.
func (r *Region) Positions(ctx context.Context) ([]chunk.Pos, error) {
	names, err := filepath.Glob(filepath.Join(r.dir, "r.*.*.*.mca"))
	if err != nil {
		return nil, fmt.Errorf("list region files: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out []chunk.Pos
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var key regionKey
		if _, err := fmt.Sscanf(filepath.Base(name), "r.%d.%d.%d.mca", &key.x, &key.y, &key.z); err != nil {
			continue
		}
		rf, err := r.file(key)
		if err != nil {
			return nil, err
		}
		for s := 0; s < regionSlots; s++ {
			if _, ok := rf.locations.Get(int64(s)); !ok {
				continue
			}
			out = append(out, chunk.Pos{
				X: key.x<<regionShift + int32(s%regionSize),
				Y: key.y,
				Z: key.z<<regionShift + int32(s/regionSize),
			})
		}
	}
	return out, nil
}

// Close drops cached headers. Region files hold no open handles between calls.
func (r *Region) Close() error {
	r.mu.Lock()
	clear(r.files)
	r.mu.Unlock()
	return nil
}
