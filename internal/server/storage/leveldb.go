package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/util"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

const chunkKeyPrefix = 'c'

// LevelDB stores zstd-compressed chunks in a LevelDB database.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens or creates a database in dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.NoCompression})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

// levelKey is 'c' followed by big-endian x, y, z with the sign bit flipped so
// keys sort by coordinate.
func levelKey(pos chunk.Pos) []byte {
	k := make([]byte, 13)
	k[0] = chunkKeyPrefix
	binary.BigEndian.PutUint32(k[1:], uint32(pos.X)^0x80000000)
	binary.BigEndian.PutUint32(k[5:], uint32(pos.Y)^0x80000000)
	binary.BigEndian.PutUint32(k[9:], uint32(pos.Z)^0x80000000)
	return k
}

func posFromLevelKey(k []byte) (chunk.Pos, bool) {
	if len(k) != 13 || k[0] != chunkKeyPrefix {
		return chunk.Pos{}, false
	}
	return chunk.Pos{
		X: int32(binary.BigEndian.Uint32(k[1:]) ^ 0x80000000),
		Y: int32(binary.BigEndian.Uint32(k[5:]) ^ 0x80000000),
		Z: int32(binary.BigEndian.Uint32(k[9:]) ^ 0x80000000),
	}, true
}

// Load reads and decompresses the value for pos.
func (l *LevelDB) Load(ctx context.Context, pos chunk.Pos) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := l.db.Get(levelKey(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get %v: %w", pos, err)
	}
	return decompress(v)
}

// Save writes the compressed value for pos.
func (l *LevelDB) Save(ctx context.Context, pos chunk.Pos, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.db.Put(levelKey(pos), compress(data), nil); err != nil {
		return fmt.Errorf("leveldb put %v: %w", pos, err)
	}
	return nil
}

// Delete removes the value for pos.
func (l *LevelDB) Delete(ctx context.Context, pos chunk.Pos) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.db.Delete(levelKey(pos), nil); err != nil {
		return fmt.Errorf("leveldb delete %v: %w", pos, err)
	}
	return nil
}

// Positions iterates the chunk key range.
func (l *LevelDB) Positions(ctx context.Context) ([]chunk.Pos, error) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte{chunkKeyPrefix}), nil)
	defer iter.Release()

	var out []chunk.Pos
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p, ok := posFromLevelKey(iter.Key()); ok {
			out = append(out, p)
		}
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("leveldb iterate: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}
