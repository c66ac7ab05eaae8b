// Package storage persists encoded chunks and world metadata on disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// ErrNotFound is returned by Store.Load when no data exists for a position.
var ErrNotFound = errors.New("chunk not stored")

// Store persists encoded chunk bytes keyed by chunk position.
// Implementations are safe for concurrent use.
type Store interface {
	Load(ctx context.Context, pos chunk.Pos) ([]byte, error)
	Save(ctx context.Context, pos chunk.Pos, data []byte) error
	Delete(ctx context.Context, pos chunk.Pos) error
	Positions(ctx context.Context) ([]chunk.Pos, error)
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"
	BackendRegion  = "region"
)

// Backends lists every backend name accepted by Open.
var Backends = []string{BackendMemory, BackendLevelDB, BackendSQLite, BackendRegion}

// Path returns where backend keeps its data inside worldDir, or "" for
// backends that keep nothing on disk.
func Path(backend, worldDir string) string {
	switch backend {
	case BackendLevelDB:
		return filepath.Join(worldDir, "chunks")
	case BackendSQLite:
		return filepath.Join(worldDir, "chunks.db")
	case BackendRegion:
		return filepath.Join(worldDir, "region")
	default:
		return ""
	}
}

// Open opens the named backend inside a world directory.
func Open(backend, worldDir string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendLevelDB:
		return OpenLevelDB(Path(backend, worldDir))
	case BackendSQLite:
		return OpenSQLite(Path(backend, worldDir))
	case BackendRegion:
		return OpenRegion(Path(backend, worldDir))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
