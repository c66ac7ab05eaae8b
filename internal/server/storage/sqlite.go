package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/OCharnyshevich/worldstore/pkg/world/chunk"
)

// SQLite stores zstd-compressed chunks in a single SQLite table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Load reads and decompresses the row for pos.
func (s *SQLite) Load(ctx context.Context, pos chunk.Pos) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM chunks WHERE x = ? AND y = ? AND z = ?`,
		pos.X, pos.Y, pos.Z).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite load %v: %w", pos, err)
	}
	return decompress(data)
}

// Save upserts the compressed row for pos.
func (s *SQLite) Save(ctx context.Context, pos chunk.Pos, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (x, y, z, data, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (x, y, z) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		pos.X, pos.Y, pos.Z, compress(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("sqlite save %v: %w", pos, err)
	}
	return nil
}

// Delete removes the row for pos.
func (s *SQLite) Delete(ctx context.Context, pos chunk.Pos) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM chunks WHERE x = ? AND y = ? AND z = ?`, pos.X, pos.Y, pos.Z); err != nil {
		return fmt.Errorf("sqlite delete %v: %w", pos, err)
	}
	return nil
}

// Positions lists every stored row.
func (s *SQLite) Positions(ctx context.Context) ([]chunk.Pos, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT x, y, z FROM chunks ORDER BY x, y, z`)
	if err != nil {
		return nil, fmt.Errorf("sqlite positions: %w", err)
	}
	defer rows.Close()

	var out []chunk.Pos
	for rows.Next() {
		var p chunk.Pos
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite positions: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
