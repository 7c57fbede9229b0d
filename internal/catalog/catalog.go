// Package catalog is a supplemental SQLite-backed ledger of
// per-dataset ingest/query activity, sitting outside the core index's
// correctness contract entirely. It implements store.Observer: if it
// is never wired up, or its database disappears, nothing about Put or
// Get behavior changes — telemdex stats just reports zeros.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog records last-write/last-read timestamps and call counts per
// dataset id in a small sidecar database.
type Catalog struct {
	sql *sql.DB
}

// Open creates (or attaches to) the ledger database at path, creating
// its parent directory and schema as needed.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(4)
	s.SetMaxIdleConns(4)

	c := &Catalog{sql: s}
	if err := c.migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) Close() error { return c.sql.Close() }

func (c *Catalog) migrate() error {
	_, err := c.sql.Exec(`CREATE TABLE IF NOT EXISTS datasets (
		dataset_id TEXT PRIMARY KEY,
		put_count INTEGER NOT NULL DEFAULT 0,
		get_count INTEGER NOT NULL DEFAULT 0,
		last_put_at INTEGER,
		last_get_at INTEGER
	);`)
	return err
}

// RecordPut bumps put_count and last_put_at for datasetID. Errors are
// swallowed by design — see store.Observer's contract.
func (c *Catalog) RecordPut(datasetID string) {
	_, _ = c.sql.Exec(`
		INSERT INTO datasets(dataset_id, put_count, last_put_at) VALUES (?, 1, ?)
		ON CONFLICT(dataset_id) DO UPDATE SET
			put_count = put_count + 1,
			last_put_at = excluded.last_put_at`,
		datasetID, time.Now().Unix())
}

// RecordGet bumps get_count and last_get_at for datasetID.
func (c *Catalog) RecordGet(datasetID string) {
	_, _ = c.sql.Exec(`
		INSERT INTO datasets(dataset_id, get_count, last_get_at) VALUES (?, 1, ?)
		ON CONFLICT(dataset_id) DO UPDATE SET
			get_count = get_count + 1,
			last_get_at = excluded.last_get_at`,
		datasetID, time.Now().Unix())
}

// Stats is the ledger's view of one dataset's activity.
type Stats struct {
	DatasetID string
	PutCount  int64
	GetCount  int64
	LastPutAt time.Time
	LastGetAt time.Time
}

// Stats returns the ledger row for datasetID, or the zero Stats (with
// a nil error) if nothing has been recorded for it yet.
func (c *Catalog) Stats(datasetID string) (Stats, error) {
	var (
		s                Stats
		lastPut, lastGet sql.NullInt64
	)
	s.DatasetID = datasetID
	row := c.sql.QueryRow(`SELECT put_count, get_count, last_put_at, last_get_at FROM datasets WHERE dataset_id = ?`, datasetID)
	err := row.Scan(&s.PutCount, &s.GetCount, &lastPut, &lastGet)
	if err == sql.ErrNoRows {
		return s, nil
	}
	if err != nil {
		return Stats{}, err
	}
	if lastPut.Valid {
		s.LastPutAt = time.Unix(lastPut.Int64, 0)
	}
	if lastGet.Valid {
		s.LastGetAt = time.Unix(lastGet.Int64, 0)
	}
	return s, nil
}

// FreeBytes reports free space available on the filesystem holding
// path, for "telemdex stats" to print alongside the ledger.
func FreeBytes(path string) (uint64, error) {
	return statfsFree(path)
}
