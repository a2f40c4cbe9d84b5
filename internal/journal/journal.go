// Package journal stores a summary of every gate decision in SQLite.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"eventgate/internal/common/fsutil"
	"eventgate/pkg/types"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// MemoryPath opens a private in-memory journal.
const MemoryPath = ":memory:"

// Journal is a SQLite-backed dispatch log. Safe for concurrent use.
type Journal struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is empty")
	}
	dsn := MemoryPath
	if path != MemoryPath {
		p, err := fsutil.PrepareFilePath(path)
		if err != nil {
			return nil, fmt.Errorf("prepare journal path: %w", err)
		}
		path = p
		dsn = "file:" + p + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if path == MemoryPath {
		// each connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, path: path}, nil
}

// Path returns the resolved database path.
func (j *Journal) Path() string { return j.path }

// Record appends a decision. A missing ID or timestamp is filled in.
func (j *Journal) Record(ctx context.Context, rec types.DispatchRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO dispatches (id, job_id, event_name, event_class, resource_type, resource_id, decision, channels, force_send, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.JobID, rec.EventName, rec.EventClass, rec.ResourceType, rec.ResourceID,
		rec.Decision, strings.Join(rec.Channels, ","), rec.ForceSend, rec.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// Recent returns the newest records first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]types.DispatchRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, job_id, event_name, event_class, resource_type, resource_id, decision, channels, force_send, created_at
FROM dispatches ORDER BY created_at DESC, rowid DESC LIMIT ?`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	out := make([]types.DispatchRecord, 0)
	for rows.Next() {
		var (
			rec      types.DispatchRecord
			channels string
			created  string
		)
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.EventName, &rec.EventClass, &rec.ResourceType,
			&rec.ResourceID, &rec.Decision, &channels, &rec.ForceSend, &created); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		rec.Channels = splitChannels(channels)
		if rec.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return out, nil
}

// Count returns the number of stored records.
func (j *Journal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dispatches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (j *Journal) Ping(ctx context.Context) error { return j.db.PingContext(ctx) }

func (j *Journal) Close() error { return j.db.Close() }

func splitChannels(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
