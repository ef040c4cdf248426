// Package sqlite provides a SQLite-backed implementation of
// sagalog.Repository.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa: the saga goroutine writes while the HTTP status endpoint may read.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopsphere/order-saga/internal/coordinator/sagalog"

	// Register the pure-Go SQLite driver. modernc.org/sqlite needs no CGO,
	// which keeps Alpine/scratch container builds simple.
	_ "modernc.org/sqlite"
)

// ErrNoEntries is returned by GetLatest when a saga has no log rows.
var ErrNoEntries = errors.New("sagalog: no entries for saga")

// schema is the DDL executed once on startup. The table is append-only: each
// row is an immutable event in a saga's lifecycle.
const schema = `
CREATE TABLE IF NOT EXISTS saga_logs (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id     TEXT NOT NULL,
    order_id    TEXT NOT NULL,
    status      TEXT NOT NULL,
    step        TEXT NOT NULL DEFAULT '',
    error       TEXT NOT NULL DEFAULT '',
    trace_id    TEXT NOT NULL DEFAULT '',
    span_id     TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_logs_saga_id ON saga_logs(saga_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_saga_logs_order_id ON saga_logs(order_id);
CREATE INDEX IF NOT EXISTS idx_saga_logs_trace_id ON saga_logs(trace_id);
`

// Repository is the SQLite implementation of sagalog.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string) (*Repository, error) {
	// The pure-Go driver takes _pragma query parameters: WAL for concurrent
	// readers, busy_timeout to wait for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new saga log entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *sagalog.Entry) error {
	const q = `
		INSERT INTO saga_logs
			(saga_id, order_id, status, step, error, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		entry.OrderID,
		string(entry.Status),
		entry.Step,
		entry.Error,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save saga log for %q: %w", entry.SagaID, err)
	}
	return nil
}

// GetLatest returns the most recent log entry for a saga id.
func (r *Repository) GetLatest(ctx context.Context, sagaID string) (*sagalog.Entry, error) {
	const q = `
		SELECT saga_id, order_id, status, step, error, trace_id, span_id, updated_at
		FROM   saga_logs
		WHERE  saga_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, sagaID)

	var entry sagalog.Entry
	var status, updatedAt string
	err := row.Scan(&entry.SagaID, &entry.OrderID, &status, &entry.Step,
		&entry.Error, &entry.TraceID, &entry.SpanID, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoEntries
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest saga log for %q: %w", sagaID, err)
	}

	entry.Status = sagalog.Status(status)
	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
