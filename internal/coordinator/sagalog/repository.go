package sagalog

import "context"

// Repository is the port for persisting saga log entries. The orchestrator
// depends on this abstraction, not on SQLite directly, so the backing can be
// swapped (Postgres, in-memory for tests) without touching orchestration.
type Repository interface {
	// Save appends a new log entry. The log is append-only; entries are
	// never updated.
	Save(ctx context.Context, entry *Entry) error
}
