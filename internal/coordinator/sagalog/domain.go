// Package sagalog defines the domain types for the saga audit log.
//
// The log is a durable, append-only trail of every transition an order saga
// goes through. It exists for observability: each row carries the OTel
// trace_id of the execution so a saga can be correlated with its distributed
// trace. Orchestration decisions never read it back; the in-memory saga
// state stays the single source of truth during a run.
package sagalog

import "time"

// Status is the kind of transition a log entry records.
type Status string

const (
	StatusStarted       Status = "STARTED"
	StatusStepCompleted Status = "STEP_COMPLETED"
	StatusStepFailed    Status = "STEP_FAILED"
	StatusCompleted     Status = "COMPLETED"
	StatusCompensating  Status = "COMPENSATING"
	StatusCompensated   Status = "COMPENSATED"
)

// Entry is a single row in the saga_logs table: a point-in-time snapshot of
// one saga transition.
type Entry struct {
	// SagaID identifies the saga execution.
	SagaID string

	// OrderID joins the entry with the business order.
	OrderID string

	// Status is the transition kind.
	Status Status

	// Step is the step this transition concerns, empty for saga-level
	// transitions (started, completed, compensated).
	Step string

	// Error holds the failure text for STEP_FAILED and compensation entries.
	Error string

	// TraceID is the W3C trace ID of the active OpenTelemetry span, so a log
	// row links directly to the full distributed trace.
	TraceID string

	// SpanID pinpoints the exact span within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
