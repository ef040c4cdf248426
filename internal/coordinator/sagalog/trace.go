package sagalog

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// NewEntry builds a log entry stamped with the trace and span ids of the
// OpenTelemetry span active in ctx. If no span is active (e.g. in unit
// tests) both ids are left empty.
func NewEntry(ctx context.Context, sagaID, orderID string, status Status, step, errMsg string) *Entry {
	entry := &Entry{
		SagaID:    sagaID,
		OrderID:   orderID,
		Status:    status,
		Step:      step,
		Error:     errMsg,
		UpdatedAt: time.Now().UTC(),
	}

	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		entry.TraceID = sc.TraceID().String()
		entry.SpanID = sc.SpanID().String()
	}

	return entry
}
