package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/order-saga/internal/coordinator/sagalog"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "saga.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_SaveAndGetLatest(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	entries := []*sagalog.Entry{
		{SagaID: "saga-1", OrderID: "order-1", Status: sagalog.StatusStarted, UpdatedAt: base},
		{SagaID: "saga-1", OrderID: "order-1", Status: sagalog.StatusStepCompleted, Step: "verify_user", UpdatedAt: base.Add(time.Second)},
		{SagaID: "saga-1", OrderID: "order-1", Status: sagalog.StatusStepFailed, Step: "process_payment", Error: "Payment declined", UpdatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Save(ctx, e))
	}

	latest, err := repo.GetLatest(ctx, "saga-1")
	require.NoError(t, err)
	assert.Equal(t, sagalog.StatusStepFailed, latest.Status)
	assert.Equal(t, "process_payment", latest.Step)
	assert.Equal(t, "Payment declined", latest.Error)
	assert.Equal(t, "order-1", latest.OrderID)
	assert.True(t, latest.UpdatedAt.Equal(base.Add(2*time.Second)))
}

func TestRepository_GetLatestUnknownSaga(t *testing.T) {
	repo := openTestRepo(t)
	_, err := repo.GetLatest(context.Background(), "saga-missing")
	assert.ErrorIs(t, err, ErrNoEntries)
}

func TestRepository_SavePreservesTraceIDs(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	entry := &sagalog.Entry{
		SagaID:    "saga-2",
		OrderID:   "order-2",
		Status:    sagalog.StatusCompleted,
		TraceID:   "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:    "00f067aa0ba902b7",
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, entry))

	got, err := repo.GetLatest(ctx, "saga-2")
	require.NoError(t, err)
	assert.Equal(t, entry.TraceID, got.TraceID)
	assert.Equal(t, entry.SpanID, got.SpanID)
}
