package saga

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_StepTransitions(t *testing.T) {
	st := NewState("saga-1", "order-1")
	assert.Equal(t, StatusStarted, st.Status)
	assert.False(t, st.StartedAt.IsZero())

	st.MarkStepStarted(StepVerifyUser)
	assert.Equal(t, StatusInProgress, st.Status)
	assert.Equal(t, StepVerifyUser, st.CurrentStep)
	require.Len(t, st.Steps, 1)
	assert.Equal(t, StepStatusInProgress, st.Steps[0].Status)
	assert.False(t, st.Steps[0].StartedAt.IsZero())

	st.MarkStepCompleted(StepVerifyUser)
	assert.Equal(t, StepStatusCompleted, st.Steps[0].Status)
	require.NotNil(t, st.Steps[0].CompletedAt)

	st.MarkStepStarted(StepCheckProducts)
	st.MarkStepFailed(StepCheckProducts, "Product p1 not found")

	require.Len(t, st.Steps, 2)
	assert.Equal(t, StepStatusFailed, st.Steps[1].Status)
	assert.Equal(t, "Product p1 not found", st.Steps[1].Error)
	require.NotNil(t, st.Steps[1].CompletedAt)

	assert.Equal(t, StatusFailed, st.Status)
	assert.Equal(t, "Product p1 not found", st.ErrorMessage)
	assert.True(t, st.CompensationRequired)
	require.NotNil(t, st.FailedAt)
}

func TestState_StepsAppendInExecutionOrder(t *testing.T) {
	st := NewState("saga-1", "order-1")
	order := []Step{StepVerifyUser, StepCheckProducts, StepReserveInventory}
	for _, s := range order {
		st.MarkStepStarted(s)
		st.MarkStepCompleted(s)
	}
	require.Len(t, st.Steps, 3)
	for i, s := range order {
		assert.Equal(t, s, st.Steps[i].Step)
	}
}

func TestState_Clone(t *testing.T) {
	st := NewState("saga-1", "order-1")
	st.MarkStepStarted(StepVerifyUser)

	cp := st.Clone()
	cp.Steps[0].Status = StepStatusFailed
	cp.Status = StatusFailed

	assert.Equal(t, StepStatusInProgress, st.Steps[0].Status)
	assert.Equal(t, StatusInProgress, st.Status)
}

func TestState_MarkCompleted(t *testing.T) {
	st := NewState("saga-1", "order-1")
	st.MarkCompleted()
	assert.Equal(t, StatusCompleted, st.Status)
	require.NotNil(t, st.CompletedAt)
}
