// Package saga holds the state tracking types for an order saga execution.
//
// A saga is a sequence of local steps across services with compensating
// actions to undo completed steps when a later step fails. The state here is
// ephemeral: one State instance per execution, owned exclusively by the
// orchestrating call and discarded when it returns. Durable cross-restart
// persistence is intentionally out of scope; the audit trail lives in the
// sagalog package instead.
package saga

import "time"

// Step identifies one unit of saga work. The set is closed: the orchestrator
// binds each step to its executor and compensator at compile time, so no new
// values may be added without touching the step table.
type Step string

const (
	StepVerifyUser       Step = "verify_user"
	StepCheckProducts    Step = "check_products"
	StepReserveInventory Step = "reserve_inventory"
	StepProcessPayment   Step = "process_payment"
	StepConfirmOrder     Step = "confirm_order"
)

// Status is the lifecycle state of a whole saga execution.
//
// Transitions: Started → InProgress → {Completed | Failed};
// Failed → Compensating → Compensated. Completed and Compensated are terminal.
type Status string

const (
	StatusStarted      Status = "started"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusCompensating Status = "compensating"
	StatusCompensated  Status = "compensated"
)

// StepStatus is the lifecycle state of a single attempted step.
type StepStatus string

const (
	StepStatusPending     StepStatus = "pending"
	StepStatusInProgress  StepStatus = "in_progress"
	StepStatusCompleted   StepStatus = "completed"
	StepStatusFailed      StepStatus = "failed"
	StepStatusCompensated StepStatus = "compensated"
)

// StepState records one attempted step. CompensationPerformed is the
// idempotency guard: compensation must never run twice for the same step.
type StepState struct {
	Step                  Step       `json:"step"`
	Status                StepStatus `json:"status"`
	StartedAt             time.Time  `json:"started_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	Error                 string     `json:"error,omitempty"`
	CompensationPerformed bool       `json:"compensation_performed"`
}

// State tracks one saga execution step by step. Steps are appended in
// execution order and never reordered; compensation walks them in reverse.
//
// State is not safe for concurrent mutation. Each saga execution owns its
// instance exclusively; shared read access for status polling goes through a
// Store, which snapshots under its own lock.
type State struct {
	SagaID  string `json:"saga_id"`
	OrderID string `json:"order_id"`
	Status  Status `json:"status"`

	CurrentStep Step        `json:"current_step,omitempty"`
	Steps       []StepState `json:"steps"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`

	ErrorMessage         string `json:"error_message,omitempty"`
	CompensationRequired bool   `json:"compensation_required"`
}

// NewState initializes tracking for one saga execution.
func NewState(sagaID, orderID string) *State {
	return &State{
		SagaID:    sagaID,
		OrderID:   orderID,
		Status:    StatusStarted,
		StartedAt: time.Now().UTC(),
	}
}

// MarkStepStarted appends a new in-progress step record and advances the
// current step pointer. The first step moves the saga to InProgress.
func (s *State) MarkStepStarted(step Step) {
	if s.Status == StatusStarted {
		s.Status = StatusInProgress
	}
	s.CurrentStep = step
	s.Steps = append(s.Steps, StepState{
		Step:      step,
		Status:    StepStatusInProgress,
		StartedAt: time.Now().UTC(),
	})
}

// MarkStepCompleted marks the recorded state for step as completed.
func (s *State) MarkStepCompleted(step Step) {
	if ss := s.find(step); ss != nil {
		now := time.Now().UTC()
		ss.Status = StepStatusCompleted
		ss.CompletedAt = &now
	}
}

// MarkStepFailed marks the recorded state for step as failed and moves the
// whole saga to Failed, flagging that compensation is required.
func (s *State) MarkStepFailed(step Step, errMsg string) {
	now := time.Now().UTC()
	if ss := s.find(step); ss != nil {
		ss.Status = StepStatusFailed
		ss.Error = errMsg
		ss.CompletedAt = &now
	}
	s.Status = StatusFailed
	s.FailedAt = &now
	s.ErrorMessage = errMsg
	s.CompensationRequired = true
}

// MarkCompleted moves the saga to its successful terminal state.
func (s *State) MarkCompleted() {
	now := time.Now().UTC()
	s.Status = StatusCompleted
	s.CompletedAt = &now
}

func (s *State) find(step Step) *StepState {
	for i := range s.Steps {
		if s.Steps[i].Step == step {
			return &s.Steps[i]
		}
	}
	return nil
}

// Clone returns a deep copy, safe to hand out while the execution keeps
// mutating the original.
func (s *State) Clone() *State {
	cp := *s
	cp.Steps = make([]StepState, len(s.Steps))
	copy(cp.Steps, s.Steps)
	return &cp
}
