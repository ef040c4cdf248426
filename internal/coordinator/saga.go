// Package coordinator implements the order saga orchestrator.
//
// One saga runs as a single sequential control flow: five fixed steps, each
// executed only if the prior one succeeded. On the first failure the
// orchestrator halts forward progress, compensates completed steps in reverse
// execution order, and cancels the order. There is no retry and no parallel
// step execution; remote calls are the only suspension points.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/shopsphere/order-saga/internal/coordinator/sagalog"
	"github.com/shopsphere/order-saga/internal/order"
	"github.com/shopsphere/order-saga/internal/saga"
)

// stepDef binds a step kind to its executor and compensator at compile time.
// A nil compensate means the step has no external effect to undo.
type stepDef struct {
	step       saga.Step
	run        func(ctx context.Context, st *saga.State, ord *order.Order) error
	compensate func(ctx context.Context, ord *order.Order) error
}

// Orchestrator sequences the order saga across the collaborator services.
type Orchestrator struct {
	users     UserClient
	products  ProductClient
	inventory InventoryClient
	payments  PaymentClient

	store Store
	log   sagalog.Repository // nil-safe: audit logging skipped if nil

	tracer oteltrace.Tracer
}

// Store is the saga state store the orchestrator publishes progress to.
type Store = saga.Store

// New constructs an Orchestrator. store and log may be nil; progress
// publishing and audit logging are then skipped.
func New(users UserClient, products ProductClient, inventory InventoryClient, payments PaymentClient, store Store, log sagalog.Repository) *Orchestrator {
	return &Orchestrator{
		users:     users,
		products:  products,
		inventory: inventory,
		payments:  payments,
		store:     store,
		log:       log,
		tracer:    otel.Tracer("coordinator"),
	}
}

// steps is the fixed execution order. Compensation never walks this table
// directly; it walks the steps the saga actually recorded, in reverse.
func (o *Orchestrator) steps() []stepDef {
	return []stepDef{
		{saga.StepVerifyUser, o.verifyUser, nil},
		{saga.StepCheckProducts, o.checkProducts, nil},
		{saga.StepReserveInventory, o.reserveInventory, o.releaseInventory},
		{saga.StepProcessPayment, o.processPayment, o.refundPayment},
		{saga.StepConfirmOrder, o.confirmOrder, nil},
	}
}

// Execute runs the complete saga for one order to completion or compensated
// failure. It returns (true, nil) when every step succeeded and the order is
// confirmed, or (false, err) with the failing step's error after compensation
// cancelled the order. The order is mutated in place; persisting it back is
// the caller's responsibility.
func (o *Orchestrator) Execute(ctx context.Context, ord *order.Order) (bool, error) {
	st := saga.NewState("saga-"+uuid.NewString(), ord.ID)

	ctx, span := o.tracer.Start(ctx, "saga.execute",
		oteltrace.WithAttributes(
			attribute.String("saga.id", st.SagaID),
			attribute.String("order.id", ord.ID),
		))
	defer span.End()

	ord.SagaID = st.SagaID
	ord.SagaStatus = saga.StatusInProgress

	slog.InfoContext(ctx, "saga started", "saga_id", st.SagaID, "order_id", ord.ID)
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusStarted, "", "")

	for _, def := range o.steps() {
		if err := o.runStep(ctx, def, st, ord); err != nil {
			o.compensate(ctx, st, ord)
			return false, errors.New(st.ErrorMessage)
		}
	}

	st.MarkCompleted()
	ord.SagaStatus = saga.StatusCompleted
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusCompleted, "", "")
	slog.InfoContext(ctx, "saga completed", "saga_id", st.SagaID, "order_id", ord.ID, "total", ord.Total)
	return true, nil
}

// runStep marks the step started, invokes its executor, and records the
// outcome. A panic inside an executor is recovered and treated exactly like
// an explicit step failure.
func (o *Orchestrator) runStep(ctx context.Context, def stepDef, st *saga.State, ord *order.Order) (err error) {
	ctx, span := o.tracer.Start(ctx, "saga.step."+string(def.step))
	defer span.End()

	st.MarkStepStarted(def.step)
	o.publish(ctx, st)
	slog.InfoContext(ctx, "step started", "saga_id", st.SagaID, "step", def.step)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
			o.failStep(ctx, st, def.step, err.Error())
		}
	}()

	if err = def.run(ctx, st, ord); err != nil {
		o.failStep(ctx, st, def.step, err.Error())
		return err
	}

	st.MarkStepCompleted(def.step)
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusStepCompleted, def.step, "")
	slog.InfoContext(ctx, "step completed", "saga_id", st.SagaID, "step", def.step)
	return nil
}

func (o *Orchestrator) failStep(ctx context.Context, st *saga.State, step saga.Step, errMsg string) {
	st.MarkStepFailed(step, errMsg)
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusStepFailed, step, errMsg)
	slog.WarnContext(ctx, "step failed", "saga_id", st.SagaID, "step", step, "error", errMsg)
}

// compensate undoes completed steps in reverse execution order, then cancels
// the order. It is idempotent: steps already compensated are skipped, so a
// second invocation never double-invokes a release or refund. Compensation
// failures are logged and do not block cancelling the order.
func (o *Orchestrator) compensate(ctx context.Context, st *saga.State, ord *order.Order) {
	st.Status = saga.StatusCompensating
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusCompensating, st.CurrentStep, st.ErrorMessage)
	slog.WarnContext(ctx, "saga failed, compensating", "saga_id", st.SagaID, "error", st.ErrorMessage)

	compensators := make(map[saga.Step]func(context.Context, *order.Order) error, 5)
	for _, def := range o.steps() {
		compensators[def.step] = def.compensate
	}

	for i := len(st.Steps) - 1; i >= 0; i-- {
		ss := &st.Steps[i]
		if ss.Status != saga.StepStatusCompleted || ss.CompensationPerformed {
			continue
		}
		if undo := compensators[ss.Step]; undo != nil {
			if err := undo(ctx, ord); err != nil {
				// Best effort: a failed release/refund must not keep the
				// order from being cancelled.
				slog.ErrorContext(ctx, "compensation failed", "saga_id", st.SagaID, "step", ss.Step, "error", err)
			}
		}
		ss.Status = saga.StepStatusCompensated
		ss.CompensationPerformed = true
		slog.InfoContext(ctx, "step compensated", "saga_id", st.SagaID, "step", ss.Step)
	}

	ord.Cancel(st.ErrorMessage)
	ord.SagaStatus = saga.StatusCompensated
	st.Status = saga.StatusCompensated
	o.publish(ctx, st)
	o.audit(ctx, st, sagalog.StatusCompensated, "", st.ErrorMessage)
	slog.InfoContext(ctx, "compensation completed", "saga_id", st.SagaID, "order_id", ord.ID)
}

// publish snapshots the saga state into the store for status polling.
func (o *Orchestrator) publish(ctx context.Context, st *saga.State) {
	if o.store == nil {
		return
	}
	if err := o.store.Put(ctx, st); err != nil {
		slog.WarnContext(ctx, "saga store put failed", "saga_id", st.SagaID, "error", err)
	}
}

// audit appends a row to the durable saga log.
func (o *Orchestrator) audit(ctx context.Context, st *saga.State, status sagalog.Status, step saga.Step, errMsg string) {
	if o.log == nil {
		return
	}
	entry := sagalog.NewEntry(ctx, st.SagaID, st.OrderID, status, string(step), errMsg)
	if err := o.log.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "saga log save failed", "saga_id", st.SagaID, "error", err)
	}
}
