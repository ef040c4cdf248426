package coordinator

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/shopsphere/order-saga/internal/order"
	"github.com/shopsphere/order-saga/internal/saga"
)

// verifyUser checks that the order's user exists and is active.
func (o *Orchestrator) verifyUser(ctx context.Context, st *saga.State, ord *order.Order) error {
	u, err := o.users.GetUser(ctx, ord.UserID)
	switch {
	case errors.Is(err, ErrNotFound):
		return errors.New("User not found")
	case isTimeout(err):
		return errors.New("User service timeout")
	case err != nil:
		return errors.New("User service error")
	}
	if !u.IsActive {
		return errors.New("User is not active")
	}
	return nil
}

// checkProducts fetches authoritative name, price and stock for every line
// item, sequentially and in item order so the first failing item by array
// order is the one reported. On success it replaces the order's items with
// the server-confirmed details and recomputes all totals; the pricing
// computed here is what processPayment later charges.
func (o *Orchestrator) checkProducts(ctx context.Context, st *saga.State, ord *order.Order) error {
	items := make([]order.Item, 0, len(ord.Items))
	for _, it := range ord.Items {
		p, err := o.products.GetProduct(ctx, it.ProductID)
		switch {
		case errors.Is(err, ErrNotFound):
			return fmt.Errorf("Product %s not found", it.ProductID)
		case isTimeout(err):
			return errors.New("Product service timeout")
		case err != nil:
			return errors.New("Product service error")
		}
		if p.Stock < it.Quantity {
			return fmt.Errorf("Insufficient stock for %s", p.Name)
		}
		items = append(items, order.Item{
			ProductID:   it.ProductID,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
		})
	}
	ord.SetItems(items)
	return nil
}

// reserveInventory asks the inventory collaborator to hold stock for the
// order. Real stock mutation lives in the inventory service; the step only
// records the reservation.
func (o *Orchestrator) reserveInventory(ctx context.Context, st *saga.State, ord *order.Order) error {
	items := make([]Reservation, len(ord.Items))
	for i, it := range ord.Items {
		items[i] = Reservation{ProductID: it.ProductID, Quantity: it.Quantity, Warehouse: "main"}
	}
	return o.inventory.Reserve(ctx, ord.ID, items)
}

func (o *Orchestrator) releaseInventory(ctx context.Context, ord *order.Order) error {
	return o.inventory.Release(ctx, ord.ID)
}

// processPayment charges the order's total. The client's response is taken
// at face value: any error is terminal for the step and triggers
// compensation, never a retry.
func (o *Orchestrator) processPayment(ctx context.Context, st *saga.State, ord *order.Order) error {
	return o.payments.Charge(ctx, ord.ID, ord.Total)
}

func (o *Orchestrator) refundPayment(ctx context.Context, ord *order.Order) error {
	return o.payments.Refund(ctx, ord.ID)
}

// confirmOrder is the final, purely local step.
func (o *Orchestrator) confirmOrder(ctx context.Context, st *saga.State, ord *order.Order) error {
	ord.Confirm()
	return nil
}

// isTimeout reports whether err is a transport timeout: an exceeded context
// deadline or a net error that timed out.
func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
