package clients

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
)

// ErrPaymentDeclined is the business rejection a declined charge reports.
var ErrPaymentDeclined = errors.New("Payment declined")

// SimulatedPaymentClient stands in for the payment service. Charges succeed
// with a configurable probability so the failure and compensation paths can
// be exercised; the orchestrator treats the response as a deterministic
// collaborator answer either way.
type SimulatedPaymentClient struct {
	mu          sync.Mutex
	charges     map[string]float64
	refunded    map[string]bool
	successRate float64
	rng         *rand.Rand
}

// NewSimulatedPaymentClient builds a client whose charges succeed with the
// given probability. Rate 1 or 0 makes it fully deterministic.
func NewSimulatedPaymentClient(successRate float64) *SimulatedPaymentClient {
	return &SimulatedPaymentClient{
		charges:     make(map[string]float64),
		refunded:    make(map[string]bool),
		successRate: successRate,
	}
}

// WithRand sets a seeded RNG for reproducible decline sequences.
func (c *SimulatedPaymentClient) WithRand(rng *rand.Rand) *SimulatedPaymentClient {
	c.rng = rng
	return c
}

// Charge records a payment for the order or declines it.
func (c *SimulatedPaymentClient) Charge(ctx context.Context, orderID string, amount float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.roll() >= c.successRate {
		slog.DebugContext(ctx, "payment declined", "order_id", orderID, "amount", amount)
		return ErrPaymentDeclined
	}

	c.charges[orderID] = amount
	slog.DebugContext(ctx, "payment charged", "order_id", orderID, "amount", amount)
	return nil
}

// Refund reverses an order's charge. Refunding an order that was never
// charged, or one already refunded, is a no-op.
func (c *SimulatedPaymentClient) Refund(ctx context.Context, orderID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	amount, charged := c.charges[orderID]
	if !charged || c.refunded[orderID] {
		return nil
	}

	c.refunded[orderID] = true
	delete(c.charges, orderID)
	slog.DebugContext(ctx, "payment refunded", "order_id", orderID, "amount", amount)
	return nil
}

// WasCharged reports whether the order currently holds a charge.
func (c *SimulatedPaymentClient) WasCharged(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.charges[orderID]
	return ok
}

// RefundCount reports how many refunds have been performed in total.
func (c *SimulatedPaymentClient) RefundCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, done := range c.refunded {
		if done {
			n++
		}
	}
	return n
}

func (c *SimulatedPaymentClient) roll() float64 {
	if c.rng != nil {
		return c.rng.Float64()
	}
	return rand.Float64()
}
