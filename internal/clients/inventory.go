package clients

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopsphere/order-saga/internal/coordinator"
)

// SimulatedInventoryClient stands in for the inventory service. Reservations
// are tracked per order id: reserving moves stock from available to reserved,
// releasing is the inverse. Both are idempotent-safe for the same order, and
// reservation always succeeds; real stock admission control lives in the
// inventory service itself, not in the saga.
type SimulatedInventoryClient struct {
	mu           sync.Mutex
	available    map[string]int
	reserved     map[string]int
	reservations map[string][]coordinator.Reservation
}

// NewSimulatedInventoryClient builds an empty simulated inventory.
func NewSimulatedInventoryClient() *SimulatedInventoryClient {
	return &SimulatedInventoryClient{
		available:    make(map[string]int),
		reserved:     make(map[string]int),
		reservations: make(map[string][]coordinator.Reservation),
	}
}

// SetStock seeds available stock for a product.
func (c *SimulatedInventoryClient) SetStock(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available[productID] = quantity
}

// Reserve holds stock for an order. Calling it again for the same order is a
// no-op.
func (c *SimulatedInventoryClient) Reserve(ctx context.Context, orderID string, items []coordinator.Reservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.reservations[orderID]; exists {
		return nil
	}

	for _, it := range items {
		c.available[it.ProductID] -= it.Quantity
		c.reserved[it.ProductID] += it.Quantity
	}
	c.reservations[orderID] = items
	slog.DebugContext(ctx, "inventory reserved", "order_id", orderID, "items", len(items))
	return nil
}

// Release undoes an order's reservation. Releasing an unknown or already
// released order is a no-op.
func (c *SimulatedInventoryClient) Release(ctx context.Context, orderID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, exists := c.reservations[orderID]
	if !exists {
		return nil
	}

	for _, it := range items {
		c.available[it.ProductID] += it.Quantity
		c.reserved[it.ProductID] -= it.Quantity
	}
	delete(c.reservations, orderID)
	slog.DebugContext(ctx, "inventory released", "order_id", orderID)
	return nil
}

// Reserved reports the currently reserved quantity for a product.
func (c *SimulatedInventoryClient) Reserved(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reserved[productID]
}

// HasReservation reports whether an order currently holds a reservation.
func (c *SimulatedInventoryClient) HasReservation(orderID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.reservations[orderID]
	return ok
}
