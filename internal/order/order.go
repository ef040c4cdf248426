// Package order defines the order entity and its in-memory repository.
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopsphere/order-saga/internal/saga"
)

// Pricing policy. Fixed, not configurable per order.
const (
	taxRate           = 0.08
	shippingFlatRate  = 10.0
	freeShippingAbove = 100.0 // subtotal >= 100 ships free
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Item is one line item. Subtotal is derived from quantity and unit price.
type Item struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

// ShippingAddress is where the order ships.
type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

// Order is a purchase request. It is created by the intake layer with PENDING
// status and owned exclusively by the saga orchestrator while the saga runs;
// the intake layer persists the mutated order afterwards.
type Order struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      string `json:"user_id"`

	Items []Item `json:"items"`

	// Monetary totals are derived, never set independently.
	// Invariant: Total = Subtotal + Tax + ShippingCost.
	Subtotal     float64 `json:"subtotal"`
	Tax          float64 `json:"tax"`
	ShippingCost float64 `json:"shipping_cost"`
	Total        float64 `json:"total"`

	ShippingAddress ShippingAddress `json:"shipping_address"`

	Status Status `json:"status"`

	SagaID     string      `json:"saga_id,omitempty"`
	SagaStatus saga.Status `json:"saga_status,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Notes              string `json:"notes,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

// New creates a PENDING order for the given user and requested items. Pricing
// is left at zero: authoritative names and prices are filled in by the saga's
// product check.
func New(userID string, items []Item, addr ShippingAddress, notes string) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		OrderNumber:     NewOrderNumber(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		Status:          StatusPending,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return o
}

// NewOrderNumber generates a human-readable order number,
// e.g. ORD-20260831-1A2B3C4D.
func NewOrderNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), raw[:8])
}

// SetItems replaces the line items and recomputes all derived totals:
// per-item subtotals, order subtotal, 8% tax, flat shipping under the
// free-shipping threshold, and the grand total.
func (o *Order) SetItems(items []Item) {
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice * float64(items[i].Quantity)
	}
	o.Items = items

	subtotal := 0.0
	for _, it := range o.Items {
		subtotal += it.Subtotal
	}
	o.Subtotal = subtotal
	o.Tax = subtotal * taxRate
	if subtotal < freeShippingAbove {
		o.ShippingCost = shippingFlatRate
	} else {
		o.ShippingCost = 0.0
	}
	o.Total = o.Subtotal + o.Tax + o.ShippingCost
	o.UpdatedAt = time.Now().UTC()
}

// Confirm marks the order confirmed and stamps the confirmation time.
func (o *Order) Confirm() {
	now := time.Now().UTC()
	o.Status = StatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
}

// Cancel marks the order cancelled with the given reason.
func (o *Order) Cancel(reason string) {
	now := time.Now().UTC()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancellationReason = reason
	o.UpdatedAt = now
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	cp := *o
	cp.Items = make([]Item, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}
