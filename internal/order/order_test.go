package order

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/order-saga/internal/saga"
)

func TestSetItems_RecomputesTotals(t *testing.T) {
	o := New("user-1", nil, ShippingAddress{}, "")
	o.SetItems([]Item{
		{ProductID: "p1", ProductName: "Widget", Quantity: 2, UnitPrice: 10.0},
		{ProductID: "p2", ProductName: "Gadget", Quantity: 1, UnitPrice: 50.0},
	})

	assert.InDelta(t, 20.0, o.Items[0].Subtotal, 1e-9)
	assert.InDelta(t, 50.0, o.Items[1].Subtotal, 1e-9)
	assert.InDelta(t, 70.0, o.Subtotal, 1e-9)
	assert.InDelta(t, 5.60, o.Tax, 1e-9)
	assert.InDelta(t, 10.0, o.ShippingCost, 1e-9)
	assert.InDelta(t, 85.60, o.Total, 1e-9)
	assert.InDelta(t, o.Subtotal+o.Tax+o.ShippingCost, o.Total, 1e-9)
}

func TestSetItems_ShippingThreshold(t *testing.T) {
	tests := []struct {
		name         string
		unitPrice    float64
		wantShipping float64
	}{
		{"just under threshold", 99.99, 10.0},
		{"exactly at threshold", 100.00, 0.0},
		{"above threshold", 150.00, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New("user-1", nil, ShippingAddress{}, "")
			o.SetItems([]Item{{ProductID: "p1", Quantity: 1, UnitPrice: tt.unitPrice}})
			assert.InDelta(t, tt.wantShipping, o.ShippingCost, 1e-9)
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	o := New("user-1", []Item{{ProductID: "p1", Quantity: 1}}, ShippingAddress{City: "Springfield"}, "gift wrap")

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "gift wrap", o.Notes)
	assert.Zero(t, o.Total)
	assert.False(t, o.CreatedAt.IsZero())

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), o.OrderNumber)
}

func TestConfirmAndCancel(t *testing.T) {
	o := New("user-1", nil, ShippingAddress{}, "")

	o.Confirm()
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, o.ConfirmedAt)

	o2 := New("user-1", nil, ShippingAddress{}, "")
	o2.Cancel("Payment declined")
	assert.Equal(t, StatusCancelled, o2.Status)
	assert.Equal(t, "Payment declined", o2.CancellationReason)
	require.NotNil(t, o2.CancelledAt)
}

func TestMemoryRepository_CopySemantics(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	o := New("user-1", []Item{{ProductID: "p1", Quantity: 1}}, ShippingAddress{}, "")
	o.SagaStatus = saga.StatusInProgress
	require.NoError(t, repo.Save(ctx, o))

	// Mutating the saved order must not change the stored copy.
	o.Status = StatusConfirmed

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)

	// Mutating a returned order must not change the stored copy either.
	got.Items[0].Quantity = 99
	again, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestMemoryRepository_GetUnknown(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ListByUser(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	a := New("user-1", nil, ShippingAddress{}, "")
	b := New("user-2", nil, ShippingAddress{}, "")
	c := New("user-1", nil, ShippingAddress{}, "")
	for _, o := range []*Order{a, b, c} {
		require.NoError(t, repo.Save(ctx, o))
	}

	list, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, o := range list {
		assert.Equal(t, "user-1", o.UserID)
	}
}
