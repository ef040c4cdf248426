package coordinator

import (
	"context"
	"errors"
)

// ErrNotFound signals a 404-equivalent from a collaborator lookup. Clients
// must return it (possibly wrapped) so steps can distinguish "does not exist"
// from transport faults.
var ErrNotFound = errors.New("not found")

// User is the collaborator's view of an account.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Product is the collaborator's authoritative catalog entry.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Reservation is one stock reservation line.
type Reservation struct {
	ProductID string
	Quantity  int
	Warehouse string
}

// UserClient looks up users in the user service.
type UserClient interface {
	GetUser(ctx context.Context, id string) (User, error)
}

// ProductClient looks up products in the product service.
type ProductClient interface {
	GetProduct(ctx context.Context, id string) (Product, error)
}

// InventoryClient reserves and releases stock. Both operations must be
// idempotent-safe for the same order id.
type InventoryClient interface {
	Reserve(ctx context.Context, orderID string, items []Reservation) error
	Release(ctx context.Context, orderID string) error
}

// PaymentClient charges and refunds an order. Refund must be idempotent-safe
// for the same order id.
type PaymentClient interface {
	Charge(ctx context.Context, orderID string, amount float64) error
	Refund(ctx context.Context, orderID string) error
}
