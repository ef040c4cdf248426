package order

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when no order exists for an id.
var ErrNotFound = errors.New("order not found")

// Repository is the intake layer's order persistence. The orchestrator never
// touches it: it receives an order, mutates it, and the caller saves it back.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
}

// MemoryRepository stores orders in a mutex-guarded map. Orders are copied on
// both save and read so a saga mutating its order never races a concurrent
// GET handler.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]*Order
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]*Order)}
}

func (r *MemoryRepository) Save(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o.Clone()
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
