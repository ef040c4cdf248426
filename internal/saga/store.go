package saga

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Store when no state exists for a saga id.
var ErrNotFound = errors.New("saga not found")

// Store exposes saga state by id so other requests can poll progress while a
// saga runs. Implementations must do their own synchronization; the
// orchestration logic itself never shares a State between goroutines.
//
// The in-process implementation below matches the reference design. A durable
// backing can be substituted without touching orchestration code.
type Store interface {
	Put(ctx context.Context, state *State) error
	Get(ctx context.Context, sagaID string) (*State, error)
}

// MemoryStore keeps saga states in a mutex-guarded map. Put snapshots the
// state so concurrent readers never observe a half-written update.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]*State)}
}

func (m *MemoryStore) Put(ctx context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.SagaID] = state.Clone()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sagaID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[sagaID]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}
