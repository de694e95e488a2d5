package store

import (
	"context"
	"sync"

	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
)

// inMemory implements cart.LocalStore using maps. It keeps the two
// representations separately, like the durable store does, so reconciliation
// paths can be exercised without a database.
type inMemory struct {
	mu         sync.RWMutex
	namespaced map[string]cart.State
	legacy     map[string]cart.State
}

// NewInMemoryStore creates a new in-memory cart.LocalStore.
func NewInMemoryStore() cart.LocalStore {
	return &inMemory{
		namespaced: make(map[string]cart.State),
		legacy:     make(map[string]cart.State),
	}
}

func (s *inMemory) ReadNamespaced(_ context.Context, userID string) (cart.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.namespaced[userID]
	if !ok {
		return nil, sferrors.ErrNoCartRecord
	}
	return append(cart.State(nil), state...), nil
}

func (s *inMemory) ReadLegacy(_ context.Context, userID string) (cart.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.legacy[userID]
	if !ok {
		return nil, sferrors.ErrNoCartRecord
	}
	return append(cart.State(nil), state...), nil
}

func (s *inMemory) WriteBoth(_ context.Context, userID string, state cart.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.namespaced[userID] = append(cart.State(nil), state...)
	s.legacy[userID] = append(cart.State(nil), state...)
	return nil
}
