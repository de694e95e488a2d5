package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Subscriber receives a copy of the cart state after every successful
// mutation. Delivery is fire-and-forget: no ordering or late-attach
// guarantees.
type Subscriber func(userID string, state State)

// ProductLookup resolves a product ID against the catalog. It exists so the
// service can validate AddLine input without binding tests to the full
// catalog.
type ProductLookup func(productID string) error

// Service is the single authoritative owner of cart state. Persisted copies
// (namespaced record, legacy flat record, remote mirror) are caches of the
// in-memory state, reconciled on load and rewritten on every mutation.
type Service struct {
	local  LocalStore
	mirror Mirror
	lookup ProductLookup
	logger *slog.Logger

	mu     sync.Mutex
	states map[string]State

	subMu   sync.RWMutex
	subs    map[int]Subscriber
	nextSub int

	mutations metric.Int64Counter
}

// NewService creates a cart Service over the given local store and remote
// mirror. The mirror may be nil; the service then runs local-only.
func NewService(local LocalStore, mirror Mirror, lookup ProductLookup, logger *slog.Logger) *Service {
	meter := otel.Meter("storefront-cart")
	mutations, err := meter.Int64Counter("cart_mutations", metric.WithDescription("Total number of cart mutations"))
	if err != nil {
		panic(fmt.Sprintf("failed to create cart_mutations counter: %v", err))
	}
	return &Service{
		local:     local,
		mirror:    mirror,
		lookup:    lookup,
		logger:    logger.With("component", "cart"),
		states:    make(map[string]State),
		subs:      make(map[int]Subscriber),
		mutations: mutations,
	}
}

// Subscribe registers fn for cart-changed notifications and returns an
// unsubscribe function.
func (s *Service) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Load reconciles the cart from the prioritized source chain and adopts the
// first source that answers: remote mirror, namespaced local record, legacy
// flat record, empty cart. Sources are never merged with each other; a
// successfully fetched mirror document is written back into both local
// representations. An explicit Load always wins over the cached in-memory
// state.
func (s *Service) Load(ctx context.Context, userID string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.loadFromSources(ctx, userID)
	s.states[userID] = state
	return clone(state), nil
}

// AddLine adds quantity of a product to the cart, merging into an existing
// line. Quantities saturate into [MinQuantity, MaxQuantity]. Unknown products
// are rejected with ErrProductNotFound.
func (s *Service) AddLine(ctx context.Context, userID, productID string, quantity int32) (State, error) {
	if err := s.lookup(productID); err != nil {
		return nil, fmt.Errorf("product %q: %w", productID, err)
	}
	state, err := s.mutate(ctx, userID, func(state State) (State, error) {
		for i := range state {
			if state[i].ProductID == productID {
				sum := int64(state[i].Quantity) + int64(clamp(quantity))
				if sum > int64(MaxQuantity) {
					sum = int64(MaxQuantity)
				}
				state[i].Quantity = int32(sum)
				return state, nil
			}
		}
		return append(state, Line{ProductID: productID, Quantity: clamp(quantity)}), nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, state)
	return state, nil
}

// SetQuantity replaces the quantity of an existing line. Quantities above
// MaxQuantity clamp; quantities below MinQuantity are rejected as a no-op,
// since removal is a distinct explicit operation.
func (s *Service) SetQuantity(ctx context.Context, userID, productID string, quantity int32) (State, error) {
	if quantity < MinQuantity {
		s.mu.Lock()
		defer s.mu.Unlock()
		return clone(s.current(ctx, userID)), nil
	}
	state, err := s.mutate(ctx, userID, func(state State) (State, error) {
		for i := range state {
			if state[i].ProductID == productID {
				state[i].Quantity = clamp(quantity)
				return state, nil
			}
		}
		return nil, fmt.Errorf("product %q: %w", productID, sferrors.ErrLineNotFound)
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, state)
	return state, nil
}

// RemoveLine deletes the line for a product. Removing an absent line is a
// no-op, not an error.
func (s *Service) RemoveLine(ctx context.Context, userID, productID string) (State, error) {
	state, err := s.mutate(ctx, userID, func(state State) (State, error) {
		for i := range state {
			if state[i].ProductID == productID {
				return append(state[:i], state[i+1:]...), nil
			}
		}
		return state, nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, state)
	return state, nil
}

// Clear empties the cart and persists the empty state to every
// representation, so a stale copy cannot reappear on the next load.
func (s *Service) Clear(ctx context.Context, userID string) (State, error) {
	state, err := s.mutate(ctx, userID, func(State) (State, error) {
		return State{}, nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(userID, state)
	return state, nil
}

// mutate applies fn to the current state under the mutation lock and
// persists the result before returning. Mutations for one Service are
// serialized in call order.
func (s *Service) mutate(ctx context.Context, userID string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := fn(clone(s.current(ctx, userID)))
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, userID, state); err != nil {
		return nil, err
	}
	s.states[userID] = state
	s.mutations.Add(ctx, 1)
	return clone(state), nil
}

// current returns the cached in-memory state, reconciling from the source
// chain on first touch. Caller must hold s.mu.
func (s *Service) current(ctx context.Context, userID string) State {
	if state, ok := s.states[userID]; ok {
		return state
	}
	state := s.loadFromSources(ctx, userID)
	s.states[userID] = state
	return state
}

// loadFromSources walks the prioritized source chain with short-circuit.
// Source failures fall through to the next source; corruption degrades to a
// miss, never to an error. Caller must hold s.mu.
func (s *Service) loadFromSources(ctx context.Context, userID string) State {
	if s.mirror != nil {
		state, err := s.mirror.Fetch(ctx, userID)
		if err == nil {
			state = Normalize(state)
			if werr := s.local.WriteBoth(ctx, userID, state); werr != nil {
				s.logger.WarnContext(ctx, "Failed to write back mirror cart locally", "user_id", userID, "error", werr)
			}
			return state
		}
		if !errors.Is(err, sferrors.ErrNoCartRecord) {
			s.logger.WarnContext(ctx, "Cart mirror fetch failed, falling back to local records", "user_id", userID, "error", err)
		}
	}

	state, err := s.local.ReadNamespaced(ctx, userID)
	if err == nil {
		return Normalize(state)
	}
	if !errors.Is(err, sferrors.ErrNoCartRecord) {
		s.logger.WarnContext(ctx, "Namespaced cart record unreadable, falling back to legacy record", "user_id", userID, "error", err)
	}

	state, err = s.local.ReadLegacy(ctx, userID)
	if err == nil {
		return Normalize(state)
	}
	if !errors.Is(err, sferrors.ErrNoCartRecord) {
		s.logger.WarnContext(ctx, "Legacy cart record unreadable, starting empty", "user_id", userID, "error", err)
	}
	return State{}
}

// persist writes the state through to both local representations, then
// best-effort to the remote mirror. A mirror failure is logged and
// swallowed: local persistence is never blocked by remote unavailability.
func (s *Service) persist(ctx context.Context, userID string, state State) error {
	if err := s.local.WriteBoth(ctx, userID, state); err != nil {
		return fmt.Errorf("%w: %w", sferrors.ErrFailedToPersistCart, err)
	}
	if s.mirror != nil {
		if err := s.mirror.Write(ctx, userID, state); err != nil {
			s.logger.WarnContext(ctx, "Best-effort cart mirror write failed", "user_id", userID, "error", err)
		}
	}
	return nil
}

// notify broadcasts the cart-changed event to all subscribers.
func (s *Service) notify(userID string, state State) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn(userID, clone(state))
	}
}
