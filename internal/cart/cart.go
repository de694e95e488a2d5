// Package cart owns the authoritative in-memory shopping cart and its
// reconciliation against the persisted representations.
package cart

import (
	"context"
)

// Quantity bounds for a single cart line. Out-of-range input saturates,
// it never errors.
const (
	MinQuantity int32 = 1
	MaxQuantity int32 = 99
)

// Line is one product-quantity pair within a cart.
type Line struct {
	ProductID string `json:"product_id" firestore:"product_id"`
	Quantity  int32  `json:"quantity" firestore:"quantity"`
}

// State is an ordered sequence of lines; at most one line per product,
// quantities within [MinQuantity, MaxQuantity].
type State []Line

// LocalStore persists the cart in both local representations: the namespaced
// record keyed by user ID and the legacy flat projection of product-quantity
// pairs. Reads return ErrNoCartRecord on a miss.
type LocalStore interface {
	// ReadNamespaced retrieves the namespaced cart record for a user.
	ReadNamespaced(ctx context.Context, userID string) (State, error)

	// ReadLegacy retrieves the legacy flat cart record for a user.
	ReadLegacy(ctx context.Context, userID string) (State, error)

	// WriteBoth replaces both local representations atomically.
	WriteBoth(ctx context.Context, userID string, state State) error
}

// Mirror is the remote document-store copy of the cart. Writes are
// best-effort; Fetch returns ErrNoCartRecord when no document exists.
type Mirror interface {
	Fetch(ctx context.Context, userID string) (State, error)
	Write(ctx context.Context, userID string, state State) error
}

// clamp saturates q into the [MinQuantity, MaxQuantity] interval.
func clamp(q int32) int32 {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// Normalize merges duplicate product lines by summing quantities (saturating
// at MaxQuantity), clamps every quantity into bounds and drops lines with a
// non-positive quantity or empty product ID. First-seen line order is kept.
func Normalize(s State) State {
	out := make(State, 0, len(s))
	index := make(map[string]int, len(s))
	for _, line := range s {
		if line.ProductID == "" || line.Quantity < 1 {
			continue
		}
		if i, ok := index[line.ProductID]; ok {
			sum := int64(out[i].Quantity) + int64(line.Quantity)
			if sum > int64(MaxQuantity) {
				sum = int64(MaxQuantity)
			}
			out[i].Quantity = int32(sum)
			continue
		}
		index[line.ProductID] = len(out)
		out = append(out, Line{ProductID: line.ProductID, Quantity: clamp(line.Quantity)})
	}
	return out
}

// clone returns a copy the caller may hold without aliasing internal state.
func clone(s State) State {
	out := make(State, len(s))
	copy(out, s)
	return out
}
