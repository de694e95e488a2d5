package store

import (
	"context"
	"errors"
	"testing"

	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_InMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns ErrNoCartRecord from both representations", func(t *testing.T) {
		s := NewInMemoryStore()

		_, err := s.ReadNamespaced(ctx, "nobody")
		assert.True(t, errors.Is(err, sferrors.ErrNoCartRecord))

		_, err = s.ReadLegacy(ctx, "nobody")
		assert.True(t, errors.Is(err, sferrors.ErrNoCartRecord))
	})

	t.Run("write then read round-trips both representations", func(t *testing.T) {
		s := NewInMemoryStore()
		state := cart.State{{ProductID: "detox-60", Quantity: 2}, {ProductID: "growth-100", Quantity: 1}}

		require.NoError(t, s.WriteBoth(ctx, "user-1", state))

		namespaced, err := s.ReadNamespaced(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, state, namespaced)

		legacy, err := s.ReadLegacy(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, state, legacy)
	})

	t.Run("returned state does not alias the stored copy", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.WriteBoth(ctx, "user-1", cart.State{{ProductID: "detox-60", Quantity: 2}}))

		first, err := s.ReadNamespaced(ctx, "user-1")
		require.NoError(t, err)
		first[0].Quantity = 42

		second, err := s.ReadNamespaced(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, int32(2), second[0].Quantity)
	})

	t.Run("empty write reads back empty, not as a miss", func(t *testing.T) {
		s := NewInMemoryStore()
		require.NoError(t, s.WriteBoth(ctx, "user-1", cart.State{}))

		state, err := s.ReadNamespaced(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, state)
	})
}
