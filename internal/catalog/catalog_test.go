package catalog

import (
	"errors"
	"testing"

	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lookup(t *testing.T) {
	testCases := []struct {
		name        string
		productID   string
		expectedErr error
	}{
		{name: "known product", productID: "detox-60"},
		{name: "another known product", productID: "bundle-trio"},
		{name: "unknown product", productID: "sheen-500", expectedErr: sferrors.ErrProductNotFound},
		{name: "empty id", productID: "", expectedErr: sferrors.ErrProductNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Lookup(tc.productID)
			if tc.expectedErr != nil {
				assert.Nil(t, p)
				assert.True(t, errors.Is(err, tc.expectedErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.productID, p.ID)
			assert.Equal(t, Currency, p.Currency)
			assert.Positive(t, p.UnitPrice)
		})
	}
}

func Test_All_StableOrder(t *testing.T) {
	first := All()
	second := All()
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
	// every listed product resolves through Lookup
	for _, p := range first {
		found, err := Lookup(p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, *found)
	}
}
