package checkout

import (
	"errors"
	"testing"

	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ComputeTotals(t *testing.T) {
	testCases := []struct {
		name    string
		state   cart.State
		method  string
		want    orders.Totals
		wantErr error
	}{
		{
			name:   "standard shipping below threshold",
			state:  cart.State{{ProductID: "detox-60", Quantity: 1}},
			method: "standard",
			want:   orders.Totals{Subtotal: 26_000, Shipping: 5_000, GrandTotal: 31_000},
		},
		{
			name:   "express shipping below threshold",
			state:  cart.State{{ProductID: "silk-120", Quantity: 1}},
			method: "express",
			want:   orders.Totals{Subtotal: 18_000, Shipping: 12_000, GrandTotal: 30_000},
		},
		{
			name:   "pickup is always free",
			state:  cart.State{{ProductID: "detox-60", Quantity: 1}},
			method: "pickup",
			want:   orders.Totals{Subtotal: 26_000, Shipping: 0, GrandTotal: 26_000},
		},
		{
			name:   "free shipping exactly at the threshold",
			state:  cart.State{{ProductID: "detox-60", Quantity: 2}},
			method: "standard",
			want:   orders.Totals{Subtotal: 52_000, Shipping: 0, GrandTotal: 52_000},
		},
		{
			name:   "free shipping above the threshold",
			state:  cart.State{{ProductID: "bundle-trio", Quantity: 1}},
			method: "express",
			want:   orders.Totals{Subtotal: 58_000, Shipping: 0, GrandTotal: 58_000},
		},
		{
			name: "unresolvable product contributes zero",
			state: cart.State{
				{ProductID: "detox-60", Quantity: 1},
				{ProductID: "discontinued", Quantity: 3},
			},
			method: "standard",
			want:   orders.Totals{Subtotal: 26_000, Shipping: 5_000, GrandTotal: 31_000},
		},
		{
			name:   "empty cart still totals",
			state:  cart.State{},
			method: "standard",
			want:   orders.Totals{Subtotal: 0, Shipping: 5_000, GrandTotal: 5_000},
		},
		{
			name:    "unknown shipping method",
			state:   cart.State{{ProductID: "detox-60", Quantity: 1}},
			method:  "drone",
			wantErr: sferrors.ErrUnknownShippingMethod,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeTotals(tc.state, tc.method)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got.Subtotal+got.Shipping, got.GrandTotal)
		})
	}
}

func Test_ComputeTotals_Deterministic(t *testing.T) {
	state := cart.State{{ProductID: "detox-60", Quantity: 1}, {ProductID: "silk-120", Quantity: 2}}

	first, err := ComputeTotals(state, "standard")
	require.NoError(t, err)
	second, err := ComputeTotals(state, "standard")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
