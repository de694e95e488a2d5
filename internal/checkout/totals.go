// Package checkout derives order totals from cart state and places orders.
package checkout

import (
	"fmt"

	"github.com/luxecurl/storefront/internal/cart"
	"github.com/luxecurl/storefront/internal/catalog"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
)

// FreeShippingThreshold is the subtotal (in kobo) at or above which shipping
// is free. The rule is inclusive: subtotal >= threshold waives the fee.
const FreeShippingThreshold int64 = 50_000

// shippingCosts is the fixed method-to-cost table, in kobo.
var shippingCosts = map[string]int64{
	"standard": 5_000,
	"express":  12_000,
	"pickup":   0,
}

// ShippingMethods lists the accepted shipping method names.
func ShippingMethods() []string {
	return []string{"standard", "express", "pickup"}
}

// ComputeTotals derives the money breakdown for a cart and shipping method.
// Pure and deterministic: the same cart and method always produce the same
// totals, and GrandTotal is exactly Subtotal + Shipping. Lines whose product
// no longer resolves in the catalog contribute zero instead of failing the
// whole computation. Unknown shipping methods are rejected.
func ComputeTotals(state cart.State, method string) (orders.Totals, error) {
	cost, ok := shippingCosts[method]
	if !ok {
		return orders.Totals{}, fmt.Errorf("%q: %w", method, sferrors.ErrUnknownShippingMethod)
	}

	var subtotal int64
	for _, line := range state {
		p, err := catalog.Lookup(line.ProductID)
		if err != nil {
			continue
		}
		subtotal += p.UnitPrice * int64(line.Quantity)
	}

	shipping := cost
	if subtotal >= FreeShippingThreshold {
		shipping = 0
	}

	return orders.Totals{
		Subtotal:   subtotal,
		Shipping:   shipping,
		GrandTotal: subtotal + shipping,
	}, nil
}
