// Package catalog holds the fixed product catalog for the storefront.
package catalog

import (
	sferrors "github.com/luxecurl/storefront/internal/errors"
)

// Currency is the currency for all catalog prices. Prices are stored in the
// smallest unit of the currency (kobo).
const Currency = "NGN"

// Product is an immutable catalog entry.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Currency   string `json:"currency"`
	ImageRef   string `json:"image_ref"`
	ImageCount int    `json:"image_count"`
}

// products maps product ID to its catalog entry. The catalog is static:
// entries are seeded at build time and never mutated at runtime.
var products = map[string]Product{
	"detox-60": {
		ID:         "detox-60",
		Name:       "Scalp Detox Treatment 60ml",
		UnitPrice:  26_000,
		Currency:   Currency,
		ImageRef:   "detox-60",
		ImageCount: 3,
	},
	"growth-100": {
		ID:         "growth-100",
		Name:       "Growth Serum 100ml",
		UnitPrice:  32_000,
		Currency:   Currency,
		ImageRef:   "growth-100",
		ImageCount: 3,
	},
	"repair-75": {
		ID:         "repair-75",
		Name:       "Bond Repair Masque 75ml",
		UnitPrice:  21_500,
		Currency:   Currency,
		ImageRef:   "repair-75",
		ImageCount: 2,
	},
	"silk-120": {
		ID:         "silk-120",
		Name:       "Silk Press Creme 120ml",
		UnitPrice:  18_000,
		Currency:   Currency,
		ImageRef:   "silk-120",
		ImageCount: 2,
	},
	"butter-250": {
		ID:         "butter-250",
		Name:       "Whipped Hair Butter 250ml",
		UnitPrice:  14_500,
		Currency:   Currency,
		ImageRef:   "butter-250",
		ImageCount: 2,
	},
	"bundle-trio": {
		ID:         "bundle-trio",
		Name:       "Wash Day Trio Bundle",
		UnitPrice:  58_000,
		Currency:   Currency,
		ImageRef:   "bundle-trio",
		ImageCount: 1,
	},
}

// ordered keeps the display order for listings stable across calls.
var ordered = []string{
	"detox-60", "growth-100", "repair-75", "silk-120", "butter-250", "bundle-trio",
}

// Lookup retrieves a catalog entry by product ID.
// Returns ErrProductNotFound for unknown identifiers; callers are expected to
// degrade defensively (placeholder label, zero price) rather than fail.
func Lookup(id string) (*Product, error) {
	p, ok := products[id]
	if !ok {
		return nil, sferrors.ErrProductNotFound
	}
	return &p, nil
}

// All returns every catalog entry in display order.
func All() []Product {
	list := make([]Product, 0, len(ordered))
	for _, id := range ordered {
		list = append(list, products[id])
	}
	return list
}
