// Package orders reads and projects persisted orders. Orders are created at
// checkout and mutated only by the external fulfillment process updating
// their status; this package never changes an order after creation.
package orders

import (
	"time"

	"github.com/luxecurl/storefront/internal/cart"
)

// Status is the fulfillment state of an order. pending is initial; delivered
// and cancelled are terminal. Transitions are driven by the external
// fulfillment process.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Totals is the derived money breakdown of an order, in the currency's
// smallest unit. GrandTotal is always exactly Subtotal + Shipping.
type Totals struct {
	Subtotal   int64 `json:"subtotal" firestore:"subtotal"`
	Shipping   int64 `json:"shipping" firestore:"shipping"`
	GrandTotal int64 `json:"grand_total" firestore:"grand_total"`
}

// Customer holds the checkout contact and delivery details.
type Customer struct {
	FirstName string `json:"first_name" firestore:"first_name"`
	LastName  string `json:"last_name" firestore:"last_name"`
	Email     string `json:"email" firestore:"email"`
	Phone     string `json:"phone" firestore:"phone"`
	Address   string `json:"address" firestore:"address"`
	City      string `json:"city" firestore:"city"`
}

// Order is a persisted, immutable-once-created record.
type Order struct {
	ID             string      `json:"id" firestore:"id"`
	UserID         string      `json:"user_id" firestore:"user_id"`
	Reference      string      `json:"reference" firestore:"reference"`
	Items          []cart.Line `json:"items" firestore:"items"`
	Totals         Totals      `json:"totals" firestore:"totals"`
	Status         Status      `json:"status" firestore:"status"`
	Customer       Customer    `json:"customer" firestore:"customer"`
	ShippingMethod string      `json:"shipping_method" firestore:"shipping_method"`
	CreatedAt      time.Time   `json:"created_at" firestore:"created_at"`
}

// progressByStatus is the fixed, ordered mapping from status to the linear
// progress indicator. Cancelled and unrecognized statuses project to zero so
// a stalled or foreign status never renders as progress.
var progressByStatus = map[Status]int32{
	StatusPending:    25,
	StatusProcessing: 50,
	StatusShipped:    75,
	StatusDelivered:  100,
}

// Progress maps an order status to its progress percentage. Unrecognized
// statuses return 0 rather than failing.
func Progress(status Status) int32 {
	return progressByStatus[status]
}
