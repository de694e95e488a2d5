package orders

import (
	"context"
	"fmt"

	sferrors "github.com/luxecurl/storefront/internal/errors"
)

// Store is the remote order collection, keyed by order ID and queryable by
// user ID ordered by creation time descending.
type Store interface {
	// Create persists a new order document.
	Create(ctx context.Context, order *Order) error

	// FindByID retrieves a single order by its unique identifier.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id string) (*Order, error)

	// FindByUserID returns all orders for a user, newest first.
	// Returns an empty slice if no orders exist.
	FindByUserID(ctx context.Context, userID string) ([]Order, error)

	// Watch returns a channel that receives the full order list for a user
	// on every remote change, plus a stop function that tears the
	// subscription down. Reconnection after a dropped subscription is the
	// store client's responsibility.
	Watch(ctx context.Context, userID string) (<-chan []Order, func(), error)
}

// ProductResolver supplies display metadata for an order item's product.
// Returning an error marks the product as no longer in the catalog.
type ProductResolver func(productID string) (name string, unitPrice int64, err error)

// View is an order prepared for display: progress projected from the status
// and items resolved against the catalog.
type View struct {
	Order
	Progress int32      `json:"progress"`
	Display  []ItemView `json:"display_items"`
}

// ItemView is a display projection of one order item. Items referencing
// products no longer in the catalog keep a generic label and zero price,
// consistent with the totals calculator's defensive-zero policy.
type ItemView struct {
	ProductID string `json:"product_id"`
	Label     string `json:"label"`
	Quantity  int32  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// unavailableLabel is shown for items whose product left the catalog.
const unavailableLabel = "Unavailable product"

// Service reads and projects orders for display.
type Service struct {
	store   Store
	resolve ProductResolver
}

// NewService creates an order projection service over the given store.
func NewService(store Store, resolve ProductResolver) *Service {
	return &Service{store: store, resolve: resolve}
}

// List returns all orders for a user, newest first, projected for display.
func (s *Service) List(ctx context.Context, userID string) ([]View, error) {
	list, err := s.store.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	views := make([]View, len(list))
	for i := range list {
		views[i] = s.toView(list[i])
	}
	return views, nil
}

// Get retrieves a single order owned by the user. A foreign order is
// reported as not found so order IDs leak nothing across users.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*View, error) {
	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, sferrors.ErrOrderNotFound
	}
	view := s.toView(*order)
	return &view, nil
}

// Watch subscribes to live changes of the user's order list. The returned
// stop function must be called when the view goes away.
func (s *Service) Watch(ctx context.Context, userID string) (<-chan []View, func(), error) {
	raw, stop, err := s.store.Watch(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch orders: %w", err)
	}
	out := make(chan []View)
	go func() {
		defer close(out)
		for list := range raw {
			views := make([]View, len(list))
			for i := range list {
				views[i] = s.toView(list[i])
			}
			select {
			case out <- views:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, stop, nil
}

// toView projects one order for display.
func (s *Service) toView(order Order) View {
	view := View{
		Order:    order,
		Progress: Progress(order.Status),
		Display:  make([]ItemView, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		iv := ItemView{
			ProductID: item.ProductID,
			Label:     unavailableLabel,
			Quantity:  item.Quantity,
		}
		if name, price, err := s.resolve(item.ProductID); err == nil {
			iv.Label = name
			iv.UnitPrice = price
			iv.LineTotal = price * int64(item.Quantity)
		}
		view.Display = append(view.Display, iv)
	}
	return view
}
