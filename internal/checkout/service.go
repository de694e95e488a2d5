package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/luxecurl/storefront/internal/cart"
	"github.com/luxecurl/storefront/internal/catalog"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/luxecurl/storefront/internal/payment"
	"github.com/luxecurl/storefront/pkg/messaging"
	"github.com/luxecurl/storefront/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// CartLoader is the slice of the cart service checkout needs.
type CartLoader interface {
	Load(ctx context.Context, userID string) (cart.State, error)
}

// Gateway initializes a hosted payment for a placed order.
type Gateway interface {
	Initialize(ctx context.Context, req payment.InitRequest) (string, error)
	CallbackURL() string
}

// PlaceOrderRequest carries the validated checkout form.
type PlaceOrderRequest struct {
	Customer       orders.Customer
	ShippingMethod string
}

// PlacedOrder is the outcome of a successful checkout: the persisted order
// plus the gateway URL the customer is redirected to.
type PlacedOrder struct {
	Order            *orders.Order `json:"order"`
	AuthorizationURL string        `json:"authorization_url"`
}

// Service recomputes totals server-side, persists the order and hands the
// customer to the payment gateway.
type Service struct {
	cart      CartLoader
	store     orders.Store
	gateway   Gateway
	publisher messaging.Publisher
	logger    *slog.Logger

	ordersCounter metric.Int64Counter
}

// NewService creates a checkout service.
func NewService(cart CartLoader, store orders.Store, gateway Gateway, publisher messaging.Publisher, logger *slog.Logger) *Service {
	meter := otel.Meter("storefront-checkout")
	ordersCounter, err := meter.Int64Counter("orders_created", metric.WithDescription("Total number of placed orders"))
	if err != nil {
		panic(fmt.Sprintf("failed to create orders_created counter: %v", err))
	}
	return &Service{
		cart:          cart,
		store:         store,
		gateway:       gateway,
		publisher:     publisher,
		logger:        logger.With("component", "checkout"),
		ordersCounter: ordersCounter,
	}
}

// PlaceOrder turns the current cart into a pending order and initializes the
// payment. Totals are always recomputed from the cart, never taken from the
// client. The cart itself is left intact; it is cleared by the caller once
// payment verification succeeds.
func (s *Service) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (*PlacedOrder, error) {
	state, err := s.cart.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(state) == 0 {
		return nil, sferrors.ErrEmptyCart
	}

	totals, err := ComputeTotals(state, req.ShippingMethod)
	if err != nil {
		return nil, err
	}

	order := &orders.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		Reference:      NewReference(),
		Items:          state,
		Totals:         totals,
		Status:         orders.StatusPending,
		Customer:       req.Customer,
		ShippingMethod: req.ShippingMethod,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	authURL, err := s.gateway.Initialize(ctx, payment.InitRequest{
		Email:       order.Customer.Email,
		AmountMinor: totals.GrandTotal,
		Currency:    catalog.Currency,
		Reference:   order.Reference,
		CallbackURL: s.gateway.CallbackURL(),
		Metadata:    map[string]string{"order_id": order.ID, "user_id": userID},
	})
	if err != nil {
		return nil, err
	}

	event := events.OrderCreatedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Reference:     order.Reference,
		CustomerEmail: order.Customer.Email,
		CustomerName:  order.Customer.FirstName,
		GrandTotal:    totals.GrandTotal,
		Currency:      catalog.Currency,
		CreatedAt:     order.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish OrderCreatedEvent", "order_id", order.ID, "error", err)
	}
	s.ordersCounter.Add(ctx, 1)

	s.logger.InfoContext(ctx, "Order placed", "order_id", order.ID, "reference", order.Reference, "grand_total", totals.GrandTotal)
	return &PlacedOrder{Order: order, AuthorizationURL: authURL}, nil
}

// NewReference builds a collision-resistant payment reference from the
// current time and a random suffix.
func NewReference() string {
	var suffix [4]byte
	_, _ = rand.Read(suffix[:])
	return fmt.Sprintf("SF-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix[:]))
}
