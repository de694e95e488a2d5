package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/luxecurl/storefront/internal/payment"
	"github.com/luxecurl/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCartLoader struct {
	state cart.State
	error error
}

func (m *mockCartLoader) Load(_ context.Context, _ string) (cart.State, error) {
	if m.error != nil {
		return nil, m.error
	}
	return m.state, nil
}

type mockOrderStore struct {
	created *orders.Order
	error   error
}

func (m *mockOrderStore) Create(_ context.Context, order *orders.Order) error {
	if m.error != nil {
		return m.error
	}
	m.created = order
	return nil
}

func (m *mockOrderStore) FindByID(_ context.Context, _ string) (*orders.Order, error) {
	return nil, sferrors.ErrOrderNotFound
}

func (m *mockOrderStore) FindByUserID(_ context.Context, _ string) ([]orders.Order, error) {
	return nil, nil
}

func (m *mockOrderStore) Watch(_ context.Context, _ string) (<-chan []orders.Order, func(), error) {
	return nil, nil, errors.New("not implemented")
}

type mockGateway struct {
	authURL string
	error   error
	init    *payment.InitRequest
}

func (m *mockGateway) Initialize(_ context.Context, req payment.InitRequest) (string, error) {
	if m.error != nil {
		return "", m.error
	}
	m.init = &req
	return m.authURL, nil
}

func (m *mockGateway) CallbackURL() string {
	return "https://shop.example/payments/callback"
}

type mockPublisher struct {
	events []messaging.Event
	error  error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	if m.error != nil {
		return m.error
	}
	m.events = append(m.events, event)
	return nil
}

const testUserID = "123e4567-e89b-12d3-a456-426614174001"

func validRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		Customer: orders.Customer{
			FirstName: "Ada",
			LastName:  "Obi",
			Email:     "ada@example.com",
			Phone:     "+2348012345678",
			Address:   "1 Marina Rd",
			City:      "Lagos",
		},
		ShippingMethod: "standard",
	}
}

func newTestService(loader CartLoader, store orders.Store, gateway Gateway, publisher messaging.Publisher) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(loader, store, gateway, publisher, logger)
}

func Test_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("places a pending order and returns the gateway URL", func(t *testing.T) {
		loader := &mockCartLoader{state: cart.State{{ProductID: "detox-60", Quantity: 1}, {ProductID: "bundle-trio", Quantity: 1}}}
		store := &mockOrderStore{}
		gateway := &mockGateway{authURL: "https://gateway.example/authorize/abc"}
		publisher := &mockPublisher{}
		svc := newTestService(loader, store, gateway, publisher)

		placed, err := svc.PlaceOrder(ctx, testUserID, validRequest())

		require.NoError(t, err)
		assert.Equal(t, "https://gateway.example/authorize/abc", placed.AuthorizationURL)

		require.NotNil(t, store.created)
		assert.Equal(t, testUserID, store.created.UserID)
		assert.Equal(t, orders.StatusPending, store.created.Status)
		assert.Equal(t, orders.Totals{Subtotal: 84_000, Shipping: 0, GrandTotal: 84_000}, store.created.Totals)
		assert.NotEmpty(t, store.created.ID)
		assert.NotEmpty(t, store.created.Reference)
		assert.False(t, store.created.CreatedAt.IsZero())

		require.NotNil(t, gateway.init)
		assert.Equal(t, int64(84_000), gateway.init.AmountMinor)
		assert.Equal(t, "NGN", gateway.init.Currency)
		assert.Equal(t, store.created.Reference, gateway.init.Reference)
		assert.Equal(t, "https://shop.example/payments/callback", gateway.init.CallbackURL)
		assert.Equal(t, store.created.ID, gateway.init.Metadata["order_id"])

		require.Len(t, publisher.events, 1)
		assert.Equal(t, messaging.OrdersCreatedSubject, publisher.events[0].Subject())
	})

	t.Run("empty cart is rejected", func(t *testing.T) {
		svc := newTestService(&mockCartLoader{state: cart.State{}}, &mockOrderStore{}, &mockGateway{}, &mockPublisher{})

		_, err := svc.PlaceOrder(ctx, testUserID, validRequest())

		assert.True(t, errors.Is(err, sferrors.ErrEmptyCart))
	})

	t.Run("unknown shipping method is rejected", func(t *testing.T) {
		loader := &mockCartLoader{state: cart.State{{ProductID: "detox-60", Quantity: 1}}}
		svc := newTestService(loader, &mockOrderStore{}, &mockGateway{}, &mockPublisher{})

		req := validRequest()
		req.ShippingMethod = "drone"
		_, err := svc.PlaceOrder(ctx, testUserID, req)

		assert.True(t, errors.Is(err, sferrors.ErrUnknownShippingMethod))
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		loader := &mockCartLoader{state: cart.State{{ProductID: "detox-60", Quantity: 1}}}
		store := &mockOrderStore{error: errors.New("firestore down")}
		svc := newTestService(loader, store, &mockGateway{}, &mockPublisher{})

		_, err := svc.PlaceOrder(ctx, testUserID, validRequest())

		assert.Error(t, err)
	})

	t.Run("gateway failure surfaces after the order is stored", func(t *testing.T) {
		loader := &mockCartLoader{state: cart.State{{ProductID: "detox-60", Quantity: 1}}}
		store := &mockOrderStore{}
		gateway := &mockGateway{error: sferrors.ErrGatewayUnavailable}
		svc := newTestService(loader, store, gateway, &mockPublisher{})

		_, err := svc.PlaceOrder(ctx, testUserID, validRequest())

		assert.True(t, errors.Is(err, sferrors.ErrGatewayUnavailable))
		assert.NotNil(t, store.created, "the pending order is kept for retries")
	})

	t.Run("publish failure does not fail the order", func(t *testing.T) {
		loader := &mockCartLoader{state: cart.State{{ProductID: "detox-60", Quantity: 1}}}
		svc := newTestService(loader, &mockOrderStore{}, &mockGateway{authURL: "https://g"}, &mockPublisher{error: errors.New("nats down")})

		placed, err := svc.PlaceOrder(ctx, testUserID, validRequest())

		require.NoError(t, err)
		assert.NotNil(t, placed.Order)
	})
}

func Test_NewReference(t *testing.T) {
	first := NewReference()
	second := NewReference()

	assert.Regexp(t, `^SF-\d+-[0-9a-f]{8}$`, first)
	assert.NotEqual(t, first, second)
}
