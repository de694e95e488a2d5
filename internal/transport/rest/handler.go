// Package rest provides the storefront HTTP API.
package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/luxecurl/storefront/internal/cart"
	"github.com/luxecurl/storefront/internal/checkout"
	"github.com/luxecurl/storefront/internal/identity"
	"github.com/luxecurl/storefront/internal/images"
	"github.com/luxecurl/storefront/internal/mailer"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/luxecurl/storefront/internal/payment"
)

// CartService is the cart API surface the handlers depend on.
type CartService interface {
	Load(ctx context.Context, userID string) (cart.State, error)
	AddLine(ctx context.Context, userID, productID string, quantity int32) (cart.State, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int32) (cart.State, error)
	RemoveLine(ctx context.Context, userID, productID string) (cart.State, error)
	Clear(ctx context.Context, userID string) (cart.State, error)
}

// CheckoutService places orders from the current cart.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID string, req checkout.PlaceOrderRequest) (*checkout.PlacedOrder, error)
}

// PaymentVerifier confirms a payment with the gateway after the customer
// returns from the hosted page.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*payment.Verification, error)
}

// OrderService reads and projects orders for display.
type OrderService interface {
	List(ctx context.Context, userID string) ([]orders.View, error)
	Get(ctx context.Context, userID, orderID string) (*orders.View, error)
	Watch(ctx context.Context, userID string) (<-chan []orders.View, func(), error)
}

// ContactService handles contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, req mailer.ContactRequest) error
}

// ImageStore resolves product images.
type ImageStore interface {
	Get(productID string, index int) (*images.Image, error)
}

type Handler struct {
	cart     CartService
	checkout CheckoutService
	verifier PaymentVerifier
	orders   OrderService
	contact  ContactService
	images   ImageStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates the storefront API handler.
func NewHandler(cartSvc CartService, checkoutSvc CheckoutService, verifier PaymentVerifier,
	orderSvc OrderService, contactSvc ContactService, imageStore ImageStore, logger *slog.Logger) *Handler {
	return &Handler{
		cart:     cartSvc,
		checkout: checkoutSvc,
		verifier: verifier,
		orders:   orderSvc,
		contact:  contactSvc,
		images:   imageStore,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the storefront API.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(identity.EnsureUserID)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/catalog", h.Catalog)
			r.Get("/products/{productID}/images/{index}", h.ProductImage)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Get("/totals", h.CartTotals)
				r.Post("/items", h.AddCartItem)
				r.Route("/items/{productID}", func(r chi.Router) {
					r.Put("/", h.SetCartItemQuantity)
					r.Delete("/", h.RemoveCartItem)
				})
			})

			r.Get("/shipping-methods", h.ShippingMethods)
			r.Post("/checkout", h.PlaceOrder)
			r.Get("/payments/{reference}/verify", h.VerifyPayment)

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Get("/stream", h.StreamOrders)
				r.Get("/{id}", h.GetOrder)
			})

			r.Post("/contact", h.SubmitContact)
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
