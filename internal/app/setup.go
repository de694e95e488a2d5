// Package app wires the storefront services together.
package app

import (
	"log/slog"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luxecurl/storefront/internal/cart"
	cartstore "github.com/luxecurl/storefront/internal/cart/store"
	"github.com/luxecurl/storefront/internal/catalog"
	"github.com/luxecurl/storefront/internal/checkout"
	"github.com/luxecurl/storefront/internal/config"
	"github.com/luxecurl/storefront/internal/images"
	"github.com/luxecurl/storefront/internal/mailer"
	"github.com/luxecurl/storefront/internal/notifier"
	"github.com/luxecurl/storefront/internal/orders"
	"github.com/luxecurl/storefront/internal/payment"
	"github.com/luxecurl/storefront/internal/remote"
	"github.com/luxecurl/storefront/internal/transport/rest"
	"github.com/luxecurl/storefront/pkg/messaging"
	"github.com/luxecurl/storefront/pkg/server"
)

type Dependencies struct {
	CartService     *cart.Service
	CheckoutService *checkout.Service
	OrderService    *orders.Service
	PaymentClient   *payment.Client
	ContactService  *mailer.ContactService
	ImageStore      *images.Store
	Notifier        *notifier.Notifier
	Logger          *slog.Logger
}

// SetupDependencies builds the full service graph over the shared
// infrastructure clients.
func SetupDependencies(dbPool *pgxpool.Pool, fs *firestore.Client, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	lookup := func(productID string) error {
		_, err := catalog.Lookup(productID)
		return err
	}

	mirror := remote.NewCartMirror(fs, cfg.Firestore.CartCollection, cfg.Firestore.Timeout)
	cartService := cart.NewService(cartstore.NewPgStore(dbPool), mirror, lookup, logger)

	// mutation audit trail; subscribers are a seam for cache invalidation
	cartService.Subscribe(func(userID string, state cart.State) {
		logger.Debug("Cart changed", "user_id", userID, "lines", len(state))
	})

	orderStore := remote.NewOrderStore(fs, cfg.Firestore.OrderCollection, cfg.Firestore.Timeout, logger)
	resolver := func(productID string) (string, int64, error) {
		p, err := catalog.Lookup(productID)
		if err != nil {
			return "", 0, err
		}
		return p.Name, p.UnitPrice, nil
	}
	orderService := orders.NewService(orderStore, resolver)

	paymentClient := payment.NewClient(cfg.Payment, logger)
	checkoutService := checkout.NewService(cartService, orderStore, paymentClient, publisher, logger)

	sendgridMailer := mailer.NewSendGridMailer(cfg.Mail.APIKey, logger)
	contactService := mailer.NewContactService(sendgridMailer, cfg.Mail, logger)

	return &Dependencies{
		CartService:     cartService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		PaymentClient:   paymentClient,
		ContactService:  contactService,
		ImageStore:      images.NewStore(cfg.Images, logger),
		Notifier:        notifier.New(sendgridMailer, cfg.Mail, logger),
		Logger:          logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.CartService, deps.CheckoutService, deps.PaymentClient,
		deps.OrderService, deps.ContactService, deps.ImageStore, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the storefront HTTP server.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
