package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"github.com/luxecurl/storefront/internal/orders"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OrderStore implements orders.Store on a Firestore collection, queried by
// equality on user_id ordered by created_at descending.
type OrderStore struct {
	fs         *firestore.Client
	collection string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewOrderStore creates an order store over the given Firestore client.
func NewOrderStore(fs *firestore.Client, collection string, timeout time.Duration, logger *slog.Logger) *OrderStore {
	return &OrderStore{
		fs:         fs,
		collection: collection,
		timeout:    timeout,
		logger:     logger.With("component", "order_store"),
	}
}

// Create persists a new order document keyed by the order ID.
func (s *OrderStore) Create(ctx context.Context, order *orders.Order) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.fs.Collection(s.collection).Doc(order.ID).Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order document: %w", err)
	}
	return nil
}

// FindByID retrieves a single order by its unique identifier.
// Returns ErrOrderNotFound if no order exists with the given ID.
func (s *OrderStore) FindByID(ctx context.Context, id string) (*orders.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	snap, err := s.fs.Collection(s.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, sferrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	var order orders.Order
	if err := snap.DataTo(&order); err != nil {
		return nil, fmt.Errorf("corrupt order document: %w", err)
	}
	order.ID = snap.Ref.ID
	return &order, nil
}

// FindByUserID returns all orders for a user, newest first. Ties on
// created_at keep the store's natural document order.
func (s *OrderStore) FindByUserID(ctx context.Context, userID string) ([]orders.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	iter := s.userQuery(userID).Documents(ctx)
	defer iter.Stop()

	list := make([]orders.Order, 0, 8)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query orders: %w", err)
		}
		var order orders.Order
		if err := snap.DataTo(&order); err != nil {
			s.logger.WarnContext(ctx, "Skipping corrupt order document", "doc", snap.Ref.ID, "error", err)
			continue
		}
		order.ID = snap.Ref.ID
		list = append(list, order)
	}
	return list, nil
}

// Watch streams the user's order list on every snapshot change. The returned
// stop function tears the listener down; the channel closes afterwards.
func (s *OrderStore) Watch(ctx context.Context, userID string) (<-chan []orders.Order, func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	snaps := s.userQuery(userID).Snapshots(watchCtx)

	out := make(chan []orders.Order)
	go func() {
		defer close(out)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					s.logger.WarnContext(watchCtx, "Order snapshot stream ended", "user_id", userID, "error", err)
				}
				return
			}
			list := make([]orders.Order, 0, 8)
			docs := snap.Documents
			for {
				doc, derr := docs.Next()
				if derr == iterator.Done {
					break
				}
				if derr != nil {
					s.logger.WarnContext(watchCtx, "Failed to read order snapshot document", "error", derr)
					break
				}
				var order orders.Order
				if derr := doc.DataTo(&order); derr != nil {
					continue
				}
				order.ID = doc.Ref.ID
				list = append(list, order)
			}
			select {
			case out <- list:
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return out, cancel, nil
}

// userQuery builds the equality-plus-order query shared by list and watch.
func (s *OrderStore) userQuery(userID string) firestore.Query {
	return s.fs.Collection(s.collection).
		Where("user_id", "==", userID).
		OrderBy("created_at", firestore.Desc)
}
