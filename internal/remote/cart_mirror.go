package remote

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CartMirror implements cart.Mirror on a Firestore collection with one
// document per anonymous user (<collection>/<userID>). Conflicts between
// devices resolve last-write-wins at the document.
type CartMirror struct {
	fs         *firestore.Client
	collection string
	timeout    time.Duration
}

// NewCartMirror creates a cart mirror over the given Firestore client.
func NewCartMirror(fs *firestore.Client, collection string, timeout time.Duration) *CartMirror {
	return &CartMirror{fs: fs, collection: collection, timeout: timeout}
}

// cartDoc is the stored document shape.
type cartDoc struct {
	UserID    string      `firestore:"user_id"`
	Lines     []cart.Line `firestore:"lines"`
	UpdatedAt time.Time   `firestore:"updated_at"`
}

// Fetch reads the mirror document for a user.
// Returns ErrNoCartRecord when the document does not exist.
func (m *CartMirror) Fetch(ctx context.Context, userID string) (cart.State, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	snap, err := m.fs.Collection(m.collection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, sferrors.ErrNoCartRecord
		}
		return nil, fmt.Errorf("failed to fetch cart mirror: %w", err)
	}
	var doc cartDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("corrupt cart mirror document: %w", err)
	}
	return cart.State(doc.Lines), nil
}

// Write replaces the mirror document for a user.
func (m *CartMirror) Write(ctx context.Context, userID string, state cart.State) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	doc := cartDoc{
		UserID:    userID,
		Lines:     append([]cart.Line(nil), state...),
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := m.fs.Collection(m.collection).Doc(userID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to write cart mirror: %w", err)
	}
	return nil
}
