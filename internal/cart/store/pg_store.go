// Package store provides the durable local representations of the cart.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/luxecurl/storefront/internal/cart"
	sferrors "github.com/luxecurl/storefront/internal/errors"
)

// PgStore implements cart.LocalStore using PostgreSQL. It maintains both
// persisted formats: the namespaced record (cart_records, one jsonb document
// per user) and the legacy flat projection (cart_lines, one row per
// product-quantity pair).
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new cart.LocalStore backed by a PostgreSQL pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// namespacedRecord is the stored shape of the namespaced format.
type namespacedRecord struct {
	UserID    string      `json:"user_id"`
	Lines     []cart.Line `json:"lines"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ReadNamespaced retrieves the namespaced cart record for a user.
// Returns ErrNoCartRecord when no record exists.
func (p *PgStore) ReadNamespaced(ctx context.Context, userID string) (cart.State, error) {
	var raw []byte
	err := p.db.QueryRow(ctx,
		`SELECT lines FROM cart_records WHERE user_id = $1`, userID,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sferrors.ErrNoCartRecord
		}
		return nil, fmt.Errorf("failed to read namespaced cart record: %w", err)
	}
	var rec namespacedRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("corrupt namespaced cart record: %w", err)
	}
	return cart.State(rec.Lines), nil
}

// ReadLegacy retrieves the legacy flat cart record for a user.
// Returns ErrNoCartRecord when no rows exist.
func (p *PgStore) ReadLegacy(ctx context.Context, userID string) (cart.State, error) {
	rows, err := p.db.Query(ctx,
		`SELECT product_id, quantity FROM cart_lines WHERE user_id = $1 ORDER BY position`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy cart record: %w", err)
	}
	defer rows.Close()

	var state cart.State
	for rows.Next() {
		var line cart.Line
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan legacy cart line: %w", err)
		}
		state = append(state, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read legacy cart record: %w", err)
	}
	if len(state) == 0 {
		return nil, sferrors.ErrNoCartRecord
	}
	return state, nil
}

// WriteBoth replaces both local representations in one transaction, so the
// two formats cannot diverge.
func (p *PgStore) WriteBoth(ctx context.Context, userID string, state cart.State) error {
	rec := namespacedRecord{
		UserID:    userID,
		Lines:     append([]cart.Line(nil), state...),
		UpdatedAt: time.Now().UTC(),
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode namespaced cart record: %w", err)
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cart transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO cart_records (user_id, lines, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE SET lines = EXCLUDED.lines, updated_at = now()`,
		userID, raw,
	); err != nil {
		return fmt.Errorf("failed to write namespaced cart record: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear legacy cart record: %w", err)
	}
	for i, line := range state {
		if _, err := tx.Exec(ctx,
			`INSERT INTO cart_lines (user_id, product_id, quantity, position) VALUES ($1, $2, $3, $4)`,
			userID, line.ProductID, line.Quantity, i,
		); err != nil {
			return fmt.Errorf("failed to write legacy cart line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cart transaction: %w", err)
	}
	return nil
}
