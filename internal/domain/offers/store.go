package offers

import (
	"context"
	"errors"
	"fmt"

	"bulkwala/internal/db"
	"bulkwala/internal/store"

	"github.com/jackc/pgx/v5"
)

// Store persists the singleton row. The table's CHECK (id = 1) keeps it single.
type Store interface {
	Get(ctx context.Context) (*Offer, error)
	Upsert(ctx context.Context, o *Offer) error
	Deactivate(ctx context.Context) error
	DeleteAll(ctx context.Context) error
}

type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func (r *Repository) Get(ctx context.Context) (*Offer, error) {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	o := &Offer{}
	err := r.db.QueryRow(ctx, `
		SELECT is_active, discount_percent, max_discount_amount, started_at, expires_at, updated_at
		FROM offers WHERE id = 1`,
	).Scan(&o.IsActive, &o.DiscountPercent, &o.MaxDiscountAmount, &o.StartedAt, &o.ExpiresAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOffer
		}
		return nil, fmt.Errorf("get offer: %w", err)
	}
	return o, nil
}

// Upsert creates the row or overwrites every field of the existing one.
func (r *Repository) Upsert(ctx context.Context, o *Offer) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO offers (id, is_active, discount_percent, max_discount_amount, started_at, expires_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			is_active = EXCLUDED.is_active,
			discount_percent = EXCLUDED.discount_percent,
			max_discount_amount = EXCLUDED.max_discount_amount,
			started_at = EXCLUDED.started_at,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()
		RETURNING updated_at`,
		o.IsActive, o.DiscountPercent, o.MaxDiscountAmount, o.StartedAt, o.ExpiresAt,
	).Scan(&o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert offer: %w", err)
	}
	return nil
}

// Deactivate is idempotent; concurrent expiry flips converge on the same row.
func (r *Repository) Deactivate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if _, err := r.db.Exec(ctx, `UPDATE offers SET is_active = false, updated_at = now() WHERE id = 1 AND is_active`); err != nil {
		return fmt.Errorf("deactivate offer: %w", err)
	}
	return nil
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, store.QueryTimeoutDuration)
	defer cancel()

	if _, err := r.db.Exec(ctx, `DELETE FROM offers`); err != nil {
		return fmt.Errorf("delete offers: %w", err)
	}
	return nil
}
