package storage

import (
	"context"
	"errors"

	"bulkwala/internal/domain/categories"
	"bulkwala/internal/domain/offers"
	"bulkwala/internal/domain/products"
	"bulkwala/internal/domain/subcategories"
	"bulkwala/internal/domain/users"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoPool = errors.New("storage container has no database pool")

type Container struct {
	pool          *pgxpool.Pool
	Users         users.Store
	Categories    categories.Store
	Subcategories subcategories.Store
	Products      products.Store
	Offers        offers.Store
}

// NewContainer wires every repository to pool. A nil pool is allowed when the
// database is not configured; the executor never reaches the repositories then.
func NewContainer(pool *pgxpool.Pool) *Container {
	return &Container{
		pool:          pool,
		Users:         users.NewRepository(pool),
		Categories:    categories.NewRepository(pool),
		Subcategories: subcategories.NewRepository(pool),
		Products:      products.NewRepository(pool),
		Offers:        offers.NewRepository(pool),
	}
}

// WithUsersTx runs fn against a tx-scoped users store and commits if fn
// returns nil.
func (c *Container) WithUsersTx(ctx context.Context, fn func(users.Store) error) error {
	if c.pool == nil {
		return ErrNoPool
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	if err := fn(users.NewRepository(tx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
