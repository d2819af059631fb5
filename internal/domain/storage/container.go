package storage

import (
	"context"
	"fmt"

	"storefront/internal/domain/categories"
	"storefront/internal/domain/products"
	"storefront/internal/domain/sizes"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories is the set of catalog stores, either pool-backed or scoped to
// one transaction.
type Repositories struct {
	Categories categories.Store
	Products   products.Store
	Sizes      sizes.Store
}

type Container struct {
	pool  *pgxpool.Pool
	repos Repositories
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool: db,
		repos: Repositories{
			Categories: categories.NewRepository(db),
			Products:   products.NewRepository(db),
			Sizes:      sizes.NewRepository(db),
		},
	}
}

func (c *Container) Repos() Repositories {
	return c.repos
}

// WithCatalogTx runs a catalog unit-of-work atomically.
func (c *Container) WithCatalogTx(ctx context.Context, fn func(tx *Repositories) error) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil (did you forget to set pool in NewContainer?)")
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	repos := &Repositories{
		Categories: categories.NewRepository(tx),
		Products:   products.NewRepository(tx),
		Sizes:      sizes.NewRepository(tx),
	}

	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c *Container) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}
