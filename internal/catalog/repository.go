package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

const (
	selectProductsQuery = `SELECT id, category, brand, model, name, price FROM products ORDER BY id`
	truncateProducts    = `TRUNCATE products RESTART IDENTITY`
	countProductsQuery  = `SELECT count(*) FROM products`
	insertProductQuery  = `INSERT INTO products (category, brand, model, name, price)
		VALUES (:category, :brand, :model, :name, :price)`
)

// Repository reads and writes catalog rows in PostgreSQL.
type Repository struct {
	db  *sqlx.DB
	log *slog.Logger
}

// NewRepository constructs a Repository over db.
func NewRepository(db *sqlx.DB, log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}

	return &Repository{db: db, log: log}
}

// FetchSnapshot reads the whole products table.
func (r *Repository) FetchSnapshot(ctx context.Context) (*Snapshot, error) {
	var items []Item
	if err := r.db.SelectContext(ctx, &items, selectProductsQuery); err != nil {
		r.log.Error("failed to read products", slog.Any("error", err))
		return nil, fmt.Errorf("select products: %w: %w", ErrUnavailable, err)
	}

	return NewSnapshot(items), nil
}

// ReplaceAll swaps the table contents for items inside a single transaction.
func (r *Repository) ReplaceAll(ctx context.Context, items []Item) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Error("failed to rollback products import", slog.Any("error", rbErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, truncateProducts); err != nil {
		return fmt.Errorf("truncate products: %w", err)
	}

	for _, item := range items {
		if _, err = tx.NamedExecContext(ctx, insertProductQuery, item); err != nil {
			return fmt.Errorf("insert product %q: %w", item.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit products import: %w", err)
	}

	r.log.Info("products replaced", slog.Int("count", len(items)))
	return nil
}

// HealthCheck fails when the products table cannot be read, for example
// before migrations ran.
func (r *Repository) HealthCheck(ctx context.Context) error {
	var count int
	if err := r.db.GetContext(ctx, &count, countProductsQuery); err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	r.log.Debug("catalog health", slog.Int("products", count))
	return nil
}
