// internal/product/repository.go
//
// Product-table query helpers.
//
// Context
// -------
// Repository is the SQL-backed Lookup used by the runtime server.  Each
// helper executes exactly one parameterised SELECT and excludes soft-deleted
// rows at SQL level so callers stay simple.
//
// Notes
// -----
// • sql.ErrNoRows is mapped to ErrNotFound; every other error is wrapped and
//   returned so the caller can log it.
// • The helpers never log.
package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const selectColumns = `
        SELECT id, slug, name,
               COALESCE(description, '') AS description,
               price,
               COALESCE(image_url, '')   AS image_url,
               COALESCE(category, '')    AS category,
               COALESCE(keywords, '')    AS keywords
        FROM   product`

// Repository reads products from the catalogue database.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an open pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// BySlug fetches a single live product by its slug.
func (r *Repository) BySlug(ctx context.Context, slug string) (*Product, error) {
	const q = selectColumns + `
        WHERE  slug = ?
          AND  deleted_at IS NULL
        LIMIT  1`
	return r.get(ctx, q, slug)
}

// ByID fetches a single live product by its primary key.
func (r *Repository) ByID(ctx context.Context, id string) (*Product, error) {
	const q = selectColumns + `
        WHERE  id = ?
          AND  deleted_at IS NULL
        LIMIT  1`
	return r.get(ctx, q, id)
}

func (r *Repository) get(ctx context.Context, q, arg string) (*Product, error) {
	var p Product
	if err := r.db.GetContext(ctx, &p, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("product query %q: %w", arg, err)
	}
	return &p, nil
}
