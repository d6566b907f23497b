// internal/product/model.go
//
// `product` table row model and the lookup contract.
//
// Context
// -------
// Product rows are owned by the catalogue service.  This repository only
// reads them, either straight from MySQL (runtime server) or through the
// backend JSON API (dev proxy).  Both paths hand back the same struct.
//
// Schema reference (2025-09-14)
//
//	CREATE TABLE product (
//	    id           VARCHAR(64)   PRIMARY KEY,
//	    slug         VARCHAR(191)  NOT NULL UNIQUE,
//	    name         VARCHAR(255)  NOT NULL,
//	    description  TEXT          NULL,
//	    price        DECIMAL(10,2) NOT NULL DEFAULT 0,
//	    image_url    VARCHAR(512)  NULL,
//	    category     VARCHAR(128)  NULL,
//	    keywords     VARCHAR(512)  NULL,
//	    deleted_at   TIMESTAMP NULL,
//	    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
// Notes
// -----
// • Nullable text columns are scanned through COALESCE, so the struct uses
//   plain strings.
// • JSON tags follow the backend API payload, not the column names.
package product

import (
	"context"
	"errors"
)

// ErrNotFound is returned when neither slug nor id resolves to a product.
var ErrNotFound = errors.New("product not found")

// Product mirrors one row in the `product` table.
type Product struct {
	ID          string  `db:"id"          json:"id"`
	Slug        string  `db:"slug"        json:"slug"`
	Name        string  `db:"name"        json:"name"`
	Description string  `db:"description" json:"description,omitempty"`
	Price       float64 `db:"price"       json:"price,omitempty"`
	ImageURL    string  `db:"image_url"   json:"image,omitempty"`
	Category    string  `db:"category"    json:"category,omitempty"`
	Keywords    string  `db:"keywords"    json:"keywords,omitempty"`
}

// Lookup resolves products by slug or primary identifier.  Implementations
// return (nil, ErrNotFound) or (nil, nil) when nothing matches; any other
// error means the backend could not answer.
type Lookup interface {
	BySlug(ctx context.Context, slug string) (*Product, error)
	ByID(ctx context.Context, id string) (*Product, error)
}

// Resolve tries slug first, then id.  It returns (nil, nil) when both
// lookups come back empty.
func Resolve(ctx context.Context, l Lookup, key string) (*Product, error) {
	p, err := l.BySlug(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p, err = l.ByID(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return p, nil
}
