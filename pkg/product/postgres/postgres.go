package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/pkg/product"
)

// Schema creates the products table. seq preserves insertion order. price is
// JSON rather than JSONB so the client's text comes back unchanged.
const Schema = `CREATE TABLE IF NOT EXISTS products (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	price JSON
)`

const columns = "id, name, price"

// Repository persists products in PostgreSQL.
type Repository struct {
	db       *sql.DB
	capacity int
}

// New creates a PostgreSQL repository holding at most capacity products.
func New(db *sql.DB, capacity int) *Repository {
	return &Repository{db: db, capacity: capacity}
}

// Migrate creates the products table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// List fetches all products in insertion order.
func (r *Repository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+columns+" FROM products ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	products := []product.Product{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create inserts a product unless the table is full. The table lock serializes
// concurrent inserts so the count cannot go stale between check and insert.
func (r *Repository) Create(ctx context.Context, p product.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert product: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE products IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO products (id, name, price) SELECT $1, $2, $3::json WHERE (SELECT COUNT(*) FROM products) < $4",
		p.ID, p.Name, p.Price.JSON(), r.capacity)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return product.ErrCapacity
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert product: %w", err)
	}
	return nil
}

// Get retrieves a product by ID.
func (r *Repository) Get(ctx context.Context, id string) (product.Product, error) {
	p, err := scan(r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM products WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	return p, err
}

// Update overwrites only the supplied fields. A JSON null price is a non-NULL
// SQL value, so COALESCE still writes it.
func (r *Repository) Update(ctx context.Context, id string, patch product.Patch) (product.Product, error) {
	var name, price sql.NullString
	if patch.Name != nil {
		name = sql.NullString{String: *patch.Name, Valid: true}
	}
	if patch.Price.Present() {
		price = sql.NullString{String: patch.Price.JSON(), Valid: true}
	}
	p, err := scan(r.db.QueryRowContext(ctx,
		"UPDATE products SET name = COALESCE($2, name), price = COALESCE($3::json, price) WHERE id = $1 RETURNING "+columns,
		id, name, price))
	if errors.Is(err, sql.ErrNoRows) {
		return product.Product{}, product.ErrNotFound
	}
	return p, err
}

// Delete removes a product by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(s scanner) (product.Product, error) {
	var (
		p     product.Product
		price []byte
	)
	if err := s.Scan(&p.ID, &p.Name, &price); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product.Product{}, err
		}
		return product.Product{}, fmt.Errorf("scan product: %w", err)
	}
	v, err := product.RawPrice(price)
	if err != nil {
		return product.Product{}, fmt.Errorf("decode price of %s: %w", p.ID, err)
	}
	p.Price = v
	return p, nil
}
