package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"storefront/pkg/order"
	"storefront/pkg/product"
)

// Schema creates the orders table. Products are stored as a JSON snapshot.
const Schema = `CREATE TABLE IF NOT EXISTS orders (
	seq BIGSERIAL PRIMARY KEY,
	id TEXT UNIQUE NOT NULL,
	products JSON NOT NULL
)`

// Repository persists orders in PostgreSQL.
type Repository struct {
	db       *sql.DB
	capacity int
}

// New creates a PostgreSQL repository holding at most capacity orders.
func New(db *sql.DB, capacity int) *Repository {
	return &Repository{db: db, capacity: capacity}
}

// Migrate creates the orders table if it does not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

// Create inserts a new order unless the table is full. Inserts are serialized
// by a table lock held until commit.
func (r *Repository) Create(ctx context.Context, o order.Order) error {
	snapshot, err := json.Marshal(o.Products)
	if err != nil {
		return fmt.Errorf("encode order products: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert order: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE orders IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return fmt.Errorf("lock orders: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO orders (id, products) SELECT $1, $2::json WHERE (SELECT COUNT(*) FROM orders) < $3",
		o.ID, string(snapshot), r.capacity)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return order.ErrCapacity
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert order: %w", err)
	}
	return nil
}

// List fetches all orders in insertion order.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, products FROM orders ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	orders := []order.Order{}
	for rows.Next() {
		var (
			o        order.Order
			snapshot []byte
		)
		if err := rows.Scan(&o.ID, &snapshot); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Products = []product.Product{}
		if err := json.Unmarshal(snapshot, &o.Products); err != nil {
			return nil, fmt.Errorf("decode products of order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
