package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"log/slog"
)

// PostgresProductStore keeps the catalog in postgres. Ids come from a
// sequence, so concurrent intakes can never collide.
type PostgresProductStore struct {
	db *sqlx.DB
}

// NewPostgresProductStore wraps an established connection pool.
func NewPostgresProductStore(db *sqlx.DB) *PostgresProductStore {
	return &PostgresProductStore{db: db}
}

// Load returns the full catalog ordered by insertion.
func (s *PostgresProductStore) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT id, name, description, image_url FROM products ORDER BY id::bigint`)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %v", domain.ErrBackendUnavailable, err)
	}
	return products, nil
}

// GetByID returns the product with the given id, or (nil, nil).
func (s *PostgresProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p,
		`SELECT id, name, description, image_url FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch product: %v", domain.ErrBackendUnavailable, err)
	}
	return &p, nil
}

// Append inserts the product; the id defaults from products_id_seq.
func (s *PostgresProductStore) Append(ctx context.Context, p domain.Product) (domain.Product, error) {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO products (name, description, image_url) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Description, p.ImageURL,
	).Scan(&p.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: create product: %v", domain.ErrBackendUnavailable, err)
	}
	logger.Info(ctx, "store.products", "store.append",
		slog.String("backend", BackendPostgres),
		slog.String("product_id", p.ID),
	)
	return p, nil
}

// PostgresOrderStore records confirmed orders in postgres.
type PostgresOrderStore struct {
	db *sqlx.DB
}

// NewPostgresOrderStore wraps an established connection pool.
func NewPostgresOrderStore(db *sqlx.DB) *PostgresOrderStore {
	return &PostgresOrderStore{db: db}
}

// Load returns recorded orders, oldest first.
func (s *PostgresOrderStore) Load(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT id::text AS id, user_id, username, product_id, product_name FROM orders ORDER BY orders.id`)
	if err != nil {
		return nil, fmt.Errorf("%w: load orders: %v", domain.ErrBackendUnavailable, err)
	}
	return orders, nil
}

// Append inserts the order in a single statement, so the commit is atomic.
func (s *PostgresOrderStore) Append(ctx context.Context, o domain.Order) (domain.Order, error) {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO orders (user_id, username, product_id, product_name)
		 VALUES ($1, $2, $3, $4) RETURNING id::text`,
		o.UserID, o.Username, o.ProductID, o.ProductName,
	).Scan(&o.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: create order: %v", domain.ErrBackendUnavailable, err)
	}
	logger.Info(ctx, "store.orders", "store.append",
		slog.String("backend", BackendPostgres),
		slog.String("product_id", o.ProductID),
		slog.String("order_id", o.ID),
	)
	return o, nil
}
