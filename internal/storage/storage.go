// Package storage holds the product and order stores behind narrow
// interfaces so conversation flows can be exercised with test doubles.
// Three backends exist: a local JSON snapshot file, a remote HTTP API,
// and postgres. Identifier issuance always belongs to the backend.
package storage

import (
	"context"

	"github.com/m3rciful/shopbot/internal/domain"
)

// Backend names accepted by the storage configuration.
const (
	BackendFile     = "file"
	BackendAPI      = "api"
	BackendPostgres = "postgres"
)

// ProductStore is the catalog contract.
//
// GetByID returns (nil, nil) when no product matches: absence is a
// recoverable condition, not an error. Append persists the product and
// returns it with the backend-assigned identifier.
type ProductStore interface {
	Load(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Append(ctx context.Context, p domain.Product) (domain.Product, error)
}

// OrderStore records confirmed orders. The core flow never reads them
// back; Load exists for startup recovery and diagnostics.
type OrderStore interface {
	Load(ctx context.Context) ([]domain.Order, error)
	Append(ctx context.Context, o domain.Order) (domain.Order, error)
}
