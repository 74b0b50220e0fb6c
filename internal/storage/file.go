package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/internal/domain"
	"log/slog"
)

// FileProductStore keeps the catalog in memory and mirrors every
// mutation into a whole-snapshot JSON file. A missing file is an empty
// catalog, not an error. Mutation is read-modify-overwrite, so all
// writers serialize on the store mutex; identifiers are issued under
// that same lock.
type FileProductStore struct {
	path string

	mu       sync.Mutex
	loaded   bool
	products []domain.Product
}

// NewFileProductStore builds a store backed by the given JSON file.
func NewFileProductStore(path string) *FileProductStore {
	return &FileProductStore{path: path}
}

// Load reads the persisted catalog, priming the in-memory copy.
func (s *FileProductStore) Load(ctx context.Context) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// GetByID returns the first product with a matching id, or (nil, nil).
func (s *FileProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

// Append assigns the next sequential id, adds the product to the
// catalog, and rewrites the snapshot. On write failure the in-memory
// catalog is left untouched.
func (s *FileProductStore) Append(ctx context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Product{}, err
	}

	p.ID = strconv.Itoa(len(s.products) + 1)
	next := append(append([]domain.Product(nil), s.products...), p)
	if err := writeSnapshot(s.path, next); err != nil {
		return domain.Product{}, fmt.Errorf("%w: persist products: %v", domain.ErrBackendUnavailable, err)
	}
	s.products = next

	logger.Info(ctx, "store.products", "store.append",
		slog.String("backend", BackendFile),
		slog.String("product_id", p.ID),
		slog.Int("products_total", len(next)),
	)
	return p, nil
}

func (s *FileProductStore) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	products, err := readSnapshot[domain.Product](s.path)
	if err != nil {
		return fmt.Errorf("%w: load products: %v", domain.ErrBackendUnavailable, err)
	}
	s.products = products
	s.loaded = true
	logger.Debug(ctx, "store.products", "store.load",
		slog.String("backend", BackendFile),
		slog.String("path", s.path),
		slog.Int("products_total", len(products)),
	)
	return nil
}

// FileOrderStore mirrors confirmed orders into a whole-snapshot JSON
// file, same shape as FileProductStore.
type FileOrderStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	orders []domain.Order
}

// NewFileOrderStore builds a store backed by the given JSON file.
func NewFileOrderStore(path string) *FileOrderStore {
	return &FileOrderStore{path: path}
}

// Load reads the persisted orders, priming the in-memory copy.
func (s *FileOrderStore) Load(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

// Append records the order and rewrites the snapshot. Either the whole
// record is committed or nothing is.
func (s *FileOrderStore) Append(ctx context.Context, o domain.Order) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return domain.Order{}, err
	}

	next := append(append([]domain.Order(nil), s.orders...), o)
	if err := writeSnapshot(s.path, next); err != nil {
		return domain.Order{}, fmt.Errorf("%w: persist orders: %v", domain.ErrBackendUnavailable, err)
	}
	s.orders = next

	logger.Info(ctx, "store.orders", "store.append",
		slog.String("backend", BackendFile),
		slog.String("product_id", o.ProductID),
		slog.Int("orders_total", len(next)),
	)
	return o, nil
}

func (s *FileOrderStore) ensureLoaded(_ context.Context) error {
	if s.loaded {
		return nil
	}
	orders, err := readSnapshot[domain.Order](s.path)
	if err != nil {
		return fmt.Errorf("%w: load orders: %v", domain.ErrBackendUnavailable, err)
	}
	s.orders = orders
	s.loaded = true
	return nil
}

func readSnapshot[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// writeSnapshot rewrites the full file through a temp file and rename
// so a failed write never leaves a truncated snapshot behind.
func writeSnapshot[T any](path string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
