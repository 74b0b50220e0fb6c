package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/shopbot/core/logger"
	"github.com/m3rciful/shopbot/core/telegram/netutil"
	"github.com/m3rciful/shopbot/internal/domain"
	"log/slog"
)

const (
	apiDialTimeout   = 5 * time.Second
	apiClientTimeout = 15 * time.Second
	apiRetryAttempts = 2
	apiRetryBackoff  = time.Second
)

// NewAPIHTTPClient returns the HTTP client used by the remote-API
// stores: short timeouts, transient failures retried.
func NewAPIHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: apiDialTimeout}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	return &http.Client{
		Timeout:   apiClientTimeout,
		Transport: netutil.NewRetryTransport(transport, apiRetryAttempts, apiRetryBackoff),
	}
}

// APIProductStore talks to a remote catalog service: POST to create a
// product (the server assigns the id), GET by id to fetch one. The
// store never assumes local id issuance.
type APIProductStore struct {
	baseURL string
	client  *http.Client
}

// NewAPIProductStore builds a store for the given products endpoint.
// A nil client falls back to NewAPIHTTPClient.
func NewAPIProductStore(baseURL string, client *http.Client) *APIProductStore {
	if client == nil {
		client = NewAPIHTTPClient()
	}
	return &APIProductStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Load fetches the full catalog. An unreachable backend degrades to an
// empty catalog at startup; it is logged, not fatal.
func (s *APIProductStore) Load(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := getJSON(ctx, s.client, s.baseURL, &products); err != nil {
		logger.Warn(ctx, "store.products", "store.load.degraded",
			slog.String("backend", BackendAPI),
			slog.String("err", err.Error()),
		)
		return nil, nil
	}
	return products, nil
}

// GetByID fetches one product; a 404 is absence, not an error.
func (s *APIProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("build product request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch product: %v", domain.ErrBackendUnavailable, err)
	}
	defer drain(resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: fetch product: status %s", domain.ErrBackendUnavailable, resp.Status)
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", domain.ErrBackendUnavailable, err)
	}
	return &p, nil
}

// Append creates the product remotely and returns the server response,
// including the server-assigned id. A non-2xx status means the creation
// was not authoritatively confirmed and nothing may be announced.
func (s *APIProductStore) Append(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	if err := postJSON(ctx, s.client, s.baseURL, p, &created); err != nil {
		return domain.Product{}, fmt.Errorf("%w: create product: %v", domain.ErrBackendUnavailable, err)
	}
	logger.Info(ctx, "store.products", "store.append",
		slog.String("backend", BackendAPI),
		slog.String("product_id", created.ID),
	)
	return created, nil
}

// APIOrderStore posts confirmed orders to a remote order service.
type APIOrderStore struct {
	baseURL string
	client  *http.Client
}

// NewAPIOrderStore builds a store for the given orders endpoint.
// A nil client falls back to NewAPIHTTPClient.
func NewAPIOrderStore(baseURL string, client *http.Client) *APIOrderStore {
	if client == nil {
		client = NewAPIHTTPClient()
	}
	return &APIOrderStore{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// Load fetches previously recorded orders; unreachable degrades to empty.
func (s *APIOrderStore) Load(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	if err := getJSON(ctx, s.client, s.baseURL, &orders); err != nil {
		logger.Warn(ctx, "store.orders", "store.load.degraded",
			slog.String("backend", BackendAPI),
			slog.String("err", err.Error()),
		)
		return nil, nil
	}
	return orders, nil
}

// Append creates the order remotely; only a confirmed 2xx counts as a commit.
func (s *APIOrderStore) Append(ctx context.Context, o domain.Order) (domain.Order, error) {
	var created domain.Order
	if err := postJSON(ctx, s.client, s.baseURL, o, &created); err != nil {
		return domain.Order{}, fmt.Errorf("%w: create order: %v", domain.ErrBackendUnavailable, err)
	}
	logger.Info(ctx, "store.orders", "store.append",
		slog.String("backend", BackendAPI),
		slog.String("product_id", o.ProductID),
	)
	return created, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func postJSON(ctx context.Context, client *http.Client, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
