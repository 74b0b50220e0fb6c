package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m3rciful/shopbot/internal/domain"
)

func TestAPIProductStoreAppendUsesServerID(t *testing.T) {
	var posted domain.Product
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
			t.Errorf("decode request: %v", err)
		}
		posted.ID = "srv-7"
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(posted)
	}))
	defer srv.Close()

	store := NewAPIProductStore(srv.URL, srv.Client())
	created, err := store.Append(context.Background(), domain.Product{Name: "Widget", Description: "A fine widget"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if created.ID != "srv-7" {
		t.Fatalf("created id = %q, want the server-assigned one", created.ID)
	}
	if posted.Name != "Widget" {
		t.Fatalf("posted = %+v", posted)
	}
}

func TestAPIProductStoreAppendRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := NewAPIProductStore(srv.URL, srv.Client())
	_, err := store.Append(context.Background(), domain.Product{Name: "Widget"})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestAPIProductStoreGetByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/1"):
			_ = json.NewEncoder(w).Encode(domain.Product{ID: "1", Name: "Widget"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store := NewAPIProductStore(srv.URL, srv.Client())
	ctx := context.Background()

	p, err := store.GetByID(ctx, "1")
	if err != nil || p == nil || p.Name != "Widget" {
		t.Fatalf("GetByID = %+v, %v", p, err)
	}

	missing, err := store.GetByID(ctx, "99")
	if err != nil {
		t.Fatalf("GetByID 404: %v", err)
	}
	if missing != nil {
		t.Fatalf("404 must mean absence, got %+v", missing)
	}
}

func TestAPIProductStoreGetByIDServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewAPIProductStore(srv.URL, srv.Client())
	_, err := store.GetByID(context.Background(), "1")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestAPIProductStoreLoadDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := NewAPIProductStore(srv.URL, srv.Client())
	products, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load should degrade, got error: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("degraded Load = %+v, want empty", products)
	}
}

func TestAPIOrderStoreAppend(t *testing.T) {
	var got domain.Order
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode order: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(got)
	}))
	defer srv.Close()

	name := "alice"
	store := NewAPIOrderStore(srv.URL, srv.Client())
	_, err := store.Append(context.Background(), domain.Order{
		UserID: 100, Username: &name, ProductID: "1", ProductName: "Widget",
	})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got.UserID != 100 || got.ProductID != "1" || got.ProductName != "Widget" {
		t.Fatalf("posted order = %+v", got)
	}
	if got.Username == nil || *got.Username != "alice" {
		t.Fatalf("posted username = %v", got.Username)
	}
}

func TestAPIOrderStoreAppendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := NewAPIOrderStore(srv.URL, &http.Client{})
	_, err := store.Append(context.Background(), domain.Order{ProductID: "1"})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}
