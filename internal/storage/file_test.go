package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m3rciful/shopbot/internal/domain"
)

func TestFileProductStoreMissingFileIsEmpty(t *testing.T) {
	store := NewFileProductStore(filepath.Join(t.TempDir(), "products.json"))

	products, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(products) != 0 {
		t.Fatalf("Load = %d products, want 0", len(products))
	}
}

func TestFileProductStoreAppendAssignsSequentialIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	store := NewFileProductStore(path)
	ctx := context.Background()

	first, err := store.Append(ctx, domain.Product{Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if first.ID != "1" {
		t.Fatalf("first id = %q, want 1", first.ID)
	}

	second, err := store.Append(ctx, domain.Product{Name: "Gadget"})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if second.ID != "2" {
		t.Fatalf("second id = %q, want 2", second.ID)
	}

	// A fresh store over the same file must see both entries.
	reloaded, err := NewFileProductStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 2 || reloaded[0].Name != "Widget" || reloaded[1].Name != "Gadget" {
		t.Fatalf("reloaded = %+v", reloaded)
	}
}

func TestFileProductStoreSnapshotFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	store := NewFileProductStore(path)

	if _, err := store.Append(context.Background(), domain.Product{
		Name: "Widget", Description: "A fine widget", ImageURL: "http://img/1.png",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var items []map[string]string
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("snapshot is not a JSON array: %v", err)
	}
	want := map[string]string{
		"id":          "1",
		"name":        "Widget",
		"description": "A fine widget",
		"image_url":   "http://img/1.png",
	}
	if len(items) != 1 {
		t.Fatalf("snapshot has %d items, want 1", len(items))
	}
	for k, v := range want {
		if items[0][k] != v {
			t.Errorf("snapshot[%q] = %q, want %q", k, items[0][k], v)
		}
	}
}

func TestFileProductStoreGetByID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	store := NewFileProductStore(path)
	ctx := context.Background()

	if _, err := store.Append(ctx, domain.Product{Name: "Widget"}); err != nil {
		t.Fatal(err)
	}

	p, err := store.GetByID(ctx, "1")
	if err != nil || p == nil || p.Name != "Widget" {
		t.Fatalf("GetByID = %+v, %v", p, err)
	}
	// Reads are idempotent.
	again, err := store.GetByID(ctx, "1")
	if err != nil || again == nil || *again != *p {
		t.Fatalf("second GetByID = %+v, %v", again, err)
	}

	missing, err := store.GetByID(ctx, "99")
	if err != nil {
		t.Fatalf("GetByID missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID missing = %+v, want nil", missing)
	}
}

func TestFileProductStoreDuplicateIDsFirstWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	seed := `[
    {"id": "1", "name": "First", "description": "", "image_url": ""},
    {"id": "1", "name": "Second", "description": "", "image_url": ""}
]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFileProductStore(path).GetByID(context.Background(), "1")
	if err != nil {
		t.Fatal(err)
	}
	if p == nil || p.Name != "First" {
		t.Fatalf("GetByID = %+v, want the first match", p)
	}
}

func TestFileProductStoreCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileProductStore(path).Load(context.Background())
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestFileProductStoreWriteFailureLeavesMemoryUntouched(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	store := NewFileProductStore(path)
	ctx := context.Background()

	if _, err := store.Append(ctx, domain.Product{Name: "Widget"}); err != nil {
		t.Fatal(err)
	}

	// Make the directory unwritable so the temp file cannot be created.
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := store.Append(ctx, domain.Product{Name: "Gadget"})
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("error = %v, want ErrBackendUnavailable", err)
	}

	products, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "Widget" {
		t.Fatalf("catalog after failed write = %+v", products)
	}
}

func TestFileOrderStoreAppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store := NewFileOrderStore(path)
	ctx := context.Background()
	name := "alice"

	order := domain.Order{UserID: 100, Username: &name, ProductID: "1", ProductName: "Widget"}
	if _, err := store.Append(ctx, order); err != nil {
		t.Fatalf("Append: %v", err)
	}

	reloaded, err := NewFileOrderStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 1 {
		t.Fatalf("reloaded %d orders, want 1", len(reloaded))
	}
	got := reloaded[0]
	if got.UserID != 100 || got.ProductID != "1" || got.ProductName != "Widget" {
		t.Fatalf("order = %+v", got)
	}
	if got.Username == nil || *got.Username != "alice" {
		t.Fatalf("username = %v", got.Username)
	}
}

func TestFileOrderStoreOmitsInternalID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	store := NewFileOrderStore(path)

	if _, err := store.Append(context.Background(), domain.Order{UserID: 1, ProductID: "1", ProductName: "Widget"}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatal(err)
	}
	if _, ok := items[0]["id"]; ok {
		t.Fatal("order snapshot must not carry an id field")
	}
	if items[0]["username"] != nil {
		t.Fatalf("absent username should serialize as null, got %v", items[0]["username"])
	}
}
