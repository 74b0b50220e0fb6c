package botapp

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
telegram:
  token: "123:abc"
channel:
  id: -1001234567890
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Backend != "file" {
		t.Fatalf("backend = %q, want file", cfg.Storage.Backend)
	}
	if cfg.Storage.ProductsFile != "products.json" || cfg.Storage.OrdersFile != "orders.json" {
		t.Fatalf("default files = %q, %q", cfg.Storage.ProductsFile, cfg.Storage.OrdersFile)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q, want longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Channel.ID != -1001234567890 {
		t.Fatalf("channel id = %d", cfg.Channel.ID)
	}
}

func TestLoadConfigRequiresChannel(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
`))
	if err == nil || !strings.Contains(err.Error(), "channel.id") {
		t.Fatalf("error = %v, want channel.id requirement", err)
	}
}

func TestLoadConfigAPIBackendRequiresURLs(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
channel:
  id: -100
storage:
  backend: api
`))
	if err == nil || !strings.Contains(err.Error(), "product_api_url") {
		t.Fatalf("error = %v, want product_api_url requirement", err)
	}

	cfg, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
channel:
  id: -100
storage:
  backend: api
  product_api_url: "http://api.local/products"
  order_api_url: "http://api.local/orders"
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Backend != "api" {
		t.Fatalf("backend = %q", cfg.Storage.Backend)
	}
}

func TestLoadConfigPostgresBackendRequiresDatabase(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
channel:
  id: -100
storage:
  backend: postgres
`))
	if err == nil || !strings.Contains(err.Error(), "database") {
		t.Fatalf("error = %v, want database requirement", err)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `
telegram:
  token: "123:abc"
channel:
  id: -100
storage:
  backend: redis
`))
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("error = %v, want backend rejection", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PRODUCT_API_URL", "http://env.local/products")
	t.Setenv("ORDER_API_URL", "http://env.local/orders")
	t.Setenv("STORAGE_BACKEND", "api")

	cfg, err := LoadConfig(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage.Backend != "api" {
		t.Fatalf("backend = %q, want env override", cfg.Storage.Backend)
	}
	if cfg.Storage.ProductAPIURL != "http://env.local/products" {
		t.Fatalf("product api url = %q", cfg.Storage.ProductAPIURL)
	}
}
