package botapp

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
	"github.com/m3rciful/shopbot/internal/storage"
)

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Backend       string `yaml:"backend" envconfig:"STORAGE_BACKEND"`
	ProductsFile  string `yaml:"products_file" envconfig:"STORAGE_PRODUCTS_FILE"`
	OrdersFile    string `yaml:"orders_file" envconfig:"STORAGE_ORDERS_FILE"`
	ProductAPIURL string `yaml:"product_api_url" envconfig:"PRODUCT_API_URL"`
	OrderAPIURL   string `yaml:"order_api_url" envconfig:"ORDER_API_URL"`
}

// ChannelConfig names the broadcast destination for product posts.
type ChannelConfig struct {
	ID int64 `yaml:"id" envconfig:"CHANNEL_ID"`
}

// Config aggregates core bot settings with shopbot-specific sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Channel  ChannelConfig       `yaml:"channel"`
}

// CoreConfig satisfies the cmd.ConfigCarrier contract.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML config, applies environment overrides, and
// validates both the core and application sections.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := normalizeApp(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeApp(cfg *Config) error {
	backend := strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	if backend == "" {
		backend = storage.BackendFile
	}
	switch backend {
	case storage.BackendFile:
		if cfg.Storage.ProductsFile == "" {
			cfg.Storage.ProductsFile = "products.json"
		}
		if cfg.Storage.OrdersFile == "" {
			cfg.Storage.OrdersFile = "orders.json"
		}
	case storage.BackendAPI:
		if strings.TrimSpace(cfg.Storage.ProductAPIURL) == "" {
			return fmt.Errorf("storage.product_api_url is required when storage.backend is 'api'")
		}
		if strings.TrimSpace(cfg.Storage.OrderAPIURL) == "" {
			return fmt.Errorf("storage.order_api_url is required when storage.backend is 'api'")
		}
	case storage.BackendPostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database host, name and user are required when storage.backend is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid storage.backend %q; allowed: file, api, postgres", cfg.Storage.Backend)
	}
	cfg.Storage.Backend = backend

	if cfg.Channel.ID == 0 {
		return fmt.Errorf("channel.id is required")
	}
	return nil
}
