package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/aleo"
)

// Load reads configuration from a YAML file. Defaults are filled in before
// the file is decoded, so a key set explicitly to 0 keeps its zero value.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *AppConfig {
	clientDefaults := aleo.DefaultConfig()
	healthDefaults := health.DefaultConfig()

	return &AppConfig{
		Server: ServerConfig{
			Port:     8080,
			GRPCPort: 9090,
		},
		Logging: LoggingConfig{Level: "info"},
		Network: NetworkConfig{
			DefaultNetwork:  string(domain.DefaultNetwork),
			DefaultProvider: string(domain.DefaultProvider),
			HeadCacheTTL:    2 * time.Second,
		},
		Client: clientDefaults,
		Health: HealthConfig{Config: healthDefaults},
		Storage: StorageConfig{
			Driver: StorageMemory,
		},
	}
}

// Validate rejects settings the service cannot start with.
func (c *AppConfig) Validate() error {
	if _, err := domain.ParseNetwork(c.Network.DefaultNetwork); err != nil {
		return fmt.Errorf("invalid network.default_network: %w", err)
	}
	if _, err := domain.ParseProvider(c.Network.DefaultProvider); err != nil {
		return fmt.Errorf("invalid network.default_provider: %w", err)
	}
	if c.Health.Samples < 2 {
		return fmt.Errorf("health.samples must be at least 2, got %d", c.Health.Samples)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required for the redis storage driver")
		}
	case StoragePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	return nil
}
