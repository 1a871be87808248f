package config

import (
	"time"

	"github.com/vietddude/netswitch/internal/core/endpoint"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/aleo"
	redisclient "github.com/vietddude/netswitch/internal/infra/redis"
	"github.com/vietddude/netswitch/internal/infra/storage/postgres"
)

// Storage drivers for persisted preferences.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Network  NetworkConfig      `yaml:"network"`
	Client   aleo.Config        `yaml:"client"`
	Health   HealthConfig       `yaml:"health"`
	Storage  StorageConfig      `yaml:"storage"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP and gRPC server settings.
type ServerConfig struct {
	Port     int `yaml:"port"`
	GRPCPort int `yaml:"grpc_port"` // 0 disables the gRPC health service; defaults to 9090 when unset
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// NetworkConfig selects the startup network and carries provider credentials.
type NetworkConfig struct {
	DefaultNetwork  string               `yaml:"default_network"`
	DefaultProvider string               `yaml:"default_provider"`
	HeadCacheTTL    time.Duration        `yaml:"head_cache_ttl"`
	Credentials     endpoint.Credentials `yaml:"credentials"`
}

// HealthConfig extends the monitor settings with the background check cadence.
type HealthConfig struct {
	health.Config `yaml:",inline"`
	CheckInterval time.Duration `yaml:"check_interval"` // 0 = no background checks
	AutoApply     bool          `yaml:"auto_apply"`     // switch to the preferred provider after each background check
}

// StorageConfig picks the preference store.
type StorageConfig struct {
	Driver string `yaml:"driver"` // memory, redis, postgres
}
