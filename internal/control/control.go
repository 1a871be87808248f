package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/netswitch/internal/core/config"
	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/core/endpoint"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/aleo"
	redisclient "github.com/vietddude/netswitch/internal/infra/redis"
	"github.com/vietddude/netswitch/internal/infra/storage"
	"github.com/vietddude/netswitch/internal/infra/storage/memory"
	"github.com/vietddude/netswitch/internal/infra/storage/postgres"
	"github.com/vietddude/netswitch/internal/registry"
)

// OpenStore opens the preference store selected by storage.driver.
func OpenStore(ctx context.Context, cfg *config.AppConfig) (storage.PreferenceRepository, error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		slog.Info("Using Redis storage")
		return client, nil

	case config.StoragePostgres:
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		slog.Info("Using PostgreSQL storage")
		return postgres.NewPreferenceRepo(db), nil

	case config.StorageMemory, "":
		slog.Info("Using Memory storage")
		return memory.NewPreferenceRepo(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// NewDialer builds Aleo REST clients with the configured transport settings.
func NewDialer(cfg aleo.Config) registry.Dialer {
	return registry.DialerFunc(func(
		ctx context.Context,
		network domain.Network,
		provider domain.Provider,
		target domain.Target,
	) (registry.Client, error) {
		c, err := aleo.NewClient(network, provider, target, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
}

// NewRegistry wires the resolver, dialer and monitor around prefs.
func NewRegistry(
	ctx context.Context,
	cfg *config.AppConfig,
	prefs storage.PreferenceRepository,
	dialer registry.Dialer,
) (*registry.Registry, error) {
	if dialer == nil {
		dialer = NewDialer(cfg.Client)
	}

	network, err := domain.ParseNetwork(cfg.Network.DefaultNetwork)
	if err != nil {
		return nil, err
	}
	provider, err := domain.ParseProvider(cfg.Network.DefaultProvider)
	if err != nil {
		return nil, err
	}

	return registry.New(ctx,
		registry.Config{
			DefaultNetwork:  network,
			DefaultProvider: provider,
			HeadCacheTTL:    cfg.Network.HeadCacheTTL,
		},
		endpoint.NewResolver(cfg.Network.Credentials),
		dialer,
		prefs,
		health.NewMonitor(cfg.Health.Config),
	)
}
