package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vietddude/netswitch/internal/core/config"
	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/storage"
	"github.com/vietddude/netswitch/internal/registry"
)

// Service runs the registry behind the status HTTP server, the gRPC health
// service and the optional background health checker.
type Service struct {
	cfg        *config.AppConfig
	prefs      storage.PreferenceRepository
	registry   *registry.Registry
	httpServer *health.Server
	grpcServer *health.GRPCServer
	log        *slog.Logger
}

// healthChecker is implemented by preference stores backed by a server.
type healthChecker interface {
	Health(ctx context.Context) error
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	Prefs  storage.PreferenceRepository
	Dialer registry.Dialer
}

// New creates a Service with all dependencies initialized.
func New(ctx context.Context, cfg *config.AppConfig, opts Options) (*Service, error) {
	prefs := opts.Prefs
	if prefs == nil {
		var err error
		prefs, err = OpenStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	reg, err := NewRegistry(ctx, cfg, prefs, opts.Dialer)
	if err != nil {
		_ = prefs.Close()
		return nil, err
	}

	s := &Service{
		cfg:        cfg,
		prefs:      prefs,
		registry:   reg,
		httpServer: health.NewServer(reg, cfg.Server.Port),
		log:        slog.Default(),
	}
	if hc, ok := prefs.(healthChecker); ok {
		s.httpServer.RegisterCheck("storage", hc.Health)
	}
	if cfg.Server.GRPCPort > 0 {
		s.grpcServer = health.NewGRPCServer(cfg.Server.GRPCPort)
		s.httpServer.OnCheck(s.grpcServer.SetLiveness)
	}
	return s, nil
}

// Registry returns the client registry.
func (s *Service) Registry() *registry.Registry {
	return s.registry
}

// Run serves until ctx is cancelled or a server fails, then shuts everything
// down.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("Status server listening", "port", s.cfg.Server.Port)
		if err := s.httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("status server: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		g.Go(func() error {
			// Stop may run before Serve when ctx is already done.
			if err := s.grpcServer.Start(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc health server: %w", err)
			}
			return nil
		})
	}

	if s.cfg.Health.CheckInterval > 0 {
		g.Go(func() error {
			s.runChecker(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Service) shutdown() error {
	s.log.Info("Stopping netswitch...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpServer.Stop(ctx)
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	return err
}

// Close releases the current client and the preference store.
func (s *Service) Close() error {
	regErr := s.registry.Close()
	if err := s.prefs.Close(); err != nil {
		s.log.Warn("Failed to close preference store", "error", err)
		return err
	}
	return regErr
}

func (s *Service) runChecker(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Health.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckOnce(ctx)
		}
	}
}

// CheckOnce runs one health check, publishes the verdict and, with
// health.auto_apply, switches to the resulting preferred provider.
func (s *Service) CheckOnce(ctx context.Context) {
	runID := uuid.NewString()

	liveness, err := s.registry.CheckHealth(ctx)
	if err != nil && !errors.Is(err, domain.ErrStorage) {
		s.log.Warn("Background health check failed", "run", runID, "error", err)
		return
	}
	if s.grpcServer != nil {
		s.grpcServer.SetLiveness(liveness)
	}

	if !s.cfg.Health.AutoApply {
		return
	}

	preferred := s.registry.PreferredProvider(ctx)
	if preferred == s.registry.Current().Provider() {
		return
	}
	s.log.Info("Applying preferred provider", "run", runID, "provider", preferred, "liveness", liveness)
	if err := s.registry.SwitchProvider(ctx, preferred); err != nil {
		s.log.Warn("Failed to apply preferred provider", "run", runID, "provider", preferred, "error", err)
	}
}
