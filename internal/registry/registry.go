// Package registry owns the single current network client and mediates every
// read and swap of it.
//
// Readers call Current and never block on network I/O. Writers build the
// replacement client, persist the choice and only then take the exclusive lock
// for the pointer swap, so the critical section is a single assignment.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/core/headcache"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/storage"
	"github.com/vietddude/netswitch/internal/metrics"
)

// Config holds registry settings.
type Config struct {
	DefaultNetwork  domain.Network
	DefaultProvider domain.Provider
	HeadCacheTTL    time.Duration
}

type selection struct {
	network  domain.Network
	provider domain.Provider
}

// Registry holds the current client for the active network.
type Registry struct {
	cfg      Config
	resolver Resolver
	dialer   Dialer
	prefs    storage.PreferenceRepository
	monitor  *health.Monitor
	heads    *headcache.HeadCache

	mu      sync.RWMutex
	current Client

	// switchMu serialises writers; it is never held by readers.
	switchMu sync.Mutex
	checks   singleflight.Group

	lastMu   sync.RWMutex
	lastEval *health.Assessment
}

// New builds the initial client from the persisted network and provider. When
// that selection cannot be built it tries the configured defaults, then the
// fallback provider of the default network.
func New(
	ctx context.Context,
	cfg Config,
	resolver Resolver,
	dialer Dialer,
	prefs storage.PreferenceRepository,
	monitor *health.Monitor,
) (*Registry, error) {
	if cfg.DefaultNetwork == "" {
		cfg.DefaultNetwork = domain.DefaultNetwork
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = domain.DefaultProvider
	}
	if monitor == nil {
		monitor = health.NewMonitor(health.DefaultConfig())
	}

	r := &Registry{
		cfg:      cfg,
		resolver: resolver,
		dialer:   dialer,
		prefs:    prefs,
		monitor:  monitor,
		heads:    headcache.New(cfg.HeadCacheTTL),
	}

	network := r.persistedNetwork(ctx)
	candidates := []selection{
		{network, r.preferredProvider(ctx, network)},
		{cfg.DefaultNetwork, cfg.DefaultProvider},
		{cfg.DefaultNetwork, domain.ProviderFallback},
	}

	var (
		client Client
		err    error
	)
	for i, c := range candidates {
		if i > 0 && c == candidates[i-1] {
			continue
		}
		client, err = r.build(ctx, c.network, c.provider)
		if err == nil {
			break
		}
		slog.Warn("Initial selection unusable",
			"network", c.network,
			"provider", c.provider,
			"error", err,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build initial client: %w", err)
	}

	r.current = client
	slog.Info("Client registry initialized",
		"network", client.Network(),
		"provider", client.Provider(),
		"client", client.ID(),
	)
	return r, nil
}

// Current returns whichever client is current at the moment of the call.
func (r *Registry) Current() Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// SwitchNetwork makes network the active network, served by its preferred
// provider. On a *SwitchError the previous client stays current. A wrapped
// domain.ErrStorage means the switch happened but may not survive a restart.
func (r *Registry) SwitchNetwork(ctx context.Context, network domain.Network) error {
	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	provider := r.preferredProvider(ctx, network)

	next, err := r.build(ctx, network, provider)
	if err != nil {
		metrics.SwitchesTotal.WithLabelValues("switch_network", "error").Inc()
		return &SwitchError{Op: "switch network", Network: network, Provider: provider, Err: err}
	}

	var storeErr error
	if err := r.prefs.SetNetwork(ctx, network); err != nil {
		storeErr = fmt.Errorf("%w: %w", domain.ErrStorage, err)
		slog.Warn("Failed to persist network", "network", network, "error", err)
	}

	r.replace(next)
	metrics.SwitchesTotal.WithLabelValues("switch_network", "ok").Inc()
	slog.Info("Switched network", "network", network, "provider", provider, "client", next.ID())

	return storeErr
}

// SwitchProvider makes provider the preferred provider of the active network
// and rebuilds the current client for it. When provider is already both the
// persisted preference and the provider of the current client this is a no-op.
func (r *Registry) SwitchProvider(ctx context.Context, provider domain.Provider) error {
	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	cur := r.Current()
	network := cur.Network()

	persisted, err := r.prefs.GetProvider(ctx, network)
	if err != nil && !errors.Is(err, storage.ErrPreferenceNotFound) {
		slog.Warn("Failed to read provider preference", "network", network, "error", err)
	}
	if persisted == provider && cur.Provider() == provider {
		metrics.SwitchesTotal.WithLabelValues("switch_provider", "noop").Inc()
		return nil
	}

	next, err := r.build(ctx, network, provider)
	if err != nil {
		metrics.SwitchesTotal.WithLabelValues("switch_provider", "error").Inc()
		return &SwitchError{Op: "switch provider", Network: network, Provider: provider, Err: err}
	}

	var storeErr error
	if persisted != provider {
		if err := r.prefs.SetProvider(ctx, network, provider); err != nil {
			storeErr = fmt.Errorf("%w: %w", domain.ErrStorage, err)
			slog.Warn("Failed to persist provider", "network", network, "provider", provider, "error", err)
		}
	}

	r.replace(next)
	metrics.SwitchesTotal.WithLabelValues("switch_provider", "ok").Inc()
	slog.Info("Switched provider", "network", network, "provider", provider, "client", next.ID())

	return storeErr
}

// CheckHealth assesses the primary provider of the active network and updates
// the persisted preference: primary is preferred while its height advances, the
// fallback provider once it stalls. Primary is assessed even while fallback is
// preferred so it can win the preference back. The current client is never
// swapped here; callers apply the new preference with SwitchProvider.
//
// The assessment takes about samples*interval and runs without holding any
// lock readers need. Concurrent callers share a single in-flight assessment.
// If the preference is changed by a switch while the assessment runs, the
// switch wins and the verdict is not persisted.
func (r *Registry) CheckHealth(ctx context.Context) (domain.Liveness, error) {
	network := r.Current().Network()

	v, err, _ := r.checks.Do(string(network), func() (any, error) {
		return r.refresh(ctx, network)
	})
	return v.(domain.Liveness), err
}

func (r *Registry) refresh(ctx context.Context, network domain.Network) (domain.Liveness, error) {
	provider := r.cfg.DefaultProvider
	before := r.preferredProvider(ctx, network)

	probe, err := r.build(ctx, network, provider)
	if err != nil {
		return "", fmt.Errorf("failed to build probing client: %w", err)
	}
	defer func() {
		_ = probe.Close()
	}()

	a := r.monitor.Assess(ctx, network, provider, probe)

	r.lastMu.Lock()
	r.lastEval = &a
	r.lastMu.Unlock()

	preferred := provider
	if a.Liveness == domain.LivenessStalled {
		preferred = domain.ProviderFallback
	}

	slog.Info("Health check finished",
		"network", network,
		"provider", provider,
		"liveness", a.Liveness,
		"heights", health.Heights(a.Samples),
		"preferred", preferred,
	)

	r.switchMu.Lock()
	defer r.switchMu.Unlock()

	if now := r.preferredProvider(ctx, network); now != before {
		slog.Info("Preference changed during health check, keeping it",
			"network", network,
			"preferred", now,
			"verdict", preferred,
		)
		return a.Liveness, nil
	}

	if err := r.prefs.SetProvider(ctx, network, preferred); err != nil {
		slog.Warn("Failed to persist provider preference", "network", network, "provider", preferred, "error", err)
		return a.Liveness, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	return a.Liveness, nil
}

// LastAssessment returns the most recent health assessment, if any.
func (r *Registry) LastAssessment() (health.Assessment, bool) {
	r.lastMu.RLock()
	defer r.lastMu.RUnlock()
	if r.lastEval == nil {
		return health.Assessment{}, false
	}
	return *r.lastEval, true
}

// LatestHeight runs a one-shot height probe against the current client.
// Unlike samples taken during a health check, failures are returned.
func (r *Registry) LatestHeight(ctx context.Context) (uint64, error) {
	cur := r.Current()
	height, err := r.heads.LatestHeight(ctx, cur.ID(), cur)
	if err != nil {
		if !errors.Is(err, domain.ErrProbe) {
			err = fmt.Errorf("%w: %w", domain.ErrProbe, err)
		}
		return 0, err
	}
	return height, nil
}

// Snapshot describes the current client and the last assessment without any
// I/O: no height probe and no preference read.
func (r *Registry) Snapshot() health.Status {
	cur := r.Current()
	st := health.Status{
		Network:  cur.Network(),
		Provider: cur.Provider(),
		ClientID: cur.ID(),
		BaseURL:  cur.Target().BaseURL,
		ChainID:  cur.Target().ChainID,
	}

	if hr, ok := cur.(healthReporter); ok {
		stats := hr.GetHealth()
		st.Client = &stats
	}
	if last, ok := r.LastAssessment(); ok {
		st.Last = &last
	}
	return st
}

// Status extends Snapshot with the persisted preference and a one-shot height
// probe of the current client.
func (r *Registry) Status(ctx context.Context) health.Status {
	cur := r.Current()
	st := r.Snapshot()
	st.Preferred = r.preferredProvider(ctx, cur.Network())

	height, err := r.heads.LatestHeight(ctx, cur.ID(), cur)
	if err != nil {
		st.HeightError = err.Error()
	} else {
		st.Height = height
	}
	return st
}

// PreferredProvider returns the persisted provider for the active network.
func (r *Registry) PreferredProvider(ctx context.Context) domain.Provider {
	return r.preferredProvider(ctx, r.Current().Network())
}

// Close releases the current client.
func (r *Registry) Close() error {
	return r.Current().Close()
}

func (r *Registry) build(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
) (Client, error) {
	target, err := r.resolver.Resolve(network, provider)
	if err != nil {
		return nil, err
	}

	client, err := r.dialer.Dial(ctx, network, provider, target)
	if err != nil {
		if !errors.Is(err, domain.ErrConstruct) {
			err = fmt.Errorf("%w: %w", domain.ErrConstruct, err)
		}
		return nil, err
	}
	return client, nil
}

func (r *Registry) replace(next Client) {
	r.mu.Lock()
	old := r.current
	r.current = next
	r.mu.Unlock()

	if old == nil {
		return
	}
	r.heads.Invalidate(old.ID())
	if err := old.Close(); err != nil {
		slog.Warn("Failed to close previous client", "client", old.ID(), "error", err)
	}
}

func (r *Registry) persistedNetwork(ctx context.Context) domain.Network {
	stored, err := r.prefs.GetNetwork(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrPreferenceNotFound) {
			slog.Warn("Failed to read persisted network", "error", err)
		}
		return r.cfg.DefaultNetwork
	}
	network, err := domain.ParseNetwork(string(stored))
	if err != nil {
		slog.Warn("Ignoring persisted network", "network", stored, "error", err)
		return r.cfg.DefaultNetwork
	}
	return network
}

func (r *Registry) preferredProvider(ctx context.Context, network domain.Network) domain.Provider {
	stored, err := r.prefs.GetProvider(ctx, network)
	if err != nil {
		if !errors.Is(err, storage.ErrPreferenceNotFound) {
			slog.Warn("Failed to read provider preference", "network", network, "error", err)
		}
		return r.cfg.DefaultProvider
	}
	provider, err := domain.ParseProvider(string(stored))
	if err != nil {
		slog.Warn("Ignoring persisted provider", "network", network, "provider", stored, "error", err)
		return r.cfg.DefaultProvider
	}
	return provider
}
