// Package aleo implements the chain client used by the registry: a thin REST
// client for the Aleo explorer-style API that only knows how to build itself
// for a target and ask for the latest block height.
package aleo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/metrics"
)

const maxBodySize = 1 << 16

// Config holds client transport settings.
type Config struct {
	Timeout         time.Duration `yaml:"timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"` // consecutive failures before the breaker opens
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// Client is an immutable handle to one network endpoint.
type Client struct {
	id         string
	network    domain.Network
	provider   domain.Provider
	target     domain.Target
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[uint64]

	mu           sync.RWMutex
	health       domain.ClientHealth
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int
}

// NewClient builds a client for target. It performs no network I/O; a target
// that cannot be addressed fails with domain.ErrConstruct.
func NewClient(
	network domain.Network,
	provider domain.Provider,
	target domain.Target,
	cfg Config,
) (*Client, error) {
	if err := validateTarget(target); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConstruct, err)
	}

	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = def.BreakerCooldown
	}

	c := &Client{
		id:       uuid.NewString(),
		network:  network,
		provider: provider,
		target:   target,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: domain.ClientHealth{Available: true},
	}

	labels := []string{string(network), string(provider)}
	c.breaker = gobreaker.NewCircuitBreaker[uint64](gobreaker.Settings{
		Name:        fmt.Sprintf("%s/%s", network, provider),
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(labels...).Set(float64(to))
		},
	})

	return c, nil
}

func validateTarget(t domain.Target) error {
	if t.ChainID == "" {
		return errors.New("empty chain id")
	}
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("missing host in %q", t.BaseURL)
	}
	// A trailing empty path segment means a credential was not configured.
	if strings.HasSuffix(u.Path, "/v1/") {
		return fmt.Errorf("missing api key in %q", t.BaseURL)
	}
	return nil
}

// ID uniquely identifies this client instance.
func (c *Client) ID() string { return c.id }

// Network returns the logical network the client was built for.
func (c *Client) Network() domain.Network { return c.network }

// Provider returns the provider the client was built for.
func (c *Client) Provider() domain.Provider { return c.provider }

// Target returns the connection target.
func (c *Client) Target() domain.Target { return c.target }

// LatestHeight fetches the current chain height from the endpoint.
func (c *Client) LatestHeight(ctx context.Context) (uint64, error) {
	start := time.Now()

	height, err := c.breaker.Execute(func() (uint64, error) {
		return c.fetchHeight(ctx)
	})

	latency := time.Since(start)
	labels := []string{string(c.network), string(c.provider)}
	metrics.HeightProbeLatency.WithLabelValues(labels...).Observe(latency.Seconds())

	if err != nil {
		c.recordFailure()
		metrics.HeightProbesTotal.WithLabelValues(string(c.network), string(c.provider), "error").Inc()
		return 0, fmt.Errorf("%w: %s: %w", domain.ErrProbe, c.target.BaseURL, err)
	}

	c.recordSuccess(latency, height)
	metrics.HeightProbesTotal.WithLabelValues(string(c.network), string(c.provider), "ok").Inc()
	metrics.LatestHeight.WithLabelValues(labels...).Set(float64(height))
	return height, nil
}

func (c *Client) fetchHeight(ctx context.Context) (uint64, error) {
	endpoint := strings.TrimRight(c.target.BaseURL, "/") + "/" + c.target.ChainID + "/latest/height"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("height request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var height uint64
	if err := json.Unmarshal(body, &height); err != nil {
		return 0, fmt.Errorf("parse height %q: %w", strings.TrimSpace(string(body)), err)
	}

	return height, nil
}

// GetHealth returns request statistics for the client.
func (c *Client) GetHealth() domain.ClientHealth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) recordSuccess(latency time.Duration, height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.successCount++
	c.requestCount++
	c.totalLatency += latency
	c.health.LastSuccessAt = time.Now()
	c.health.LastHeight = height
	c.health.Available = true

	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)
	c.health.Latency = c.totalLatency / time.Duration(c.successCount)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount++
	c.requestCount++
	c.health.LastFailureAt = time.Now()
	c.health.ErrorRate = float64(c.failureCount) / float64(c.requestCount)

	if c.health.ErrorRate > 0.5 {
		c.health.Available = false
	}
}
