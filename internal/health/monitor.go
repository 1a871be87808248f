package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/metrics"
)

// HeightProber reports the latest chain height of an endpoint.
type HeightProber interface {
	LatestHeight(ctx context.Context) (uint64, error)
}

// Config controls the observation window.
type Config struct {
	Samples      int           `yaml:"samples"`
	Interval     time.Duration `yaml:"interval"`
	ProbeTimeout time.Duration `yaml:"probe_timeout"`
}

// DefaultConfig takes four samples three seconds apart.
func DefaultConfig() Config {
	return Config{
		Samples:      4,
		Interval:     3 * time.Second,
		ProbeTimeout: 5 * time.Second,
	}
}

// Monitor samples an endpoint's height over a fixed window.
type Monitor struct {
	cfg   Config
	sleep func(time.Duration)
}

// NewMonitor creates a monitor. Zero Samples and ProbeTimeout take their
// defaults; a zero Interval samples back to back.
func NewMonitor(cfg Config) *Monitor {
	def := DefaultConfig()
	if cfg.Samples <= 0 {
		cfg.Samples = def.Samples
	}
	if cfg.Interval < 0 {
		cfg.Interval = def.Interval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}
	return &Monitor{cfg: cfg, sleep: time.Sleep}
}

// Config returns the effective configuration.
func (m *Monitor) Config() Config {
	return m.cfg
}

// Assess takes the configured number of height samples and classifies them.
//
// The run always completes: a failed or timed-out probe is scored as height 0
// and never retried, and cancelling ctx does not cut the window short. This
// blocks for roughly Samples*Interval and must not be called while holding a
// lock that readers of the current client need.
func (m *Monitor) Assess(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
	prober HeightProber,
) Assessment {
	ctx = context.WithoutCancel(ctx)

	a := Assessment{
		Network:   network,
		Provider:  provider,
		Samples:   make([]domain.HeightSample, 0, m.cfg.Samples),
		StartedAt: time.Now(),
	}

	for i := 0; i < m.cfg.Samples; i++ {
		if i > 0 && m.cfg.Interval > 0 {
			m.sleep(m.cfg.Interval)
		}
		sample := m.probe(ctx, prober)
		slog.Debug("Height sample",
			"network", network,
			"provider", provider,
			"sample", i+1,
			"height", sample.Value,
			"error", sample.Err,
		)
		a.Samples = append(a.Samples, sample)
	}

	a.Liveness = Classify(Heights(a.Samples))
	a.FinishedAt = time.Now()

	advancing := 0.0
	if a.Liveness == domain.LivenessAdvancing {
		advancing = 1
	}
	metrics.HealthChecksTotal.WithLabelValues(string(network), string(provider), string(a.Liveness)).Inc()
	metrics.ProviderAdvancing.WithLabelValues(string(network), string(provider)).Set(advancing)

	return a
}

func (m *Monitor) probe(ctx context.Context, prober HeightProber) domain.HeightSample {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	type result struct {
		height uint64
		err    error
	}
	done := make(chan result, 1)
	go func() {
		height, err := prober.LatestHeight(probeCtx)
		done <- result{height, err}
	}()

	// The prober may ignore its context; the sample is lost either way.
	var r result
	select {
	case r = <-done:
	case <-probeCtx.Done():
		r.err = probeCtx.Err()
	}

	sample := domain.HeightSample{Value: r.height, ObservedAt: time.Now()}
	if r.err != nil {
		sample.Value = 0
		sample.Err = r.err.Error()
	}
	return sample
}

// Assess runs a one-off assessment with the given window.
func Assess(ctx context.Context, prober HeightProber, samples int, interval time.Duration) domain.Liveness {
	m := NewMonitor(Config{Samples: samples, Interval: interval})
	return m.Assess(ctx, "", "", prober).Liveness
}
