package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HeightProbesTotal tracks height probes per network, provider and outcome
	HeightProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netswitch_height_probes_total",
			Help: "Total number of latest-height probes",
		},
		[]string{"network", "provider", "result"},
	)

	// HeightProbeLatency tracks probe latency
	HeightProbeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netswitch_height_probe_latency_seconds",
			Help:    "Latest-height probe latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"network", "provider"},
	)

	// LatestHeight tracks the last height observed per network and provider
	LatestHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netswitch_latest_height",
			Help: "Last chain height reported by the provider",
		},
		[]string{"network", "provider"},
	)

	// SwitchesTotal tracks client swaps by operation and outcome
	SwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netswitch_switches_total",
			Help: "Total number of network/provider switch attempts",
		},
		[]string{"op", "result"},
	)

	// HealthChecksTotal tracks completed health assessments by verdict
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netswitch_health_checks_total",
			Help: "Total number of completed health assessments",
		},
		[]string{"network", "provider", "liveness"},
	)

	// ProviderAdvancing is 1 when the last assessment of a provider was advancing
	ProviderAdvancing = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netswitch_provider_advancing",
			Help: "1 if the last health assessment saw the chain height advancing",
		},
		[]string{"network", "provider"},
	)

	// BreakerState tracks the client circuit breaker state (0 closed, 1 half-open, 2 open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netswitch_client_breaker_state",
			Help: "Circuit breaker state of the height client",
		},
		[]string{"network", "provider"},
	)
)
