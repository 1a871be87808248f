package domain

import "time"

// Liveness classifies whether an endpoint's chain height is progressing.
type Liveness string

const (
	LivenessAdvancing Liveness = "advancing"
	LivenessStalled   Liveness = "stalled"
)

// Status maps liveness onto the status reported to the application: a stalled
// endpoint is a warning, not an outage.
func (l Liveness) Status() string {
	if l == LivenessAdvancing {
		return "up"
	}
	return "warning"
}

// HeightSample is one height observation taken during a health check.
// Value is 0 when the probe failed.
type HeightSample struct {
	Value      uint64    `json:"value"`
	ObservedAt time.Time `json:"observed_at"`
	Err        string    `json:"error,omitempty"`
}

// ClientHealth summarises the requests made through one client instance.
type ClientHealth struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastHeight    uint64        `json:"last_height"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
}
