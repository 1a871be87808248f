// Package health decides whether an endpoint is live, meaning its chain height
// is advancing, rather than merely reachable.
package health

import (
	"time"

	"github.com/vietddude/netswitch/internal/core/domain"
)

// Assessment is the outcome of one health check run.
type Assessment struct {
	Network    domain.Network        `json:"network"`
	Provider   domain.Provider       `json:"provider"`
	Liveness   domain.Liveness       `json:"liveness"`
	Samples    []domain.HeightSample `json:"samples"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
}

// Classify reports Advancing if any consecutive pair of heights strictly
// increases, Stalled otherwise.
func Classify(heights []uint64) domain.Liveness {
	for i := 1; i < len(heights); i++ {
		if heights[i-1] < heights[i] {
			return domain.LivenessAdvancing
		}
	}
	return domain.LivenessStalled
}

// Heights extracts the sample values in order.
func Heights(samples []domain.HeightSample) []uint64 {
	out := make([]uint64, len(samples))
	for i, s := range samples {
		out[i] = s.Value
	}
	return out
}
