package storage

import (
	"context"
	"errors"

	"github.com/vietddude/netswitch/internal/core/domain"
)

var (
	// ErrPreferenceNotFound is returned when no preference has been persisted yet
	ErrPreferenceNotFound = errors.New("preference not found")
)

// PreferenceRepository persists the user's network and provider choices across restarts.
type PreferenceRepository interface {
	// GetNetwork returns the last selected logical network
	GetNetwork(ctx context.Context) (domain.Network, error)

	// SetNetwork records the selected logical network
	SetNetwork(ctx context.Context, network domain.Network) error

	// GetProvider returns the preferred provider for a network
	GetProvider(ctx context.Context, network domain.Network) (domain.Provider, error)

	// SetProvider records the preferred provider for a network
	SetProvider(ctx context.Context, network domain.Network, provider domain.Provider) error

	// Close releases the underlying connection
	Close() error
}
