package memory

import (
	"context"
	"sync"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/infra/storage"
)

// PreferenceRepo keeps preferences in process memory. Nothing survives a restart.
type PreferenceRepo struct {
	mu        sync.RWMutex
	network   domain.Network
	providers map[domain.Network]domain.Provider
}

func NewPreferenceRepo() *PreferenceRepo {
	return &PreferenceRepo{
		providers: make(map[domain.Network]domain.Provider),
	}
}

func (r *PreferenceRepo) GetNetwork(ctx context.Context) (domain.Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.network == "" {
		return "", storage.ErrPreferenceNotFound
	}
	return r.network, nil
}

func (r *PreferenceRepo) SetNetwork(ctx context.Context, network domain.Network) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.network = network
	return nil
}

func (r *PreferenceRepo) GetProvider(ctx context.Context, network domain.Network) (domain.Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[network]
	if !ok {
		return "", storage.ErrPreferenceNotFound
	}
	return p, nil
}

func (r *PreferenceRepo) SetProvider(ctx context.Context, network domain.Network, provider domain.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[network] = provider
	return nil
}

func (r *PreferenceRepo) Close() error {
	return nil
}
