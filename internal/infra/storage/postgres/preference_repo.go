package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/infra/storage"
)

const networkKey = "network"

func providerKey(network domain.Network) string {
	return fmt.Sprintf("provider:%s", network)
}

// PreferenceRepo implements storage.PreferenceRepository using PostgreSQL.
type PreferenceRepo struct {
	db *DB
}

// NewPreferenceRepo creates a new PostgreSQL preference repository.
func NewPreferenceRepo(db *DB) *PreferenceRepo {
	return &PreferenceRepo{db: db}
}

// GetNetwork returns the persisted network.
func (r *PreferenceRepo) GetNetwork(ctx context.Context) (domain.Network, error) {
	v, err := r.get(ctx, networkKey)
	return domain.Network(v), err
}

// SetNetwork persists the selected network.
func (r *PreferenceRepo) SetNetwork(ctx context.Context, network domain.Network) error {
	return r.set(ctx, networkKey, string(network))
}

// GetProvider returns the persisted provider for network.
func (r *PreferenceRepo) GetProvider(ctx context.Context, network domain.Network) (domain.Provider, error) {
	v, err := r.get(ctx, providerKey(network))
	return domain.Provider(v), err
}

// SetProvider persists the preferred provider for network.
func (r *PreferenceRepo) SetProvider(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
) error {
	return r.set(ctx, providerKey(network), string(provider))
}

// Health pings the database.
func (r *PreferenceRepo) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// Close closes the connection pool.
func (r *PreferenceRepo) Close() error {
	return r.db.Close()
}

func (r *PreferenceRepo) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM preferences WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return value, nil
}

func (r *PreferenceRepo) set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save preference %s: %w", key, err)
	}
	return nil
}
