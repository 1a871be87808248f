package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/infra/storage"
)

const defaultKeyPrefix = "netswitch"

// Client stores preferences in Redis.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Config holds Redis connection configuration.
type Config struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	KeyPrefix string `yaml:"key_prefix"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}

	return &Client{rdb: rdb, prefix: prefix}, nil
}

// Health pings the Redis server.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func networkKey(prefix string) string {
	return fmt.Sprintf("%s:network", prefix)
}

func providerKey(prefix string, network domain.Network) string {
	return fmt.Sprintf("%s:provider:%s", prefix, network)
}

// GetNetwork returns the persisted network.
func (c *Client) GetNetwork(ctx context.Context) (domain.Network, error) {
	v, err := c.get(ctx, networkKey(c.prefix))
	return domain.Network(v), err
}

// SetNetwork persists the selected network.
func (c *Client) SetNetwork(ctx context.Context, network domain.Network) error {
	return c.set(ctx, networkKey(c.prefix), string(network))
}

// GetProvider returns the persisted provider for network.
func (c *Client) GetProvider(ctx context.Context, network domain.Network) (domain.Provider, error) {
	v, err := c.get(ctx, providerKey(c.prefix, network))
	return domain.Provider(v), err
}

// SetProvider persists the preferred provider for network.
func (c *Client) SetProvider(ctx context.Context, network domain.Network, provider domain.Provider) error {
	return c.set(ctx, providerKey(c.prefix, network), string(provider))
}

func (c *Client) get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrPreferenceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get %s failed: %w", key, err)
	}
	return val, nil
}

// Preferences never expire.
func (c *Client) set(ctx context.Context, key, value string) error {
	if err := c.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s failed: %w", key, err)
	}
	return nil
}
