// Package endpoint maps a (network, provider) pair to a connection target.
//
// The set of networks is closed: supporting a new network means adding a case
// to Resolve, not adding configuration.
package endpoint

import (
	"fmt"

	"github.com/vietddude/netswitch/internal/core/domain"
)

const (
	explorerURL   = "https://api.explorer.aleo.org/v1"
	localNodePort = "3030"
)

// Credentials holds the provider secrets injected at startup.
type Credentials struct {
	ObscuraTestnetKey string `yaml:"obscura_testnet_key"`
	ObscuraMainnetKey string `yaml:"obscura_mainnet_key"`
	ObscuraDevnetKey  string `yaml:"obscura_devnet_key"`
	DevNodeIP         string `yaml:"dev_node_ip"`
}

// Resolver resolves connection targets. It holds no mutable state.
type Resolver struct {
	creds Credentials
}

// NewResolver creates a resolver for the given credentials.
func NewResolver(creds Credentials) Resolver {
	return Resolver{creds: creds}
}

// Resolve returns the target for network served by provider.
func (r Resolver) Resolve(network domain.Network, provider domain.Provider) (domain.Target, error) {
	if provider != domain.ProviderPrimary && provider != domain.ProviderFallback {
		return domain.Target{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, provider)
	}

	switch network {
	case domain.NetworkTestnet:
		return r.obscuraOrExplorer(provider, "testnet3", r.creds.ObscuraTestnetKey, "testnet3"), nil
	case domain.NetworkMainnet:
		return r.obscuraOrExplorer(provider, "mainnet", r.creds.ObscuraMainnetKey, "mainnet"), nil
	case domain.NetworkDevnet:
		return r.obscuraOrExplorer(provider, "devnet", r.creds.ObscuraDevnetKey, "devnet"), nil
	case domain.NetworkLocal:
		// A dev node serves itself; the provider tag is irrelevant.
		return domain.Target{
			BaseURL: fmt.Sprintf("http://%s:%s", r.creds.DevNodeIP, localNodePort),
			ChainID: "testnet3",
		}, nil
	default:
		return domain.Target{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedNetwork, network)
	}
}

func (r Resolver) obscuraOrExplorer(
	provider domain.Provider,
	subdomain, key, chainID string,
) domain.Target {
	if provider == domain.ProviderFallback {
		return domain.Target{BaseURL: explorerURL, ChainID: chainID}
	}
	return domain.Target{
		BaseURL: fmt.Sprintf("https://aleo-%s.obscura.build/v1/%s", subdomain, key),
		ChainID: chainID,
	}
}
