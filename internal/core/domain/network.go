package domain

import (
	"fmt"
	"strings"
)

// Network is a logical Aleo network, independent of which provider serves it.
type Network string

// Provider is an upstream operator offering API access to a Network.
type Provider string

const (
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
	NetworkLocal   Network = "local" // dev node on the operator's machine

	ProviderPrimary  Provider = "primary"  // Obscura relay
	ProviderFallback Provider = "fallback" // public Aleo explorer
)

// DefaultNetwork and DefaultProvider seed the registry when nothing is persisted.
const (
	DefaultNetwork  = NetworkTestnet
	DefaultProvider = ProviderPrimary
)

// Networks lists every supported network in display order.
var Networks = []Network{NetworkTestnet, NetworkMainnet, NetworkDevnet, NetworkLocal}

// Providers lists every supported provider in preference order.
var Providers = []Provider{ProviderPrimary, ProviderFallback}

// ParseNetwork validates a network tag.
func ParseNetwork(s string) (Network, error) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Networks {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedNetwork, s)
}

// ParseProvider validates a provider tag.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
}

// Target is the concrete address and chain identifier for a (network, provider) pair.
type Target struct {
	BaseURL string `json:"base_url"`
	ChainID string `json:"chain_id"`
}

func (t Target) String() string {
	return t.BaseURL + "/" + t.ChainID
}
