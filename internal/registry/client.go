package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vietddude/netswitch/internal/core/domain"
)

// Client is an immutable handle to one network endpoint. Replacing the active
// network always means building a new Client.
type Client interface {
	// ID uniquely identifies the client instance
	ID() string

	// Network returns the logical network the client serves
	Network() domain.Network

	// Provider returns the upstream provider the client talks to
	Provider() domain.Provider

	// Target returns the connection target the client was built for
	Target() domain.Target

	// LatestHeight queries the endpoint's current chain height
	LatestHeight(ctx context.Context) (uint64, error)

	// Close releases idle resources. Readers that still hold the client may
	// keep using it afterwards.
	Close() error
}

// healthReporter is implemented by clients that keep request statistics.
type healthReporter interface {
	GetHealth() domain.ClientHealth
}

// Dialer constructs clients for resolved targets.
type Dialer interface {
	Dial(
		ctx context.Context,
		network domain.Network,
		provider domain.Provider,
		target domain.Target,
	) (Client, error)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
	target domain.Target,
) (Client, error)

func (f DialerFunc) Dial(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
	target domain.Target,
) (Client, error) {
	return f(ctx, network, provider, target)
}

// Resolver maps a (network, provider) pair to a target.
type Resolver interface {
	Resolve(network domain.Network, provider domain.Provider) (domain.Target, error)
}

// SwitchError reports a switch that was aborted. The previously current client
// is guaranteed to still be active.
type SwitchError struct {
	Op       string
	Network  domain.Network
	Provider domain.Provider
	Err      error
}

func (e *SwitchError) Error() string {
	return fmt.Sprintf("%s to %s/%s: %v", e.Op, e.Network, e.Provider, e.Err)
}

func (e *SwitchError) Unwrap() error {
	return e.Err
}

// IsSwitchError reports whether err aborted a switch.
func IsSwitchError(err error) bool {
	var se *SwitchError
	return errors.As(err, &se)
}
