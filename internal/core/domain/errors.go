package domain

import "errors"

var (
	// ErrUnsupportedNetwork is returned when a network tag is outside the supported set
	ErrUnsupportedNetwork = errors.New("unsupported network")

	// ErrUnsupportedProvider is returned when a provider tag is outside the supported set
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrConstruct is returned when a client cannot be built for a target
	ErrConstruct = errors.New("construct client")

	// ErrProbe is returned when a single height query fails
	ErrProbe = errors.New("height probe failed")

	// ErrStorage is returned when persisted preferences cannot be read or written
	ErrStorage = errors.New("preference storage")
)
