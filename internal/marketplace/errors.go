package marketplace

import "errors"

var (
	// ErrOfficialImmutable is returned for attempts to add, remove, or
	// shadow the built-in official marketplace.
	ErrOfficialImmutable = errors.New("marketplace: the official marketplace cannot be modified")

	// ErrAlreadyRegistered is returned when adding a marketplace whose name
	// is taken.
	ErrAlreadyRegistered = errors.New("marketplace: already registered")

	// ErrUnknown is returned when a named marketplace is not registered.
	ErrUnknown = errors.New("marketplace: not registered")

	// ErrInsecureSource is returned for plain-http marketplace URLs.
	ErrInsecureSource = errors.New("marketplace: http sources are not allowed, use https")

	// ErrBadSource is returned when a source string cannot be understood.
	ErrBadSource = errors.New("marketplace: unrecognized source")

	// ErrInvalidName is returned when a marketplace name, derived or
	// catalog-declared, is not a plain identifier.
	ErrInvalidName = errors.New("marketplace: invalid marketplace name")

	// ErrPluginNotFound is returned when no reachable marketplace lists a
	// plugin name.
	ErrPluginNotFound = errors.New("marketplace: plugin not found")
)
