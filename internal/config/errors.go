package config

import "errors"

// Configuration errors.
var (
	// ErrPluginNotConfigured is returned when a plugin has no config entry.
	ErrPluginNotConfigured = errors.New("plugin is not configured")

	// ErrMarketplaceNotConfigured is returned when a marketplace has no config entry.
	ErrMarketplaceNotConfigured = errors.New("marketplace is not configured")

	// ErrMalformedSection is returned when a config section is not a mapping.
	ErrMalformedSection = errors.New("config section must be a mapping")
)
