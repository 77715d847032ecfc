package installer

import "errors"

var (
	// ErrInvalidName marks a plugin name that fails validation. Names are
	// checked before any filesystem or subprocess work.
	ErrInvalidName = errors.New("installer: invalid plugin name")

	// ErrAlreadyInstalled is returned by Install for a configured plugin.
	ErrAlreadyInstalled = errors.New("installer: plugin already installed")

	// ErrNotInstalled is returned by operations on an unconfigured plugin.
	ErrNotInstalled = errors.New("installer: plugin not installed")
)
