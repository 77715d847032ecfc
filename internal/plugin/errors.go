package plugin

import "errors"

var (
	// ErrNilManifest is returned when a host is created without a manifest.
	ErrNilManifest = errors.New("plugin: nil manifest")

	// ErrAlreadyLoaded is returned when Load is called on a loaded host.
	ErrAlreadyLoaded = errors.New("plugin: already loaded")

	// ErrNotLoaded is returned by operations that require a loaded plugin.
	ErrNotLoaded = errors.New("plugin: not loaded")

	// ErrMissingName marks a manifest without a name field.
	ErrMissingName = errors.New("manifest: name is required")

	// ErrInvalidName marks a name that fails validation.
	ErrInvalidName = errors.New("manifest: invalid name")

	// ErrMissingVersion marks a manifest without a version field.
	ErrMissingVersion = errors.New("manifest: version is required")

	// ErrInvalidVersion marks a version that is not valid semver.
	ErrInvalidVersion = errors.New("manifest: version must be valid semver")

	// ErrInvalidMain marks a main entry that is not a .lua file inside the
	// plugin directory.
	ErrInvalidMain = errors.New("manifest: invalid main entry")

	// ErrIncompatibleEngine marks a plugin whose engines.todui constraint
	// excludes the running application version.
	ErrIncompatibleEngine = errors.New("manifest: incompatible application version")
)
