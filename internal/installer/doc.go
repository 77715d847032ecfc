// Package installer materializes plugins from marketplace sources into the
// plugins directory and keeps the persisted configuration in step.
//
// The config entry is always committed last: a crash mid-install leaves an
// unregistered directory, never an enabled entry pointing at a half-written
// one. The next install of the same name reclaims such orphans.
package installer
