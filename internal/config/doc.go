// Package config manages todui's persisted configuration file.
//
// The file is the single source of truth for installed plugins and registered
// marketplaces. Every mutation goes through Store.Mutate, which re-reads the
// whole file, applies the change, and writes the result atomically (temp file
// plus rename). Concurrent todui processes are not coordinated; the last
// writer wins. That is acceptable for a single-operator local tool and is a
// documented limitation, not a bug to paper over.
package config
