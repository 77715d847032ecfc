// Package marketplace resolves plugin catalogs. A marketplace is anything
// that can produce a marketplace.json manifest: a git repository (the
// "github:" shorthand or a full git URL), an https endpoint, or a local
// directory.
//
// The official marketplace is compiled in and always listed first; user
// marketplaces come from configuration in registration order. Git and https
// marketplaces keep an on-disk cache so discovery degrades to stale data
// instead of failing when the network is down. A marketplace that cannot be
// fetched and has no cache is skipped with a warning during discovery;
// only explicit per-marketplace operations treat that as an error.
package marketplace
