// Package extension holds the registries plugins populate to extend the host
// UI and command surface: task columns, detail sections, keybindings,
// status-bar items, modals, sidebar sections, palette commands, and views.
//
// All registries share the same conflict rule: the first registration for an
// identifier wins, duplicates are dropped with a warning, and there is no
// override mechanism. Registration happens on the single plugin-loading
// goroutine, which is what makes first-wins deterministic.
package extension
