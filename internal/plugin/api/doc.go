// Package api builds the td table each plugin receives from require("td").
//
// One Context exists per plugin. Modules are plain Lua tables of functions
// closing over the context; a module whose backing dependency is absent
// (no UI controller in headless mode, a nil provider) is simply not
// installed, so plugins can feature-detect with `if td.ui then ... end`.
//
// All td functions run on the goroutine that drives the plugin's Lua state.
// Provider calls block; plugins that need long work should keep it out of
// render callbacks.
package api
