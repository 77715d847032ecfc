// Package plugin loads and runs Lua plugins.
//
// Each installed plugin is a directory under the plugins root holding a
// plugin.json manifest and a Lua entry file. A Host owns one plugin's
// runtime and walks it through the lifecycle: Load runs the entry file,
// Activate calls setup(config) then activate(), Ready fires once all
// plugins are up, and Deactivate/Unload tear down in reverse.
//
// The Loader resolves the enabled plugin list from configuration in
// declaration order, honoring each entry's after list, and isolates
// failures so one broken plugin never takes down the rest. The System ties
// the loader to the hook bus, extension registries, storage, and the
// capability API.
package plugin
