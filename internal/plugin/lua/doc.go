// Package lua embeds the plugin scripting runtime. Each plugin gets its own
// Runtime, a gopher-lua state opened with a restricted library set: base,
// table, string, math, and the module loader. The io, os, and debug
// libraries stay closed.
//
// A gopher-lua state is not goroutine-safe. The Runtime serializes access
// with a mutex, and all plugin entry points are invoked from the single
// loading goroutine anyway.
//
// The require path is rooted at the plugin's install directory plus its
// lua_modules tree, so plugins can require both their own files and
// dependencies installed by the package manager.
package lua
