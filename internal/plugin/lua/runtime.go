package lua

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Runtime wraps one plugin's Lua state.
type Runtime struct {
	mu     sync.Mutex
	L      *lua.LState
	dir    string
	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// NewRuntime creates a Lua state rooted at the plugin directory. Only the
// safe standard libraries are opened; require resolves against dir and its
// lua_modules tree.
func NewRuntime(dir string, opts ...Option) (*Runtime, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.LoadLibName, lua.OpenPackage},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		if err := L.PCall(1, 0, nil); err != nil {
			L.Close()
			return nil, fmt.Errorf("open lua library %s: %w", open.name, err)
		}
	}

	r := &Runtime{L: L, dir: dir}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.setSearchPath(); err != nil {
		L.Close()
		return nil, err
	}
	return r, nil
}

// setSearchPath points require at the plugin directory and its installed
// dependency tree.
func (r *Runtime) setSearchPath() error {
	roots := []string{
		filepath.Join(r.dir, "?.lua"),
		filepath.Join(r.dir, "?", "init.lua"),
		filepath.Join(r.dir, "lua_modules", "share", "lua", "5.1", "?.lua"),
		filepath.Join(r.dir, "lua_modules", "share", "lua", "5.1", "?", "init.lua"),
	}

	pkg, ok := r.L.GetGlobal(lua.LoadLibName).(*lua.LTable)
	if !ok {
		return fmt.Errorf("package library not loaded")
	}
	pkg.RawSetString("path", lua.LString(strings.Join(roots, ";")))
	// No native modules from plugins.
	pkg.RawSetString("cpath", lua.LString(""))
	return nil
}

// Preload registers a Go-backed module so plugin code can require it by
// name. It must be called before the plugin's entry file runs.
func (r *Runtime) Preload(name string, loader lua.LGFunction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.L.PreloadModule(name, loader)
}

// DoFile runs a Lua file with panic recovery.
func (r *Runtime) DoFile(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRuntimeClosed
	}
	return r.protect(func() error { return r.L.DoFile(path) })
}

// DoString runs a Lua chunk with panic recovery.
func (r *Runtime) DoString(code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRuntimeClosed
	}
	return r.protect(func() error { return r.L.DoString(code) })
}

// HasGlobal reports whether a global function with the given name exists.
func (r *Runtime) HasGlobal(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	return r.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call invokes a global Lua function. Missing functions are an error; use
// HasGlobal first for optional entry points.
func (r *Runtime) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRuntimeClosed
	}

	fnVal := r.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("function %q not found (got %s)", fn, fnVal.Type())
	}

	top := r.L.GetTop()
	r.L.Push(fnVal)
	for _, arg := range args {
		r.L.Push(arg)
	}

	if err := r.protect(func() error {
		return r.L.PCall(len(args), lua.MultRet, nil)
	}); err != nil {
		r.L.SetTop(top)
		return nil, err
	}

	n := r.L.GetTop() - top
	if n <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		results[i] = r.L.Get(top + i + 1)
	}
	r.L.Pop(n)
	return results, nil
}

// State exposes the raw gopher-lua state for module construction. Callers
// must hold no expectation of locking; use it only during single-threaded
// setup and dispatch.
func (r *Runtime) State() *lua.LState {
	return r.L
}

// Dir returns the plugin directory the runtime is rooted at.
func (r *Runtime) Dir() string {
	return r.dir
}

// Closed reports whether Close has been called.
func (r *Runtime) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close releases the Lua state. Further operations fail with
// ErrRuntimeClosed.
func (r *Runtime) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.L.Close()
	r.closed = true
}

func (r *Runtime) protect(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}
