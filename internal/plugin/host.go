package plugin

import (
	"context"
	"fmt"
	"sync"

	glua "github.com/yuin/gopher-lua"

	plua "github.com/todui/todui/internal/plugin/lua"
)

// Lua entry points a plugin may define. All are optional.
const (
	fnSetup      = "setup"
	fnActivate   = "activate"
	fnReady      = "ready"
	fnDeactivate = "deactivate"
)

// Host owns a single plugin's runtime and lifecycle.
type Host struct {
	mu sync.RWMutex

	name     string
	manifest *Manifest
	runtime  *plua.Runtime

	state  State
	reason error

	config map[string]any
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostConfig supplies the table passed to the plugin's setup function.
func WithHostConfig(config map[string]any) HostOption {
	return func(h *Host) {
		h.config = config
	}
}

// NewHost creates an unloaded host for the manifest.
func NewHost(manifest *Manifest, opts ...HostOption) (*Host, error) {
	if manifest == nil {
		return nil, ErrNilManifest
	}
	h := &Host{
		name:     manifest.Name,
		manifest: manifest,
		state:    StateUnloaded,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Name returns the plugin name.
func (h *Host) Name() string { return h.name }

// Manifest returns the plugin manifest.
func (h *Host) Manifest() *Manifest { return h.manifest }

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Error returns the failure that put the host into StateFailed, if any.
func (h *Host) Error() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reason
}

// Load creates the runtime and runs the plugin's entry file. The prepare
// callback, if non-nil, runs after runtime creation and before the entry
// file, which is where capability modules get preloaded.
func (h *Host) Load(ctx context.Context, prepare func(*plua.Runtime) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateUnloaded {
		return ErrAlreadyLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	runtime, err := plua.NewRuntime(h.manifest.Dir())
	if err != nil {
		return h.fail(fmt.Errorf("create runtime: %w", err))
	}

	if prepare != nil {
		if err := prepare(runtime); err != nil {
			runtime.Close()
			return h.fail(fmt.Errorf("prepare runtime: %w", err))
		}
	}

	if err := runtime.DoFile(h.manifest.MainPath()); err != nil {
		runtime.Close()
		return h.fail(fmt.Errorf("run %s: %w", h.manifest.Main, err))
	}

	h.runtime = runtime
	h.state = StateLoaded
	h.reason = nil
	return nil
}

// Activate calls setup(config) and then activate(). Both are optional; a
// failure in either marks the host failed.
func (h *Host) Activate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateLoaded {
		return ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if h.runtime.HasGlobal(fnSetup) {
		cfg := plua.ToLua(h.runtime.State(), h.config)
		if _, err := h.runtime.Call(fnSetup, cfg); err != nil {
			return h.fail(fmt.Errorf("setup: %w", err))
		}
	}

	if h.runtime.HasGlobal(fnActivate) {
		if _, err := h.runtime.Call(fnActivate); err != nil {
			return h.fail(fmt.Errorf("activate: %w", err))
		}
	}

	h.state = StateActive
	return nil
}

// Ready calls the plugin's ready function, which fires after every enabled
// plugin has activated. Errors are returned but do not change state; a
// plugin that failed ready keeps its registrations.
func (h *Host) Ready(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateActive {
		return ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !h.runtime.HasGlobal(fnReady) {
		return nil
	}
	if _, err := h.runtime.Call(fnReady); err != nil {
		return fmt.Errorf("ready: %w", err)
	}
	return nil
}

// Deactivate calls the plugin's deactivate function. The host drops back to
// StateLoaded even if deactivate errors.
func (h *Host) Deactivate(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateActive {
		return nil
	}

	var err error
	if h.runtime.HasGlobal(fnDeactivate) {
		_, err = h.runtime.Call(fnDeactivate)
	}
	h.state = StateLoaded
	return err
}

// Unload deactivates if needed and closes the runtime.
func (h *Host) Unload(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateUnloaded {
		return
	}
	if h.state == StateActive && h.runtime.HasGlobal(fnDeactivate) {
		_, _ = h.runtime.Call(fnDeactivate)
	}
	if h.runtime != nil {
		h.runtime.Close()
		h.runtime = nil
	}
	h.state = StateUnloaded
	h.reason = nil
}

// Call invokes a global function in the plugin with Go arguments.
func (h *Host) Call(fn string, args ...any) ([]any, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.runtime == nil {
		return nil, ErrNotLoaded
	}

	luaArgs := make([]glua.LValue, len(args))
	for i, arg := range args {
		luaArgs[i] = plua.ToLua(h.runtime.State(), arg)
	}
	results, err := h.runtime.Call(fn, luaArgs...)
	if err != nil {
		return nil, err
	}

	out := make([]any, len(results))
	for i, res := range results {
		out[i] = plua.ToGo(res)
	}
	return out, nil
}

// HasFunction reports whether the plugin defines the named global function.
func (h *Host) HasFunction(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.runtime != nil && h.runtime.HasGlobal(name)
}

// fail records err, moves to StateFailed, and returns err. Callers hold the
// write lock.
func (h *Host) fail(err error) error {
	h.state = StateFailed
	h.reason = err
	return err
}
