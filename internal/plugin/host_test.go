package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writePlugin(t *testing.T, root, name, code string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name": "` + name + `", "version": "1.0.0"}`
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "init.lua"), []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func loadTestHost(t *testing.T, code string, opts ...HostOption) *Host {
	t.Helper()
	dir := writePlugin(t, t.TempDir(), "p", code)
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHost(m, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { h.Unload(context.Background()) })
	return h
}

func TestHostLifecycle(t *testing.T) {
	h := loadTestHost(t, `
		calls = {}
		function setup(config)
			table.insert(calls, "setup:" .. tostring(config.greeting))
		end
		function activate()
			table.insert(calls, "activate")
		end
		function ready()
			table.insert(calls, "ready")
		end
		function deactivate()
			table.insert(calls, "deactivate")
		end
	`, WithHostConfig(map[string]any{"greeting": "hi"}))

	ctx := context.Background()

	if err := h.Load(ctx, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if h.State() != StateLoaded {
		t.Errorf("state after Load = %v, want loaded", h.State())
	}

	if err := h.Activate(ctx); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if h.State() != StateActive {
		t.Errorf("state after Activate = %v, want active", h.State())
	}

	if err := h.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
	if err := h.Deactivate(ctx); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if h.State() != StateLoaded {
		t.Errorf("state after Deactivate = %v, want loaded", h.State())
	}
}

func TestHostCallOrder(t *testing.T) {
	h := loadTestHost(t, `
		order = ""
		function setup(config) order = order .. "s:" .. tostring(config.greeting) end
		function activate() order = order .. ",a" end
		function ready() order = order .. ",r" end
		function get_order() return order end
	`, WithHostConfig(map[string]any{"greeting": "hi"}))

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := h.Activate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := h.Ready(ctx); err != nil {
		t.Fatal(err)
	}

	got, err := h.Call("get_order")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(got) != 1 || got[0] != "s:hi,a,r" {
		t.Errorf("order = %v, want [s:hi,a,r]", got)
	}
}

func TestHostEntryPointsOptional(t *testing.T) {
	h := loadTestHost(t, `x = 1`)

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := h.Activate(ctx); err != nil {
		t.Fatalf("Activate() with no entry points = %v, want nil", err)
	}
	if err := h.Ready(ctx); err != nil {
		t.Fatalf("Ready() with no entry points = %v, want nil", err)
	}
}

func TestHostLoadFailure(t *testing.T) {
	h := loadTestHost(t, `this is not lua`)

	if err := h.Load(context.Background(), nil); err == nil {
		t.Fatal("Load() of broken plugin should fail")
	}
	if h.State() != StateFailed {
		t.Errorf("state = %v, want failed", h.State())
	}
	if h.Error() == nil {
		t.Error("Error() = nil after failed load")
	}
}

func TestHostActivateFailure(t *testing.T) {
	h := loadTestHost(t, `function activate() error("boom") end`)

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := h.Activate(ctx); err == nil {
		t.Fatal("Activate() should surface the lua error")
	}
	if h.State() != StateFailed {
		t.Errorf("state = %v, want failed", h.State())
	}
}

func TestHostDoubleLoad(t *testing.T) {
	h := loadTestHost(t, `x = 1`)

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := h.Load(ctx, nil); err != ErrAlreadyLoaded {
		t.Errorf("second Load() = %v, want ErrAlreadyLoaded", err)
	}
}

func TestHostUnloadCallsDeactivate(t *testing.T) {
	h := loadTestHost(t, `
		function activate() end
		function deactivate() end
	`)

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if err := h.Activate(ctx); err != nil {
		t.Fatal(err)
	}

	h.Unload(ctx)
	if h.State() != StateUnloaded {
		t.Errorf("state after Unload = %v, want unloaded", h.State())
	}
	if _, err := h.Call("deactivate"); err != ErrNotLoaded {
		t.Errorf("Call() after Unload = %v, want ErrNotLoaded", err)
	}
}

func TestHostHasFunction(t *testing.T) {
	h := loadTestHost(t, `function custom_fn() return 42 end`)

	ctx := context.Background()
	if err := h.Load(ctx, nil); err != nil {
		t.Fatal(err)
	}

	if !h.HasFunction("custom_fn") {
		t.Error("HasFunction(custom_fn) = false")
	}
	if h.HasFunction("absent") {
		t.Error("HasFunction(absent) = true")
	}

	got, err := h.Call("custom_fn")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(got) != 1 || got[0] != int64(42) {
		t.Errorf("custom_fn() = %v, want [42]", got)
	}
}
