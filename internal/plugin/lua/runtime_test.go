package lua

import (
	"os"
	"path/filepath"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func newTestRuntime(t *testing.T) *Runtime {
	t.Helper()
	r, err := NewRuntime(t.TempDir())
	if err != nil {
		t.Fatalf("NewRuntime() error = %v", err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestDoStringAndCall(t *testing.T) {
	r := newTestRuntime(t)

	if err := r.DoString(`function add(a, b) return a + b end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	results, err := r.Call("add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 1 || results[0] != lua.LNumber(5) {
		t.Errorf("add(2, 3) = %v, want 5", results)
	}
}

func TestCallMissingFunction(t *testing.T) {
	r := newTestRuntime(t)

	if _, err := r.Call("nope"); err == nil {
		t.Error("Call() on missing function should fail")
	}
	if r.HasGlobal("nope") {
		t.Error("HasGlobal() = true for undefined function")
	}
}

func TestCallLuaErrorReported(t *testing.T) {
	r := newTestRuntime(t)

	if err := r.DoString(`function boom() error("kaput") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Call("boom"); err == nil {
		t.Error("Call() should surface the lua error")
	}
}

func TestDoFileWithRequire(t *testing.T) {
	dir := t.TempDir()

	helper := []byte("return { greeting = \"hello\" }\n")
	if err := os.WriteFile(filepath.Join(dir, "helper.lua"), helper, 0o644); err != nil {
		t.Fatal(err)
	}
	entry := []byte("local h = require(\"helper\")\nresult = h.greeting\n")
	entryPath := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(entryPath, entry, 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewRuntime(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.DoFile(entryPath); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if got := r.State().GetGlobal("result"); got != lua.LString("hello") {
		t.Errorf("result = %v, want hello", got)
	}
}

func TestPreloadedModule(t *testing.T) {
	r := newTestRuntime(t)

	r.Preload("td", func(L *lua.LState) int {
		mod := L.NewTable()
		mod.RawSetString("version", lua.LString("1.0.0"))
		L.Push(mod)
		return 1
	})

	if err := r.DoString(`local td = require("td"); v = td.version`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := r.State().GetGlobal("v"); got != lua.LString("1.0.0") {
		t.Errorf("v = %v, want 1.0.0", got)
	}
}

func TestUnsafeLibrariesClosed(t *testing.T) {
	r := newTestRuntime(t)

	for _, lib := range []string{"io", "os", "debug"} {
		if got := r.State().GetGlobal(lib); got != lua.LNil {
			t.Errorf("global %q = %v, want nil", lib, got)
		}
	}
}

func TestClosedRuntime(t *testing.T) {
	r, err := NewRuntime(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r.Close()
	r.Close() // idempotent

	if err := r.DoString("x = 1"); err != ErrRuntimeClosed {
		t.Errorf("DoString() after Close = %v, want ErrRuntimeClosed", err)
	}
	if _, err := r.Call("f"); err != ErrRuntimeClosed {
		t.Errorf("Call() after Close = %v, want ErrRuntimeClosed", err)
	}
	if !r.Closed() {
		t.Error("Closed() = false after Close")
	}
}
