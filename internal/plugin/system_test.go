package plugin

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/domain"
	"github.com/todui/todui/internal/plugin/extension"
	"github.com/todui/todui/internal/plugin/hook"
	"github.com/todui/todui/internal/storage"
)

func newTestSystem(t *testing.T, root string, section *config.PluginSection) (*System, *hook.Bus, *extension.Set) {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store := config.NewStore(filepath.Join(t.TempDir(), "config.yaml"))
	if err := store.Mutate(func(f *config.File) error {
		for _, name := range section.Names() {
			e, _ := section.Get(name)
			f.Plugins.Set(name, e)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	db, err := storage.Open(filepath.Join(t.TempDir(), "storage.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	bus := hook.NewBus(log)
	exts := extension.NewSet(log)

	sys := NewSystem(Options{
		Version:    "1.0.0",
		PluginsDir: root,
		Config:     store,
		Providers:  domain.Providers{},
		Storage:    db,
		Bus:        bus,
		Extensions: exts,
		Log:        log,
	})
	return sys, bus, exts
}

func TestSystemStartStop(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "greeter", `
		local td = require("td")
		function activate()
			td.hooks.on("task.created", function(e)
				return "saw " .. e.task.id
			end)
		end
	`)

	section := pluginSection(entry("greeter", config.PluginEntry{Source: "greeter@official"}))
	sys, bus, _ := newTestSystem(t, root, section)

	ctx := context.Background()
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if got := sys.Active(); len(got) != 1 || got[0] != "greeter" {
		t.Fatalf("Active() = %v, want [greeter]", got)
	}
	if n := bus.Count(hook.KindTaskCreated); n != 1 {
		t.Fatalf("handler count = %d, want 1", n)
	}

	res := bus.Emit(&hook.TaskCreated{Task: domain.Task{ID: "t9"}})
	if len(res.Messages) != 1 || res.Messages[0] != "saw t9" {
		t.Errorf("Messages = %v, want [saw t9]", res.Messages)
	}

	sys.Stop(ctx)

	if n := bus.Count(hook.KindTaskCreated); n != 0 {
		t.Errorf("handler count after Stop = %d, want 0", n)
	}
	if got := sys.Active(); len(got) != 0 {
		t.Errorf("Active() after Stop = %v, want empty", got)
	}
}

func TestSystemReadyRunsAfterAllActivations(t *testing.T) {
	root := t.TempDir()

	// alpha's ready must observe bravo's activation even though alpha
	// loads first.
	writePlugin(t, root, "alpha", `
		local td = require("td")
		function activate() end
		function ready()
			td.storage.set("bravo_hooks", 1)
		end
	`)
	writePlugin(t, root, "bravo", `
		local td = require("td")
		function activate()
			td.hooks.on("view.changed", function(e) end)
		end
	`)

	section := pluginSection(
		entry("alpha", config.PluginEntry{Source: "alpha@official"}),
		entry("bravo", config.PluginEntry{Source: "bravo@official"}),
	)
	sys, bus, _ := newTestSystem(t, root, section)

	ctx := context.Background()
	if err := sys.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sys.Stop(ctx)

	// By the time any ready ran, bravo's hook was registered.
	if n := bus.Count(hook.KindViewChanged); n != 1 {
		t.Errorf("view.changed handlers = %d, want 1", n)
	}
}

func TestSystemFailedPluginDoesNotBlockOthers(t *testing.T) {
	root := t.TempDir()
	writePlugin(t, root, "broken", `error("no")`)
	writePlugin(t, root, "healthy", `function activate() end`)

	section := pluginSection(
		entry("broken", config.PluginEntry{Source: "broken@official"}),
		entry("healthy", config.PluginEntry{Source: "healthy@official"}),
	)
	sys, _, _ := newTestSystem(t, root, section)

	ctx := context.Background()
	if err := sys.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer sys.Stop(ctx)

	if got := sys.Active(); len(got) != 1 || got[0] != "healthy" {
		t.Errorf("Active() = %v, want [healthy]", got)
	}

	results := sys.Results()
	if len(results) != 2 {
		t.Fatalf("Results() = %d entries, want 2", len(results))
	}
	if results[0].Err == nil || results[1].Err != nil {
		t.Errorf("results = %+v", results)
	}

	if _, ok := sys.Host("broken"); ok {
		t.Error("failed plugin must not appear as a host")
	}
	if _, ok := sys.Host("healthy"); !ok {
		t.Error("healthy plugin missing from hosts")
	}
}
