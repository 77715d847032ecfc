// Package main is the entry point for the todui task manager.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/cli"
	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/installer"
	"github.com/todui/todui/internal/marketplace"
	"github.com/todui/todui/internal/plugin"
	"github.com/todui/todui/internal/plugin/extension"
	"github.com/todui/todui/internal/plugin/hook"
	"github.com/todui/todui/internal/storage"
)

// Version information (set via ldflags during build).
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.Init()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cli.LogLevel())

	store := config.NewStore("")
	client := marketplace.NewClient(store, log)
	pluginsDir := cli.PluginsDir()
	inst := installer.New(store, client, pluginsDir, log)

	app := &cli.App{
		Version:   version,
		Store:     store,
		Client:    client,
		Installer: inst,
		Log:       log,
	}
	root := cli.NewRootCmd(app)

	// Plugin storage is optional: a failed open disables td.storage but the
	// process still runs.
	db, err := storage.Open(filepath.Join(config.DataDir(), "plugins.db"))
	if err != nil {
		log.WithError(err).Warn("plugin storage unavailable")
		db = nil
	} else {
		defer db.Close()
	}

	bus := hook.NewBus(log)
	ext := extension.NewSet(log)

	system := plugin.NewSystem(plugin.Options{
		Version:    version,
		PluginsDir: pluginsDir,
		Config:     store,
		Storage:    db,
		Bus:        bus,
		Extensions: ext,
		Commands:   cli.NewAttacher(root),
		Log:        log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client.AutoRefresh(ctx)

	// Plugins load before command dispatch so their subcommands exist on the
	// tree. A failure here degrades to a plugin-less invocation.
	if err := system.Start(ctx); err != nil {
		log.WithError(err).Warn("plugin startup failed")
	}
	defer system.Stop(context.Background())

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
