package plugin

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/domain"
	"github.com/todui/todui/internal/plugin/api"
	"github.com/todui/todui/internal/plugin/extension"
	"github.com/todui/todui/internal/plugin/hook"
	plua "github.com/todui/todui/internal/plugin/lua"
	"github.com/todui/todui/internal/storage"
)

// Options wires the System to the rest of the application.
type Options struct {
	// Version is the running application version, checked against each
	// plugin's engines constraint.
	Version string

	// PluginsDir is the root of installed plugin directories.
	PluginsDir string

	Config     *config.Store
	Providers  domain.Providers
	Storage    *storage.DB
	Bus        *hook.Bus
	Extensions *extension.Set

	// UI is nil when running headless; ui capabilities are then absent
	// from the plugin API.
	UI domain.UIController

	// Commands is set for command-line invocations so plugins can attach
	// subcommands to the host tree.
	Commands api.CommandAttacher

	// PluginConfig supplies the table passed to each plugin's setup
	// function. Nil means every plugin gets an empty table.
	PluginConfig ConfigFunc

	Log *logrus.Logger
}

// System owns the full plugin runtime: it loads plugins, hands each one its
// capability modules, and tears everything down in reverse order.
type System struct {
	mu sync.RWMutex

	opts   Options
	loader *Loader
	log    *logrus.Logger

	order   []string
	hosts   map[string]*Host
	results []LoadResult
}

// NewSystem creates a System. Start must be called before plugins exist.
func NewSystem(opts Options) *System {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &System{
		opts:   opts,
		loader: NewLoader(opts.PluginsDir, opts.Version, log),
		log:    log,
		hosts:  make(map[string]*Host),
	}
}

// Start loads and activates every enabled plugin, calls each plugin's ready
// function, and emits the startup event. Per-plugin failures are recorded,
// not fatal.
func (s *System) Start(ctx context.Context) error {
	file, err := s.opts.Config.Load()
	if err != nil {
		return err
	}

	results := s.loader.LoadAll(ctx, &file.Plugins, s.prepare, s.opts.PluginConfig)

	s.mu.Lock()
	s.results = results
	for _, res := range results {
		if res.Err == nil && res.Host != nil {
			s.order = append(s.order, res.Name)
			s.hosts[res.Name] = res.Host
		}
	}
	order := append([]string(nil), s.order...)
	s.mu.Unlock()

	for _, name := range order {
		host := s.hostByName(name)
		if err := host.Ready(ctx); err != nil {
			s.log.WithField("plugin", name).WithError(err).Warn("ready failed")
		}
	}

	s.opts.Bus.Emit(&hook.AppStartup{})
	return nil
}

// Stop emits the shutdown event and unloads plugins in reverse load order,
// dropping their hook and extension registrations.
func (s *System) Stop(ctx context.Context) {
	s.opts.Bus.Emit(&hook.AppShutdown{})

	s.mu.Lock()
	order := append([]string(nil), s.order...)
	s.order = nil
	s.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		host := s.hostByName(name)
		if host == nil {
			continue
		}
		if err := host.Deactivate(ctx); err != nil {
			s.log.WithField("plugin", name).WithError(err).Warn("deactivate failed")
		}
		host.Unload(ctx)
		s.opts.Bus.RemoveAllForOwner(name)
		s.opts.Extensions.RemoveAllForOwner(name)

		s.mu.Lock()
		delete(s.hosts, name)
		s.mu.Unlock()
	}
}

// prepare builds the capability context for one plugin and installs its td
// module into the runtime.
func (s *System) prepare(name string, rt *plua.Runtime) error {
	capCtx := api.New(api.Deps{
		Plugin:     name,
		Version:    s.opts.Version,
		Providers:  s.opts.Providers,
		Storage:    s.opts.Storage,
		Bus:        s.opts.Bus,
		Extensions: s.opts.Extensions,
		UI:         s.opts.UI,
		Commands:   s.opts.Commands,
		Log:        s.log,
	})
	return capCtx.Install(rt)
}

// Host returns the named active plugin's host.
func (s *System) Host(name string) (*Host, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hosts[name]
	return h, ok
}

// Results returns the outcome of the last Start, one entry per attempted
// plugin in load order.
func (s *System) Results() []LoadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]LoadResult(nil), s.results...)
}

// Active returns the names of successfully loaded plugins in load order.
func (s *System) Active() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

func (s *System) hostByName(name string) *Host {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hosts[name]
}
