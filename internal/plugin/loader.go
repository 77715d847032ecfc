package plugin

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/config"
	plua "github.com/todui/todui/internal/plugin/lua"
)

// Loader turns the configured plugin list into loaded, activated hosts.
// Loading is sequential on the calling goroutine; a failing plugin is
// recorded and skipped, never fatal to its neighbors.
type Loader struct {
	pluginsDir string
	appVersion string
	log        *logrus.Logger
}

// NewLoader creates a loader rooted at the plugin install directory.
func NewLoader(pluginsDir, appVersion string, log *logrus.Logger) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{
		pluginsDir: pluginsDir,
		appVersion: appVersion,
		log:        log,
	}
}

// LoadResult is the per-plugin outcome of a load pass.
type LoadResult struct {
	Name string
	Host *Host
	Err  error
}

// PrepareFunc installs capability modules into a plugin's runtime before
// its entry file runs.
type PrepareFunc func(name string, rt *plua.Runtime) error

// ConfigFunc supplies the table passed to a plugin's setup function.
type ConfigFunc func(name string) map[string]any

// LoadAll loads and activates every enabled plugin from the config section,
// in declaration order adjusted by each entry's after list. Disabled
// entries are skipped silently. The returned slice has one result per
// attempted plugin, in load order.
func (l *Loader) LoadAll(ctx context.Context, plugins *config.PluginSection, prepare PrepareFunc, configs ConfigFunc) []LoadResult {
	var names []string
	for _, name := range plugins.Names() {
		entry, _ := plugins.Get(name)
		if entry.IsEnabled() {
			names = append(names, name)
		}
	}

	after := func(name string) []string {
		entry, _ := plugins.Get(name)
		return entry.After
	}
	ordered := l.orderByAfter(names, after)

	results := make([]LoadResult, 0, len(ordered))
	for _, name := range ordered {
		host, err := l.loadOne(ctx, name, prepare, configs)
		if err != nil {
			l.log.WithField("plugin", name).WithError(err).Error("plugin failed to load")
		} else {
			l.log.WithFields(logrus.Fields{
				"plugin":  name,
				"version": host.Manifest().Version,
			}).Info("plugin loaded")
		}
		results = append(results, LoadResult{Name: name, Host: host, Err: err})
	}
	return results
}

// loadOne loads and activates a single plugin.
func (l *Loader) loadOne(ctx context.Context, name string, prepare PrepareFunc, configs ConfigFunc) (*Host, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	dir := filepath.Join(l.pluginsDir, name)
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}
	if manifest.Name != name {
		return nil, fmt.Errorf("manifest name %q does not match install directory %q", manifest.Name, name)
	}
	if err := manifest.CheckEngine(l.appVersion); err != nil {
		return nil, err
	}

	var opts []HostOption
	if configs != nil {
		if cfg := configs(name); cfg != nil {
			opts = append(opts, WithHostConfig(cfg))
		}
	}
	host, err := NewHost(manifest, opts...)
	if err != nil {
		return nil, err
	}

	var prep func(*plua.Runtime) error
	if prepare != nil {
		prep = func(rt *plua.Runtime) error { return prepare(name, rt) }
	}
	if err := host.Load(ctx, prep); err != nil {
		return host, err
	}
	if err := host.Activate(ctx); err != nil {
		host.Unload(ctx)
		return host, err
	}
	return host, nil
}

// orderByAfter reorders names so that each plugin loads after the plugins
// its after list names. Ties keep declaration order. References to unknown
// plugins are ignored with a warning; a cycle falls back to plain
// declaration order.
func (l *Loader) orderByAfter(names []string, after func(name string) []string) []string {
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	indegree := make(map[string]int, len(names))
	dependents := make(map[string][]string, len(names))
	for _, n := range names {
		for _, dep := range after(n) {
			if _, known := index[dep]; !known {
				l.log.WithFields(logrus.Fields{
					"plugin": n,
					"after":  dep,
				}).Warn("after references a plugin that is not enabled")
				continue
			}
			indegree[n]++
			dependents[dep] = append(dependents[dep], n)
		}
	}

	// Kahn's algorithm, always taking the earliest-declared ready plugin.
	ready := make([]string, 0, len(names))
	for _, n := range names {
		if indegree[n] == 0 {
			ready = append(ready, n)
		}
	}

	ordered := make([]string, 0, len(names))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if index[ready[i]] < index[ready[best]] {
				best = i
			}
		}
		n := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		ordered = append(ordered, n)

		for _, dep := range dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(ordered) != len(names) {
		l.log.Warn("cyclic after constraints, using declaration order")
		return names
	}
	return ordered
}
