package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/marketplace"
	"github.com/todui/todui/internal/plugin"
)

// Runner executes an external tool in a directory. Injectable so tests never
// shell out.
type Runner func(ctx context.Context, dir, name string, args ...string) error

func execRunner(ctx context.Context, dir, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Installer installs, updates, and removes plugins.
type Installer struct {
	cfg        *config.Store
	client     *marketplace.Client
	pluginsDir string
	log        *logrus.Logger
	run        Runner
}

// Option configures an Installer.
type Option func(*Installer)

// WithRunner replaces the external-tool runner.
func WithRunner(r Runner) Option {
	return func(i *Installer) { i.run = r }
}

// New creates an installer writing plugins under pluginsDir.
func New(cfg *config.Store, client *marketplace.Client, pluginsDir string, log *logrus.Logger, opts ...Option) *Installer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	i := &Installer{
		cfg:        cfg,
		client:     client,
		pluginsDir: pluginsDir,
		log:        log,
		run:        execRunner,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Result reports the outcome of an install or update for one plugin.
type Result struct {
	Name            string
	Marketplace     string
	Version         string
	PreviousVersion string
	Updated         bool
	Message         string
	Err             error
}

// Installed is one configured plugin as the CLI lists it.
type Installed struct {
	Name    string
	Source  string
	Version string
	Enabled bool
}

// List returns the configured plugins in declaration order.
func (i *Installer) List() ([]Installed, error) {
	file, err := i.cfg.Load()
	if err != nil {
		return nil, err
	}
	out := make([]Installed, 0, file.Plugins.Len())
	for _, name := range file.Plugins.Names() {
		entry, _ := file.Plugins.Get(name)
		out = append(out, Installed{
			Name:    name,
			Source:  entry.Source,
			Version: entry.Version,
			Enabled: entry.IsEnabled(),
		})
	}
	return out, nil
}

// Install resolves name in the marketplaces (all of them official-first, or
// just marketplaceName when given), materializes its source, installs its
// dependencies, and commits the config entry. The commit is the last step.
func (i *Installer) Install(ctx context.Context, name, marketplaceName string) (*Result, error) {
	// Name validation runs before any filesystem or subprocess work; the
	// name becomes a directory component and a tool argument.
	if !plugin.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	file, err := i.cfg.Load()
	if err != nil {
		return nil, err
	}
	if file.Plugins.Has(name) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, name)
	}

	ctx, cancel := i.opCtx(ctx, file)
	defer cancel()

	var entry *marketplace.Entry
	var m marketplace.Registered
	if marketplaceName != "" {
		entry, m, err = i.client.FindIn(ctx, marketplaceName, name)
	} else {
		entry, m, err = i.client.Find(ctx, name)
	}
	if err != nil {
		return nil, err
	}

	targetDir := filepath.Join(i.pluginsDir, name)
	if _, statErr := os.Stat(targetDir); statErr == nil {
		// Present on disk but absent from config: an install interrupted
		// before its config commit. Reclaim it.
		i.log.WithField("plugin", name).Warn("reclaiming orphaned plugin directory")
		if err := os.RemoveAll(targetDir); err != nil {
			return nil, fmt.Errorf("reclaiming %s: %w", targetDir, err)
		}
	}

	manifest, err := i.syncPlugin(ctx, name, entry.Source, m, targetDir)
	if err != nil {
		return nil, err
	}

	err = i.cfg.Mutate(func(f *config.File) error {
		if f.Plugins.Has(name) {
			return fmt.Errorf("%w: %s", ErrAlreadyInstalled, name)
		}
		f.Plugins.Set(name, config.PluginEntry{
			Source:  name + "@" + m.Name,
			Version: manifest.Version,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Name:        name,
		Marketplace: m.Name,
		Version:     manifest.Version,
		Updated:     true,
		Message:     fmt.Sprintf("installed %s from %s", manifest, m.Name),
	}, nil
}

// Update refreshes one installed plugin from its owning marketplace. A plugin
// no longer listed there yields a non-fatal result and an untouched
// installation.
func (i *Installer) Update(ctx context.Context, name string) (*Result, error) {
	if !plugin.ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	file, err := i.cfg.Load()
	if err != nil {
		return nil, err
	}
	cfgEntry, ok := file.Plugins.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, name)
	}

	mpName := cfgEntry.Marketplace()
	if mpName == "" {
		return &Result{
			Name:    name,
			Message: fmt.Sprintf("%s has no marketplace recorded, skipping", name),
		}, nil
	}

	ctx, cancel := i.opCtx(ctx, file)
	defer cancel()

	entry, m, err := i.client.FindIn(ctx, mpName, name)
	if err != nil {
		if errors.Is(err, marketplace.ErrPluginNotFound) {
			return &Result{
				Name:        name,
				Marketplace: mpName,
				Version:     cfgEntry.Version,
				Message:     fmt.Sprintf("%s is no longer listed in %s, keeping installed version", name, mpName),
			}, nil
		}
		return nil, err
	}

	targetDir := filepath.Join(i.pluginsDir, name)
	manifest, err := i.syncPlugin(ctx, name, entry.Source, m, targetDir)
	if err != nil {
		return nil, err
	}

	err = i.cfg.Mutate(func(f *config.File) error {
		e, ok := f.Plugins.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotInstalled, name)
		}
		e.Version = manifest.Version
		f.Plugins.Set(name, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Name:            name,
		Marketplace:     m.Name,
		Version:         manifest.Version,
		PreviousVersion: cfgEntry.Version,
		Updated:         versionChanged(cfgEntry.Version, manifest.Version),
	}
	if res.Updated {
		res.Message = fmt.Sprintf("updated %s %s -> %s", name, cfgEntry.Version, manifest.Version)
	} else {
		res.Message = fmt.Sprintf("%s already at %s", name, manifest.Version)
	}
	return res, nil
}

// UpdateAll updates every installed plugin sequentially. One plugin's failure
// lands in its own result and never aborts the batch.
func (i *Installer) UpdateAll(ctx context.Context) ([]Result, error) {
	file, err := i.cfg.Load()
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, name := range file.Plugins.Names() {
		res, err := i.Update(ctx, name)
		if err != nil {
			out = append(out, Result{Name: name, Err: err})
			continue
		}
		out = append(out, *res)
	}
	return out, nil
}

// Remove deletes the plugin directory and its config entry. Removing a plugin
// that is not installed is a no-op.
func (i *Installer) Remove(name string) error {
	if !plugin.ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.RemoveAll(filepath.Join(i.pluginsDir, name)); err != nil {
		return fmt.Errorf("removing plugin directory: %w", err)
	}
	return i.cfg.Mutate(func(f *config.File) error {
		f.Plugins.Delete(name)
		return nil
	})
}

// Enable clears the disabled flag. Takes effect on the next load.
func (i *Installer) Enable(name string) error {
	return i.setEnabled(name, true)
}

// Disable sets the disabled flag. The running process is unaffected.
func (i *Installer) Disable(name string) error {
	return i.setEnabled(name, false)
}

func (i *Installer) setEnabled(name string, enabled bool) error {
	return i.cfg.Mutate(func(f *config.File) error {
		entry, ok := f.Plugins.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotInstalled, name)
		}
		if enabled {
			// Absence of the flag means enabled; keep the file minimal.
			entry.Enabled = nil
		} else {
			disabled := false
			entry.Enabled = &disabled
		}
		f.Plugins.Set(name, entry)
		return nil
	})
}

// syncPlugin materializes the source, installs dependencies, and validates
// the result. A plugin that fails validation is deleted again so a broken
// checkout never lingers on disk.
func (i *Installer) syncPlugin(ctx context.Context, name string, src marketplace.Source, m marketplace.Registered, targetDir string) (*plugin.Manifest, error) {
	if err := i.materialize(ctx, src, i.marketplaceBase(m), targetDir); err != nil {
		return nil, fmt.Errorf("installing %s: %w", name, err)
	}

	i.installDeps(ctx, name, targetDir)

	manifest, err := plugin.LoadManifest(targetDir)
	if err != nil {
		_ = os.RemoveAll(targetDir)
		return nil, fmt.Errorf("installed %s is not a valid plugin: %w", name, err)
	}
	if manifest.Name != name {
		_ = os.RemoveAll(targetDir)
		return nil, fmt.Errorf("installed %s declares itself %q in its manifest", name, manifest.Name)
	}
	return manifest, nil
}

// marketplaceBase is the directory relative plugin sources resolve against.
func (i *Installer) marketplaceBase(m marketplace.Registered) string {
	if m.Source.Kind == marketplace.KindLocal {
		return m.Source.Path
	}
	return i.client.CacheDir(m.Name)
}

// versionChanged compares semver when both sides parse, falling back to
// string inequality for the pre-semver entries older installs wrote.
func versionChanged(before, after string) bool {
	prev, err1 := semver.NewVersion(before)
	next, err2 := semver.NewVersion(after)
	if err1 != nil || err2 != nil {
		return before != after
	}
	return !next.Equal(prev)
}

// opCtx bounds network and subprocess work with the configured fetch timeout.
func (i *Installer) opCtx(ctx context.Context, f *config.File) (context.Context, context.CancelFunc) {
	if f.Settings.FetchTimeout > 0 {
		return context.WithTimeout(ctx, f.Settings.FetchTimeout)
	}
	return ctx, func() {}
}
