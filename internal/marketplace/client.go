package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/todui/todui/internal/config"
	"github.com/todui/todui/internal/vcs"
)

// OfficialName is the built-in marketplace's reserved name.
const OfficialName = "official"

// officialSource is where the built-in marketplace lives.
var officialSource = Source{Kind: KindGitHub, Repo: "todui/plugins"}

// Registered is a marketplace known to the client.
type Registered struct {
	Name     string
	Source   Source
	Official bool
}

// Discovered is one plugin found during discovery, annotated with local
// install state.
type Discovered struct {
	Entry
	Marketplace string
	Installed   bool
	Enabled     bool
}

// Client lists marketplaces, fetches their catalogs, and manages the
// user-registered set.
type Client struct {
	cfg      *config.Store
	http     *http.Client
	cacheDir func(name string) string
	log      *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the http client used for https manifests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithCacheDir replaces the per-marketplace cache location.
func WithCacheDir(fn func(name string) string) Option {
	return func(cl *Client) { cl.cacheDir = fn }
}

// NewClient creates a marketplace client backed by the config store.
func NewClient(cfg *config.Store, log *logrus.Logger, opts ...Option) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: 30 * time.Second},
		cacheDir: config.MarketplaceCacheDir,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns every known marketplace, official first, then user
// registrations in config order.
func (c *Client) List() ([]Registered, error) {
	file, err := c.cfg.Load()
	if err != nil {
		return nil, err
	}

	out := []Registered{{Name: OfficialName, Source: officialSource, Official: true}}
	for _, name := range file.Marketplaces.Names() {
		if !ValidName(name) {
			c.log.WithField("marketplace", name).Warn("skipping marketplace with invalid name")
			continue
		}
		entry, _ := file.Marketplaces.Get(name)
		src, err := ParseSourceString(entry.Source)
		if err != nil {
			c.log.WithField("marketplace", name).WithError(err).Warn("skipping malformed marketplace source")
			continue
		}
		out = append(out, Registered{Name: name, Source: src})
	}
	return out, nil
}

// CacheDir returns the cache directory for the named marketplace.
func (c *Client) CacheDir(name string) string {
	return c.cacheDir(name)
}

// Get returns the named marketplace.
func (c *Client) Get(name string) (Registered, error) {
	list, err := c.List()
	if err != nil {
		return Registered{}, err
	}
	names := make([]string, 0, len(list))
	for _, m := range list {
		if m.Name == name {
			return m, nil
		}
		names = append(names, m.Name)
	}
	return Registered{}, fmt.Errorf("%w: %s (known: %s)", ErrUnknown, name, strings.Join(names, ", "))
}

// Fetch retrieves a marketplace's catalog. Git and https marketplaces fall
// back to their last cached catalog, with a warning, when the fetch fails;
// local marketplaces never cache.
func (c *Client) Fetch(ctx context.Context, m Registered) (*Manifest, error) {
	switch m.Source.Kind {
	case KindGitHub, KindGit:
		return c.fetchGit(ctx, m)
	case KindHTTPS:
		return c.fetchHTTPS(ctx, m)
	case KindLocal:
		return c.fetchLocal(m)
	default:
		return nil, fmt.Errorf("%w: marketplace kind %q", ErrBadSource, m.Source.Kind)
	}
}

func (c *Client) fetchGit(ctx context.Context, m Registered) (*Manifest, error) {
	dir := c.cacheDir(m.Name)
	fetchErr := vcs.Pull(ctx, m.Source.GitURL(), dir, m.Source.Ref)
	if fetchErr != nil {
		c.log.WithField("marketplace", m.Name).WithError(fetchErr).Warn("fetch failed, trying cached catalog")
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if fetchErr != nil {
			return nil, fmt.Errorf("fetching %s: %w", m.Name, fetchErr)
		}
		return nil, fmt.Errorf("marketplace %s has no %s: %w", m.Name, ManifestFile, err)
	}
	return parseManifest(data)
}

func (c *Client) fetchHTTPS(ctx context.Context, m Registered) (*Manifest, error) {
	cached := filepath.Join(c.cacheDir(m.Name), ManifestFile)

	data, fetchErr := c.httpGet(ctx, m.Source.URL)
	if fetchErr == nil {
		manifest, err := parseManifest(data)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(cached), 0o755); err == nil {
			_ = os.WriteFile(cached, data, 0o644)
		}
		return manifest, nil
	}

	c.log.WithField("marketplace", m.Name).WithError(fetchErr).Warn("fetch failed, trying cached catalog")
	data, err := os.ReadFile(cached)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", m.Name, fetchErr)
	}
	return parseManifest(data)
}

func (c *Client) fetchLocal(m Registered) (*Manifest, error) {
	path := m.Source.Path
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, ManifestFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading marketplace %s: %w", m.Name, err)
	}
	return parseManifest(data)
}

func (c *Client) httpGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// Discover fetches every marketplace's catalog and merges the results.
// Unreachable marketplaces are skipped with a warning; plugins already in
// the config are annotated with their install state.
func (c *Client) Discover(ctx context.Context) ([]Discovered, error) {
	list, err := c.List()
	if err != nil {
		return nil, err
	}
	file, err := c.cfg.Load()
	if err != nil {
		return nil, err
	}

	var out []Discovered
	for _, m := range list {
		manifest, err := c.Fetch(ctx, m)
		if err != nil {
			c.log.WithField("marketplace", m.Name).WithError(err).Warn("skipping unreachable marketplace")
			continue
		}
		for _, e := range manifest.Plugins {
			d := Discovered{Entry: e, Marketplace: m.Name}
			if entry, ok := file.Plugins.Get(e.Name); ok {
				d.Installed = true
				d.Enabled = entry.IsEnabled()
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// Find locates a plugin by name across marketplaces, official first. When
// several marketplaces list the name, the first match wins.
func (c *Client) Find(ctx context.Context, pluginName string) (*Entry, Registered, error) {
	list, err := c.List()
	if err != nil {
		return nil, Registered{}, err
	}

	var lastErr error
	for _, m := range list {
		manifest, err := c.Fetch(ctx, m)
		if err != nil {
			lastErr = err
			c.log.WithField("marketplace", m.Name).WithError(err).Warn("skipping unreachable marketplace")
			continue
		}
		for i := range manifest.Plugins {
			if manifest.Plugins[i].Name == pluginName {
				return &manifest.Plugins[i], m, nil
			}
		}
	}
	if lastErr != nil {
		return nil, Registered{}, fmt.Errorf("%w: %q (some marketplaces unreachable: %v)", ErrPluginNotFound, pluginName, lastErr)
	}
	return nil, Registered{}, fmt.Errorf("%w: %q in any marketplace", ErrPluginNotFound, pluginName)
}

// FindIn locates a plugin in one named marketplace.
func (c *Client) FindIn(ctx context.Context, marketplaceName, pluginName string) (*Entry, Registered, error) {
	m, err := c.Get(marketplaceName)
	if err != nil {
		return nil, Registered{}, err
	}
	manifest, err := c.Fetch(ctx, m)
	if err != nil {
		return nil, Registered{}, err
	}
	for i := range manifest.Plugins {
		if manifest.Plugins[i].Name == pluginName {
			return &manifest.Plugins[i], m, nil
		}
	}
	return nil, Registered{}, fmt.Errorf("%w: %q in marketplace %s", ErrPluginNotFound, pluginName, marketplaceName)
}

// Add registers a marketplace. The name comes from the fetched manifest
// when it has one, else from the source. The official name is reserved.
// autoUpdate marks the catalog for refresh at application startup.
func (c *Client) Add(ctx context.Context, sourceStr string, autoUpdate bool) (string, error) {
	src, err := ParseSourceString(sourceStr)
	if err != nil {
		return "", err
	}

	// Both the derived and the catalog-declared name end up as a registry
	// key and a cache path segment, so each is validated before use.
	name := deriveName(src)
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	manifest, err := c.Fetch(ctx, Registered{Name: name, Source: src})
	if err != nil {
		return "", err
	}
	if manifest.Name != "" && manifest.Name != name {
		if !ValidName(manifest.Name) {
			return "", fmt.Errorf("%w: catalog declares %q", ErrInvalidName, manifest.Name)
		}
		// Prefer the catalog's own name; drop the cache that landed
		// under the derived one.
		_ = os.RemoveAll(c.cacheDir(name))
		name = manifest.Name
	}

	if name == OfficialName {
		return "", ErrOfficialImmutable
	}

	err = c.cfg.Mutate(func(f *config.File) error {
		if f.Marketplaces.Has(name) {
			return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
		}
		f.Marketplaces.Set(name, config.MarketplaceEntry{Source: sourceStr, AutoUpdate: autoUpdate})
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// AutoRefresh re-fetches the catalogs of marketplaces registered with
// autoUpdate. Runs at application startup; failures are warned and skipped.
func (c *Client) AutoRefresh(ctx context.Context) {
	file, err := c.cfg.Load()
	if err != nil {
		c.log.WithError(err).Warn("auto refresh skipped")
		return
	}
	for _, name := range file.Marketplaces.Names() {
		entry, _ := file.Marketplaces.Get(name)
		if !entry.AutoUpdate {
			continue
		}
		src, err := ParseSourceString(entry.Source)
		if err != nil {
			continue
		}
		if _, err := c.Fetch(ctx, Registered{Name: name, Source: src}); err != nil {
			c.log.WithField("marketplace", name).WithError(err).Warn("auto refresh failed")
		}
	}
}

// Remove unregisters a marketplace and drops its cache. Removing the
// official marketplace is refused.
func (c *Client) Remove(name string) error {
	if name == OfficialName {
		return ErrOfficialImmutable
	}
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	err := c.cfg.Mutate(func(f *config.File) error {
		if !f.Marketplaces.Has(name) {
			return fmt.Errorf("%w: %s", ErrUnknown, name)
		}
		f.Marketplaces.Delete(name)
		return nil
	})
	if err != nil {
		return err
	}

	_ = os.RemoveAll(c.cacheDir(name))
	return nil
}

// Refresh re-fetches every marketplace's catalog, returning the names that
// failed alongside the first error.
func (c *Client) Refresh(ctx context.Context) ([]string, error) {
	list, err := c.List()
	if err != nil {
		return nil, err
	}

	var failed []string
	var firstErr error
	for _, m := range list {
		if _, err := c.Fetch(ctx, m); err != nil {
			failed = append(failed, m.Name)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return failed, firstErr
}

// deriveName produces a marketplace name from its source.
func deriveName(src Source) string {
	switch src.Kind {
	case KindGitHub:
		return filepath.Base(src.Repo)
	case KindGit, KindHTTPS:
		base := filepath.Base(src.URL)
		for _, suffix := range []string{".git", ".json"} {
			if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
				base = base[:len(base)-len(suffix)]
			}
		}
		return base
	case KindLocal:
		abs, err := filepath.Abs(src.Path)
		if err != nil {
			return filepath.Base(src.Path)
		}
		return filepath.Base(abs)
	default:
		return ""
	}
}
