package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the parsed configuration file.
type File struct {
	// Settings holds general application settings (API token name, theme,
	// subprocess timeout). Only the keys this subsystem reads are typed.
	Settings Settings `yaml:"settings,omitempty"`

	// Plugins maps installed plugin names to their entries.
	Plugins PluginSection `yaml:"plugins,omitempty"`

	// Marketplaces maps user-registered marketplace names to their entries.
	// The implicit official marketplace is never written here.
	Marketplaces MarketplaceSection `yaml:"marketplaces,omitempty"`
}

// Settings are general host settings read by this subsystem.
type Settings struct {
	// FetchTimeout bounds marketplace fetches and install subprocesses.
	// Zero means no timeout.
	FetchTimeout time.Duration `yaml:"fetchTimeout,omitempty"`
}

// Store reads and writes the configuration file as a whole unit.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store for the given file path. An empty path uses the
// default location.
func NewStore(path string) *Store {
	if path == "" {
		path = FilePath()
	}
	return &Store{path: path}
}

// Path returns the config file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and parses the configuration file. A missing file yields an
// empty configuration, not an error.
func (s *Store) Load() (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", s.path, err)
	}
	return &f, nil
}

// Save writes the configuration atomically: marshal to a temp file in the
// same directory, then rename over the target.
func (s *Store) Save(f *File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(f)
}

func (s *Store) save(f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp config: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing config: %w", err)
	}
	return nil
}

// Mutate runs a read-modify-write cycle under the store lock. The callback
// receives the freshly loaded file; returning an error aborts without writing.
func (s *Store) Mutate(fn func(*File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	return s.save(f)
}
