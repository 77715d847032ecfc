package plugin

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ManifestFile is the metadata file every plugin carries in its root.
const ManifestFile = "plugin.json"

// Manifest describes a plugin's identity, entry point, and requirements.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`

	// Main is the entry file relative to the plugin directory. Defaults to
	// init.lua.
	Main string `json:"main,omitempty"`

	// Engines holds runtime compatibility constraints. The "todui" key is a
	// semver constraint on the application version.
	Engines map[string]string `json:"engines,omitempty"`

	dir string
}

// namePattern validates plugin names. Names double as directory names and
// config keys, so the character set is deliberately narrow.
var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidName reports whether name is a legal plugin name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// LoadManifest reads and validates the manifest in dir.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	m.dir = dir
	if m.Main == "" {
		m.Main = "init.lua"
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest's required fields and formats.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return ErrMissingName
	}
	if !ValidName(m.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, m.Name)
	}

	if m.Version == "" {
		return ErrMissingVersion
	}
	if _, err := semver.NewVersion(m.Version); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidVersion, m.Version)
	}

	if filepath.Ext(m.Main) != ".lua" {
		return fmt.Errorf("%w: %q is not a .lua file", ErrInvalidMain, m.Main)
	}
	if filepath.IsAbs(m.Main) || strings.HasPrefix(filepath.Clean(m.Main), "..") {
		return fmt.Errorf("%w: %q escapes the plugin directory", ErrInvalidMain, m.Main)
	}

	if constraint, ok := m.Engines["todui"]; ok {
		if _, err := semver.NewConstraint(constraint); err != nil {
			return fmt.Errorf("manifest: bad engines.todui constraint %q: %w", constraint, err)
		}
	}
	return nil
}

// CheckEngine verifies the engines.todui constraint against the running
// application version. A manifest without the constraint accepts any
// version.
func (m *Manifest) CheckEngine(appVersion string) error {
	constraint, ok := m.Engines["todui"]
	if !ok {
		return nil
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("manifest: bad engines.todui constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(appVersion)
	if err != nil {
		return fmt.Errorf("bad application version %q: %w", appVersion, err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s requires todui %s, running %s",
			ErrIncompatibleEngine, m.Name, constraint, appVersion)
	}
	return nil
}

// Dir returns the plugin directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// MainPath returns the absolute path of the entry file.
func (m *Manifest) MainPath() string {
	return filepath.Join(m.dir, m.Main)
}

// SemVer parses the manifest version.
func (m *Manifest) SemVer() (*semver.Version, error) {
	return semver.NewVersion(m.Version)
}

func (m *Manifest) String() string {
	return fmt.Sprintf("%s v%s", m.Name, m.Version)
}
