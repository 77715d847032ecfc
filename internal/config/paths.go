package config

import (
	"os"
	"path/filepath"
)

// Dir returns the todui configuration directory (~/.config/todui).
// The TODUI_CONFIG_DIR environment variable overrides it.
func Dir() string {
	if dir := os.Getenv("TODUI_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".todui")
	}
	return filepath.Join(home, ".config", "todui")
}

// FilePath returns the full path to the configuration file.
func FilePath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// PluginsDir returns the directory installed plugins live in.
func PluginsDir() string {
	return filepath.Join(Dir(), "plugins")
}

// MarketplaceCacheDir returns the cache directory for the named marketplace.
func MarketplaceCacheDir(name string) string {
	return filepath.Join(Dir(), "marketplaces", name)
}

// DataDir returns the data directory (~/.local/share/todui) used for plugin
// storage. The TODUI_DATA_DIR environment variable overrides it.
func DataDir() string {
	if dir := os.Getenv("TODUI_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".todui", "data")
	}
	return filepath.Join(home, ".local", "share", "todui")
}
