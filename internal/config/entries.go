package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// PluginEntry is one installed plugin's persisted configuration.
type PluginEntry struct {
	// Source records where the plugin came from, as "<name>@<marketplace>".
	Source string `yaml:"source"`

	// Version is the version resolved at install or update time.
	Version string `yaml:"version,omitempty"`

	// Enabled controls whether the loader starts the plugin. A missing key
	// means enabled; only an explicit false disables.
	Enabled *bool `yaml:"enabled,omitempty"`

	// After names plugins this one should load after, when enabled together.
	After []string `yaml:"after,omitempty,flow"`
}

// IsEnabled reports whether the plugin should be loaded.
func (e PluginEntry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Marketplace returns the marketplace name from the source string, or "" if
// the source is malformed.
func (e PluginEntry) Marketplace() string {
	_, mp, ok := strings.Cut(e.Source, "@")
	if !ok {
		return ""
	}
	return mp
}

// MarketplaceEntry is one user-registered marketplace's persisted configuration.
type MarketplaceEntry struct {
	Source     string `yaml:"source"`
	AutoUpdate bool   `yaml:"autoUpdate,omitempty"`
}

// Section is an order-preserving yaml mapping. Unlike a plain Go map it keeps
// key order across load/save cycles, which is what gives the plugin loader its
// deterministic declaration order.
type Section[T any] struct {
	order   []string
	entries map[string]T
}

// PluginSection is the plugins mapping of the config file.
type PluginSection = Section[PluginEntry]

// MarketplaceSection is the marketplaces mapping of the config file.
type MarketplaceSection = Section[MarketplaceEntry]

// Get returns the entry for name.
func (s *Section[T]) Get(name string) (T, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Has reports whether an entry exists for name.
func (s *Section[T]) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Set inserts or replaces the entry for name. New names append to the order.
func (s *Section[T]) Set(name string, e T) {
	if s.entries == nil {
		s.entries = make(map[string]T)
	}
	if _, exists := s.entries[name]; !exists {
		s.order = append(s.order, name)
	}
	s.entries[name] = e
}

// Delete removes the entry for name, if present.
func (s *Section[T]) Delete(name string) {
	if _, ok := s.entries[name]; !ok {
		return
	}
	delete(s.entries, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Names returns the keys in declaration order.
func (s *Section[T]) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of entries.
func (s *Section[T]) Len() int {
	return len(s.entries)
}

// UnmarshalYAML decodes the section from a yaml mapping, keeping key order.
func (s *Section[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return ErrMalformedSection
	}

	s.order = nil
	s.entries = make(map[string]T, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		if err := node.Content[i].Decode(&name); err != nil {
			return fmt.Errorf("decoding section key: %w", err)
		}
		var entry T
		if err := node.Content[i+1].Decode(&entry); err != nil {
			return fmt.Errorf("decoding entry %q: %w", name, err)
		}
		s.Set(name, entry)
	}
	return nil
}

// MarshalYAML encodes the section as a yaml mapping in declaration order.
func (s Section[T]) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range s.order {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(name); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(s.entries[name]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
