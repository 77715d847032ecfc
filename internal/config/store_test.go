package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.yaml"))
}

func TestLoadMissingFile(t *testing.T) {
	s := testStore(t)

	f, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Plugins.Len() != 0 {
		t.Errorf("expected empty plugins section, got %d entries", f.Plugins.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := testStore(t)

	f := &File{}
	f.Plugins.Set("bravo", PluginEntry{Source: "bravo@official", Version: "1.0.0"})
	f.Plugins.Set("alpha", PluginEntry{Source: "alpha@acme", Version: "2.1.0", After: []string{"bravo"}})
	f.Marketplaces.Set("acme", MarketplaceEntry{Source: "github:acme/plugins", AutoUpdate: true})

	if err := s.Save(f); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Declaration order must survive the round trip.
	names := loaded.Plugins.Names()
	if len(names) != 2 || names[0] != "bravo" || names[1] != "alpha" {
		t.Errorf("plugin order = %v, want [bravo alpha]", names)
	}

	entry, ok := loaded.Plugins.Get("alpha")
	if !ok {
		t.Fatal("alpha entry missing after round trip")
	}
	if len(entry.After) != 1 || entry.After[0] != "bravo" {
		t.Errorf("After = %v, want [bravo]", entry.After)
	}

	mp, ok := loaded.Marketplaces.Get("acme")
	if !ok || !mp.AutoUpdate {
		t.Errorf("marketplace entry = %+v, ok = %v", mp, ok)
	}
}

func TestEnabledAbsentMeansEnabled(t *testing.T) {
	enabled := true
	disabled := false

	tests := []struct {
		name  string
		entry PluginEntry
		want  bool
	}{
		{"absent", PluginEntry{Source: "x@official"}, true},
		{"explicit true", PluginEntry{Source: "x@official", Enabled: &enabled}, true},
		{"explicit false", PluginEntry{Source: "x@official", Enabled: &disabled}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.IsEnabled(); got != tt.want {
				t.Errorf("IsEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnabledAbsentSurvivesParse(t *testing.T) {
	s := testStore(t)

	yamlBody := strings.Join([]string{
		"plugins:",
		"  foo:",
		"    source: foo@official",
		"    version: 1.0.0",
	}, "\n")
	if err := os.WriteFile(s.Path(), []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entry, ok := f.Plugins.Get("foo")
	if !ok {
		t.Fatal("foo entry missing")
	}
	if !entry.IsEnabled() {
		t.Error("absence of enabled flag must be interpreted as enabled")
	}
}

func TestMutate(t *testing.T) {
	s := testStore(t)

	err := s.Mutate(func(f *File) error {
		f.Plugins.Set("foo", PluginEntry{Source: "foo@official", Version: "1.0.0"})
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	// Toggle disabled through a second read-modify-write cycle.
	err = s.Mutate(func(f *File) error {
		entry, ok := f.Plugins.Get("foo")
		if !ok {
			t.Fatal("foo entry missing in mutate")
		}
		disabled := false
		entry.Enabled = &disabled
		f.Plugins.Set("foo", entry)
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	f, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entry, _ := f.Plugins.Get("foo")
	if entry.IsEnabled() {
		t.Error("plugin should be disabled after mutation")
	}
	if entry.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", entry.Version)
	}
}

func TestMutateErrorDoesNotWrite(t *testing.T) {
	s := testStore(t)

	if err := s.Save(&File{}); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}

	wantErr := os.ErrInvalid
	err = s.Mutate(func(f *File) error {
		f.Plugins.Set("junk", PluginEntry{Source: "junk@official"})
		return wantErr
	})
	if err != wantErr {
		t.Fatalf("Mutate() error = %v, want %v", err, wantErr)
	}

	after, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("file changed despite mutation error")
	}
}

func TestSectionDelete(t *testing.T) {
	var sec PluginSection
	sec.Set("a", PluginEntry{Source: "a@official"})
	sec.Set("b", PluginEntry{Source: "b@official"})
	sec.Delete("a")

	if sec.Has("a") {
		t.Error("a still present after delete")
	}
	names := sec.Names()
	if len(names) != 1 || names[0] != "b" {
		t.Errorf("Names() = %v, want [b]", names)
	}

	// Deleting a missing key is a no-op.
	sec.Delete("missing")
	if sec.Len() != 1 {
		t.Errorf("Len() = %d, want 1", sec.Len())
	}
}

func TestPluginEntryMarketplace(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"foo@official", "official"},
		{"foo@acme", "acme"},
		{"foo", ""},
	}

	for _, tt := range tests {
		e := PluginEntry{Source: tt.source}
		if got := e.Marketplace(); got != tt.want {
			t.Errorf("Marketplace(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}
