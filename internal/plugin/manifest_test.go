package plugin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `{
		"name": "pomodoro",
		"version": "1.2.0",
		"description": "Pomodoro timer",
		"engines": {"todui": ">=0.5.0"}
	}`)

	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if m.Name != "pomodoro" || m.Version != "1.2.0" {
		t.Errorf("manifest = %+v", m)
	}
	if m.Main != "init.lua" {
		t.Errorf("Main = %q, want default init.lua", m.Main)
	}
	if m.MainPath() != filepath.Join(dir, "init.lua") {
		t.Errorf("MainPath() = %q", m.MainPath())
	}
}

func TestLoadManifestMissing(t *testing.T) {
	if _, err := LoadManifest(t.TempDir()); err == nil {
		t.Error("LoadManifest() on empty dir should fail")
	}
}

func TestManifestValidation(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{
			name:    "missing name",
			json:    `{"version": "1.0.0"}`,
			wantErr: ErrMissingName,
		},
		{
			name:    "bad name",
			json:    `{"name": "../escape", "version": "1.0.0"}`,
			wantErr: ErrInvalidName,
		},
		{
			name:    "name with spaces",
			json:    `{"name": "my plugin", "version": "1.0.0"}`,
			wantErr: ErrInvalidName,
		},
		{
			name:    "missing version",
			json:    `{"name": "ok"}`,
			wantErr: ErrMissingVersion,
		},
		{
			name:    "bad version",
			json:    `{"name": "ok", "version": "not-semver"}`,
			wantErr: ErrInvalidVersion,
		},
		{
			name:    "main not lua",
			json:    `{"name": "ok", "version": "1.0.0", "main": "init.js"}`,
			wantErr: ErrInvalidMain,
		},
		{
			name:    "main escapes dir",
			json:    `{"name": "ok", "version": "1.0.0", "main": "../../evil.lua"}`,
			wantErr: ErrInvalidMain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeManifest(t, dir, tt.json)
			_, err := LoadManifest(dir)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadManifest() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	valid := []string{"a", "my-plugin", "My_Plugin2", "0leading"}
	invalid := []string{"", "-lead", "_lead", "has space", "../up", "a/b", "a.b"}

	for _, n := range valid {
		if !ValidName(n) {
			t.Errorf("ValidName(%q) = false, want true", n)
		}
	}
	for _, n := range invalid {
		if ValidName(n) {
			t.Errorf("ValidName(%q) = true, want false", n)
		}
	}
}

func TestCheckEngine(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		appVersion string
		wantErr    bool
	}{
		{name: "satisfied", constraint: ">=0.5.0", appVersion: "0.6.1"},
		{name: "exact", constraint: "1.0.0", appVersion: "1.0.0"},
		{name: "too old", constraint: ">=2.0.0", appVersion: "1.9.0", wantErr: true},
		{name: "caret range", constraint: "^1.2.0", appVersion: "1.5.0"},
		{name: "caret excluded", constraint: "^1.2.0", appVersion: "2.0.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Manifest{
				Name:    "p",
				Version: "1.0.0",
				Engines: map[string]string{"todui": tt.constraint},
			}
			err := m.CheckEngine(tt.appVersion)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckEngine(%q) error = %v, wantErr %v", tt.appVersion, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrIncompatibleEngine) {
				t.Errorf("error = %v, want ErrIncompatibleEngine", err)
			}
		})
	}

	// No constraint accepts anything.
	m := &Manifest{Name: "p", Version: "1.0.0"}
	if err := m.CheckEngine("0.0.1"); err != nil {
		t.Errorf("CheckEngine() without constraint = %v, want nil", err)
	}
}
