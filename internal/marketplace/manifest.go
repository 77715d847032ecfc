package marketplace

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ManifestFile is the catalog file a marketplace serves.
const ManifestFile = "marketplace.json"

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// ValidName reports whether name is safe to use as a registry key and a
// cache directory component. The name becomes a path segment, so anything
// with separators or dot runs is rejected.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Manifest is a marketplace's plugin catalog.
type Manifest struct {
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Plugins     []Entry `json:"plugins"`
}

// Entry is one plugin listed in a catalog.
type Entry struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Version     string   `json:"version,omitempty"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      Source   `json:"source"`
}

// Source kinds.
const (
	KindGitHub   = "github"
	KindGit      = "git"
	KindHTTPS    = "https"
	KindLuaRocks = "luarocks"
	KindLocal    = "local"
)

// Source says where a plugin's code comes from. In JSON it is either a
// shorthand string ("github:owner/repo", "./relative", "/abs/path") or an
// object with an explicit kind.
type Source struct {
	// Kind is one of the Kind constants.
	Kind string `json:"kind"`

	// Repo is "owner/repo" for the github kind.
	Repo string `json:"repo,omitempty"`

	// URL is a full git URL for the git kind.
	URL string `json:"url,omitempty"`

	// Package is a rock name for the luarocks kind.
	Package string `json:"package,omitempty"`

	// Path is a filesystem path for the local kind. Relative paths resolve
	// against the marketplace's own location.
	Path string `json:"path,omitempty"`

	// Ref is a branch or tag to check out for git-backed kinds.
	Ref string `json:"ref,omitempty"`

	// PinnedRevision is an exact commit to check out, taking precedence
	// over Ref.
	PinnedRevision string `json:"pinnedRevision,omitempty"`
}

// ParseSourceString interprets the shorthand source forms.
func ParseSourceString(s string) (Source, error) {
	switch {
	case s == "":
		return Source{}, fmt.Errorf("%w: empty", ErrBadSource)
	case strings.HasPrefix(s, "github:"):
		repo := strings.TrimPrefix(s, "github:")
		if strings.Count(repo, "/") != 1 {
			return Source{}, fmt.Errorf("%w: %q wants github:owner/repo", ErrBadSource, s)
		}
		return Source{Kind: KindGitHub, Repo: repo}, nil
	case strings.HasPrefix(s, "git@") || strings.HasSuffix(s, ".git"):
		return Source{Kind: KindGit, URL: s}, nil
	case strings.HasPrefix(s, "https://"):
		// A bare https URL serves the manifest directly; git URLs carry
		// the .git suffix and are handled above.
		return Source{Kind: KindHTTPS, URL: s}, nil
	case strings.HasPrefix(s, "http://"):
		return Source{}, ErrInsecureSource
	default:
		// Anything else is a filesystem path.
		return Source{Kind: KindLocal, Path: s}, nil
	}
}

// UnmarshalJSON accepts both the shorthand string and the object form.
func (s *Source) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		parsed, err := ParseSourceString(str)
		if err != nil {
			return err
		}
		*s = parsed
		return nil
	}

	type sourceAlias Source
	var obj sourceAlias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = Source(obj)
	return s.validate()
}

func (s *Source) validate() error {
	switch s.Kind {
	case KindGitHub:
		if strings.Count(s.Repo, "/") != 1 {
			return fmt.Errorf("%w: github source wants repo owner/repo", ErrBadSource)
		}
	case KindGit, KindHTTPS:
		if s.URL == "" {
			return fmt.Errorf("%w: %s source wants url", ErrBadSource, s.Kind)
		}
		if strings.HasPrefix(s.URL, "http://") {
			return ErrInsecureSource
		}
	case KindLuaRocks:
		if s.Package == "" {
			return fmt.Errorf("%w: luarocks source wants package", ErrBadSource)
		}
	case KindLocal:
		if s.Path == "" {
			return fmt.Errorf("%w: local source wants path", ErrBadSource)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrBadSource, s.Kind)
	}
	return nil
}

// GitURL returns the clone URL for git-backed sources.
func (s Source) GitURL() string {
	switch s.Kind {
	case KindGitHub:
		return "https://github.com/" + s.Repo + ".git"
	case KindGit:
		return s.URL
	default:
		return ""
	}
}

// String renders the source in its shorthand form where one exists.
func (s Source) String() string {
	switch s.Kind {
	case KindGitHub:
		return "github:" + s.Repo
	case KindGit, KindHTTPS:
		return s.URL
	case KindLuaRocks:
		return "luarocks:" + s.Package
	case KindLocal:
		return s.Path
	default:
		return ""
	}
}

// parseManifest decodes and sanity-checks a catalog.
func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestFile, err)
	}
	for i, e := range m.Plugins {
		if e.Name == "" {
			return nil, fmt.Errorf("%s: plugin entry %d has no name", ManifestFile, i)
		}
	}
	return &m, nil
}
