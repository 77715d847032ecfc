// Package vcs shells out to git for marketplace and plugin fetches. Clones
// are atomic: work happens in a sibling .tmp directory that is renamed over
// the target only on success.
package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const tmpSuffix = ".tmp"

// EnsureGit checks that git is available on PATH.
func EnsureGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git is required but not found in PATH")
	}
	return nil
}

// Clone performs a shallow clone of url into targetDir, replacing any
// existing directory. A non-empty ref clones that branch or tag.
func Clone(ctx context.Context, url, targetDir, ref string) error {
	if err := EnsureGit(); err != nil {
		return err
	}

	tmpDir := targetDir + tmpSuffix
	_ = os.RemoveAll(tmpDir)
	if err := os.MkdirAll(filepath.Dir(tmpDir), 0o755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	args := []string{"clone", "--depth=1"}
	if ref != "" {
		args = append(args, "--branch", ref)
	}
	args = append(args, url, tmpDir)
	if err := run(ctx, "", args...); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("cloning %s: %w", url, err)
	}

	if err := os.RemoveAll(targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("removing existing clone: %w", err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return fmt.Errorf("finalizing clone: %w", err)
	}
	return nil
}

// Pull updates an existing shallow clone. A missing repository falls back
// to Clone.
func Pull(ctx context.Context, url, dir, ref string) error {
	if err := EnsureGit(); err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); os.IsNotExist(err) {
		return Clone(ctx, url, dir, ref)
	}
	if err := run(ctx, dir, "pull", "--depth=1", "--rebase"); err != nil {
		return fmt.Errorf("pulling %s: %w", dir, err)
	}
	return nil
}

// Checkout moves the working tree to an exact revision, unshallowing first
// since a depth-1 clone rarely contains it.
func Checkout(ctx context.Context, dir, revision string) error {
	if err := run(ctx, dir, "fetch", "--unshallow", "--quiet"); err != nil {
		// Already a full clone, or the remote forbids unshallow; checkout
		// below reports the real problem if the revision is missing.
		_ = run(ctx, dir, "fetch", "--quiet")
	}
	if err := run(ctx, dir, "checkout", "--quiet", revision); err != nil {
		return fmt.Errorf("checking out %s: %w", revision, err)
	}
	return nil
}

// Revision returns the current HEAD commit of a clone.
func Revision(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD in %s: %w", dir, err)
	}
	return strings.TrimSpace(string(out)), nil
}

func run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w\n%s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
