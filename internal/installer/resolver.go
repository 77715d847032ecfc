package installer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/todui/todui/internal/marketplace"
	"github.com/todui/todui/internal/vcs"
)

// depsTree is the luarocks tree directory inside a plugin, matching the
// runtime's package.path.
const depsTree = "lua_modules"

// materialize turns a source descriptor into a populated targetDir. Any error
// leaves the directory in an undefined state; callers must treat a failed
// materialization as a failed install. Relative local paths resolve against
// baseDir, the owning marketplace's cache.
func (i *Installer) materialize(ctx context.Context, src marketplace.Source, baseDir, targetDir string) error {
	switch src.Kind {
	case marketplace.KindGitHub, marketplace.KindGit:
		// Pull refreshes an existing clone and falls back to a fresh shallow
		// clone, so the same path serves install and update.
		if err := vcs.Pull(ctx, src.GitURL(), targetDir, src.Ref); err != nil {
			return err
		}
		if src.PinnedRevision != "" {
			return vcs.Checkout(ctx, targetDir, src.PinnedRevision)
		}
		return nil

	case marketplace.KindLocal:
		path := src.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		if err := os.RemoveAll(targetDir); err != nil {
			return fmt.Errorf("clearing target: %w", err)
		}
		return copyDir(path, targetDir)

	case marketplace.KindLuaRocks:
		return i.installRock(ctx, src.Package, targetDir)

	default:
		return fmt.Errorf("%w: cannot install plugin from kind %q", marketplace.ErrBadSource, src.Kind)
	}
}

// installRock seeds targetDir with a minimal rockspec and installs the named
// rock into the plugin's own tree.
func (i *Installer) installRock(ctx context.Context, pkg, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating plugin directory: %w", err)
	}

	spec := fmt.Sprintf("package = %q\nversion = \"dev-1\"\nsource = { url = \"\" }\ndependencies = { %q }\n", pkg, pkg)
	specPath := filepath.Join(targetDir, pkg+"-dev-1.rockspec")
	if err := os.WriteFile(specPath, []byte(spec), 0o644); err != nil {
		return fmt.Errorf("writing rockspec: %w", err)
	}

	if err := i.run(ctx, targetDir, "luarocks", "install", "--tree", depsTree, pkg); err != nil {
		return fmt.Errorf("installing rock %s: %w", pkg, err)
	}
	return nil
}

// installDeps performs a best-effort dependency install after the plugin code
// is in place. A rockspec drives luarocks; a package.lua falls back to lit.
// Failure of both tools is a warning, not an error: the plugin stays
// installed and may still load if the dependencies turn out optional.
func (i *Installer) installDeps(ctx context.Context, name, dir string) {
	specs, _ := filepath.Glob(filepath.Join(dir, "*.rockspec"))
	litManifest := filepath.Join(dir, "package.lua")
	hasLit := false
	if fi, err := os.Stat(litManifest); err == nil && !fi.IsDir() {
		hasLit = true
	}
	if len(specs) == 0 && !hasLit {
		return
	}

	var firstErr error
	if len(specs) > 0 {
		firstErr = i.run(ctx, dir, "luarocks", "install", "--only-deps", "--tree", depsTree, filepath.Base(specs[0]))
		if firstErr == nil {
			return
		}
	}
	if hasLit {
		err := i.run(ctx, dir, "lit", "install")
		if err == nil {
			return
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	i.log.WithField("plugin", name).WithError(firstErr).Warn("dependency install failed, plugin may fail to load")
}

// copyDir recursively copies src into dst. Symlinks are skipped; a plugin
// checkout has no business pointing outside itself.
func copyDir(src, dst string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("reading source %s: %w", src, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("source %s is not a directory", src)
	}

	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}
		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
