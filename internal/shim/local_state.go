package shim

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/khulnasoft/titan/internal/lockfile"
	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/update"
)

// LocalState is a titan installation found in a repository's
// node_modules.
type LocalState struct {
	Binary  string
	Version string

	executable func() (string, error)
}

// InferLocalState searches the install locations of the supported package
// managers under root for the current platform's binary.
func InferLocalState(root string) (*LocalState, bool) {
	return inferLocalState(root, Detect())
}

func inferLocalState(root string, platform Platform) (*LocalState, bool) {
	if !platform.IsSupported() {
		return nil, false
	}
	for _, dir := range searchDirs(root, platform) {
		binary := filepath.Join(dir, platform.PackageName(), "bin", platform.BinaryName())
		if !isFile(binary) {
			continue
		}
		version, ok := installedVersion(dir, platform)
		if !ok {
			continue
		}
		return &LocalState{Binary: binary, Version: version, executable: os.Executable}, true
	}
	return nil, false
}

// searchDirs lists node_modules directories in lookup order: hoisted
// installs (npm, yarn classic, bun), pnpm's virtual store, then yarn
// berry unplugged packages.
func searchDirs(root string, platform Platform) []string {
	dirs := []string{filepath.Join(root, "node_modules")}
	dirs = append(dirs, sortedGlob(filepath.Join(root, "node_modules", ".pnpm", lockfile.ToolPackage+"@*", "node_modules"))...)
	dirs = append(dirs, sortedGlob(filepath.Join(root, ".yarn", "unplugged", platform.PackageName()+"-npm-*", "node_modules"))...)
	return dirs
}

func sortedGlob(pattern string) []string {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

// installedVersion reads the version from the titan package, falling back
// to the platform package next to it.
func installedVersion(dir string, platform Platform) (string, bool) {
	for _, name := range []string{lockfile.ToolPackage, platform.PackageName()} {
		pkg, err := repo.ReadPackageJSON(filepath.Join(dir, name, "package.json"))
		if err != nil || pkg.Version == "" {
			continue
		}
		return pkg.Version, true
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LocalIsSelf reports whether the local binary is the running executable.
func (s *LocalState) LocalIsSelf() bool {
	exe := s.executable
	if exe == nil {
		exe = os.Executable
	}
	self, err := exe()
	if err != nil {
		return false
	}
	a, err := canonicalize(s.Binary)
	if err != nil {
		return false
	}
	b, err := canonicalize(self)
	if err != nil {
		return false
	}
	return a == b
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// VersionHasShim reports whether a titan version understands the
// --skip-infer and --single-package flags passed on delegation. Support
// arrived in 1.7.0; canary builds of 1.7.0 count.
func VersionHasShim(version string) bool {
	v, err := update.ParseVersion(version)
	if err != nil {
		return false
	}
	return v.AtLeast(1, 7)
}
