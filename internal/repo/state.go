// Package repo infers the repository the tool was invoked in: its root,
// whether it is a monorepo, and which package manager manages it.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Mode distinguishes monorepos from single-package repositories.
type Mode int

const (
	// MultiPackage is a workspace root with member packages.
	MultiPackage Mode = iota
	// SinglePackage is a repository with one package.json and no workspaces.
	SinglePackage
)

func (m Mode) String() string {
	if m == SinglePackage {
		return "single-package"
	}
	return "multi-package"
}

// ErrNoPackageJSON is returned when no package.json is found in the
// directory or any of its ancestors.
var ErrNoPackageJSON = errors.New("unable to find package.json in the current directory or any parent")

// State is the inferred repository. It is immutable once returned by Infer.
type State struct {
	Root string
	Mode Mode
	// PackageManager and PackageManagerErr together describe the detection
	// result; exactly one of them is meaningful.
	PackageManager    PackageManager
	PackageManagerErr error
	RootPackageJSON   *PackageJSON
	// Workspaces holds the member package globs of a multi-package repo.
	Workspaces []string
}

// Infer walks up from cwd looking for the repository root. The nearest
// ancestor that declares workspaces (in package.json or
// pnpm-workspace.yaml) wins; otherwise the nearest directory with a
// package.json is treated as a single-package repository.
func Infer(cwd string) (*State, error) {
	dir, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cwd, err)
	}

	var nearest string
	var nearestPkg *PackageJSON
	for {
		pkgPath := filepath.Join(dir, "package.json")
		if fileExists(pkgPath) {
			pkg, err := ReadPackageJSON(pkgPath)
			if err != nil {
				return nil, err
			}
			if nearest == "" {
				nearest, nearestPkg = dir, pkg
			}
			workspaces, err := workspaceGlobs(dir, pkg)
			if err != nil {
				return nil, err
			}
			if len(workspaces) > 0 {
				return newState(dir, MultiPackage, pkg, workspaces), nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if nearest == "" {
		return nil, ErrNoPackageJSON
	}
	return newState(nearest, SinglePackage, nearestPkg, nil), nil
}

func newState(root string, mode Mode, pkg *PackageJSON, workspaces []string) *State {
	pm, pmErr := DetectPackageManager(root, pkg)
	return &State{
		Root:              root,
		Mode:              mode,
		PackageManager:    pm,
		PackageManagerErr: pmErr,
		RootPackageJSON:   pkg,
		Workspaces:        workspaces,
	}
}

func workspaceGlobs(dir string, pkg *PackageJSON) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "pnpm-workspace.yaml"))
	switch {
	case err == nil:
		var ws struct {
			Packages []string `yaml:"packages"`
		}
		if err := yaml.Unmarshal(data, &ws); err != nil {
			return nil, fmt.Errorf("failed to parse pnpm-workspace.yaml: %w", err)
		}
		if len(ws.Packages) > 0 {
			return ws.Packages, nil
		}
	case !os.IsNotExist(err):
		return nil, err
	}
	return pkg.Workspaces, nil
}

// Packages returns every workspace package keyed by name, including the
// root as RootPackage. Globs use doublestar syntax, so "packages/**"
// matches packages at any depth; negated globs ("!pattern") exclude
// matches. Packages inside node_modules are never included.
// Single-package repositories only contain the root.
func (s *State) Packages() (map[PackageName]PackageInfo, error) {
	pkgs := map[PackageName]PackageInfo{
		RootPackage: {PackageJSON: s.RootPackageJSON, Path: "."},
	}
	if s.Mode == SinglePackage {
		return pkgs, nil
	}

	var include, exclude []string
	for _, glob := range s.Workspaces {
		negate := strings.HasPrefix(glob, "!")
		pattern := path.Clean(strings.TrimPrefix(glob, "!"))
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid workspace glob %q", glob)
		}
		if negate {
			exclude = append(exclude, pattern)
			continue
		}
		include = append(include, pattern)
	}

	seen := make(map[string]bool)
	var dirs []string
	fsys := os.DirFS(s.Root)
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, path.Join(pattern, "package.json"))
		if err != nil {
			return nil, fmt.Errorf("invalid workspace glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			dir := path.Dir(m)
			if dir == "." || seen[dir] || inNodeModules(dir) || excluded(exclude, dir) {
				continue
			}
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		rel := filepath.FromSlash(dir)
		pkg, err := ReadPackageJSON(filepath.Join(s.Root, rel, "package.json"))
		if err != nil {
			return nil, err
		}
		name := PackageName(pkg.Name)
		if name == "" {
			name = PackageName(dir)
		}
		pkgs[name] = PackageInfo{PackageJSON: pkg, Path: rel}
	}
	return pkgs, nil
}

func inNodeModules(dir string) bool {
	for _, segment := range strings.Split(dir, "/") {
		if segment == "node_modules" {
			return true
		}
	}
	return false
}

func excluded(patterns []string, dir string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, dir); ok {
			return true
		}
	}
	return false
}
