package repo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// PackageName identifies a workspace package. The repository root is
// always addressed as RootPackage.
type PackageName string

// RootPackage is the name used for the workspace root package.
const RootPackage PackageName = "//"

// IsRoot reports whether n names the workspace root.
func (n PackageName) IsRoot() bool { return n == RootPackage }

func (n PackageName) String() string { return string(n) }

// PackageJSON is the subset of package.json the bootstrap layer reads.
type PackageJSON struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	PackageManager  string            `json:"packageManager,omitempty"`
	Scripts         map[string]string `json:"scripts,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
	Workspaces      Workspaces        `json:"workspaces,omitempty"`
}

// Workspaces accepts both the array form and yarn's object form
// ({"packages": [...]}) of the workspaces field.
type Workspaces []string

// UnmarshalJSON implements json.Unmarshaler.
func (w *Workspaces) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*w = list
		return nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("workspaces must be an array or an object with packages: %w", err)
	}
	*w = obj.Packages
	return nil
}

// ScriptNames returns the script names in sorted order.
func (p *PackageJSON) ScriptNames() []string {
	names := make([]string, 0, len(p.Scripts))
	for name := range p.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasScript reports whether the package defines the named script.
func (p *PackageJSON) HasScript(name string) bool {
	_, ok := p.Scripts[name]
	return ok
}

// ReadPackageJSON reads and decodes the package.json at path.
func ReadPackageJSON(path string) (*PackageJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pkg, nil
}

// PackageInfo describes one workspace package.
type PackageInfo struct {
	PackageJSON *PackageJSON
	// Path is the package directory relative to the repository root.
	Path string
}

// PackageJSONPath returns the package.json location relative to the root.
func (i PackageInfo) PackageJSONPath() string {
	return filepath.Join(i.Path, "package.json")
}
