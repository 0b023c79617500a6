package lockfile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PnpmLockfile is the subset of pnpm-lock.yaml needed to find the tool
// version. Workspaces list root dependencies under importers["."]; older
// single-project lockfiles list them at the top level.
type PnpmLockfile struct {
	LockfileVersion string                    `yaml:"lockfileVersion"`
	Importers       map[string]pnpmProject    `yaml:"importers"`
	Dependencies    map[string]pnpmDependency `yaml:"dependencies"`
	DevDependencies map[string]pnpmDependency `yaml:"devDependencies"`
}

type pnpmProject struct {
	Dependencies    map[string]pnpmDependency `yaml:"dependencies"`
	DevDependencies map[string]pnpmDependency `yaml:"devDependencies"`
}

// pnpmDependency accepts both the v5 scalar form ("titan: 1.9.3") and the
// v6+ mapping form ("titan: {specifier: ^1.9.0, version: 1.9.3}").
type pnpmDependency struct {
	Specifier string
	Version   string
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *pnpmDependency) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		d.Version = node.Value
		return nil
	}
	var raw struct {
		Specifier string `yaml:"specifier"`
		Version   string `yaml:"version"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	d.Specifier = raw.Specifier
	d.Version = raw.Version
	return nil
}

// DecodePnpm parses pnpm-lock.yaml contents.
func DecodePnpm(contents []byte) (Lockfile, error) {
	var lf PnpmLockfile
	if err := yaml.Unmarshal(contents, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse pnpm-lock.yaml: %w", err)
	}
	return &lf, nil
}

// ToolVersion implements Lockfile.
func (l *PnpmLockfile) ToolVersion() (string, bool) {
	if root, ok := l.Importers["."]; ok {
		if v, ok := pnpmLookup(root.DevDependencies, root.Dependencies); ok {
			return v, true
		}
	}
	return pnpmLookup(l.DevDependencies, l.Dependencies)
}

func pnpmLookup(deps ...map[string]pnpmDependency) (string, bool) {
	for _, m := range deps {
		if dep, ok := m[ToolPackage]; ok {
			if v, ok := exact(dep.Version); ok {
				return v, true
			}
		}
	}
	return "", false
}
