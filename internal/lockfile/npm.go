package lockfile

import (
	"encoding/json"
	"fmt"
)

// NpmLockfile is the subset of package-lock.json needed to find the tool
// version. Version 1 lockfiles only carry "dependencies"; versions 2 and 3
// carry "packages" keyed by install path.
type NpmLockfile struct {
	LockfileVersion int                   `json:"lockfileVersion"`
	Packages        map[string]npmPackage `json:"packages"`
	Dependencies    map[string]npmPackage `json:"dependencies"`
}

type npmPackage struct {
	Version string `json:"version"`
}

// DecodeNpm parses package-lock.json contents.
func DecodeNpm(contents []byte) (Lockfile, error) {
	var lf NpmLockfile
	if err := json.Unmarshal(contents, &lf); err != nil {
		return nil, fmt.Errorf("failed to parse package-lock.json: %w", err)
	}
	return &lf, nil
}

// ToolVersion implements Lockfile.
func (l *NpmLockfile) ToolVersion() (string, bool) {
	if pkg, ok := l.Packages["node_modules/"+ToolPackage]; ok {
		if v, ok := exact(pkg.Version); ok {
			return v, true
		}
	}
	if pkg, ok := l.Dependencies[ToolPackage]; ok {
		return exact(pkg.Version)
	}
	return "", false
}
