package shim

import (
	"github.com/khulnasoft/titan/internal/config"
	"github.com/khulnasoft/titan/internal/lockfile"
	"github.com/khulnasoft/titan/internal/repo"
)

// DownloadLocalEnvVar enables running the pinned version through the
// package runner when no local install exists.
const DownloadLocalEnvVar = "TITAN_DOWNLOAD_LOCAL_ENABLED"

// LocalConfig is the titan version a repository pins without having it
// installed.
type LocalConfig struct {
	version string
}

// Version returns the pinned version.
func (c LocalConfig) Version() string { return c.version }

// InferLocalConfig returns the pinned version when enabled is truthy
// ("1" or "true") and one can be found.
func InferLocalConfig(state *repo.State, enabled string) (LocalConfig, bool) {
	if on := config.ParseTruthy(enabled); on == nil || !*on {
		return LocalConfig{}, false
	}
	version, ok := PinnedVersion(state)
	if !ok {
		return LocalConfig{}, false
	}
	return LocalConfig{version: version}, true
}

// PinnedVersion finds the titan version pinned by the repository. A known
// package manager's lockfile is read first; when the manager is unknown or
// its lockfile cannot be read, every supported lockfile is tried in order.
// An exact version in the root package.json dependencies is the last
// resort.
func PinnedVersion(state *repo.State) (string, bool) {
	if state.PackageManagerErr == nil && state.PackageManager != "" {
		if lf, err := state.PackageManager.ReadLockfile(state.Root); err == nil {
			if v, ok := lf.ToolVersion(); ok {
				return v, true
			}
			return manifestVersion(state.RootPackageJSON)
		}
	}
	for _, m := range repo.SupportedManagers() {
		lf, err := m.ReadLockfile(state.Root)
		if err != nil {
			continue
		}
		if v, ok := lf.ToolVersion(); ok {
			return v, true
		}
	}
	return manifestVersion(state.RootPackageJSON)
}

func manifestVersion(pkg *repo.PackageJSON) (string, bool) {
	if pkg == nil {
		return "", false
	}
	for _, deps := range []map[string]string{pkg.DevDependencies, pkg.Dependencies} {
		if v, ok := deps[lockfile.ToolPackage]; ok && lockfile.IsExactVersion(v) {
			return v, true
		}
	}
	return "", false
}
