// Package lockfile extracts the pinned titan version from package-manager
// lockfiles. Only the data needed for that is decoded; everything else in
// the lockfile is ignored.
package lockfile

import (
	"strings"

	"golang.org/x/mod/semver"
)

// ToolPackage is the npm package name the tool is published under.
const ToolPackage = "titan"

// Lockfile is a decoded package-manager lockfile.
type Lockfile interface {
	// ToolVersion returns the resolved titan version, if the lockfile pins one.
	ToolVersion() (string, bool)
}

// Decoder turns raw lockfile contents into a Lockfile.
type Decoder func(contents []byte) (Lockfile, error)

// IsExactVersion reports whether v is a concrete semantic version rather
// than a range, tag or protocol reference.
func IsExactVersion(v string) bool {
	if v == "" {
		return false
	}
	sv := "v" + strings.TrimPrefix(v, "v")
	// semver accepts "v2" and "v2.1" as shorthands; a pin needs all three parts.
	core, _, _ := strings.Cut(sv, "+")
	return semver.IsValid(sv) && semver.Canonical(sv) == core
}

// cleanVersion drops peer-dependency suffixes pnpm appends to resolved
// versions, e.g. "2.0.3(react@18.2.0)" or "2.0.3_react@18.2.0".
func cleanVersion(v string) string {
	if i := strings.IndexAny(v, "(_"); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// descriptorName returns the package name of a dependency descriptor such
// as "titan@^2.0.0", "titan@npm:2.0.3" or "@scope/pkg@1.0.0".
func descriptorName(descriptor string) string {
	descriptor = strings.Trim(strings.TrimSpace(descriptor), `"`)
	if descriptor == "" {
		return ""
	}
	at := strings.Index(descriptor[1:], "@")
	if at < 0 {
		return descriptor
	}
	return descriptor[:at+1]
}

func exact(v string) (string, bool) {
	v = cleanVersion(v)
	if !IsExactVersion(v) {
		return "", false
	}
	return v, true
}
