package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/khulnasoft/titan/internal/lockfile"
)

// PackageManager is a supported JavaScript package manager.
type PackageManager string

const (
	Npm  PackageManager = "npm"
	Pnpm PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
	Bun  PackageManager = "bun"
)

// ErrMissingPackageManager is returned when neither the packageManager
// field nor a single lockfile identifies the package manager.
var ErrMissingPackageManager = errors.New("could not determine package manager: add a packageManager field to the root package.json")

// UnsupportedPackageManagerError is returned for a packageManager field
// naming a manager the tool does not support.
type UnsupportedPackageManagerError struct {
	Value string
}

func (e *UnsupportedPackageManagerError) Error() string {
	return fmt.Sprintf("unsupported package manager %q: must be one of %s", e.Value, strings.Join(managerNames(), ", "))
}

// SupportedManagers returns every supported package manager in the order
// lockfiles are checked.
func SupportedManagers() []PackageManager {
	return []PackageManager{Npm, Pnpm, Yarn, Bun}
}

func managerNames() []string {
	names := make([]string, 0, 4)
	for _, m := range SupportedManagers() {
		names = append(names, string(m))
	}
	return names
}

func (m PackageManager) String() string { return string(m) }

// LockfileName returns the lockfile file name the manager writes.
func (m PackageManager) LockfileName() string {
	switch m {
	case Npm:
		return "package-lock.json"
	case Pnpm:
		return "pnpm-lock.yaml"
	case Yarn:
		return "yarn.lock"
	case Bun:
		return "bun.lock"
	default:
		return ""
	}
}

func (m PackageManager) decoder() lockfile.Decoder {
	switch m {
	case Npm:
		return lockfile.DecodeNpm
	case Pnpm:
		return lockfile.DecodePnpm
	case Yarn:
		return lockfile.DecodeYarn
	case Bun:
		return lockfile.DecodeBun
	default:
		return nil
	}
}

// ReadLockfile reads and decodes the manager's lockfile under root.
func (m PackageManager) ReadLockfile(root string) (lockfile.Lockfile, error) {
	decode := m.decoder()
	if decode == nil {
		return nil, &UnsupportedPackageManagerError{Value: string(m)}
	}
	data, err := os.ReadFile(filepath.Join(root, m.LockfileName()))
	if err != nil {
		return nil, err
	}
	return decode(data)
}

// ParsePackageManager parses a packageManager field value such as
// "pnpm@8.6.0" or "yarn@4.0.0+sha224.abc".
func ParsePackageManager(field string) (PackageManager, error) {
	name, _, _ := strings.Cut(strings.TrimSpace(field), "@")
	for _, m := range SupportedManagers() {
		if name == string(m) {
			return m, nil
		}
	}
	return "", &UnsupportedPackageManagerError{Value: field}
}

// DetectPackageManager determines the package manager of the repository
// at root, preferring the root package.json's packageManager field and
// falling back to whichever single lockfile is present.
func DetectPackageManager(root string, pkg *PackageJSON) (PackageManager, error) {
	if pkg != nil && pkg.PackageManager != "" {
		return ParsePackageManager(pkg.PackageManager)
	}

	var found []PackageManager
	for _, m := range SupportedManagers() {
		if fileExists(filepath.Join(root, m.LockfileName())) {
			found = append(found, m)
		}
	}
	if len(found) == 0 && fileExists(filepath.Join(root, "bun.lockb")) {
		found = append(found, Bun)
	}
	if len(found) != 1 {
		return "", ErrMissingPackageManager
	}
	return found[0], nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
