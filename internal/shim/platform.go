package shim

import (
	"fmt"
	"runtime"
)

// Platform describes the operating system and architecture a platform
// package is published for.
type Platform struct {
	OS   string // darwin, linux, windows
	Arch string // amd64, arm64
}

// Detect returns the current platform.
func Detect() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Name returns the npm platform suffix, e.g. "darwin-arm64" or
// "linux-64". amd64 is published as "64".
func (p Platform) Name() string {
	arch := p.Arch
	switch arch {
	case "amd64":
		arch = "64"
	case "arm64":
	default:
		arch = "unknown"
	}
	goos := p.OS
	switch goos {
	case "darwin", "linux", "windows":
	default:
		goos = "unknown"
	}
	return fmt.Sprintf("%s-%s", goos, arch)
}

// PackageName returns the platform package that ships the binary, e.g.
// "titan-linux-64".
func (p Platform) PackageName() string {
	return "titan-" + p.Name()
}

// BinaryName returns the executable file name.
func (p Platform) BinaryName() string {
	if p.OS == "windows" {
		return "titan.exe"
	}
	return "titan"
}

// IsSupported returns true if a platform package is published for p.
func (p Platform) IsSupported() bool {
	supportedPlatforms := map[string][]string{
		"darwin":  {"amd64", "arm64"},
		"linux":   {"amd64", "arm64"},
		"windows": {"amd64", "arm64"},
	}

	for _, arch := range supportedPlatforms[p.OS] {
		if p.Arch == arch {
			return true
		}
	}
	return false
}
