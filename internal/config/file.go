package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

const (
	globalConfigDirName = "titanrepo"
	globalConfigName    = "config.json"
	authDirName         = "com.khulnasoft.cli"
	authFileName        = "auth.json"
)

// Paths locates the per-user configuration files.
type Paths struct {
	// ConfigDir is the user config directory (os.UserConfigDir).
	ConfigDir string
	// DataDir holds the primary auth file.
	DataDir string
	// GlobalConfig, when set, replaces the default global config file.
	GlobalConfig string
}

// DefaultPaths returns the platform directories for the current user.
func DefaultPaths() (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, ErrNoGlobalConfigDir
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dataDir = xdg
		} else if home, err := os.UserHomeDir(); err == nil {
			dataDir = filepath.Join(home, ".local", "share")
		}
	}
	return Paths{ConfigDir: configDir, DataDir: dataDir}, nil
}

// GlobalConfigPath returns the global config file location.
func (p Paths) GlobalConfigPath() string {
	if p.GlobalConfig != "" {
		return p.GlobalConfig
	}
	return filepath.Join(p.ConfigDir, globalConfigDirName, globalConfigName)
}

// AuthPath returns the auth file location. The primary location wins
// when it exists; otherwise the legacy location inside the global config
// directory is used.
func (p Paths) AuthPath() string {
	primary := filepath.Join(p.DataDir, authDirName, authFileName)
	if _, err := os.Stat(primary); err == nil {
		return primary
	}
	return filepath.Join(p.ConfigDir, globalConfigDirName, globalConfigName)
}

// LocalConfigPath returns the repository config file location.
func LocalConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, ".titan", "config.json")
}

// ConfigFile reads options from a global or repository config file. A
// missing or empty file has no opinion. The format follows the file
// extension and defaults to JSON.
type ConfigFile struct {
	Path string
}

// Resolve implements Source.
func (f ConfigFile) Resolve(ConfigurationOptions) (ConfigurationOptions, error) {
	content, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return ConfigurationOptions{}, nil
	}
	if err != nil {
		return ConfigurationOptions{}, &ReadError{Path: f.Path, Err: err}
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return ConfigurationOptions{}, nil
	}

	format := detectFormat(f.Path, content)
	if format == FormatUnknown {
		format = FormatJSON
	}
	opts, err := parse(content, format)
	if err != nil {
		return ConfigurationOptions{}, &ReadError{Path: f.Path, Err: err}
	}
	if err := Validate(opts); err != nil {
		return ConfigurationOptions{}, &ReadError{Path: f.Path, Err: err}
	}
	return opts, nil
}

// AuthFile reads the login token. A missing file, or one without a
// token, has no opinion.
type AuthFile struct {
	Path string
}

// Resolve implements Source.
func (f AuthFile) Resolve(ConfigurationOptions) (ConfigurationOptions, error) {
	content, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return ConfigurationOptions{}, nil
	}
	if err != nil {
		return ConfigurationOptions{}, &ReadError{Path: f.Path, Err: err}
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return ConfigurationOptions{}, nil
	}

	var auth struct {
		Token *string `json:"token"`
	}
	if err := json.Unmarshal(content, &auth); err != nil {
		return ConfigurationOptions{}, &ReadError{Path: f.Path, Err: err}
	}
	if auth.Token == nil || *auth.Token == "" {
		return ConfigurationOptions{}, nil
	}
	return ConfigurationOptions{Token: auth.Token}, nil
}
