// Package config resolves the effective configuration from titan.json,
// global and repository config files, the auth file, environment
// variables and command-line overrides.
package config

import (
	"path/filepath"
	"reflect"

	"github.com/khulnasoft/titan/internal/types"
)

// Defaults applied when no source sets a value.
const (
	DefaultAPIURL        = "https://khulnasoft.com/api"
	DefaultLoginURL      = "https://khulnasoft.com"
	DefaultTimeout       = 30
	DefaultUploadTimeout = 60
)

// DefaultCacheDir is the cache directory relative to the repository root.
var DefaultCacheDir = filepath.Join(".titan", "cache")

// ConfigurationOptions is a partial configuration as produced by a single
// source. Every field is optional; nil means the source has no opinion.
// Keys are matched case-insensitively when decoding JSON, so legacy
// lowercase keys such as "apiurl" and "teamslug" are accepted.
type ConfigurationOptions struct {
	APIURL                *string         `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty" toml:"apiUrl,omitempty"`
	LoginURL              *string         `json:"loginUrl,omitempty" yaml:"loginUrl,omitempty" toml:"loginUrl,omitempty"`
	TeamSlug              *string         `json:"teamSlug,omitempty" yaml:"teamSlug,omitempty" toml:"teamSlug,omitempty"`
	TeamID                *string         `json:"teamId,omitempty" yaml:"teamId,omitempty" toml:"teamId,omitempty"`
	Token                 *string         `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	Signature             *bool           `json:"signature,omitempty" yaml:"signature,omitempty" toml:"signature,omitempty"`
	Preflight             *bool           `json:"preflight,omitempty" yaml:"preflight,omitempty" toml:"preflight,omitempty"`
	Enabled               *bool           `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"`
	Timeout               *uint64         `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	UploadTimeout         *uint64         `json:"uploadTimeout,omitempty" yaml:"uploadTimeout,omitempty" toml:"uploadTimeout,omitempty"`
	UI                    *types.UIMode   `json:"ui,omitempty" yaml:"ui,omitempty" toml:"ui,omitempty"`
	AllowNoPackageManager *bool           `json:"allowNoPackageManager,omitempty" yaml:"allowNoPackageManager,omitempty" toml:"allowNoPackageManager,omitempty"`
	Daemon                *bool           `json:"daemon,omitempty" yaml:"daemon,omitempty" toml:"daemon,omitempty"`
	EnvMode               *types.EnvMode  `json:"envMode,omitempty" yaml:"envMode,omitempty" toml:"envMode,omitempty"`
	ScmBase               *string         `json:"scmBase,omitempty" yaml:"scmBase,omitempty" toml:"scmBase,omitempty"`
	ScmHead               *string         `json:"scmHead,omitempty" yaml:"scmHead,omitempty" toml:"scmHead,omitempty"`
	CacheDir              *string         `json:"cacheDir,omitempty" yaml:"cacheDir,omitempty" toml:"cacheDir,omitempty"`
	RootTitanJSONPath     *string         `json:"rootTitanJsonPath,omitempty" yaml:"rootTitanJsonPath,omitempty" toml:"rootTitanJsonPath,omitempty"`
	Force                 *bool           `json:"force,omitempty" yaml:"force,omitempty" toml:"force,omitempty"`
	LogOrder              *types.LogOrder `json:"logOrder,omitempty" yaml:"logOrder,omitempty" toml:"logOrder,omitempty"`
	RemoteOnly            *bool           `json:"remoteOnly,omitempty" yaml:"remoteOnly,omitempty" toml:"remoteOnly,omitempty"`
	RemoteCacheReadOnly   *bool           `json:"remoteCacheReadOnly,omitempty" yaml:"remoteCacheReadOnly,omitempty" toml:"remoteCacheReadOnly,omitempty"`
	RunSummary            *bool           `json:"runSummary,omitempty" yaml:"runSummary,omitempty" toml:"runSummary,omitempty"`
	AllowNoTitanJSON      *bool           `json:"allowNoTitanJson,omitempty" yaml:"allowNoTitanJson,omitempty" toml:"allowNoTitanJson,omitempty"`
	SpacesID              *string         `json:"spacesId,omitempty" yaml:"spacesId,omitempty" toml:"spacesId,omitempty"`
}

// fillUnset copies every field of lower that o leaves unset. All fields
// are pointers, so "unset" is nil.
func (o *ConfigurationOptions) fillUnset(lower ConfigurationOptions) {
	dst := reflect.ValueOf(o).Elem()
	src := reflect.ValueOf(lower)
	for i := 0; i < dst.NumField(); i++ {
		if dst.Field(i).IsNil() {
			dst.Field(i).Set(src.Field(i))
		}
	}
}

// RootTitanJSON returns the root titan.json location: the configured path
// when set, otherwise titan.json at the repository root.
func (o ConfigurationOptions) RootTitanJSON(repoRoot string) string {
	if o.RootTitanJSONPath != nil && *o.RootTitanJSONPath != "" {
		return *o.RootTitanJSONPath
	}
	return filepath.Join(repoRoot, "titan.json")
}

// Resolved is the effective configuration with defaults applied.
type Resolved struct {
	APIURL                string         `json:"apiUrl" yaml:"apiUrl" toml:"apiUrl"`
	LoginURL              string         `json:"loginUrl" yaml:"loginUrl" toml:"loginUrl"`
	TeamSlug              string         `json:"teamSlug,omitempty" yaml:"teamSlug,omitempty" toml:"teamSlug,omitempty"`
	TeamID                string         `json:"teamId,omitempty" yaml:"teamId,omitempty" toml:"teamId,omitempty"`
	Token                 string         `json:"-" yaml:"-" toml:"-"`
	Signature             bool           `json:"signature" yaml:"signature" toml:"signature"`
	Preflight             bool           `json:"preflight" yaml:"preflight" toml:"preflight"`
	Enabled               bool           `json:"enabled" yaml:"enabled" toml:"enabled"`
	Timeout               uint64         `json:"timeout" yaml:"timeout" toml:"timeout"`
	UploadTimeout         uint64         `json:"uploadTimeout" yaml:"uploadTimeout" toml:"uploadTimeout"`
	UI                    types.UIMode   `json:"ui" yaml:"ui" toml:"ui"`
	AllowNoPackageManager bool           `json:"allowNoPackageManager" yaml:"allowNoPackageManager" toml:"allowNoPackageManager"`
	Daemon                *bool          `json:"daemon,omitempty" yaml:"daemon,omitempty" toml:"daemon,omitempty"`
	EnvMode               types.EnvMode  `json:"envMode" yaml:"envMode" toml:"envMode"`
	ScmBase               string         `json:"scmBase,omitempty" yaml:"scmBase,omitempty" toml:"scmBase,omitempty"`
	ScmHead               string         `json:"scmHead,omitempty" yaml:"scmHead,omitempty" toml:"scmHead,omitempty"`
	CacheDir              string         `json:"cacheDir" yaml:"cacheDir" toml:"cacheDir"`
	RootTitanJSONPath     string         `json:"rootTitanJsonPath" yaml:"rootTitanJsonPath" toml:"rootTitanJsonPath"`
	Force                 bool           `json:"force" yaml:"force" toml:"force"`
	LogOrder              types.LogOrder `json:"logOrder" yaml:"logOrder" toml:"logOrder"`
	RemoteOnly            bool           `json:"remoteOnly" yaml:"remoteOnly" toml:"remoteOnly"`
	RemoteCacheReadOnly   bool           `json:"remoteCacheReadOnly" yaml:"remoteCacheReadOnly" toml:"remoteCacheReadOnly"`
	RunSummary            bool           `json:"runSummary" yaml:"runSummary" toml:"runSummary"`
	AllowNoTitanJSON      bool           `json:"allowNoTitanJson" yaml:"allowNoTitanJson" toml:"allowNoTitanJson"`
	SpacesID              string         `json:"spacesId,omitempty" yaml:"spacesId,omitempty" toml:"spacesId,omitempty"`
}

// WithDefaults applies defaults. Empty strings count as unset.
func (o ConfigurationOptions) WithDefaults(repoRoot string) Resolved {
	return Resolved{
		APIURL:                stringOr(o.APIURL, DefaultAPIURL),
		LoginURL:              stringOr(o.LoginURL, DefaultLoginURL),
		TeamSlug:              stringOr(o.TeamSlug, ""),
		TeamID:                stringOr(o.TeamID, ""),
		Token:                 stringOr(o.Token, ""),
		Signature:             boolOr(o.Signature, false),
		Preflight:             boolOr(o.Preflight, false),
		Enabled:               boolOr(o.Enabled, true),
		Timeout:               uintOr(o.Timeout, DefaultTimeout),
		UploadTimeout:         uintOr(o.UploadTimeout, DefaultUploadTimeout),
		UI:                    valueOr(o.UI, types.UIModeStream),
		AllowNoPackageManager: boolOr(o.AllowNoPackageManager, false),
		Daemon:                o.Daemon,
		EnvMode:               valueOr(o.EnvMode, types.EnvModeStrict),
		ScmBase:               stringOr(o.ScmBase, ""),
		ScmHead:               stringOr(o.ScmHead, ""),
		CacheDir:              stringOr(o.CacheDir, DefaultCacheDir),
		RootTitanJSONPath:     o.RootTitanJSON(repoRoot),
		Force:                 boolOr(o.Force, false),
		LogOrder:              valueOr(o.LogOrder, types.LogOrderAuto),
		RemoteOnly:            boolOr(o.RemoteOnly, false),
		RemoteCacheReadOnly:   boolOr(o.RemoteCacheReadOnly, false),
		RunSummary:            boolOr(o.RunSummary, false),
		AllowNoTitanJSON:      boolOr(o.AllowNoTitanJSON, false),
		SpacesID:              stringOr(o.SpacesID, ""),
	}
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func uintOr(v *uint64, def uint64) uint64 {
	if v == nil {
		return def
	}
	return *v
}

func valueOr[T ~string](v *T, def T) T {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func ptr[T any](v T) *T { return &v }
