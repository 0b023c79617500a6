package config

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/khulnasoft/titan/internal/titanjson"
)

// TitanJSONReader reads the shared options of the root titan.json. The
// file location honors a root titan.json override set by any higher
// precedence source.
type TitanJSONReader struct {
	RepoRoot string
	Logger   *zap.Logger
}

// Resolve implements Source.
func (r TitanJSONReader) Resolve(existing ConfigurationOptions) (ConfigurationOptions, error) {
	tj, err := titanjson.Read(r.RepoRoot, existing.RootTitanJSON(r.RepoRoot), r.Logger)
	if errors.Is(err, fs.ErrNotExist) {
		return ConfigurationOptions{}, nil
	}
	if err != nil {
		return ConfigurationOptions{}, err
	}

	var opts ConfigurationOptions
	if rc := tj.RemoteCache; rc != nil {
		opts.APIURL = rc.APIURL
		opts.LoginURL = rc.LoginURL
		opts.TeamSlug = rc.TeamSlug
		opts.TeamID = rc.TeamID
		opts.Signature = rc.Signature
		opts.Preflight = rc.Preflight
		opts.Timeout = rc.Timeout
		opts.UploadTimeout = rc.UploadTimeout
		opts.Enabled = rc.Enabled
	}

	if tj.CacheDir != nil {
		dir := tj.CacheDir.Value
		if path.IsAbs(dir) || filepath.IsAbs(dir) {
			return ConfigurationOptions{}, &AbsoluteCacheDirError{Path: tj.CacheDir.Location(), Value: dir}
		}
		opts.CacheDir = ptr(filepath.FromSlash(dir))
	}

	// Tokens are never read from shared config.
	opts.Token = nil
	opts.SpacesID = tj.SpacesID
	opts.UI = tj.UI
	opts.AllowNoPackageManager = tj.AllowNoPackageManager
	opts.Daemon = tj.Daemon
	opts.EnvMode = tj.EnvMode
	return opts, nil
}
