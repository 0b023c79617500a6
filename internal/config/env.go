package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/khulnasoft/titan/internal/types"
)

// envMapping maps lowercased environment variable names to option keys.
var envMapping = map[string]string{
	"titan_api":                         "api_url",
	"titan_login":                       "login_url",
	"titan_team":                        "team_slug",
	"titan_teamid":                      "team_id",
	"titan_token":                       "token",
	"titan_remote_cache_timeout":        "timeout",
	"titan_remote_cache_upload_timeout": "upload_timeout",
	"titan_remote_cache_signature":      "signature",
	"titan_remote_cache_enabled":        "enabled",
	"titan_ui":                          "ui",
	"titan_dangerously_disable_package_manager_check": "allow_no_package_manager",
	"titan_daemon":                 "daemon",
	"titan_env_mode":               "env_mode",
	"titan_cache_dir":              "cache_dir",
	"titan_preflight":              "preflight",
	"titan_scm_base":               "scm_base",
	"titan_scm_head":               "scm_head",
	"titan_root_titan_json":        "root_titan_json_path",
	"titan_force":                  "force",
	"titan_log_order":              "log_order",
	"titan_remote_only":            "remote_only",
	"titan_remote_cache_read_only": "remote_cache_read_only",
	"titan_run_summary":            "run_summary",
	"titan_allow_no_titan_json":    "allow_no_titan_json",
}

var overrideMapping = map[string]string{
	"khulnasoft_artifacts_token": "token",
	"khulnasoft_artifacts_owner": "team_id",
}

// EnvironmentFromOS returns the process environment keyed by lowercased
// variable name.
func EnvironmentFromOS() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		env[strings.ToLower(k)] = v
	}
	return env
}

// ParseTruthy interprets "1"/"true" and "0"/"false". Any other value,
// including the empty string, has no opinion.
func ParseTruthy(s string) *bool {
	switch s {
	case "1", "true":
		return ptr(true)
	case "0", "false":
		return ptr(false)
	default:
		return nil
	}
}

func mapEnvironment(mapping map[string]string, env map[string]string) (map[string]string, error) {
	out := make(map[string]string)
	for name, key := range mapping {
		value, ok := env[name]
		if !ok {
			continue
		}
		if !utf8.ValidString(value) {
			return nil, &EncodingError{Var: strings.ToUpper(name)}
		}
		out[key] = value
	}
	return out, nil
}

// EnvVars reads options from TITAN_* environment variables.
type EnvVars struct {
	values map[string]string
	vars   map[string]string
	cwd    string
}

// NewEnvVars maps env, keyed by lowercased name, to option values. cwd
// anchors a relative TITAN_ROOT_TITAN_JSON; when empty the process
// working directory is used.
func NewEnvVars(env map[string]string, cwd string) (*EnvVars, error) {
	values, err := mapEnvironment(envMapping, env)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]string, len(envMapping))
	for name, key := range envMapping {
		vars[key] = strings.ToUpper(name)
	}
	return &EnvVars{values: values, vars: vars, cwd: cwd}, nil
}

func (e *EnvVars) str(key string) *string {
	if v := e.values[key]; v != "" {
		return ptr(v)
	}
	return nil
}

// truthy returns the parsed value and whether the variable was set to a
// non-empty value at all.
func (e *EnvVars) truthy(key string) (*bool, bool) {
	v := e.values[key]
	if v == "" {
		return nil, false
	}
	return ParseTruthy(v), true
}

func (e *EnvVars) lenient(key string) *bool {
	v, _ := e.truthy(key)
	return v
}

func (e *EnvVars) strict(key string, invalid error) (*bool, error) {
	v, set := e.truthy(key)
	if set && v == nil {
		return nil, invalid
	}
	return v, nil
}

func (e *EnvVars) uint(key string) (*uint64, error) {
	v := e.values[key]
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return nil, &ParseError{Field: e.vars[key], Value: v, Err: err}
	}
	return &n, nil
}

// Resolve implements Source.
func (e *EnvVars) Resolve(ConfigurationOptions) (ConfigurationOptions, error) {
	var opts ConfigurationOptions
	var err error

	if opts.Signature, err = e.strict("signature", ErrInvalidSignature); err != nil {
		return ConfigurationOptions{}, err
	}
	if opts.Preflight, err = e.strict("preflight", ErrInvalidPreflight); err != nil {
		return ConfigurationOptions{}, err
	}
	if opts.Enabled, err = e.strict("enabled", ErrInvalidRemoteCacheEnabled); err != nil {
		return ConfigurationOptions{}, err
	}
	if opts.Timeout, err = e.uint("timeout"); err != nil {
		return ConfigurationOptions{}, err
	}
	if opts.UploadTimeout, err = e.uint("upload_timeout"); err != nil {
		return ConfigurationOptions{}, err
	}

	opts.APIURL = e.str("api_url")
	opts.LoginURL = e.str("login_url")
	opts.TeamSlug = e.str("team_slug")
	opts.TeamID = e.str("team_id")
	opts.Token = e.str("token")
	opts.ScmBase = e.str("scm_base")
	opts.ScmHead = e.str("scm_head")
	opts.CacheDir = e.str("cache_dir")

	opts.Force = e.lenient("force")
	opts.RemoteOnly = e.lenient("remote_only")
	opts.RemoteCacheReadOnly = e.lenient("remote_cache_read_only")
	opts.RunSummary = e.lenient("run_summary")
	opts.AllowNoTitanJSON = e.lenient("allow_no_titan_json")
	opts.AllowNoPackageManager = e.lenient("allow_no_package_manager")
	opts.Daemon = e.lenient("daemon")

	if ui := e.lenient("ui"); ui != nil {
		if *ui {
			opts.UI = ptr(types.UIModeTUI)
		} else {
			opts.UI = ptr(types.UIModeStream)
		}
	}

	switch e.values["env_mode"] {
	case "strict":
		opts.EnvMode = ptr(types.EnvModeStrict)
	case "loose":
		opts.EnvMode = ptr(types.EnvModeLoose)
	}

	if v := e.values["root_titan_json_path"]; v != "" {
		path, err := e.absolute(v)
		if err != nil {
			return ConfigurationOptions{}, err
		}
		opts.RootTitanJSONPath = &path
	}

	if v := e.values["log_order"]; v != "" {
		order, err := types.ParseLogOrder(v)
		if err != nil {
			return ConfigurationOptions{}, &InvalidLogOrderError{Value: v, Valid: logOrderNames()}
		}
		opts.LogOrder = &order
	}

	return opts, nil
}

func (e *EnvVars) absolute(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd := e.cwd
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, path), nil
}

func logOrderNames() string {
	names := make([]string, 0, 3)
	for _, o := range types.AllLogOrders() {
		names = append(names, o.String())
	}
	return strings.Join(names, ", ")
}

// OverrideEnvVars reads options that CI providers and hosting platforms
// set: artifact credentials and the CI/NO_COLOR display hints.
type OverrideEnvVars struct {
	values map[string]string
	env    map[string]string
}

// NewOverrideEnvVars maps env, keyed by lowercased name.
func NewOverrideEnvVars(env map[string]string) (*OverrideEnvVars, error) {
	values, err := mapEnvironment(overrideMapping, env)
	if err != nil {
		return nil, err
	}
	return &OverrideEnvVars{values: values, env: env}, nil
}

// ui forces stream output when CI (or, without CI, NO_COLOR) is truthy.
func (o *OverrideEnvVars) ui() *types.UIMode {
	value, ok := o.env["ci"]
	if !ok {
		if value, ok = o.env["no_color"]; !ok {
			return nil
		}
	}
	if v := ParseTruthy(value); v != nil && *v {
		return ptr(types.UIModeStream)
	}
	return nil
}

// Resolve implements Source.
func (o *OverrideEnvVars) Resolve(ConfigurationOptions) (ConfigurationOptions, error) {
	var opts ConfigurationOptions
	if v := o.values["token"]; v != "" {
		opts.Token = ptr(v)
	}
	if v := o.values["team_id"]; v != "" {
		opts.TeamID = ptr(v)
	}
	opts.UI = o.ui()
	return opts, nil
}
