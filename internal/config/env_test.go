package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khulnasoft/titan/internal/types"
)

func resolveEnv(t *testing.T, env map[string]string) (ConfigurationOptions, error) {
	t.Helper()
	vars, err := NewEnvVars(env, filepath.FromSlash("/work/repo"))
	require.NoError(t, err)
	return vars.Resolve(ConfigurationOptions{})
}

func TestEnvSetting(t *testing.T) {
	rootTitanJSON := filepath.FromSlash("/some/dir/yolo.json")
	env := map[string]string{
		"titan_api":                  "https://example.com/api",
		"titan_login":                "https://example.com/login",
		"titan_team":                 "khulnasoft",
		"titan_teamid":               "team_nLlpyC6REAqxydlFKbrMDlud",
		"titan_token":                "abcdef1234567890abcdef",
		"titan_remote_cache_timeout": "200",
		"titan_ui":                   "true",
		"titan_dangerously_disable_package_manager_check": "true",
		"titan_daemon":                 "true",
		"titan_preflight":              "true",
		"titan_env_mode":               "strict",
		"titan_cache_dir":              "nebulo9",
		"titan_root_titan_json":        rootTitanJSON,
		"titan_force":                  "1",
		"titan_log_order":              "grouped",
		"titan_remote_only":            "1",
		"titan_remote_cache_read_only": "1",
		"titan_run_summary":            "true",
		"titan_allow_no_titan_json":    "true",
	}

	opts, err := resolveEnv(t, env)
	require.NoError(t, err)
	resolved := opts.WithDefaults("/repo")

	assert.True(t, resolved.Preflight)
	assert.True(t, resolved.Force)
	assert.Equal(t, types.LogOrderGrouped, resolved.LogOrder)
	assert.True(t, resolved.RemoteOnly)
	assert.True(t, resolved.RemoteCacheReadOnly)
	assert.True(t, resolved.RunSummary)
	assert.True(t, resolved.AllowNoTitanJSON)
	assert.Equal(t, "https://example.com/api", resolved.APIURL)
	assert.Equal(t, "https://example.com/login", resolved.LoginURL)
	assert.Equal(t, "khulnasoft", resolved.TeamSlug)
	assert.Equal(t, "team_nLlpyC6REAqxydlFKbrMDlud", resolved.TeamID)
	assert.Equal(t, "abcdef1234567890abcdef", resolved.Token)
	assert.Equal(t, uint64(200), resolved.Timeout)
	assert.Equal(t, types.UIModeTUI, resolved.UI)
	assert.True(t, resolved.AllowNoPackageManager)
	require.NotNil(t, resolved.Daemon)
	assert.True(t, *resolved.Daemon)
	assert.Equal(t, types.EnvModeStrict, resolved.EnvMode)
	assert.Equal(t, "nebulo9", resolved.CacheDir)
	assert.Equal(t, rootTitanJSON, resolved.RootTitanJSONPath)
}

func TestEmptyEnvSetting(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, ConfigurationOptions{}, opts)

	resolved := opts.WithDefaults(filepath.FromSlash("/repo"))
	assert.Equal(t, DefaultAPIURL, resolved.APIURL)
	assert.Equal(t, DefaultLoginURL, resolved.LoginURL)
	assert.Equal(t, uint64(DefaultTimeout), resolved.Timeout)
	assert.Equal(t, uint64(DefaultUploadTimeout), resolved.UploadTimeout)
	assert.Equal(t, types.UIModeStream, resolved.UI)
	assert.Equal(t, types.EnvModeStrict, resolved.EnvMode)
	assert.Equal(t, types.LogOrderAuto, resolved.LogOrder)
	assert.Equal(t, filepath.Join(".titan", "cache"), resolved.CacheDir)
	assert.Equal(t, filepath.Join(filepath.FromSlash("/repo"), "titan.json"), resolved.RootTitanJSONPath)
	assert.True(t, resolved.Enabled)
	assert.Nil(t, resolved.Daemon)
}

func TestEmptyValuesHaveNoOpinion(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{
		"titan_api":                  "",
		"titan_preflight":            "",
		"titan_remote_cache_timeout": "",
		"titan_log_order":            "",
		"titan_root_titan_json":      "",
	})
	require.NoError(t, err)
	assert.Equal(t, ConfigurationOptions{}, opts)
}

func TestLenientBooleans(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{
		"titan_force":  "yes",
		"titan_daemon": "0",
		"titan_ui":     "false",
	})
	require.NoError(t, err)
	assert.Nil(t, opts.Force)
	require.NotNil(t, opts.Daemon)
	assert.False(t, *opts.Daemon)
	assert.Equal(t, types.UIModeStream, *opts.UI)
}

func TestValidatedBooleans(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want error
	}{
		{"preflight", "titan_preflight", ErrInvalidPreflight},
		{"signature", "titan_remote_cache_signature", ErrInvalidSignature},
		{"enabled", "titan_remote_cache_enabled", ErrInvalidRemoteCacheEnabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveEnv(t, map[string]string{tt.env: "yes"})
			assert.ErrorIs(t, err, tt.want)

			opts, err := resolveEnv(t, map[string]string{tt.env: "0"})
			require.NoError(t, err)
			assert.NotEqual(t, ConfigurationOptions{}, opts)
		})
	}
}

func TestInvalidTimeouts(t *testing.T) {
	for _, name := range []string{"titan_remote_cache_timeout", "titan_remote_cache_upload_timeout"} {
		_, err := resolveEnv(t, map[string]string{name: "-5"})
		var parseErr *ParseError
		require.ErrorAs(t, err, &parseErr, name)
		assert.Equal(t, "-5", parseErr.Value)
		assert.Contains(t, err.Error(), "TITAN_REMOTE_CACHE")
	}
}

func TestLogOrder(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{"titan_log_order": "STREAM"})
	require.NoError(t, err)
	assert.Equal(t, types.LogOrderStream, *opts.LogOrder)

	_, err = resolveEnv(t, map[string]string{"titan_log_order": "random"})
	var orderErr *InvalidLogOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, "auto, stream, grouped", orderErr.Valid)
}

func TestEnvModeUnknownIgnored(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{"titan_env_mode": "infer"})
	require.NoError(t, err)
	assert.Nil(t, opts.EnvMode)
}

func TestRelativeRootTitanJSON(t *testing.T) {
	opts, err := resolveEnv(t, map[string]string{"titan_root_titan_json": "configs/titan.json"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.FromSlash("/work/repo"), "configs", "titan.json"), *opts.RootTitanJSONPath)
}

func TestInvalidEncoding(t *testing.T) {
	_, err := NewEnvVars(map[string]string{"titan_team": "acme\xff"}, "")
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "TITAN_TEAM", encErr.Var)

	_, err = NewOverrideEnvVars(map[string]string{"khulnasoft_artifacts_owner": "\xfe"})
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "KHULNASOFT_ARTIFACTS_OWNER", encErr.Var)
}

func TestOverrideEnvVars(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want ConfigurationOptions
	}{
		{
			name: "artifacts credentials",
			env: map[string]string{
				"khulnasoft_artifacts_token": "correct-horse-battery-staple",
				"khulnasoft_artifacts_owner": "bobby_tables",
			},
			want: ConfigurationOptions{
				Token:  ptr("correct-horse-battery-staple"),
				TeamID: ptr("bobby_tables"),
			},
		},
		{
			name: "ci forces stream",
			env:  map[string]string{"ci": "1"},
			want: ConfigurationOptions{UI: ptr(types.UIModeStream)},
		},
		{
			name: "no_color forces stream",
			env:  map[string]string{"no_color": "true"},
			want: ConfigurationOptions{UI: ptr(types.UIModeStream)},
		},
		{
			name: "ci takes precedence over no_color",
			env:  map[string]string{"ci": "false", "no_color": "true"},
			want: ConfigurationOptions{},
		},
		{
			name: "non truthy ci",
			env:  map[string]string{"ci": "github"},
			want: ConfigurationOptions{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars, err := NewOverrideEnvVars(tt.env)
			require.NoError(t, err)
			got, err := vars.Resolve(ConfigurationOptions{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvironmentFromOS(t *testing.T) {
	t.Setenv("TITAN_TEAM", "acme")
	env := EnvironmentFromOS()
	assert.Equal(t, "acme", env["titan_team"])
}

func TestParseTruthy(t *testing.T) {
	assert.True(t, *ParseTruthy("1"))
	assert.True(t, *ParseTruthy("true"))
	assert.False(t, *ParseTruthy("0"))
	assert.False(t, *ParseTruthy("false"))
	assert.Nil(t, ParseTruthy("TRUE"))
	assert.Nil(t, ParseTruthy(""))
}
