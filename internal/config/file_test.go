package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		opts, err := ConfigFile{Path: filepath.Join(dir, "missing.json")}.Resolve(ConfigurationOptions{})
		require.NoError(t, err)
		assert.Equal(t, ConfigurationOptions{}, opts)
	})

	t.Run("empty", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		writeFile(t, path, "")
		opts, err := ConfigFile{Path: path}.Resolve(ConfigurationOptions{})
		require.NoError(t, err)
		assert.Equal(t, ConfigurationOptions{}, opts)
	})

	t.Run("legacy keys", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		writeFile(t, path, `{"apiurl": "https://cache.example.com", "teamslug": "acme", "token": "secret"}`)
		opts, err := ConfigFile{Path: path}.Resolve(ConfigurationOptions{})
		require.NoError(t, err)
		assert.Equal(t, "https://cache.example.com", *opts.APIURL)
		assert.Equal(t, "acme", *opts.TeamSlug)
		assert.Equal(t, "secret", *opts.Token)
	})

	t.Run("yaml by extension", func(t *testing.T) {
		path := filepath.Join(dir, "config.yaml")
		writeFile(t, path, "teamId: team_1\n")
		opts, err := ConfigFile{Path: path}.Resolve(ConfigurationOptions{})
		require.NoError(t, err)
		assert.Equal(t, "team_1", *opts.TeamID)
	})

	t.Run("invalid json names the path", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		writeFile(t, path, `{"teamslug": `)
		_, err := ConfigFile{Path: path}.Resolve(ConfigurationOptions{})
		var readErr *ReadError
		require.ErrorAs(t, err, &readErr)
		assert.Equal(t, path, readErr.Path)
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "bad-ui.json")
		writeFile(t, path, `{"ui": "fancy"}`)
		_, err := ConfigFile{Path: path}.Resolve(ConfigurationOptions{})
		assert.ErrorContains(t, err, "validation errors")
	})
}

func TestAuthFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents *string
		want     ConfigurationOptions
		wantErr  bool
	}{
		{name: "missing", want: ConfigurationOptions{}},
		{name: "token", contents: ptr(`{"token": "abc"}`), want: ConfigurationOptions{Token: ptr("abc")}},
		{name: "empty token", contents: ptr(`{"token": ""}`), want: ConfigurationOptions{}},
		{name: "absent token", contents: ptr(`{"teamslug": "acme"}`), want: ConfigurationOptions{}},
		{name: "invalid", contents: ptr(`{"token": `), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name, "auth.json")
			if tt.contents != nil {
				writeFile(t, path, *tt.contents)
			}
			got, err := AuthFile{Path: path}.Resolve(ConfigurationOptions{})
			if tt.wantErr {
				var readErr *ReadError
				assert.ErrorAs(t, err, &readErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthPath(t *testing.T) {
	paths := Paths{ConfigDir: t.TempDir(), DataDir: t.TempDir()}
	legacy := filepath.Join(paths.ConfigDir, "titanrepo", "config.json")
	primary := filepath.Join(paths.DataDir, "com.khulnasoft.cli", "auth.json")

	assert.Equal(t, legacy, paths.AuthPath())
	assert.Equal(t, legacy, paths.GlobalConfigPath())

	writeFile(t, primary, `{"token": "abc"}`)
	assert.Equal(t, primary, paths.AuthPath())

	paths.GlobalConfig = filepath.Join(paths.ConfigDir, "custom.toml")
	assert.Equal(t, paths.GlobalConfig, paths.GlobalConfigPath())
}
