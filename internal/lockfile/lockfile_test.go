package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsExactVersion(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"2.0.3", true},
		{"1.7.0-canary.1", true},
		{"v1.2.3", true},
		{"2", false},
		{"2.1", false},
		{"^2.0.0", false},
		{"~1.9", false},
		{"latest", false},
		{"workspace:*", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsExactVersion(tt.input))
		})
	}
}

func TestDescriptorName(t *testing.T) {
	assert.Equal(t, "titan", descriptorName("titan@^2.0.0"))
	assert.Equal(t, "titan", descriptorName(` "titan@npm:2.0.3"`))
	assert.Equal(t, "@scope/pkg", descriptorName("@scope/pkg@1.0.0"))
	assert.Equal(t, "left-pad", descriptorName("left-pad"))
	assert.Equal(t, "", descriptorName("  "))
}

func TestDecodeNpm(t *testing.T) {
	t.Run("v3 packages", func(t *testing.T) {
		lf, err := DecodeNpm([]byte(`{
  "lockfileVersion": 3,
  "packages": {
    "": {"name": "monorepo"},
    "node_modules/titan": {"version": "2.0.3"}
  }
}`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "2.0.3", v)
	})

	t.Run("v1 dependencies", func(t *testing.T) {
		lf, err := DecodeNpm([]byte(`{"lockfileVersion": 1, "dependencies": {"titan": {"version": "1.9.3"}}}`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "1.9.3", v)
	})

	t.Run("not present", func(t *testing.T) {
		lf, err := DecodeNpm([]byte(`{"lockfileVersion": 3, "packages": {}}`))
		require.NoError(t, err)
		_, ok := lf.ToolVersion()
		assert.False(t, ok)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := DecodeNpm([]byte(`{`))
		assert.ErrorContains(t, err, "package-lock.json")
	})
}

func TestDecodePnpm(t *testing.T) {
	t.Run("v6 importers", func(t *testing.T) {
		lf, err := DecodePnpm([]byte(`lockfileVersion: '6.0'
importers:
  .:
    devDependencies:
      titan:
        specifier: ^2.0.0
        version: 2.0.3(react@18.2.0)
  apps/web:
    dependencies:
      react:
        specifier: ^18
        version: 18.2.0
`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "2.0.3", v)
	})

	t.Run("v5 root level", func(t *testing.T) {
		lf, err := DecodePnpm([]byte(`lockfileVersion: 5.4
specifiers:
  titan: ^1.9.0
devDependencies:
  titan: 1.9.3_typescript@5.0.0
`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "1.9.3", v)
	})

	t.Run("link is not a version", func(t *testing.T) {
		lf, err := DecodePnpm([]byte(`lockfileVersion: '9.0'
importers:
  .:
    dependencies:
      titan:
        specifier: link:../titan
        version: link:../titan
`))
		require.NoError(t, err)
		_, ok := lf.ToolVersion()
		assert.False(t, ok)
	})
}

func TestDecodeYarn(t *testing.T) {
	t.Run("berry", func(t *testing.T) {
		lf, err := DecodeYarn([]byte(`# This file is generated by running "yarn install" inside your project.

__metadata:
  version: 6
  cacheKey: 8

"titan@npm:^2.0.0, titan@npm:2.0.3":
  version: 2.0.3
  resolution: "titan@npm:2.0.3"

"typescript@npm:^5":
  version: 5.0.4
`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "2.0.3", v)
	})

	t.Run("classic", func(t *testing.T) {
		lf, err := DecodeYarn([]byte(`# THIS IS AN AUTOGENERATED FILE. DO NOT EDIT THIS FILE DIRECTLY.
# yarn lockfile v1


"@babel/core@^7.0.0":
  version "7.21.0"
  resolved "https://registry.yarnpkg.com/@babel/core/-/core-7.21.0.tgz"

titan@^1.9.0, "titan@~1.9.3":
  version "1.9.3"
  resolved "https://registry.yarnpkg.com/titan/-/titan-1.9.3.tgz"
  optionalDependencies:
    titan-linux-64 "1.9.3"
`))
		require.NoError(t, err)
		v, ok := lf.ToolVersion()
		require.True(t, ok)
		assert.Equal(t, "1.9.3", v)
	})

	t.Run("classic malformed", func(t *testing.T) {
		_, err := DecodeYarn([]byte("titan@^1.9.0\n  version \"1.9.3\"\n"))
		assert.Error(t, err)
	})
}

func TestDecodeBun(t *testing.T) {
	lf, err := DecodeBun([]byte(`{
  "lockfileVersion": 0,
  "workspaces": {
    "": {"name": "monorepo", "devDependencies": {"titan": "^2.0.0"}},
  },
  "packages": {
    "titan": ["titan@2.0.3", "", {"optionalDependencies": {}}, "sha512-abc"],
  },
}`))
	require.NoError(t, err)
	v, ok := lf.ToolVersion()
	require.True(t, ok)
	assert.Equal(t, "2.0.3", v)

	empty, err := DecodeBun([]byte(`{"lockfileVersion": 0, "packages": {}}`))
	require.NoError(t, err)
	_, ok = empty.ToolVersion()
	assert.False(t, ok)
}
