package titanjson

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/khulnasoft/titan/internal/types"
)

func writeTitanJSON(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadNoSynthesizing(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     *TitanJSON
	}{
		{
			name:     "empty",
			contents: `{}`,
			want:     New(),
		},
		{
			name:     "global dependencies sorted",
			contents: `{ "globalDependencies": ["tsconfig.json", "jest.config.js", "tsconfig.json"] }`,
			want:     &TitanJSON{GlobalDeps: []string{"jest.config.js", "tsconfig.json"}, Tasks: Pipeline{}},
		},
		{
			name:     "global pass through env sorted",
			contents: `{ "globalPassThroughEnv": ["GITHUB_TOKEN", "AWS_SECRET_KEY"] }`,
			want:     &TitanJSON{GlobalPassThroughEnv: []string{"AWS_SECRET_KEY", "GITHUB_TOKEN"}, Tasks: Pipeline{}},
		},
		{
			name:     "faux comment",
			contents: `{ "//": "A comment"}`,
			want:     New(),
		},
		{
			name:     "two faux comments",
			contents: `{ "//": "A comment", "//": "Another comment" }`,
			want:     New(),
		},
		{
			name: "comments and trailing commas",
			contents: `{
  // shared settings
  "daemon": false,
  "tasks": {
    "build": { "outputs": ["dist/**"], },
  },
}`,
			want: &TitanJSON{
				Daemon: ptr(false),
				Tasks: Pipeline{
					"build": NewSpanned(RawTaskDefinition{Outputs: []string{"dist/**"}}),
				},
			},
		},
		{
			name:     "legacy pipeline key",
			contents: `{ "pipeline": { "lint": {} } }`,
			want:     &TitanJSON{Tasks: Pipeline{"lint": NewSpanned(RawTaskDefinition{})}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			path := writeTitanJSON(t, root, tt.contents)

			loader := NewWorkspaceLoader(root, path, nil)
			got, err := loader.Load("//")
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, got, cmp.FilterPath(func(p cmp.Path) bool {
				name := p.Last().String()
				return name == ".Path" || name == ".Text"
			}, cmp.Ignore())); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadEnvDependencies(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	root := t.TempDir()
	path := writeTitanJSON(t, root, `{
  "globalEnv": ["NODE_ENV"],
  "globalDependencies": ["$API_KEY", "package.json"]
}`)

	tj, err := Read(root, path, zap.New(core))
	require.NoError(t, err)
	assert.Equal(t, []string{"API_KEY", "NODE_ENV"}, tj.GlobalEnv)
	assert.Equal(t, []string{"package.json"}, tj.GlobalDeps)
	assert.Equal(t, 1, logs.FilterMessageSnippet("deprecated").Len())
}

func TestReadRejectsPrefixedGlobalEnv(t *testing.T) {
	root := t.TempDir()
	path := writeTitanJSON(t, root, `{ "globalEnv": ["$NODE_ENV"] }`)

	_, err := Read(root, path, nil)
	var prefixErr *InvalidEnvPrefixError
	require.ErrorAs(t, err, &prefixErr)
	assert.Equal(t, "$NODE_ENV", prefixErr.Value)
}

func TestReadInvalid(t *testing.T) {
	root := t.TempDir()

	path := writeTitanJSON(t, root, `{ "tasks": `)
	_, err := Read(root, path, nil)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "titan.json", parseErr.Path)

	path = writeTitanJSON(t, root, `{ "ui": "fancy" }`)
	_, err = Read(root, path, nil)
	assert.ErrorAs(t, err, &parseErr)

	path = writeTitanJSON(t, root, `{ "tasks": { "build": { "envMode": "sloppy" } } }`)
	_, err = Read(root, path, nil)
	assert.ErrorAs(t, err, &parseErr)
}

func TestReadFields(t *testing.T) {
	root := t.TempDir()
	path := writeTitanJSON(t, root, `{
  "ui": "tui",
  "envMode": "loose",
  "cacheDir": "out/cache",
  "dangerouslyDisablePackageManagerCheck": true,
  "experimentalSpaces": { "id": "space-1" },
  "remoteCache": { "teamId": "team_123", "timeout": 12, "enabled": false }
}`)

	tj, err := Read(root, path, nil)
	require.NoError(t, err)
	require.NotNil(t, tj.UI)
	assert.Equal(t, types.UIModeTUI, *tj.UI)
	assert.Equal(t, types.EnvModeLoose, *tj.EnvMode)
	assert.Equal(t, "out/cache", tj.CacheDir.Value)
	assert.Equal(t, `"out/cache"`, tj.CacheDir.Snippet())
	assert.Equal(t, "titan.json:4:15", tj.CacheDir.Location())
	assert.True(t, *tj.AllowNoPackageManager)
	assert.Equal(t, "space-1", *tj.SpacesID)
	require.NotNil(t, tj.RemoteCache)
	assert.Equal(t, "team_123", *tj.RemoteCache.TeamID)
	assert.Equal(t, uint64(12), *tj.RemoteCache.Timeout)
	assert.False(t, *tj.RemoteCache.Enabled)
}

func TestReadTaskSpans(t *testing.T) {
	root := t.TempDir()
	contents := `{
  // comments keep offsets intact
  "tasks": {
    "build": {
      "cache": true
    }
  }
}`
	path := writeTitanJSON(t, root, contents)

	tj, err := Read(root, path, nil)
	require.NoError(t, err)
	build, ok := tj.Tasks.Get("build")
	require.True(t, ok)
	require.NotNil(t, build.Range)

	start := strings.Index(contents, `"build": `) + len(`"build": `)
	assert.Equal(t, start, build.Range.Start)
	assert.Equal(t, "{\n      \"cache\": true\n    }", build.Snippet())
	assert.Equal(t, "titan.json:4:14", build.Location())
}

func TestHasTask(t *testing.T) {
	tj := &TitanJSON{Tasks: Pipeline{
		"web#build": NewSpanned(RawTaskDefinition{}),
		"lint":      NewSpanned(RawTaskDefinition{}),
	}}

	assert.True(t, tj.HasTask("build"))
	assert.True(t, tj.HasTask("web#build"))
	assert.True(t, tj.HasTask("lint"))
	assert.False(t, tj.HasTask("docs#build"))
	assert.False(t, tj.HasTask("web#lint"))
	assert.False(t, tj.HasTask("test"))
}

func TestTaskName(t *testing.T) {
	assert.False(t, TaskName("build").IsPackageTask())
	assert.True(t, TaskName("//#build").IsPackageTask())
	assert.Equal(t, TaskName("//#build"), TaskName("build").IntoRootTask())
	assert.Equal(t, "build", TaskName("web#build").Task())

	pkg, ok := TaskName("web#build").Package()
	assert.True(t, ok)
	assert.Equal(t, "web", pkg.String())

	_, ok = TaskName("build").Package()
	assert.False(t, ok)
}

func TestPipelineKeysSorted(t *testing.T) {
	p := Pipeline{}
	p.Insert("test", NewSpanned(RawTaskDefinition{}))
	p.Insert("//#build", NewSpanned(RawTaskDefinition{}))
	p.Insert("lint", NewSpanned(RawTaskDefinition{}))

	assert.Equal(t, []TaskName{"//#build", "lint", "test"}, p.Keys())
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Has("lint"))
}

func TestPipelineMarshalJSON(t *testing.T) {
	p := Pipeline{}
	p.Insert("test", NewSpanned(RawTaskDefinition{DependsOn: []string{"build"}}))
	p.Insert("//#build", NewSpanned(RawTaskDefinition{Outputs: []string{"dist/**"}}).WithRange(3, 9))
	p.Insert("lint", NewSpanned(RawTaskDefinition{Cache: ptr(NewSpanned(false))}))

	got, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"//#build":{"outputs":["dist/**"]},"lint":{"cache":false},"test":{"dependsOn":["build"]}}`, string(got))

	got, err = json.Marshal(Pipeline(nil))
	require.NoError(t, err)
	assert.Equal(t, "null", string(got))
}
