// Package titanjson reads titan.json task configuration and loads, or
// synthesizes, the per-package task definitions a run is built from.
package titanjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/khulnasoft/titan/internal/jsonc"
	"github.com/khulnasoft/titan/internal/types"
)

// ConfigFile is the name of the task configuration file.
const ConfigFile = "titan.json"

const envPrefix = "$"

// ErrNoTitanJSON is returned when a package has no titan.json and none can
// be synthesized.
var ErrNoTitanJSON = errors.New("could not find titan.json. Follow directions at https://khulnasoft.com/docs to create one")

// ParseError is returned for a titan.json that is not valid JSONC or does
// not match the expected shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// InvalidEnvPrefixError is returned when a globalEnv entry starts with "$".
type InvalidEnvPrefixError struct {
	Value string
}

func (e *InvalidEnvPrefixError) Error() string {
	return fmt.Sprintf("you specified %q in the \"globalEnv\" key; environment variables should not be prefixed with %q", e.Value, envPrefix)
}

// RemoteCacheOptions is the remoteCache section of titan.json.
type RemoteCacheOptions struct {
	APIURL        *string `json:"apiUrl,omitempty" yaml:"apiUrl,omitempty"`
	LoginURL      *string `json:"loginUrl,omitempty" yaml:"loginUrl,omitempty"`
	TeamSlug      *string `json:"teamSlug,omitempty" yaml:"teamSlug,omitempty"`
	TeamID        *string `json:"teamId,omitempty" yaml:"teamId,omitempty"`
	Signature     *bool   `json:"signature,omitempty" yaml:"signature,omitempty"`
	Preflight     *bool   `json:"preflight,omitempty" yaml:"preflight,omitempty"`
	Timeout       *uint64 `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UploadTimeout *uint64 `json:"uploadTimeout,omitempty" yaml:"uploadTimeout,omitempty"`
	Enabled       *bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// TitanJSON is a parsed, or synthesized, titan.json.
type TitanJSON struct {
	// Path and Text locate the file the definition was read from; both are
	// empty for synthesized definitions.
	Path string `json:"-" yaml:"-"`
	Text string `json:"-" yaml:"-"`

	Extends               Spanned[[]string]   `json:"extends,omitempty" yaml:"extends,omitempty"`
	GlobalDeps            []string            `json:"globalDependencies,omitempty" yaml:"globalDependencies,omitempty"`
	GlobalEnv             []string            `json:"globalEnv,omitempty" yaml:"globalEnv,omitempty"`
	GlobalPassThroughEnv  []string            `json:"globalPassThroughEnv,omitempty" yaml:"globalPassThroughEnv,omitempty"`
	RemoteCache           *RemoteCacheOptions `json:"remoteCache,omitempty" yaml:"remoteCache,omitempty"`
	UI                    *types.UIMode       `json:"ui,omitempty" yaml:"ui,omitempty"`
	Daemon                *bool               `json:"daemon,omitempty" yaml:"daemon,omitempty"`
	EnvMode               *types.EnvMode      `json:"envMode,omitempty" yaml:"envMode,omitempty"`
	CacheDir              *Spanned[string]    `json:"cacheDir,omitempty" yaml:"cacheDir,omitempty"`
	AllowNoPackageManager *bool               `json:"dangerouslyDisablePackageManagerCheck,omitempty" yaml:"dangerouslyDisablePackageManagerCheck,omitempty"`
	SpacesID              *string             `json:"-" yaml:"-"`
	Tasks                 Pipeline            `json:"tasks" yaml:"tasks"`
}

// New returns an empty definition with an initialized pipeline.
func New() *TitanJSON {
	return &TitanJSON{Tasks: Pipeline{}}
}

// HasTask reports whether the definition covers name. An exact key match
// counts, and so does a key with the same task part when name itself is
// not package-qualified ("build" is covered by "web#build").
func (t *TitanJSON) HasTask(name TaskName) bool {
	for key := range t.Tasks {
		if key == name || (key.Task() == name.Task() && !name.IsPackageTask()) {
			return true
		}
	}
	return false
}

type rawTitanJSON struct {
	Extends               []string            `json:"extends"`
	GlobalDependencies    []string            `json:"globalDependencies"`
	GlobalEnv             []string            `json:"globalEnv"`
	GlobalPassThroughEnv  []string            `json:"globalPassThroughEnv"`
	RemoteCache           *RemoteCacheOptions `json:"remoteCache"`
	UI                    *types.UIMode       `json:"ui"`
	Daemon                *bool               `json:"daemon"`
	EnvMode               *types.EnvMode      `json:"envMode"`
	CacheDir              *string             `json:"cacheDir"`
	AllowNoPackageManager *bool               `json:"dangerouslyDisablePackageManagerCheck"`
	ExperimentalSpaces    *struct {
		ID *string `json:"id"`
	} `json:"experimentalSpaces"`
	Tasks    map[TaskName]RawTaskDefinition `json:"tasks"`
	Pipeline map[TaskName]RawTaskDefinition `json:"pipeline"`
}

// Read parses the titan.json at path. repoRoot is used to record a
// repository-relative path for diagnostics. A missing file is reported as
// an error wrapping fs.ErrNotExist.
func Read(repoRoot, path string, logger *zap.Logger) (*TitanJSON, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	display := path
	if rel, err := filepath.Rel(repoRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		display = filepath.ToSlash(rel)
	}

	std, err := jsonc.Standardize(data)
	if err != nil {
		return nil, &ParseError{Path: display, Err: err}
	}
	var raw rawTitanJSON
	if err := json.Unmarshal(std, &raw); err != nil {
		return nil, &ParseError{Path: display, Err: err}
	}

	tj := &TitanJSON{
		Path:                  display,
		Text:                  string(data),
		Extends:               NewSpanned(raw.Extends),
		RemoteCache:           raw.RemoteCache,
		UI:                    raw.UI,
		Daemon:                raw.Daemon,
		EnvMode:               raw.EnvMode,
		AllowNoPackageManager: raw.AllowNoPackageManager,
		Tasks:                 Pipeline{},
	}
	if raw.ExperimentalSpaces != nil {
		tj.SpacesID = raw.ExperimentalSpaces.ID
	}
	if tj.UI != nil {
		if err := tj.UI.Validate(); err != nil {
			return nil, &ParseError{Path: display, Err: err}
		}
	}
	if tj.EnvMode != nil {
		if err := tj.EnvMode.Validate(); err != nil {
			return nil, &ParseError{Path: display, Err: err}
		}
	}

	if err := tj.setGlobals(raw, logger); err != nil {
		return nil, err
	}

	spans, err := valueSpans(std)
	if err != nil {
		return nil, &ParseError{Path: display, Err: err}
	}
	if raw.CacheDir != nil {
		cacheDir := Spanned[string]{Value: *raw.CacheDir, Path: display, Text: tj.Text}
		if r, ok := spans[spanKey{"", "cacheDir"}]; ok {
			cacheDir.Range = &r
		}
		tj.CacheDir = &cacheDir
	}

	section, tasks := "tasks", raw.Tasks
	if tasks == nil {
		section, tasks = "pipeline", raw.Pipeline
	}
	for name, def := range tasks {
		if def.EnvMode != nil {
			if err := def.EnvMode.Validate(); err != nil {
				return nil, &ParseError{Path: display, Err: fmt.Errorf("task %s: %w", name, err)}
			}
		}
		spanned := Spanned[RawTaskDefinition]{Value: def, Path: display, Text: tj.Text}
		if r, ok := spans[spanKey{section, string(name)}]; ok {
			spanned.Range = &r
		}
		tj.Tasks.Insert(name, spanned)
	}
	return tj, nil
}

func (t *TitanJSON) setGlobals(raw rawTitanJSON, logger *zap.Logger) error {
	env := make(map[string]struct{})
	for _, v := range raw.GlobalEnv {
		if strings.HasPrefix(v, envPrefix) {
			return &InvalidEnvPrefixError{Value: v}
		}
		env[v] = struct{}{}
	}

	deps := make(map[string]struct{})
	for _, v := range raw.GlobalDependencies {
		if name, ok := strings.CutPrefix(v, envPrefix); ok {
			logger.Warn("declaring an environment variable in \"globalDependencies\" is deprecated, use the \"globalEnv\" key instead",
				zap.String("value", v),
				zap.String("path", t.Path))
			env[name] = struct{}{}
			continue
		}
		deps[v] = struct{}{}
	}

	t.GlobalEnv = sortedKeys(env)
	t.GlobalDeps = sortedKeys(deps)
	if raw.GlobalPassThroughEnv != nil {
		t.GlobalPassThroughEnv = append([]string{}, raw.GlobalPassThroughEnv...)
		sort.Strings(t.GlobalPassThroughEnv)
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// spanKey addresses a value by its parent key (empty for top level) and
// its own key.
type spanKey struct {
	parent string
	key    string
}

// valueSpans records byte ranges of the top-level values and of the
// entries of the task sections. Standardized JSONC keeps the original byte
// offsets, so the ranges apply to the original text as well.
func valueSpans(std []byte) (map[spanKey]Range, error) {
	spans := make(map[spanKey]Range)
	dec := json.NewDecoder(bytes.NewReader(std))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		if key == "tasks" || key == "pipeline" {
			if err := sectionSpans(dec, key, spans); err != nil {
				return nil, err
			}
			continue
		}
		r, err := skipValue(dec)
		if err != nil {
			return nil, err
		}
		spans[spanKey{"", key}] = r
	}
	return spans, nil
}

func sectionSpans(dec *json.Decoder, section string, spans map[spanKey]Range) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	// null
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		r, err := skipValue(dec)
		if err != nil {
			return err
		}
		spans[spanKey{section, key}] = r
	}
	_, err = dec.Token()
	return err
}

func skipValue(dec *json.Decoder) (Range, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Range{}, err
	}
	end := int(dec.InputOffset())
	value := bytes.TrimSpace(raw)
	return Range{Start: end - len(value), End: end}, nil
}
