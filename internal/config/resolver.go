package config

import (
	"go.uber.org/zap"
)

// Source produces a partial configuration. existing holds every value
// already set by higher precedence sources.
type Source interface {
	Resolve(existing ConfigurationOptions) (ConfigurationOptions, error)
}

// Overrides wraps explicitly passed command-line values as a Source.
type Overrides struct {
	Options ConfigurationOptions
}

// Resolve implements Source.
func (o Overrides) Resolve(ConfigurationOptions) (ConfigurationOptions, error) {
	return o.Options, nil
}

// Resolve merges sources given lowest precedence first. A value from a
// later source wins over an earlier one, and a set value always wins over
// an unset one. Sources are consulted from highest precedence down so
// each sees what the sources above it decided.
func Resolve(sources ...Source) (ConfigurationOptions, error) {
	var merged ConfigurationOptions
	for i := len(sources) - 1; i >= 0; i-- {
		opts, err := sources[i].Resolve(merged)
		if err != nil {
			return ConfigurationOptions{}, err
		}
		merged.fillUnset(opts)
	}
	return merged, nil
}

// Builder wires the standard source chain for a repository.
type Builder struct {
	repoRoot  string
	cwd       string
	env       map[string]string
	overrides ConfigurationOptions
	paths     *Paths
	global    string
	logger    *zap.Logger
}

// NewBuilder returns a Builder for the repository at repoRoot that reads
// the process environment and the current user's directories.
func NewBuilder(repoRoot string) *Builder {
	return &Builder{repoRoot: repoRoot, logger: zap.NewNop()}
}

// WithEnvironment replaces the process environment. Keys must be
// lowercased.
func (b *Builder) WithEnvironment(env map[string]string) *Builder {
	b.env = env
	return b
}

// WithOverrides sets the explicitly passed command-line values.
func (b *Builder) WithOverrides(o ConfigurationOptions) *Builder {
	b.overrides = o
	return b
}

// WithPaths replaces the per-user config locations.
func (b *Builder) WithPaths(p Paths) *Builder {
	b.paths = &p
	return b
}

// WithGlobalConfig reads the global config from path instead of the
// per-user default. The file may be JSON, YAML or TOML.
func (b *Builder) WithGlobalConfig(path string) *Builder {
	b.global = path
	return b
}

// WithCwd sets the directory relative environment paths are anchored to.
func (b *Builder) WithCwd(cwd string) *Builder {
	b.cwd = cwd
	return b
}

// WithLogger sets the logger passed to the titan.json reader.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Sources returns the chain, lowest precedence first: titan.json, global
// config, global auth, repository config, environment, override
// environment, command line.
func (b *Builder) Sources() ([]Source, error) {
	env := b.env
	if env == nil {
		env = EnvironmentFromOS()
	}
	paths := b.paths
	if paths == nil {
		p, err := DefaultPaths()
		if err != nil {
			return nil, err
		}
		paths = &p
	}
	if b.global != "" {
		p := *paths
		p.GlobalConfig = b.global
		paths = &p
	}

	envVars, err := NewEnvVars(env, b.cwd)
	if err != nil {
		return nil, err
	}
	overrideEnv, err := NewOverrideEnvVars(env)
	if err != nil {
		return nil, err
	}

	return []Source{
		TitanJSONReader{RepoRoot: b.repoRoot, Logger: b.logger},
		ConfigFile{Path: paths.GlobalConfigPath()},
		AuthFile{Path: paths.AuthPath()},
		ConfigFile{Path: LocalConfigPath(b.repoRoot)},
		envVars,
		overrideEnv,
		Overrides{Options: b.overrides},
	}, nil
}

// Build resolves the effective options.
func (b *Builder) Build() (ConfigurationOptions, error) {
	sources, err := b.Sources()
	if err != nil {
		return ConfigurationOptions{}, err
	}
	return Resolve(sources...)
}
