// Package shim decides which titan binary handles an invocation: a local
// install in the repository, a pinned version fetched through the package
// runner, or the running binary itself.
package shim

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/khulnasoft/titan/internal/cmd"
	"github.com/khulnasoft/titan/internal/config"
	"github.com/khulnasoft/titan/internal/logging"
	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/update"
)

const (
	// BinaryPathEnvVar, when set, keeps execution in the running binary.
	BinaryPathEnvVar = "TITAN_BINARY_PATH"
	// GlobalWarningDisabledEnvVar silences the missing local install warning.
	GlobalWarningDisabledEnvVar = "TITAN_GLOBAL_WARNING_DISABLED"
	// NoUpdateNotifierEnvVar disables the release check.
	NoUpdateNotifierEnvVar = "TITAN_NO_UPDATE_NOTIFIER"

	runner = "npx"
)

// Shim holds the process dependencies of a run. The zero value is not
// usable; call New.
type Shim struct {
	Version    string
	Stdout     io.Writer
	Stderr     io.Writer
	LookupEnv  func(string) (string, bool)
	Getwd      func() (string, error)
	Executable func() (string, error)
	LookPath   func(string) (string, error)
	Spawner    Spawner
	// InProcess runs the CLI in the current process.
	InProcess func(cmd.Options) int
	// Notify checks for a newer release. Nil uses the GitHub notifier.
	Notify func(version string, logger *zap.Logger)
	// Logger, when set, replaces the verbosity-derived logger.
	Logger *zap.Logger
}

// New returns a Shim wired to the real process.
func New(version string) *Shim {
	return &Shim{
		Version:    version,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LookupEnv:  os.LookupEnv,
		Getwd:      os.Getwd,
		Executable: os.Executable,
		LookPath:   exec.LookPath,
		Spawner:    DefaultSpawner{},
		InProcess:  cmd.Execute,
	}
}

// Run is the process entry point. It returns the exit code.
func Run(args []string, version string) int {
	return New(version).Run(args)
}

// Run selects the binary for args and returns the exit code.
func (s *Shim) Run(args []string) int {
	invocationDir, err := s.Getwd()
	if err != nil {
		fmt.Fprintf(s.Stderr, "titan: %v\n", err)
		return 1
	}
	parsed, err := ParseArgs(args, invocationDir)
	if err != nil {
		fmt.Fprintf(s.Stderr, "titan: %v\n", err)
		return 1
	}

	logger := s.Logger
	if logger == nil {
		verbosity, err := logging.Verbosity(parsed.Verbosity, s.LookupEnv)
		if err != nil {
			fmt.Fprintf(s.Stderr, "titan: %v\n", err)
			return 1
		}
		logger = logging.New(verbosity, s.Stderr)
		defer func() { _ = logger.Sync() }()
	}

	code, err := s.run(args, parsed, logger)
	if err != nil {
		fmt.Fprintf(s.Stderr, "titan: %v\n", err)
		return 1
	}
	return code
}

func (s *Shim) run(args []string, parsed *Args, logger *zap.Logger) (int, error) {
	logger.Debug("global titan version", zap.String("version", s.Version))

	// A delegating titan already did inference.
	if parsed.SkipInfer {
		dir, ok := InvocationDir()
		if !ok {
			dir = parsed.InvocationDir
		}
		return s.inProcess(args, nil, dir, logger), nil
	}

	if _, ok := s.LookupEnv(BinaryPathEnvVar); ok {
		state, err := repo.Infer(parsed.Cwd)
		if err != nil {
			return 0, err
		}
		logger.Debug("repository root", zap.String("root", state.Root))
		return s.inProcess(args, state, parsed.InvocationDir, logger), nil
	}

	state, err := repo.Infer(parsed.Cwd)
	if err != nil {
		// Repo-independent commands still work from anywhere.
		logger.Debug("repository inference failed", zap.Error(err))
		logger.Debug("running command as global titan")
		return s.inProcess(args, nil, parsed.InvocationDir, logger), nil
	}
	logger.Debug("repository root", zap.String("root", state.Root))
	return s.runCorrect(args, parsed, state, logger)
}

func (s *Shim) runCorrect(args []string, parsed *Args, state *repo.State, logger *zap.Logger) (int, error) {
	if local, ok := InferLocalState(state.Root); ok {
		local.executable = s.Executable
		s.checkForUpdates(parsed, local.Version, logger)
		if local.LocalIsSelf() {
			if err := SetInvocationDir(parsed.InvocationDir); err != nil {
				return 0, err
			}
			logger.Debug("currently running titan is local titan")
			return s.inProcess(args, state, parsed.InvocationDir, logger), nil
		}
		return s.spawnLocal(parsed, state, local, logger)
	}

	lookup, _ := s.LookupEnv(DownloadLocalEnvVar)
	if cfg, ok := InferLocalConfig(state, lookup); ok {
		logger.Debug("found configuration for titan version", zap.String("version", cfg.Version()))
		return s.spawnRunner(parsed, state, cfg.Version(), logger)
	}
	logger.Debug("downloading correct local version not enabled or no version pinned")

	s.checkForUpdates(parsed, s.Version, logger)
	if err := SetInvocationDir(parsed.InvocationDir); err != nil {
		return 0, err
	}
	logger.Debug("running command as global titan")
	if !s.truthy(GlobalWarningDisabledEnvVar) {
		logger.Warn(fmt.Sprintf("No locally installed `titan` found. Using version: %s.", s.Version))
	}
	return s.inProcess(args, state, parsed.InvocationDir, logger), nil
}

func (s *Shim) spawnLocal(parsed *Args, state *repo.State, local *LocalState, logger *zap.Logger) (int, error) {
	binary, err := canonicalize(local.Binary)
	if err != nil {
		return 0, &LocalBinaryPathError{Path: local.Binary, Err: err}
	}
	logger.Debug("running local titan binary", zap.String("path", binary))
	dir, err := canonicalize(state.Root)
	if err != nil {
		return 0, &RepoRootPathError{Path: state.Root, Err: err}
	}

	c := exec.Command(binary, TranslateArgs(parsed, state.Mode, local.Version)...)
	return s.spawn(c, dir, parsed.InvocationDir, ProcessLocal, logger)
}

func (s *Shim) spawnRunner(parsed *Args, state *repo.State, version string, logger *zap.Logger) (int, error) {
	logger.Debug("running titan via npx", zap.String("version", version))
	path, err := s.LookPath(runner)
	if err != nil {
		return 0, &RunnerLookupError{Runner: runner, Err: err}
	}
	dir, err := canonicalize(state.Root)
	if err != nil {
		return 0, &RepoRootPathError{Path: state.Root, Err: err}
	}

	runnerArgs := append([]string{"-y", "titan@" + version}, TranslateArgs(parsed, state.Mode, version)...)
	c := exec.Command(path, runnerArgs...)
	return s.spawn(c, dir, parsed.InvocationDir, ProcessRunner, logger)
}

func (s *Shim) spawn(c *exec.Cmd, dir, invocationDir string, kind ProcessKind, logger *zap.Logger) (int, error) {
	c.Dir = dir
	c.Env = append(os.Environ(), invocationDirEnv(invocationDir))
	c.Stdin = os.Stdin
	c.Stdout = s.Stdout
	c.Stderr = s.Stderr

	state, err := s.Spawner.Run(c)
	if err != nil {
		return 0, &ProcessError{Kind: kind, Err: err}
	}
	return ExitCode(state, logger), nil
}

func (s *Shim) inProcess(args []string, state *repo.State, invocationDir string, logger *zap.Logger) int {
	return s.InProcess(cmd.Options{
		Args:          args,
		Version:       s.Version,
		RepoState:     state,
		InvocationDir: invocationDir,
		Stdout:        s.Stdout,
		Stderr:        s.Stderr,
		Logger:        logger,
	})
}

func (s *Shim) checkForUpdates(parsed *Args, version string, logger *zap.Logger) {
	if parsed.NoUpdateNotifier || s.truthy(NoUpdateNotifierEnvVar) {
		return
	}
	if ci, ok := s.LookupEnv("CI"); ok && ci != "" {
		return
	}
	if s.Notify != nil {
		s.Notify(version, logger)
		return
	}
	if f, ok := s.Stderr.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		logger.Debug("stderr is not a terminal, skipping update check")
		return
	}
	paths, err := config.DefaultPaths()
	if err != nil {
		return
	}
	update.NewNotifier(version, update.StatePath(paths.ConfigDir)).
		WithLogger(logger).
		Notify(context.Background(), s.Stderr)
}

func (s *Shim) truthy(name string) bool {
	v, _ := s.LookupEnv(name)
	on := config.ParseTruthy(v)
	return on != nil && *on
}
