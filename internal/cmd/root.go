// Package cmd is the in-process titan command line.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khulnasoft/titan/internal/config"
	"github.com/khulnasoft/titan/internal/output"
	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/types"
)

// globalConfigEnv names a global config file when --global-config is not
// passed.
const globalConfigEnv = "TITAN_GLOBAL_CONFIG"

// Options carries what the shim decided into the command line.
type Options struct {
	Args    []string
	Version string
	// RepoState is nil when inference was skipped or failed.
	RepoState *repo.State
	// InvocationDir is the directory the user ran titan from.
	InvocationDir string
	Stdout        io.Writer
	Stderr        io.Writer
	Logger        *zap.Logger
	// Env replaces the process environment, keyed by lowercased name.
	Env map[string]string
	// Paths replaces the per-user config locations.
	Paths *config.Paths
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	cwd              string
	skipInfer        bool
	singlePackage    bool
	verbosity        int
	noUpdateNotifier bool
	outputFormat     string
	globalConfig     string

	api           string
	login         string
	team          string
	token         string
	ui            string
	daemon        bool
	noDaemon      bool
	envMode       string
	cacheDir      string
	rootTitanJSON string
	logOrder      string
	force         bool
}

type app struct {
	opts  Options
	flags globalFlags
}

// Execute runs the command line and returns the process exit code.
func Execute(opts Options) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Args == nil {
		// cobra falls back to os.Args for nil.
		opts.Args = []string{}
	}

	a := &app{opts: opts}
	root := a.newRootCmd()
	root.SetArgs(opts.Args)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(opts.Stderr, "titan: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "titan",
		Short: "The build system for JavaScript and TypeScript monorepos",
		Long: `titan runs package tasks across a monorepo.

These commands inspect how titan bootstraps in the current repository:
which binary runs, the resolved configuration and the task definitions.`,
		Version:       a.opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := &a.flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.cwd, "cwd", "", "The directory in which to run titan")
	pf.BoolVar(&f.skipInfer, "skip-infer", false, "Skip any attempts to infer which version of titan is running")
	pf.BoolVar(&f.singlePackage, "single-package", false, "Run in single-package mode")
	pf.CountVarP(&f.verbosity, "verbosity", "v", "Verbosity level")
	pf.BoolVar(&f.noUpdateNotifier, "no-update-notifier", false, "Disable the update notification")
	pf.StringVar(&f.globalConfig, "global-config", "", "Read the global config from this file (JSON, YAML or TOML)")
	pf.StringVar(&f.api, "api", "", "Override the endpoint for API calls")
	pf.StringVar(&f.login, "login", "", "Override the login endpoint")
	pf.StringVar(&f.team, "team", "", "Set the team slug for API calls")
	pf.StringVar(&f.token, "token", "", "Set the auth token for API calls")
	pf.StringVar(&f.ui, "ui", "", "Specify the UI to use for output: tui or stream")
	pf.BoolVar(&f.daemon, "daemon", false, "Force use of the titan daemon")
	pf.BoolVar(&f.noDaemon, "no-daemon", false, "Force titan to not use the daemon")
	pf.StringVar(&f.envMode, "env-mode", "", "Environment variable mode: strict or loose")
	pf.StringVar(&f.cacheDir, "cache-dir", "", "Override the filesystem cache directory")
	pf.StringVar(&f.rootTitanJSON, "root-titan-json", "", "Use the given titan.json as the root configuration")
	pf.StringVar(&f.logOrder, "log-order", "", "Set type of task output order: auto, stream or grouped")
	pf.BoolVar(&f.force, "force", false, "Ignore the existing cache")
	_ = pf.MarkHidden("skip-infer")
	rootCmd.MarkFlagsMutuallyExclusive("daemon", "no-daemon")

	rootCmd.AddCommand(a.newBinCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(a.newTasksCmd())
	rootCmd.AddCommand(a.newInfoCmd())
	rootCmd.AddCommand(a.newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// addOutputFlag registers -o on commands that print structured data.
func (a *app) addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&a.flags.outputFormat, "output", "o", "text", "Output format: "+strings.Join(output.Formats(), ", "))
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return output.Formats(), cobra.ShellCompDirectiveNoFileComp
	})
}

func (a *app) writer(cmd *cobra.Command) (*output.Writer, error) {
	format, err := output.ParseFormat(a.flags.outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewWriter(cmd.OutOrStdout(), format), nil
}

// overrides collects explicitly passed flags. Flags left at their
// defaults have no opinion.
func (a *app) overrides(cmd *cobra.Command) (config.ConfigurationOptions, error) {
	var o config.ConfigurationOptions
	flags := cmd.Flags()
	f := a.flags

	str := func(name, value string) *string {
		if flags.Changed(name) && value != "" {
			return &value
		}
		return nil
	}
	o.APIURL = str("api", f.api)
	o.LoginURL = str("login", f.login)
	o.TeamSlug = str("team", f.team)
	o.Token = str("token", f.token)
	o.CacheDir = str("cache-dir", f.cacheDir)
	if v := str("root-titan-json", f.rootTitanJSON); v != nil {
		path := *v
		if !filepath.IsAbs(path) {
			cwd, err := a.cwd()
			if err != nil {
				return o, err
			}
			path = filepath.Join(cwd, path)
		}
		o.RootTitanJSONPath = &path
	}

	if flags.Changed("daemon") {
		o.Daemon = ptr(true)
	}
	if flags.Changed("no-daemon") {
		o.Daemon = ptr(false)
	}
	if flags.Changed("force") {
		o.Force = ptr(f.force)
	}

	if v := str("ui", f.ui); v != nil {
		ui, err := types.ParseUIMode(*v)
		if err != nil {
			return o, err
		}
		o.UI = &ui
	}
	if v := str("env-mode", f.envMode); v != nil {
		mode, err := types.ParseEnvMode(*v)
		if err != nil {
			return o, err
		}
		o.EnvMode = &mode
	}
	if v := str("log-order", f.logOrder); v != nil {
		order, err := types.ParseLogOrder(*v)
		if err != nil {
			return o, err
		}
		o.LogOrder = &order
	}
	return o, config.Validate(o)
}

// cwd is where repository inference starts.
func (a *app) cwd() (string, error) {
	if cwd := a.flags.cwd; cwd != "" {
		if !filepath.IsAbs(cwd) && a.opts.InvocationDir != "" {
			cwd = filepath.Join(a.opts.InvocationDir, cwd)
		}
		return cwd, nil
	}
	if a.opts.InvocationDir != "" {
		return a.opts.InvocationDir, nil
	}
	return os.Getwd()
}

// repoState returns the state the shim inferred, inferring it now when
// the shim skipped inference.
func (a *app) repoState() (*repo.State, error) {
	if a.opts.RepoState != nil {
		return a.applySinglePackage(a.opts.RepoState), nil
	}
	cwd, err := a.cwd()
	if err != nil {
		return nil, err
	}
	state, err := repo.Infer(cwd)
	if err != nil {
		return nil, err
	}
	return a.applySinglePackage(state), nil
}

func (a *app) applySinglePackage(state *repo.State) *repo.State {
	if !a.flags.singlePackage || state.Mode == repo.SinglePackage {
		return state
	}
	single := *state
	single.Mode = repo.SinglePackage
	single.Workspaces = nil
	return &single
}

// resolveConfig runs the layered configuration resolver for repoRoot.
func (a *app) resolveConfig(cmd *cobra.Command, repoRoot string) (config.ConfigurationOptions, error) {
	overrides, err := a.overrides(cmd)
	if err != nil {
		return config.ConfigurationOptions{}, err
	}
	cwd, err := a.cwd()
	if err != nil {
		return config.ConfigurationOptions{}, err
	}
	b := config.NewBuilder(repoRoot).
		WithOverrides(overrides).
		WithCwd(cwd).
		WithLogger(a.opts.Logger)
	if a.opts.Env != nil {
		b = b.WithEnvironment(a.opts.Env)
	}
	if a.opts.Paths != nil {
		b = b.WithPaths(*a.opts.Paths)
	}
	if global := a.globalConfigPath(cwd); global != "" {
		b = b.WithGlobalConfig(global)
	}
	return b.Build()
}

// globalConfigPath returns the --global-config value, falling back to
// TITAN_GLOBAL_CONFIG. Relative paths are anchored to cwd.
func (a *app) globalConfigPath(cwd string) string {
	p := a.flags.globalConfig
	if p == "" {
		p, _ = a.lookupEnv(globalConfigEnv)
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

// lookupEnv reads a variable from the configured environment.
func (a *app) lookupEnv(key string) (string, bool) {
	if a.opts.Env != nil {
		v, ok := a.opts.Env[strings.ToLower(key)]
		return v, ok
	}
	return os.LookupEnv(key)
}

func ptr[T any](v T) *T { return &v }
