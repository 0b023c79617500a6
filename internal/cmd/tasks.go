package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khulnasoft/titan/internal/config"
	"github.com/khulnasoft/titan/internal/output"
	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/titanjson"
)

func (a *app) newTasksCmd() *cobra.Command {
	var taskAccess bool
	cmd := &cobra.Command{
		Use:   "tasks [package]",
		Short: "Print the task definitions titan loads",
		Long: `Print the task definitions titan loads for each package.

Definitions come from titan.json files or, where none exist, are
synthesized from package.json scripts. Pass a package name to show
only that package; the root package is "//".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.repoState()
			if err != nil {
				return err
			}
			opts, err := a.resolveConfig(cmd, state.Root)
			if err != nil {
				return err
			}
			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			var only []repo.PackageName
			if len(args) == 1 {
				only = []repo.PackageName{repo.PackageName(args[0])}
			}
			return a.runTasks(w, state, opts.WithDefaults(state.Root), taskAccess, only)
		},
	}
	cmd.Flags().BoolVar(&taskAccess, "experimental-task-access", false, "Use a task access trace when no titan.json exists")
	a.addOutputFlag(cmd)
	return cmd
}

// newLoader picks the loading strategy for state.
func newLoader(state *repo.State, resolved config.Resolved, taskAccess bool) (*titanjson.Loader, map[repo.PackageName]repo.PackageInfo, error) {
	if state.Mode == repo.SinglePackage {
		packages := map[repo.PackageName]repo.PackageInfo{
			repo.RootPackage: {PackageJSON: state.RootPackageJSON, Path: "."},
		}
		if taskAccess {
			return titanjson.NewTaskAccessLoader(state.Root, resolved.RootTitanJSONPath, state.RootPackageJSON), packages, nil
		}
		return titanjson.NewSinglePackageLoader(state.Root, resolved.RootTitanJSONPath, state.RootPackageJSON), packages, nil
	}

	packages, err := state.Packages()
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(resolved.RootTitanJSONPath); err == nil {
		return titanjson.NewWorkspaceLoader(state.Root, resolved.RootTitanJSONPath, packages), packages, nil
	}
	if resolved.AllowNoTitanJSON {
		return titanjson.NewWorkspaceNoTitanJSONLoader(state.Root, packages), packages, nil
	}
	return nil, nil, fmt.Errorf("%s: %w", resolved.RootTitanJSONPath, titanjson.ErrNoTitanJSON)
}

func (a *app) runTasks(w *output.Writer, state *repo.State, resolved config.Resolved, taskAccess bool, only []repo.PackageName) error {
	loader, packages, err := newLoader(state, resolved, taskAccess)
	if err != nil {
		return err
	}
	loader.WithLogger(a.opts.Logger)

	names := only
	if names == nil {
		for name := range packages {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			// The root sorts first.
			if names[i].IsRoot() != names[j].IsRoot() {
				return names[i].IsRoot()
			}
			return names[i] < names[j]
		})
	} else if _, ok := packages[names[0]]; !ok {
		return fmt.Errorf("unknown package: %s", names[0])
	}

	view := tasksView{Strategy: loader.Strategy().String()}
	for _, name := range names {
		tj, err := loader.Load(name)
		switch {
		case errors.Is(err, titanjson.ErrNoTitanJSON) && only == nil && !name.IsRoot():
			// Packages may rely entirely on the root definitions.
			continue
		case err != nil:
			return err
		}
		view.Packages = append(view.Packages, newPackageTasksView(name, tj))
	}
	return w.Write(view)
}

// tasksView is the printable form of loaded definitions. Spanned values
// are flattened to plain fields and a location string.
type tasksView struct {
	Strategy string             `json:"strategy" yaml:"strategy" toml:"strategy"`
	Packages []packageTasksView `json:"packages" yaml:"packages" toml:"packages"`
}

type packageTasksView struct {
	Package string     `json:"package" yaml:"package" toml:"package"`
	Path    string     `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty"`
	Extends []string   `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Tasks   []taskView `json:"tasks" yaml:"tasks" toml:"tasks"`
}

type taskView struct {
	Name           string   `json:"name" yaml:"name" toml:"name"`
	DependsOn      []string `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty" toml:"dependsOn,omitempty"`
	Env            []string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
	PassThroughEnv []string `json:"passThroughEnv,omitempty" yaml:"passThroughEnv,omitempty" toml:"passThroughEnv,omitempty"`
	Inputs         []string `json:"inputs,omitempty" yaml:"inputs,omitempty" toml:"inputs,omitempty"`
	Outputs        []string `json:"outputs,omitempty" yaml:"outputs,omitempty" toml:"outputs,omitempty"`
	OutputLogs     string   `json:"outputLogs,omitempty" yaml:"outputLogs,omitempty" toml:"outputLogs,omitempty"`
	Cache          *bool    `json:"cache,omitempty" yaml:"cache,omitempty" toml:"cache,omitempty"`
	Persistent     *bool    `json:"persistent,omitempty" yaml:"persistent,omitempty" toml:"persistent,omitempty"`
	Interactive    *bool    `json:"interactive,omitempty" yaml:"interactive,omitempty" toml:"interactive,omitempty"`
	EnvMode        string   `json:"envMode,omitempty" yaml:"envMode,omitempty" toml:"envMode,omitempty"`
	Location       string   `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
}

func newPackageTasksView(name repo.PackageName, tj *titanjson.TitanJSON) packageTasksView {
	pv := packageTasksView{
		Package: name.String(),
		Path:    tj.Path,
		Extends: tj.Extends.Value,
		Tasks:   []taskView{},
	}
	for _, task := range tj.Tasks.Keys() {
		def := tj.Tasks[task]
		raw := def.Value
		tv := taskView{
			Name:           task.String(),
			DependsOn:      raw.DependsOn,
			Env:            raw.Env,
			PassThroughEnv: raw.PassThroughEnv,
			Inputs:         raw.Inputs,
			Outputs:        raw.Outputs,
			OutputLogs:     raw.OutputLogs,
			Persistent:     raw.Persistent,
			Interactive:    raw.Interactive,
		}
		if raw.Cache != nil {
			tv.Cache = ptr(raw.Cache.Value)
		}
		if raw.EnvMode != nil {
			tv.EnvMode = raw.EnvMode.String()
		}
		if def.Range != nil {
			tv.Location = def.Location()
		}
		pv.Tasks = append(pv.Tasks, tv)
	}
	return pv
}

func (v tasksView) WriteText(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "strategy: %s\n", v.Strategy); err != nil {
		return err
	}
	for _, pkg := range v.Packages {
		header := pkg.Package
		if len(pkg.Extends) > 0 {
			header += " (extends " + strings.Join(pkg.Extends, ", ") + ")"
		}
		if _, err := fmt.Fprintf(w, "\n%s\n", header); err != nil {
			return err
		}
		if len(pkg.Tasks) == 0 {
			if _, err := fmt.Fprintln(w, "  no tasks"); err != nil {
				return err
			}
			continue
		}
		for _, task := range pkg.Tasks {
			if _, err := fmt.Fprintf(w, "  %s%s\n", task.Name, task.details()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t taskView) details() string {
	var parts []string
	if len(t.DependsOn) > 0 {
		parts = append(parts, "dependsOn="+strings.Join(t.DependsOn, ","))
	}
	if len(t.Outputs) > 0 {
		parts = append(parts, "outputs="+strings.Join(t.Outputs, ","))
	}
	if t.Cache != nil {
		parts = append(parts, fmt.Sprintf("cache=%t", *t.Cache))
	}
	if t.Persistent != nil && *t.Persistent {
		parts = append(parts, "persistent")
	}
	if t.EnvMode != "" {
		parts = append(parts, "envMode="+t.EnvMode)
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, " ") + "]"
}
