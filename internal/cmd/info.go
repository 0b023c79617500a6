package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khulnasoft/titan/internal/output"
	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/scm"
)

func (a *app) newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print details about the current repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := a.repoState()
			if err != nil {
				return err
			}
			w, err := a.writer(cmd)
			if err != nil {
				return err
			}
			invocationDir := a.opts.InvocationDir
			if invocationDir == "" {
				if invocationDir, err = a.cwd(); err != nil {
					return err
				}
			}
			scmState := scm.GetState(a.lookupEnv, scm.New(), state.Root)
			return runInfo(w, state, invocationDir, a.opts.Version, scmState)
		},
	}
	a.addOutputFlag(cmd)
	return cmd
}

type infoView struct {
	Version             string    `json:"version" yaml:"version" toml:"version"`
	Root                string    `json:"root" yaml:"root" toml:"root"`
	Mode                string    `json:"mode" yaml:"mode" toml:"mode"`
	PackageManager      string    `json:"packageManager,omitempty" yaml:"packageManager,omitempty" toml:"packageManager,omitempty"`
	PackageManagerError string    `json:"packageManagerError,omitempty" yaml:"packageManagerError,omitempty" toml:"packageManagerError,omitempty"`
	InvocationDir       string    `json:"invocationDir" yaml:"invocationDir" toml:"invocationDir"`
	SCM                 scm.State `json:"scm" yaml:"scm" toml:"scm"`
}

func runInfo(w *output.Writer, state *repo.State, invocationDir, version string, scmState scm.State) error {
	view := infoView{
		Version:       version,
		Root:          state.Root,
		Mode:          state.Mode.String(),
		InvocationDir: invocationDir,
		SCM:           scmState,
	}
	if state.PackageManagerErr != nil {
		view.PackageManagerError = state.PackageManagerErr.Error()
	} else {
		view.PackageManager = state.PackageManager.String()
	}
	return w.Write(view)
}

func (v infoView) WriteText(w io.Writer) error {
	pm := v.PackageManager
	if pm == "" {
		pm = "unknown (" + v.PackageManagerError + ")"
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "version\t%s\n", v.Version)
	fmt.Fprintf(tw, "root\t%s\n", v.Root)
	fmt.Fprintf(tw, "mode\t%s\n", v.Mode)
	fmt.Fprintf(tw, "package manager\t%s\n", pm)
	fmt.Fprintf(tw, "invocation dir\t%s\n", v.InvocationDir)
	fmt.Fprintf(tw, "branch\t%s\n", orUnknown(v.SCM.Branch))
	fmt.Fprintf(tw, "sha\t%s\n", orUnknown(v.SCM.SHA))
	return tw.Flush()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
