package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khulnasoft/titan/internal/config"
	"github.com/khulnasoft/titan/internal/output"
)

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration titan resolves for the current repository.

Values are layered from titan.json, the global config, the auth file,
.titan/config.json, environment variables and command-line flags.
The token is never printed.`,
		Args: cobra.NoArgs,
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
			return runConfig(w, opts.WithDefaults(state.Root))
		},
	}
	a.addOutputFlag(cmd)
	return cmd
}

func runConfig(w *output.Writer, resolved config.Resolved) error {
	return w.Write(configView{Resolved: resolved})
}

// configView renders a Resolved configuration as aligned key/value
// lines in text mode.
type configView struct {
	config.Resolved `yaml:",inline"`
}

func (v configView) WriteText(w io.Writer) error {
	r := v.Resolved
	token := ""
	if r.Token != "" {
		token = "<redacted>"
	}
	daemon := "unset"
	if r.Daemon != nil {
		daemon = fmt.Sprint(*r.Daemon)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]any{
		{"apiUrl", r.APIURL},
		{"loginUrl", r.LoginURL},
		{"teamSlug", r.TeamSlug},
		{"teamId", r.TeamID},
		{"token", token},
		{"signature", r.Signature},
		{"preflight", r.Preflight},
		{"enabled", r.Enabled},
		{"timeout", r.Timeout},
		{"uploadTimeout", r.UploadTimeout},
		{"ui", r.UI},
		{"allowNoPackageManager", r.AllowNoPackageManager},
		{"daemon", daemon},
		{"envMode", r.EnvMode},
		{"scmBase", r.ScmBase},
		{"scmHead", r.ScmHead},
		{"cacheDir", r.CacheDir},
		{"rootTitanJsonPath", r.RootTitanJSONPath},
		{"force", r.Force},
		{"logOrder", r.LogOrder},
		{"remoteOnly", r.RemoteOnly},
		{"remoteCacheReadOnly", r.RemoteCacheReadOnly},
		{"runSummary", r.RunSummary},
		{"allowNoTitanJson", r.AllowNoTitanJSON},
		{"spacesId", r.SpacesID},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%v\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}
