package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the titan version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), a.opts.Version)
		},
	}
}

func runVersion(stdout io.Writer, version string) error {
	_, err := fmt.Fprintln(stdout, version)
	return err
}
