package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func (a *app) newBinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bin",
		Short: "Get the path to the titan binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBin(cmd.OutOrStdout(), os.Executable)
		},
	}
}

func runBin(stdout io.Writer, executable func() (string, error)) error {
	path, err := executable()
	if err != nil {
		return fmt.Errorf("failed to locate the running binary: %w", err)
	}
	_, err = fmt.Fprintln(stdout, path)
	return err
}
