package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/build"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmdo := cmd.OutOrStdout()
			if short {
				_, _ = fmt.Fprintln(cmdo, build.Version)
				return
			}
			_, _ = fmt.Fprintf(cmdo, "ferry version %s (commit: %s, date: %s)\n", build.Version, build.Commit, build.Date)
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print only the version number")

	return cmd
}
