package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run tasks, synchronizing the artifacts they consume first",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			jobs, _ := cmd.Flags().GetInt("jobs")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Parallelism: jobs,
			})
		},
	}
	cmd.Flags().IntP("jobs", "j", 0, "Maximum number of tasks to run at once (default: number of CPUs)")
	return cmd
}
