package commands

import "github.com/spf13/cobra"

func (c *CLI) newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [targets...]",
		Short: "Print the tasks a run would execute, in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Plan(cmd.Context(), args, cmd.OutOrStdout())
		},
	}
}
