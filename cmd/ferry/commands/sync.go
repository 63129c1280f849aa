package commands

import "github.com/spf13/cobra"

func (c *CLI) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync [artifacts...]",
		Short: "Synchronize artifacts without running any task",
		Long:  "Synchronize the named artifacts, or every declared artifact when none are given.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Sync(cmd.Context(), args)
		},
	}
}
