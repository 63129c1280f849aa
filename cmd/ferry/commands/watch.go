package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ferry/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [artifacts...]",
		Short: "Re-synchronize artifacts whenever their sources change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")
			return c.app.Watch(cmd.Context(), args, app.WatchOptions{Debounce: debounce})
		},
	}
	cmd.Flags().Duration("debounce", app.DefaultWatchDebounce, "Quiet period after the last change before synchronizing")
	return cmd
}
