package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle a task's completed mark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := findTask(cmd.Context(), app.Synchronizer, id); err != nil {
			return err
		}

		toggled, err := app.Synchronizer.ToggleCompleted(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		return printTask(cmd.OutOrStdout(), toggled)
	},
}
