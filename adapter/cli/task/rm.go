package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Short:   "Delete a task",
	Aliases: []string{"delete"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := findTask(cmd.Context(), app.Synchronizer, id)
		if err != nil {
			return err
		}

		app.EditDialog.OpenEdit(current)
		if err := app.EditDialog.Delete(cmd.Context()); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s (%s)\n", id, current.Title)
		return err
	},
}
