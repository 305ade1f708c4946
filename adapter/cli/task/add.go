package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title> <subtitle>",
	Short: "Add a task at the end of the list",
	Long: `Add a task after every existing task.

Examples:
  ordo task add "Buy milk" "2%"
  ordo task add "Call Sam" "about the offsite"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}

		app.EditDialog.OpenAdd()
		created, err := app.EditDialog.Confirm(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		return printTask(cmd.OutOrStdout(), created)
	},
}
