package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	editTitle    string
	editSubtitle string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a task's title or subtitle",
	Long: `Change a task's title and/or subtitle. Its place in the list is kept.

Examples:
  ordo task edit 3 --title "Buy oat milk"
  ordo task edit 3 --subtitle "1 litre"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("subtitle") {
			return fmt.Errorf("nothing to change: pass --title and/or --subtitle")
		}

		current, err := findTask(cmd.Context(), app.Synchronizer, id)
		if err != nil {
			return err
		}

		title, subtitle := current.Title, current.Subtitle
		if cmd.Flags().Changed("title") {
			title = editTitle
		}
		if cmd.Flags().Changed("subtitle") {
			subtitle = editSubtitle
		}

		app.EditDialog.OpenEdit(current)
		updated, err := app.EditDialog.Confirm(cmd.Context(), title, subtitle)
		if err != nil {
			return fmt.Errorf("failed to edit task: %w", err)
		}
		return printTask(cmd.OutOrStdout(), updated)
	},
}

func init() {
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "new title")
	editCmd.Flags().StringVarP(&editSubtitle, "subtitle", "s", "", "new subtitle")
}
