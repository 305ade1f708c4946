package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	listPages int
	listAll   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in order",
	Long: `List tasks in their stored order, one page at a time.

Examples:
  ordo task list              # first page
  ordo task list --pages 3    # first three pages
  ordo task list --all        # everything`,
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}

		pages := listPages
		if listAll {
			pages = 0
		} else if pages < 1 {
			return fmt.Errorf("--pages must be at least 1, got %d", pages)
		}

		if err := loadPages(cmd.Context(), app.Synchronizer, pages); err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}
		return printSnapshot(cmd.OutOrStdout(), app.Synchronizer.Snapshot())
	},
}

func init() {
	listCmd.Flags().IntVarP(&listPages, "pages", "p", 1, "number of pages to load")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "load every page")
}
