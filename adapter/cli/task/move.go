package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var moveCmd = &cobra.Command{
	Use:   "move <from> <to>",
	Short: "Move a task to another place in the list",
	Long: `Move the task at list index <from> to index <to>. Indexes are the
numbers shown by "ordo task list" and start at 1.

Examples:
  ordo task move 1 3    # first task becomes third`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := readyApp()
		if err != nil {
			return err
		}
		from, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		to, err := parseIndex(args[1])
		if err != nil {
			return err
		}

		s := app.Synchronizer
		need := max(from, to) + 1
		if err := loadUntil(cmd.Context(), s, func() bool { return s.Len() >= need }); err != nil {
			return err
		}

		if err := s.MoveWithinView(cmd.Context(), from, to); err != nil {
			return fmt.Errorf("failed to move task: %w", err)
		}
		return printSnapshot(cmd.OutOrStdout(), s.Snapshot())
	},
}
