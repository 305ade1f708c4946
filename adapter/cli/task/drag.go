package task

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dragDeltas []float64

var dragCmd = &cobra.Command{
	Use:   "drag <id>",
	Short: "Replay a drag gesture on a task",
	Long: `Replay a vertical drag on a task. Each --delta is one pointer movement;
negative values drag up. The task swaps with its neighbour whenever the
accumulated movement passes a third of a row.

Examples:
  ordo task drag 3 --delta 20 --delta 20
  ordo task drag 3 --delta=-60`,
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
		if len(dragDeltas) == 0 {
			return fmt.Errorf("at least one --delta is required")
		}

		ctx := cmd.Context()
		s := app.Synchronizer
		// A drag can travel the whole list.
		if err := loadPages(ctx, s, 0); err != nil {
			return err
		}
		if _, err := findTask(ctx, s, id); err != nil {
			return err
		}

		if !app.Drag.Start(id) {
			return fmt.Errorf("another drag is in progress")
		}
		defer app.Drag.End()

		moves := 0
		for _, delta := range dragDeltas {
			moved, err := app.Drag.Drag(ctx, delta)
			if err != nil {
				return fmt.Errorf("failed to save new order: %w", err)
			}
			if moved {
				moves++
			}
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Moved %d place(s)\n", moves); err != nil {
			return err
		}
		return printSnapshot(cmd.OutOrStdout(), s.Snapshot())
	},
}

func init() {
	dragCmd.Flags().Float64SliceVarP(&dragDeltas, "delta", "d", nil, "pointer movement, repeatable")
}
