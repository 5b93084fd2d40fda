package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dermatrack/internal/api"
	"dermatrack/internal/tracking"
)

func newCompareCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare TRACKING_ID PREVIOUS_SNAPSHOT_ID CURRENT_SNAPSHOT_ID",
		Short: "Request an AI comparison between two snapshots of a tracked lesion",
		Long: `Compare asks the service to analyze the change between two snapshots.
The previous snapshot must come earlier in the tracking's history than
the current one; the pair is validated locally before any request is
sent. Comparison can take up to half a minute.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmp, err := (*a).trackings.Compare(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				if errors.Is(err, tracking.ErrInvalidSnapshotOrder) {
					return errors.New("the previous snapshot must be older than the current one (they are not swapped automatically)")
				}
				if api.IsTimeout(err) {
					return errors.New("comparison timed out — try again")
				}
				return err
			}
			if err := printJSON(cmp); err != nil {
				return err
			}
			if tracking.UrgentSignal(cmp) {
				fmt.Fprintln(os.Stderr, "this comparison indicates elevated risk; consider marking the tracking urgent with: dermatrack track edit", args[0], "--status urgent")
			}
			return nil
		},
	}
	return cmd
}
