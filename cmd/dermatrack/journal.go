package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newJournalCmd(a **app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent submission attempts recorded locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (*a).journal == nil {
				return errors.New("journal is unavailable (see startup warnings)")
			}
			recs, err := (*a).journal.Recent(limit)
			if err != nil {
				return err
			}
			return printJSON(recs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records to show")
	return cmd
}
