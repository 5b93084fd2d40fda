package main

import (
	"github.com/spf13/cobra"
)

func newCasesCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List, inspect, annotate, and delete diagnostic cases",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := (*a).cases.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cases)
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show one case with its analysis results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := (*a).cases.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a case permanently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).cases.Delete(cmd.Context(), args[0])
		},
	}

	var off bool
	favorite := &cobra.Command{
		Use:   "favorite ID",
		Short: "Mark or unmark a case as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := (*a).cases.SetFavorite(cmd.Context(), args[0], !off)
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	}
	favorite.Flags().BoolVar(&off, "off", false, "remove the favorite flag")

	note := &cobra.Command{
		Use:   "note ID TEXT",
		Short: "Set the free-text notes on a case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := (*a).cases.SetNotes(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	}

	var diagnosis, clinNotes string
	diagnose := &cobra.Command{
		Use:   "diagnose ID",
		Short: "Record a clinician-entered diagnosis on a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := (*a).cases.SetClinicianDiagnosis(cmd.Context(), args[0], diagnosis, clinNotes)
			if err != nil {
				return err
			}
			return printJSON(cs)
		},
	}
	diagnose.Flags().StringVar(&diagnosis, "diagnosis", "", "clinician diagnosis")
	diagnose.Flags().StringVar(&clinNotes, "notes", "", "clinician notes")
	_ = diagnose.MarkFlagRequired("diagnosis")

	cmd.AddCommand(list, show, del, favorite, note, diagnose)
	return cmd
}
