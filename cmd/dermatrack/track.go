package main

import (
	"github.com/spf13/cobra"

	"dermatrack/internal/api"
	"dermatrack/pkg/domain"
)

func newTrackCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Follow a single lesion across visits",
	}

	var name, location, seedCase string
	create := &cobra.Command{
		Use:   "create",
		Short: "Start tracking a lesion",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := (*a).trackings.Create(cmd.Context(), name, location, seedCase)
			if err != nil {
				return err
			}
			return printJSON(tr)
		},
	}
	create.Flags().StringVar(&name, "name", "", "display name for the tracked lesion")
	create.Flags().StringVar(&location, "location", "", "body location")
	create.Flags().StringVar(&seedCase, "case", "", "existing case to seed the first snapshot from")
	_ = create.MarkFlagRequired("name")

	list := &cobra.Command{
		Use:   "list",
		Short: "List all tracked lesions",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := (*a).trackings.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(items)
		},
	}

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show a tracking with its snapshot and comparison history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := (*a).trackings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(detail)
		},
	}

	var snapImages []string
	var snapCase, snapNotes string
	snapshot := &cobra.Command{
		Use:   "snapshot TRACKING_ID",
		Short: "Add a new observation of a tracked lesion",
		Long: `Snapshot uploads the given images (or references an existing case) and
appends a new observation. The snapshot's position in the history is
assigned by the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urls []string
			if len(snapImages) > 0 {
				var err error
				urls, err = (*a).uploader.UploadAll(cmd.Context(), snapImages, nil)
				if err != nil {
					return err
				}
			}
			snap, err := (*a).trackings.AppendSnapshot(cmd.Context(), args[0], api.AppendSnapshotRequest{
				CaseID:    snapCase,
				ImageURLs: urls,
				Notes:     snapNotes,
			})
			if err != nil {
				return err
			}
			return printJSON(snap)
		},
	}
	snapshot.Flags().StringArrayVarP(&snapImages, "image", "i", nil, "path to a lesion image (repeatable)")
	snapshot.Flags().StringVar(&snapCase, "case", "", "case that produced this observation")
	snapshot.Flags().StringVar(&snapNotes, "notes", "", "free-text notes")

	var newName, newLocation, newStatus string
	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a tracking's name, location, or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.UpdateTrackingRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &newName
			}
			if cmd.Flags().Changed("location") {
				req.BodyLocation = &newLocation
			}
			if cmd.Flags().Changed("status") {
				status := domain.TrackingStatus(newStatus)
				req.Status = &status
			}
			tr, err := (*a).trackings.Update(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(tr)
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "new display name")
	edit.Flags().StringVar(&newLocation, "location", "", "new body location")
	edit.Flags().StringVar(&newStatus, "status", "", "new status: monitoring, resolved, or urgent")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tracking and all of its snapshots and comparisons",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*a).trackings.Delete(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(create, list, show, snapshot, edit, del)
	return cmd
}
