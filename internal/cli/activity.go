package cli

import (
	"errors"
	"strings"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/model"

	"github.com/spf13/cobra"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Client notes (append-only)",
	}
	cmd.AddCommand(newNotesAddCmd(app))
	cmd.AddCommand(newNotesListCmd(app))
	return cmd
}

func newNotesAddCmd(app *App) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "add <client-id>",
		Short: "Append a note (markdown) to a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(content) == "" {
				return writeErr(cmd, errors.New("note content is empty"))
			}
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			ctl.State.SetNoteDraft(content)
			if _, err := ctl.AddNote(cmd.Context()); err != nil {
				return writeErr(cmd, describe(err, "client", args[0]))
			}
			notes := ctl.State.Client().Notes
			var last any
			if len(notes) > 0 {
				last = notes[len(notes)-1]
			}
			return writeOut(cmd, app, map[string]any{
				"data": last,
				"meta": map[string]any{"client_id": args[0], "notes": len(notes)},
			})
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Note text")
	_ = cmd.MarkFlagRequired("content")
	return cmd
}

func newNotesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list <client-id>",
		Short: "List a client's notes, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			notes := ctl.State.Client().Notes
			if notes == nil {
				notes = []model.Note{}
			}
			return writeOut(cmd, app, map[string]any{"data": notes})
		},
	}
}

func newTrackingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracking",
		Short: "Client activity tracking (append-only)",
	}
	cmd.AddCommand(newTrackingAddCmd(app))
	return cmd
}

func newTrackingAddCmd(app *App) *cobra.Command {
	var activity, description, outcome string

	cmd := &cobra.Command{
		Use:   "add <client-id>",
		Short: "Append a tracking entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at := model.ActivityType(strings.ToLower(strings.TrimSpace(activity)))
			if !at.Valid() || at == "" {
				return writeErr(cmd, errors.New("--activity-type must be one of call|email|meeting|proposal|contract|payment|other"))
			}
			if strings.TrimSpace(description) == "" {
				return writeErr(cmd, errors.New("--description is required"))
			}
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			ctl.State.SetTrackingDraft(clientdetail.TrackingDraft{ActivityType: at, Description: description, Outcome: outcome})
			if _, err := ctl.AddTracking(cmd.Context()); err != nil {
				return writeErr(cmd, describe(err, "client", args[0]))
			}
			entries := ctl.State.Client().Tracking
			var last any
			if len(entries) > 0 {
				last = entries[len(entries)-1]
			}
			return writeOut(cmd, app, map[string]any{
				"data": last,
				"meta": map[string]any{"client_id": args[0], "tracking": len(entries)},
			})
		},
	}
	cmd.Flags().StringVar(&activity, "activity-type", "", "call|email|meeting|proposal|contract|payment|other")
	cmd.Flags().StringVar(&description, "description", "", "What happened")
	cmd.Flags().StringVar(&outcome, "outcome", "", "Result (optional)")
	_ = cmd.MarkFlagRequired("activity-type")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}
