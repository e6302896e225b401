package cli

import (
	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/desktop"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var open, copyURL bool

	cmd := &cobra.Command{
		Use:   "docs <client-id>",
		Short: "Print (and optionally open or copy) the client's SharePoint folder link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := clientdetail.Options{}
			if open {
				opts.Opener = clientdetail.OpenerFunc(desktop.OpenURL)
			}
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], opts)
			if err != nil {
				return writeErr(cmd, err)
			}
			var u string
			if open {
				u, err = ctl.OpenDocuments(cmd.Context())
			} else {
				u, err = ctl.DocumentsURL(cmd.Context())
			}
			if err != nil {
				return writeErr(cmd, describe(err, "client", args[0]))
			}
			if copyURL {
				if err := desktop.Copy(u); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"client_id": args[0], "sharepoint_url": u, "opened": open, "copied": copyURL},
			})
		},
	}
	cmd.Flags().BoolVar(&open, "open", false, "Open the folder in the browser")
	cmd.Flags().BoolVar(&copyURL, "copy", false, "Copy the link to the clipboard")
	return cmd
}
