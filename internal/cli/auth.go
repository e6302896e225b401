package cli

import (
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in (mock identity provider) and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := sess.Login(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   st.User,
				"_hints": []string{"greenlight clients list", "greenlight whoami"},
			})
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := sess.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"authenticated": false}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			st := sess.State()
			if !st.Authenticated {
				return writeOut(cmd, app, map[string]any{
					"data":   map[string]any{"authenticated": false},
					"_hints": []string{"greenlight login"},
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"authenticated": true, "user": st.User},
			})
		},
	}
}
