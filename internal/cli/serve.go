package cli

import (
	"os"
	"os/signal"
	"syscall"

	"greenlight-cli/internal/bus"
	"greenlight-cli/internal/config"
	"greenlight-cli/internal/server"
	"greenlight-cli/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the clients REST API (SQLite-backed, mock bearer auth)",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.logger(false)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := store.Open(ctx, app.cfg.Server.DB)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			b := bus.NewBus(app.cfg.Redis.URL, log)
			defer b.Close()

			srv, err := server.NewServer(server.Config{
				Addr:           app.cfg.Server.Addr,
				DB:             db,
				Bus:            b,
				Logger:         log,
				Tokens:         server.NewStaticTokens(app.cfg.Server.Tokens...),
				SharePointBase: app.cfg.Server.SharePointBase,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			log.Info("serving", "addr", srv.Addr(), "db", db.Path())
			if err := srv.ListenAndServe(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.String("addr", "", "Listen address (default :8001)")
	f.String("db", "", "SQLite database path (default ./data/greenlight.db)")
	f.String("redis", "", "Redis URL for lifecycle events (empty disables)")
	_ = app.v.BindPFlag(config.KeyServerAddr, f.Lookup("addr"))
	_ = app.v.BindPFlag(config.KeyServerDB, f.Lookup("db"))
	_ = app.v.BindPFlag(config.KeyRedisURL, f.Lookup("redis"))
	return cmd
}
