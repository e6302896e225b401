package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/config"
	"greenlight-cli/internal/format"
	"greenlight-cli/internal/logger"
	"greenlight-cli/internal/session"
	"greenlight-cli/internal/store"
	"greenlight-cli/internal/tui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	ConfigFile string
	PrettyJSON bool
	Format     string

	v   *viper.Viper
	cfg config.Config
	log *slog.Logger

	// closers run after the command, in reverse order.
	closers []io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{v: config.New()}

	cmd := &cobra.Command{
		Use:          "greenlight",
		Short:        "Greenlight client-relationship manager (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  greenlight

  # Sign in, then script against the API
  greenlight login
  greenlight clients list --search acme --type company

  # Run the bundled API server
  greenlight serve --addr :8001
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := config.ReadFile(app.v, app.ConfigFile); err != nil {
			return writeErr(cmd, err)
		}
		cfg, err := config.Load(app.v)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|edn|yaml)", app.Format))
		}
		return nil
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.ConfigFile, "config", envOr("GREENLIGHT_CONFIG", ""), "Config file (default $HOME/.greenlight.yaml)")
	pf.String("api-url", "", "API base URL (default http://localhost:8001)")
	pf.String("log-level", "", "Log level (debug|info|warn|error)")
	pf.BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	pf.StringVar(&app.Format, "format", envOr("GREENLIGHT_FORMAT", "json"), "Output format (json|edn|yaml)")
	_ = app.v.BindPFlag(config.KeyAPIURL, pf.Lookup("api-url"))
	_ = app.v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newClientsCmd(app))
	cmd.AddCommand(newNotesCmd(app))
	cmd.AddCommand(newTrackingCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newGuideCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), Version)
			return err
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	log, err := app.logger(true)
	if err != nil {
		return writeErr(cmd, err)
	}
	sess, err := app.openSession(cmd.Context())
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), tui.Options{
		Session:  sess,
		API:      api.New(app.cfg.API.URL, sess, api.WithLogger(log)),
		Logger:   log,
		Theme:    app.cfg.TUI.Theme,
		StateDir: configDirOr(""),
	})
}

// logger builds the command's logger once. The TUI logs to a file.
func (app *App) logger(tuiMode bool) (*slog.Logger, error) {
	if app.log != nil {
		return app.log, nil
	}
	opts := logger.Options{Service: "greenlight", Level: app.cfg.Log.Level}
	if tuiMode {
		opts.File = app.cfg.Log.File
	}
	l, c, err := logger.New(opts)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, c)
	app.log = l
	return l, nil
}

// openSession opens the local KV store and restores any persisted login.
func (app *App) openSession(ctx context.Context) (*session.Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := app.logger(false)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(ctx, app.cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	app.closers = append(app.closers, db)
	sess := session.New(db, session.Options{LoginDelay: app.cfg.Login.Delay, Logger: log})
	sess.Initialize(ctx)
	return sess, nil
}

var errNotLoggedIn = errors.New("not logged in; run `greenlight login`")

// client returns an API client for a signed-in session.
func (app *App) client(ctx context.Context) (*api.Client, *session.Session, error) {
	sess, err := app.openSession(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !sess.Authenticated() {
		return nil, nil, errNotLoggedIn
	}
	return api.New(app.cfg.API.URL, sess, api.WithLogger(app.log)), sess, nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
	app.closers = nil
}

func configDirOr(def string) string {
	if d, err := store.ConfigDir(); err == nil {
		return d
	}
	return def
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
