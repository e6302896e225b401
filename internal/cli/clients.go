package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/clientform"
	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/spf13/cobra"
)

func newClientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Client commands",
	}
	cmd.AddCommand(newClientsListCmd(app))
	cmd.AddCommand(newClientsShowCmd(app))
	cmd.AddCommand(newClientsCreateCmd(app))
	cmd.AddCommand(newClientsUpdateCmd(app))
	cmd.AddCommand(newClientsDeleteCmd(app))
	return cmd
}

// stderrNotifier prints success and info notices; errors reach the user
// through writeErr instead.
func stderrNotifier(cmd *cobra.Command) notify.Notifier {
	return notify.Func(func(n notify.Notice) {
		if n.Level == notify.LevelError {
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), n.Message)
	})
}

// promptConfirmer asks on stdin; anything but y/yes declines.
func promptConfirmer(in io.Reader, out io.Writer) notify.Confirmer {
	return notify.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, _ := bufio.NewReader(in).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func newClientsListCmd(app *App) *cobra.Command {
	var search, typ, tab string
	var limit, skip int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients (server-side search and type filter, client-side tab)",
		RunE: func(cmd *cobra.Command, args []string) error {
			tf, err := clientlist.ParseTypeFilter(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := clientlist.ParseTab(tab)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, _, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			st := clientlist.New()
			st.SetSearch(search)
			st.SetTypeFilter(tf)
			st.SetTab(t)
			st.SetPage(limit, skip)
			ctl := clientlist.NewController(st, c, nil, nil, app.log)
			if _, err := ctl.Refresh(cmd.Context()); err != nil {
				return writeErr(cmd, describe(err, "clients", ""))
			}

			counts := map[string]int{}
			for k, v := range st.Counts() {
				counts[string(k)] = v
			}
			visible := st.Visible()
			out := map[string]any{
				"data": visible,
				"meta": map[string]any{
					"count":  len(visible),
					"total":  len(st.Clients()),
					"tab":    t,
					"type":   tf,
					"search": strings.TrimSpace(search),
					"counts": counts,
				},
			}
			if len(visible) > 0 {
				out["_hints"] = []string{"greenlight clients show " + visible[0].ID}
			}
			return writeOut(cmd, app, out)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive search over names, contact fields and notes")
	cmd.Flags().StringVar(&typ, "type", "all", "Type filter (all|person|company)")
	cmd.Flags().StringVar(&tab, "tab", "active", "Category tab (active|business|individual|prospect|groups|kc)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&skip, "skip", 0, "Rows to skip")
	return cmd
}

// loadDetail returns a detail controller with the record loaded.
func loadDetail(ctx context.Context, cmd *cobra.Command, app *App, id string, opts clientdetail.Options) (*clientdetail.Controller, error) {
	c, _, err := app.client(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Notifier == nil {
		opts.Notifier = stderrNotifier(cmd)
	}
	opts.Logger = app.log
	ctl := clientdetail.NewController(clientdetail.New(id), c, opts)
	if err := ctl.Load(ctx); err != nil {
		return nil, describe(err, "client", id)
	}
	return ctl, nil
}

func newClientsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <client-id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			cl := ctl.State.Client()
			return writeOut(cmd, app, map[string]any{
				"data": cl,
				"meta": map[string]any{"display_name": cl.DisplayName(), "subtitle": cl.Subtitle()},
				"_hints": []string{
					"greenlight notes add " + cl.ID + " --content \"...\"",
					"greenlight docs " + cl.ID + " --open",
				},
			})
		},
	}
}

// createFields are the flag-settable fields of the create form, in apply order.
var createFields = []string{
	"first_name", "last_name", "date_of_birth", "company", "position",
	"company_name", "contact_person", "website", "industry", "size",
	"email", "phone", "address",
	"primary_owner", "department", "account_manager", "relationship_type", "secondary_owners",
}

func flagName(field string) string { return strings.ReplaceAll(field, "_", "-") }

func newClientsCreateCmd(app *App) *cobra.Command {
	var typ string
	values := make(map[string]*string, len(createFields))

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		Example: strings.TrimSpace(`
  greenlight clients create --type person --first-name Ann --last-name Lee --email ann@example.com --primary-owner me@example.com
  greenlight clients create --type company --company-name Acme --contact-person "Bo Diaz" --email bo@acme.test --primary-owner me@example.com --size 11-50
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseClientType(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, sess, err := app.client(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			form := clientform.New(c, clientform.Options{
				Notifier:    stderrNotifier(cmd),
				CurrentUser: func() string { return sess.User().Name },
				Logger:      app.log,
			})
			form.Draft.SetType(t)
			for _, f := range createFields {
				if !cmd.Flags().Changed(flagName(f)) {
					continue
				}
				if err := form.Draft.Set(f, *values[f]); err != nil {
					return writeErr(cmd, fmt.Errorf("--%s: %w", flagName(f), err))
				}
			}
			created, err := form.Submit(cmd.Context())
			if err != nil {
				return writeErr(cmd, describe(err, "client", ""))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   created,
				"_hints": []string{"greenlight clients show " + created.ID},
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "person", "Client type (person|company)")
	for _, f := range createFields {
		v := new(string)
		values[f] = v
		cmd.Flags().StringVar(v, flagName(f), "", strings.ReplaceAll(f, "_", " "))
	}
	return cmd
}

// applySet routes one key=value to the edit buffer. Keys are data field names,
// optionally prefixed with data., quickbooks. or ownership.
func applySet(st *clientdetail.State, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("--set %q: expected key=value", kv)
	}
	key = strings.TrimSpace(key)
	section, field, found := strings.Cut(key, ".")
	if !found {
		section, field = "data", key
	}
	switch section {
	case "data":
		return st.SetDataField(field, value)
	case "quickbooks", "qb":
		return st.SetQuickBooksField(field, value)
	case "ownership":
		return st.SetOwnershipField(field, value)
	default:
		return fmt.Errorf("--set %q: unknown section %q (expected data|quickbooks|ownership)", kv, section)
	}
}

func newClientsUpdateCmd(app *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "update <client-id>",
		Short: "Edit fields and save (type cannot change)",
		Example: strings.TrimSpace(`
  greenlight clients update <id> --set phone=555-0100 --set ownership.relationship_type=prospect
  greenlight clients update <id> --set quickbooks.credit_limit=2500
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets) == 0 {
				return writeErr(cmd, fmt.Errorf("nothing to update; pass at least one --set key=value"))
			}
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{})
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ctl.Edit(); err != nil {
				return writeErr(cmd, err)
			}
			for _, kv := range sets {
				if err := applySet(ctl.State, kv); err != nil {
					ctl.Cancel()
					return writeErr(cmd, err)
				}
			}
			if err := ctl.Save(cmd.Context()); err != nil {
				return writeErr(cmd, describe(err, "client", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": ctl.State.Client()})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field assignment key=value (repeatable)")
	return cmd
}

func newClientsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete a client (asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			confirm := promptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
			if yes {
				confirm = notify.Always
			}
			ctl, err := loadDetail(cmd.Context(), cmd, app, args[0], clientdetail.Options{Confirmer: confirm})
			if err != nil {
				return writeErr(cmd, err)
			}
			deleted, err := ctl.Delete(cmd.Context())
			if err != nil {
				return writeErr(cmd, describe(err, "client", args[0]))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": args[0], "deleted": deleted}})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}
