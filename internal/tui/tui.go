// Package tui is the interactive terminal front end: sign-in, the client list,
// the client detail page and the create-client form.
package tui

import (
	"context"
	"log/slog"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/clientform"
	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/desktop"
	"greenlight-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the REST surface the screens drive. *api.Client satisfies it.
type Backend interface {
	clientlist.Transport
	clientdetail.Transport
	clientform.Creator
}

type Options struct {
	Session *session.Session
	API     Backend
	Logger  *slog.Logger
	// Theme is light, dark or auto.
	Theme string
	// StateDir holds tui_state.json; empty disables persistence.
	StateDir string

	// Opener and Copy default to the desktop helpers.
	Opener clientdetail.Opener
	Copy   func(string) error
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Opener == nil {
		o.Opener = clientdetail.OpenerFunc(desktop.OpenURL)
	}
	if o.Copy == nil {
		o.Copy = desktop.Copy
	}
	return o
}

func Run(ctx context.Context, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	m := newAppModel(ctx, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
