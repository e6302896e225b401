package tui

import (
	"context"
	"time"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/notify"
	"greenlight-cli/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

// Each command runs one controller operation off the UI loop and reports back
// with a result message. Outcome notices are left in the recorder.

func (m appModel) fetchCmd() tea.Cmd {
	ctl, ctx := m.list, m.ctx
	return func() tea.Msg {
		applied, err := ctl.Refresh(ctx)
		return listFetchedMsg{applied: applied, err: err}
	}
}

// refresh fetches now and drops any pending search timer.
func (m *appModel) refresh() tea.Cmd {
	m.debounce.Cancel()
	m.searchPending = false
	return tea.Batch(m.fetchCmd(), m.spinner.Tick)
}

func searchDebounceCmd(seq uint64) tea.Cmd {
	return tea.Tick(clientlist.SearchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

func loginCmd(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Login(ctx)
		return loginDoneMsg{err: err}
	}
}

func logoutCmd(ctx context.Context, s *session.Session) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: s.Logout(ctx)}
	}
}

func deleteRowCmd(ctx context.Context, ctl *clientlist.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		err := ctl.DeleteConfirmed(ctx, id)
		return listDeletedMsg{ids: []string{id}, err: err}
	}
}

func deleteSelectedCmd(ctx context.Context, ctl *clientlist.Controller) tea.Cmd {
	ids := ctl.State.Selected()
	return func() tea.Msg {
		_, err := ctl.DeleteSelected(ctx)
		return listDeletedMsg{ids: ids, err: err}
	}
}

func loadDetailCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		return detailLoadedMsg{id: ctl.State.ID(), err: ctl.Load(ctx)}
	}
}

func saveDetailCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := ctl.Save(ctx); err != nil {
			return detailSavedMsg{err: err}
		}
		return detailSavedMsg{client: ctl.State.Client()}
	}
}

func deleteDetailCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		return detailDeletedMsg{id: ctl.State.ID(), err: ctl.DeleteConfirmed(ctx)}
	}
}

func addNoteCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		added, err := ctl.AddNote(ctx)
		return detailAppendedMsg{added: added, client: ctl.State.Client(), err: err}
	}
}

func addTrackingCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		added, err := ctl.AddTracking(ctx)
		return detailAppendedMsg{added: added, client: ctl.State.Client(), err: err}
	}
}

func openDocsCmd(ctx context.Context, ctl *clientdetail.Controller) tea.Cmd {
	return func() tea.Msg {
		u, err := ctl.OpenDocuments(ctx)
		return docsDoneMsg{url: u, err: err}
	}
}

func copyDocsCmd(ctx context.Context, ctl *clientdetail.Controller, n notify.Notifier, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		u, err := ctl.DocumentsURL(ctx)
		if err != nil {
			return docsDoneMsg{err: err}
		}
		if err := copyFn(u); err != nil {
			notify.Error(n, "Failed to copy SharePoint link")
			return docsDoneMsg{url: u, err: err}
		}
		notify.Success(n, "SharePoint link copied")
		return docsDoneMsg{url: u}
	}
}

func (m appModel) submitCreateCmd() tea.Cmd {
	// Submit works on a copy so the UI loop never shares the draft with the request.
	f := *m.form
	ctx := m.ctx
	return func() tea.Msg {
		c, err := f.Submit(ctx)
		return clientCreatedMsg{client: c, err: err}
	}
}

func toastExpireCmd(seq uint64) tea.Cmd {
	return tea.Tick(notify.Lifetime, func(time.Time) tea.Msg {
		return toastExpireMsg{seq: seq}
	})
}
