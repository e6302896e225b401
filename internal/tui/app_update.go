package tui

import (
	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if t := next.flushNotices(); t != nil {
		cmd = tea.Batch(cmd, t)
	}
	switch next.view {
	case viewList:
		next.syncRows()
	case viewDetail:
		next.syncDetailBody()
	}
	return next, cmd
}

func (m appModel) update(msg tea.Msg) (appModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case toastExpireMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		m.loggingIn = false
		if msg.err != nil {
			m.log.Error("login", "err", msg.err)
			notify.Error(m.notices, "Login failed")
			return m, nil
		}
		m.view = viewList
		notify.Success(m.notices, "Signed in as "+m.session.User().Name)
		return m, m.refresh()

	case logoutDoneMsg:
		if msg.err != nil {
			m.log.Error("logout", "err", msg.err)
			notify.Error(m.notices, "Failed to sign out")
			return m, nil
		}
		m.debounce.Cancel()
		m.searchPending = false
		m.detail = nil
		m.confirm = nil
		m.list.State.ClearSelection()
		m.view = viewLogin
		notify.Info(m.notices, "Signed out")
		return m, nil

	case listFetchedMsg, listDeletedMsg, docsDoneMsg:
		// The controllers already updated state and left notices.
		return m, nil

	case searchDebounceMsg:
		if m.view != viewList || !m.debounce.Due(msg.seq) {
			return m, nil
		}
		return m, m.refresh()

	case detailLoadedMsg:
		if m.detail == nil || m.detail.State.ID() != msg.id {
			return m, nil
		}
		if msg.err != nil {
			return m, m.leaveDetail()
		}
		m.list.State.Replace(m.detail.State.Client())
		return m, nil

	case detailSavedMsg:
		m.detailBusy = false
		if msg.err == nil {
			m.list.State.Replace(msg.client)
			m.fieldCursor = 0
		}
		return m, nil

	case detailDeletedMsg:
		m.detailBusy = false
		if msg.err != nil {
			return m, nil
		}
		m.list.State.Remove(msg.id)
		if m.detail != nil && m.detail.State.ID() == msg.id {
			return m, m.leaveDetail()
		}
		return m, nil

	case detailAppendedMsg:
		return m.updateAppended(msg)

	case clientCreatedMsg:
		m.creating = false
		if msg.err != nil {
			return m, nil
		}
		m.list.State.Insert(msg.client)
		m.form.Reset()
		m.formCursor = 0
		m.formEditing = false
		m.selectID = msg.client.ID
		m.view = viewList
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		switch m.view {
		case viewLogin:
			return m.updateLogin(msg)
		case viewList:
			return m.updateList(msg)
		case viewDetail:
			return m.updateDetail(msg)
		case viewCreate:
			return m.updateCreate(msg)
		}
		return m, nil
	}

	return m.forwardToFocused(msg)
}

// forwardToFocused hands non-key messages (cursor blink) to whichever input has focus.
func (m appModel) forwardToFocused(msg tea.Msg) (appModel, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.view == viewList && m.searching:
		m.search, cmd = m.search.Update(msg)
	case m.view == viewDetail && m.fieldEditing:
		m.fieldInput, cmd = m.fieldInput.Update(msg)
	case m.view == viewDetail && m.composer == composerNote:
		m.noteInput, cmd = m.noteInput.Update(msg)
	case m.view == viewDetail && m.composer == composerTracking && m.trackFocus == trackFocusDescription:
		m.trackDesc, cmd = m.trackDesc.Update(msg)
	case m.view == viewDetail && m.composer == composerTracking && m.trackFocus == trackFocusOutcome:
		m.trackOutcome, cmd = m.trackOutcome.Update(msg)
	case m.view == viewCreate && m.formEditing:
		m.formInput, cmd = m.formInput.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		if m.confirm.focus == confirmFocusConfirm {
			m.confirm.focus = confirmFocusCancel
		} else {
			m.confirm.focus = confirmFocusConfirm
		}
		return m, nil
	case "y":
		return m.runConfirmed()
	case "n", "esc", "ctrl+g", "q":
		m.confirm = nil
		return m, nil
	case "enter":
		if m.confirm.focus == confirmFocusConfirm {
			return m.runConfirmed()
		}
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m appModel) runConfirmed() (appModel, tea.Cmd) {
	c := *m.confirm
	m.confirm = nil
	switch c.action {
	case confirmDeleteRow:
		return m, deleteRowCmd(m.ctx, m.list, c.clientID)
	case confirmDeleteSelected:
		return m, deleteSelectedCmd(m.ctx, m.list)
	case confirmDeleteDetail:
		if m.detail == nil {
			return m, nil
		}
		m.detailBusy = true
		return m, tea.Batch(deleteDetailCmd(m.ctx, m.detail), m.spinner.Tick)
	}
	return m, nil
}

func (m *appModel) askConfirm(action confirmAction, id, prompt string) {
	// Destructive prompts start on Cancel.
	m.confirm = &confirmState{action: action, clientID: id, prompt: prompt, focus: confirmFocusCancel}
}

// flushNotices shows the newest notice (errors win) and schedules its expiry.
func (m *appModel) flushNotices() tea.Cmd {
	ns := m.notices.Drain()
	if len(ns) == 0 {
		return nil
	}
	pick := ns[len(ns)-1]
	for i := len(ns) - 1; i >= 0; i-- {
		if ns[i].Level == notify.LevelError {
			pick = ns[i]
			break
		}
	}
	m.toast = &pick
	m.toastSeq++
	return toastExpireCmd(m.toastSeq)
}

func (m appModel) updateLogin(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Login):
		if m.loggingIn {
			return m, nil
		}
		m.loggingIn = true
		return m, tea.Batch(loginCmd(m.ctx, m.session), m.spinner.Tick)
	}
	return m, nil
}

// startDetail switches to the detail view for id; the caller loads it.
func (m *appModel) startDetail(id string) {
	m.debounce.Cancel()
	m.searching = false
	m.search.Blur()
	m.detail = clientdetail.NewController(clientdetail.New(id), m.backend, clientdetail.Options{
		Notifier: m.notices,
		Opener:   m.opts.Opener,
		Logger:   m.log,
	})
	m.view = viewDetail
	m.detailBusy = false
	m.fieldCursor = 0
	m.fieldEditing = false
	m.composer = composerNone
	m.noteInput.Reset()
	m.trackDesc.Reset()
	m.trackOutcome.Reset()
	m.body.GotoTop()
	m.resize()
}

func (m *appModel) openDetail(id string) tea.Cmd {
	m.startDetail(id)
	m.persistTUIState()
	return tea.Batch(loadDetailCmd(m.ctx, m.detail), m.spinner.Tick)
}

func (m *appModel) leaveDetail() tea.Cmd {
	m.detail = nil
	m.fieldEditing = false
	m.composer = composerNone
	m.view = viewList
	m.resize()
	m.persistTUIState()
	return m.returnToList()
}

// returnToList refetches when a search timer was dropped on the way out.
func (m *appModel) returnToList() tea.Cmd {
	m.view = viewList
	if m.searchPending {
		return m.refresh()
	}
	return nil
}
