package tui

import (
	"strings"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	width := max(m.width, 40)
	if m.confirm != nil {
		modal := renderConfirmModal(width, "Delete client", m.confirm.prompt, "Delete", "Cancel", m.confirm.focus)
		return overlayCenter(width, m.height, modal)
	}

	var body string
	switch m.view {
	case viewLogin:
		body = m.viewLogin(width, m.bodyHeight())
	case viewList:
		body = m.viewList(width, m.bodyHeight())
	case viewDetail:
		if m.detail != nil {
			body = m.viewDetail(width, m.bodyHeight())
		}
	case viewCreate:
		body = m.viewCreate(width, m.bodyHeight())
	}

	return strings.Join([]string{
		m.viewHeader(width),
		"",
		body,
		"",
		m.viewToast(width),
		m.help.ShortHelpView(m.helpBindings()),
	}, "\n")
}

func (m appModel) viewHeader(width int) string {
	left := styleHeading().Render("Greenlight CRM")
	right := ""
	if m.session != nil && m.session.Authenticated() {
		u := m.session.User()
		right = styleMuted().Render(u.Name + " <" + u.Email + ">")
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) viewToast(width int) string {
	if m.toast == nil {
		return ""
	}
	st := lipgloss.NewStyle().Bold(true)
	mark := "•"
	switch m.toast.Level {
	case notify.LevelSuccess:
		st = st.Foreground(colorSuccess)
		mark = "✓"
	case notify.LevelError:
		st = st.Foreground(colorError)
		mark = "✗"
	default:
		st = st.Foreground(colorMuted)
	}
	return padOrCut(st.Render(mark+" "+m.toast.Message), width)
}

func (m appModel) viewLogin(width, height int) string {
	var status string
	if m.loggingIn {
		status = m.spinner.View() + " Signing in…"
	} else {
		status = styleActiveTab().Render("Sign in with Microsoft")
	}
	box := lipgloss.JoinVertical(lipgloss.Center,
		styleHeading().Render("Welcome to Greenlight"),
		"",
		styleMuted().Render("Client relationship management"),
		"",
		status,
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m appModel) helpBindings() []key.Binding {
	k := m.keys
	switch m.view {
	case viewLogin:
		return []key.Binding{k.Login, k.Quit}
	case viewList:
		if m.searching {
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search now")),
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
			}
		}
		return []key.Binding{k.Open, k.Search, k.TypeFilter, k.NextTab, k.Toggle, k.ToggleAll, k.New, k.Delete, k.DeleteSelected, k.Refresh, k.Logout, k.Quit}
	case viewDetail:
		switch {
		case m.detail == nil:
			return nil
		case m.fieldEditing:
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
			}
		case m.composer != composerNone:
			return nil
		case m.detail.State.Editing():
			return []key.Binding{k.Up, k.Down, k.EditFld, k.NextTab, k.Save,
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))}
		}
		out := []key.Binding{k.Back, k.NextTab, k.Edit}
		switch m.detail.State.Tab() {
		case clientdetail.TabNotes, clientdetail.TabTracking:
			out = append(out, k.Add)
		}
		return append(out, k.OpenDocs, k.CopyID, k.Delete, k.Refresh, k.Quit)
	case viewCreate:
		if m.formEditing {
			return []key.Binding{
				key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
				key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "apply & next")),
				key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard")),
			}
		}
		return []key.Binding{k.Up, k.Down, k.EditFld, k.SwitchType,
			key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "create")), k.Back}
	}
	return nil
}
