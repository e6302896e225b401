package tui

import (
	"fmt"
	"io"
	"strings"

	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type clientRow struct {
	client   model.Client
	selected bool
}

func (r clientRow) FilterValue() string { return r.client.DisplayName() }

// clientDelegate renders one client per line: checkbox, name, type, subtitle, relationship.
type clientDelegate struct{}

func (clientDelegate) Height() int                             { return 1 }
func (clientDelegate) Spacing() int                            { return 0 }
func (clientDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (clientDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	row, ok := item.(clientRow)
	if !ok {
		return
	}
	contentW := m.Width()
	if contentW < 10 {
		return
	}
	box := "[ ]"
	if row.selected {
		box = "[x]"
	}
	rel := string(row.client.Ownership.RelationshipType)
	if rel == "" {
		rel = "-"
	}
	line := fmt.Sprintf(" %s %-28s %-8s %-30s %s",
		box,
		truncate(row.client.DisplayName(), 28),
		row.client.Type,
		truncate(row.client.Subtitle(), 30),
		rel,
	)
	line = padOrCut(line, contentW)
	if index == m.Index() {
		fmt.Fprint(w, styleSelected().Render(line))
		return
	}
	fmt.Fprint(w, line)
}

func truncate(s string, n int) string {
	if xansi.StringWidth(s) <= n {
		return s
	}
	if n <= 1 {
		return xansi.Cut(s, 0, n)
	}
	return xansi.Cut(s, 0, n-1) + "…"
}

func padOrCut(s string, w int) string {
	sw := xansi.StringWidth(s)
	if sw > w {
		return xansi.Cut(s, 0, w)
	}
	return s + strings.Repeat(" ", w-sw)
}

func newClientList() list.Model {
	l := list.New(nil, clientDelegate{}, 0, 0)
	// The header, tabs and footer are ours; keep list chrome off.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

// syncRows rebuilds the rows from the current tab, keeping the cursor on the same client.
func (m *appModel) syncRows() {
	keep := ""
	if r, ok := m.rows.SelectedItem().(clientRow); ok {
		keep = r.client.ID
	}
	if m.selectID != "" {
		keep = m.selectID
		m.selectID = ""
	}
	prev := m.rows.Index()

	visible := m.list.State.Visible()
	items := make([]list.Item, len(visible))
	idx := -1
	for i, c := range visible {
		items[i] = clientRow{client: c, selected: m.list.State.IsSelected(c.ID)}
		if c.ID == keep {
			idx = i
		}
	}
	m.rows.SetItems(items)
	if len(items) == 0 {
		return
	}
	if idx < 0 {
		idx = min(prev, len(items)-1)
	}
	m.rows.Select(max(idx, 0))
}

func (m appModel) currentRow() (model.Client, bool) {
	r, ok := m.rows.SelectedItem().(clientRow)
	return r.client, ok
}

func nextTab(cur clientlist.Tab, delta int) clientlist.Tab {
	n := len(clientlist.Tabs)
	for i, t := range clientlist.Tabs {
		if t == cur {
			return clientlist.Tabs[((i+delta)%n+n)%n]
		}
	}
	return clientlist.TabActive
}

func nextTypeFilter(cur clientlist.TypeFilter) clientlist.TypeFilter {
	fs := clientlist.TypeFilters
	for i, f := range fs {
		if f == cur {
			return fs[(i+1)%len(fs)]
		}
	}
	return clientlist.TypeAll
}

func (m appModel) updateList(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}
	st := m.list.State

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Up):
		m.rows.CursorUp()
	case key.Matches(msg, m.keys.Down):
		m.rows.CursorDown()
	case key.Matches(msg, m.keys.Top):
		m.rows.Select(0)
	case key.Matches(msg, m.keys.Bottom):
		if n := len(m.rows.Items()); n > 0 {
			m.rows.Select(n - 1)
		}
	case key.Matches(msg, m.keys.NextTab):
		st.SetTab(nextTab(st.Tab(), 1))
		m.rows.Select(0)
		m.persistTUIState()
	case key.Matches(msg, m.keys.PrevTab):
		st.SetTab(nextTab(st.Tab(), -1))
		m.rows.Select(0)
		m.persistTUIState()
	case key.Matches(msg, m.keys.TypeFilter):
		if st.SetTypeFilter(nextTypeFilter(st.Query().Type)) {
			m.persistTUIState()
			return m, m.refresh()
		}
	case key.Matches(msg, m.keys.Toggle):
		if c, ok := m.currentRow(); ok {
			st.Toggle(c.ID)
		}
	case key.Matches(msg, m.keys.ToggleAll):
		st.SetAllVisible(!st.AllVisibleSelected())
	case key.Matches(msg, m.keys.Back):
		st.ClearSelection()
	case key.Matches(msg, m.keys.Open):
		if c, ok := m.currentRow(); ok {
			return m, m.openDetail(c.ID)
		}
	case key.Matches(msg, m.keys.New):
		m.debounce.Cancel()
		m.view = viewCreate
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if c, ok := m.currentRow(); ok {
			m.askConfirm(confirmDeleteRow, c.ID, notify.DeletePrompt(c.DisplayName()))
		}
	case key.Matches(msg, m.keys.DeleteSelected):
		ids := st.Selected()
		if len(ids) == 0 {
			notify.Info(m.notices, "No clients selected")
			return m, nil
		}
		what := fmt.Sprintf("%d clients", len(ids))
		if len(ids) == 1 {
			if c, ok := st.Find(ids[0]); ok {
				what = c.DisplayName()
			}
		}
		m.askConfirm(confirmDeleteSelected, "", notify.DeletePrompt(what))
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.CopyID):
		if c, ok := m.currentRow(); ok {
			m.copyText(c.ID, "Client ID copied")
		}
	case key.Matches(msg, m.keys.Logout):
		m.debounce.Cancel()
		return m, logoutCmd(m.ctx, m.session)
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(clientlist.Tabs) {
				st.SetTab(clientlist.Tabs[i])
				m.rows.Select(0)
				m.persistTUIState()
			}
		}
	}
	return m, nil
}

// updateSearch feeds the search box; every change restarts the debounce timer.
func (m appModel) updateSearch(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		if m.searchPending {
			return m, m.refresh()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.list.State.SetSearch(m.search.Value()) {
		m.searchPending = true
		return m, tea.Batch(cmd, searchDebounceCmd(m.debounce.Bump()))
	}
	return m, cmd
}

func (m *appModel) copyText(s, okMsg string) {
	if err := m.opts.Copy(s); err != nil {
		m.log.Warn("clipboard", "err", err)
		notify.Error(m.notices, "Failed to copy to clipboard")
		return
	}
	notify.Success(m.notices, okMsg)
}

func typeFilterLabel(f clientlist.TypeFilter) string {
	switch f {
	case clientlist.TypePerson:
		return "Persons"
	case clientlist.TypeCompany:
		return "Companies"
	default:
		return "All types"
	}
}

func (m appModel) viewList(width, height int) string {
	st := m.list.State
	counts := st.Counts()

	var tabs []string
	for _, t := range clientlist.Tabs {
		label := fmt.Sprintf("%s %d", t.Label(), counts[t])
		if t == st.Tab() {
			tabs = append(tabs, styleActiveTab().Render(label))
		} else {
			tabs = append(tabs, styleTab().Render(label))
		}
	}
	tabLine := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	searchView := m.search.View()
	filterLine := "Search: " + searchView + "   Type: " + typeFilterLabel(st.Query().Type)
	if n := len(st.Selected()); n > 0 {
		all := ""
		if st.AllVisibleSelected() {
			all = " (all visible)"
		}
		filterLine += styleMuted().Render(fmt.Sprintf("   %d selected%s", n, all))
	}
	if st.Loading() {
		filterLine += "   " + m.spinner.View()
	}

	var rows string
	switch {
	case !st.Loaded() && st.Loading():
		rows = m.spinner.View() + " Loading clients…"
	case len(m.rows.Items()) == 0:
		rows = styleMuted().Render("No clients found")
	default:
		rows = m.rows.View()
	}

	out := strings.Join([]string{tabLine, filterLine, "", rows}, "\n")
	return normalizePane(out, width, height)
}
