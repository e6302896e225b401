package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 20

func editableTab(t clientdetail.SubTab) bool {
	return t == clientdetail.TabData || t == clientdetail.TabQuickBooks || t == clientdetail.TabOwnership
}

func relationshipOptions() []string {
	out := []string{""}
	for _, r := range model.RelationshipTypes {
		out = append(out, string(r))
	}
	return out
}

// detailFields lists the fields of the active tab with the displayed values.
func (m appModel) detailFields() []model.Field {
	if m.detail == nil {
		return nil
	}
	c := m.detail.State.Displayed()
	switch m.detail.State.Tab() {
	case clientdetail.TabData:
		if c.Data == nil {
			return nil
		}
		return c.Data.Fields()
	case clientdetail.TabQuickBooks:
		out := make([]model.Field, len(clientdetail.QuickBooksFields))
		for i, f := range clientdetail.QuickBooksFields {
			f.Value = clientdetail.QuickBooksValue(c.QuickBooks, f.Name)
			out[i] = f
		}
		return out
	case clientdetail.TabOwnership:
		out := make([]model.Field, len(clientdetail.OwnershipFields))
		for i, f := range clientdetail.OwnershipFields {
			f.Value = clientdetail.OwnershipValue(c.Ownership, f.Name)
			if f.Name == "relationship_type" {
				f.Options = relationshipOptions()
			}
			out[i] = f
		}
		return out
	}
	return nil
}

func (m *appModel) setDetailField(name, value string) error {
	st := m.detail.State
	switch st.Tab() {
	case clientdetail.TabData:
		return st.SetDataField(name, value)
	case clientdetail.TabQuickBooks:
		return st.SetQuickBooksField(name, value)
	case clientdetail.TabOwnership:
		return st.SetOwnershipField(name, value)
	}
	return fmt.Errorf("%s is read-only", st.Tab().Label())
}

// cycleOption returns the option after cur; an unset value counts as the first slot.
func cycleOption(opts []string, cur string) string {
	if len(opts) == 0 {
		return cur
	}
	if opts[0] != "" {
		opts = append([]string{""}, opts...)
	}
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func nextSubTab(cur clientdetail.SubTab, delta int) clientdetail.SubTab {
	n := len(clientdetail.SubTabs)
	for i, t := range clientdetail.SubTabs {
		if t == cur {
			return clientdetail.SubTabs[((i+delta)%n+n)%n]
		}
	}
	return clientdetail.TabData
}

func (m appModel) updateDetail(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.detail == nil {
		m.view = viewList
		return m, nil
	}
	st := m.detail.State

	if m.detailBusy || st.Phase() == clientdetail.PhaseLoading {
		if key.Matches(msg, m.keys.Back) && !m.detailBusy {
			return m, m.leaveDetail()
		}
		return m, nil
	}
	if m.fieldEditing {
		return m.updateFieldInput(msg)
	}
	switch m.composer {
	case composerNote:
		return m.updateNoteComposer(msg)
	case composerTracking:
		return m.updateTrackingComposer(msg)
	}
	if st.Editing() {
		return m.updateDetailEditing(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		return m, m.leaveDetail()
	case key.Matches(msg, m.keys.NextTab):
		st.SetTab(nextSubTab(st.Tab(), 1))
		m.body.GotoTop()
	case key.Matches(msg, m.keys.PrevTab):
		st.SetTab(nextSubTab(st.Tab(), -1))
		m.body.GotoTop()
	case key.Matches(msg, m.keys.Edit):
		if err := st.Edit(); err != nil {
			notify.Error(m.notices, err.Error())
			return m, nil
		}
		m.fieldCursor = 0
		if !editableTab(st.Tab()) {
			st.SetTab(clientdetail.TabData)
		}
	case key.Matches(msg, m.keys.Delete):
		name := st.Client().DisplayName()
		if name == "" {
			name = "this client"
		}
		m.askConfirm(confirmDeleteDetail, st.ID(), notify.DeletePrompt(name))
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(loadDetailCmd(m.ctx, m.detail), m.spinner.Tick)
	case key.Matches(msg, m.keys.Add):
		return m.openComposer()
	case key.Matches(msg, m.keys.OpenDocs):
		return m, openDocsCmd(m.ctx, m.detail)
	case key.Matches(msg, m.keys.CopyID):
		if st.Tab() == clientdetail.TabDocuments {
			return m, copyDocsCmd(m.ctx, m.detail, m.notices, m.opts.Copy)
		}
		m.copyText(st.ID(), "Client ID copied")
	case key.Matches(msg, m.keys.Up):
		m.body.LineUp(1)
	case key.Matches(msg, m.keys.Down):
		m.body.LineDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.body.HalfViewUp()
	case key.Matches(msg, m.keys.PageDown):
		m.body.HalfViewDown()
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if i := int(s[0] - '1'); i < len(clientdetail.SubTabs) {
				st.SetTab(clientdetail.SubTabs[i])
				m.body.GotoTop()
			}
		}
	}
	return m, nil
}

func (m appModel) updateDetailEditing(msg tea.KeyMsg) (appModel, tea.Cmd) {
	st := m.detail.State
	fields := m.detailFields()

	switch {
	case key.Matches(msg, m.keys.Save):
		m.detailBusy = true
		return m, tea.Batch(saveDetailCmd(m.ctx, m.detail), m.spinner.Tick)
	case msg.String() == "esc":
		st.Cancel()
		m.fieldCursor = 0
	case key.Matches(msg, m.keys.Up):
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
	case key.Matches(msg, m.keys.NextTab), key.Matches(msg, m.keys.PrevTab):
		delta := 1
		if key.Matches(msg, m.keys.PrevTab) {
			delta = -1
		}
		t := nextSubTab(st.Tab(), delta)
		for !editableTab(t) {
			t = nextSubTab(t, delta)
		}
		st.SetTab(t)
		m.fieldCursor = 0
		m.body.GotoTop()
	case key.Matches(msg, m.keys.EditFld):
		if m.fieldCursor >= len(fields) {
			return m, nil
		}
		f := fields[m.fieldCursor]
		if len(f.Options) > 0 {
			if err := m.setDetailField(f.Name, cycleOption(f.Options, f.Value)); err != nil {
				notify.Error(m.notices, err.Error())
			}
			return m, nil
		}
		m.fieldEditing = true
		m.fieldInput.SetValue(f.Value)
		m.fieldInput.CursorEnd()
		return m, m.fieldInput.Focus()
	}
	return m, nil
}

func (m appModel) updateFieldInput(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.fieldEditing = false
		m.fieldInput.Blur()
		return m, nil
	case "enter":
		fields := m.detailFields()
		if m.fieldCursor < len(fields) {
			if err := m.setDetailField(fields[m.fieldCursor].Name, m.fieldInput.Value()); err != nil {
				notify.Error(m.notices, err.Error())
				return m, nil
			}
		}
		m.fieldEditing = false
		m.fieldInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.fieldInput, cmd = m.fieldInput.Update(msg)
	return m, cmd
}

func (m appModel) openComposer() (appModel, tea.Cmd) {
	switch m.detail.State.Tab() {
	case clientdetail.TabNotes:
		m.composer = composerNote
		m.resize()
		return m, m.noteInput.Focus()
	case clientdetail.TabTracking:
		m.composer = composerTracking
		m.trackFocus = trackFocusType
		m.resize()
		return m, nil
	}
	notify.Info(m.notices, "Switch to Notes or Tracking to add an entry")
	return m, nil
}

func (m *appModel) closeComposer() {
	m.composer = composerNone
	m.noteInput.Blur()
	m.trackDesc.Blur()
	m.trackOutcome.Blur()
	m.resize()
}

func (m appModel) updateNoteComposer(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch {
	case msg.String() == "esc":
		m.closeComposer()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.detail.State.SetNoteDraft(m.noteInput.Value())
		m.detailBusy = true
		return m, tea.Batch(addNoteCmd(m.ctx, m.detail), m.spinner.Tick)
	}
	var cmd tea.Cmd
	m.noteInput, cmd = m.noteInput.Update(msg)
	return m, cmd
}

func (m *appModel) focusTracking(i int) tea.Cmd {
	m.trackFocus = (i%trackFocusCount + trackFocusCount) % trackFocusCount
	m.trackDesc.Blur()
	m.trackOutcome.Blur()
	switch m.trackFocus {
	case trackFocusDescription:
		return m.trackDesc.Focus()
	case trackFocusOutcome:
		return m.trackOutcome.Focus()
	}
	return nil
}

func (m appModel) updateTrackingComposer(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeComposer()
		return m, nil
	case "tab", "down":
		return m, m.focusTracking(m.trackFocus + 1)
	case "shift+tab", "up":
		return m, m.focusTracking(m.trackFocus - 1)
	case "ctrl+s", "enter":
		if msg.String() == "enter" && m.trackFocus != trackFocusOutcome {
			return m, m.focusTracking(m.trackFocus + 1)
		}
		d := clientdetail.TrackingDraft{
			ActivityType: model.ActivityTypes[m.trackType],
			Description:  m.trackDesc.Value(),
			Outcome:      m.trackOutcome.Value(),
		}
		m.detail.State.SetTrackingDraft(d)
		if _, err := m.detail.State.TrackingToSubmit(); err != nil {
			notify.Error(m.notices, "Activity type and description are required")
			return m, nil
		}
		m.detailBusy = true
		return m, tea.Batch(addTrackingCmd(m.ctx, m.detail), m.spinner.Tick)
	}
	if m.trackFocus == trackFocusType {
		n := len(model.ActivityTypes)
		switch msg.String() {
		case "right", "l", " ":
			m.trackType = (m.trackType + 1) % n
		case "left", "h":
			m.trackType = (m.trackType - 1 + n) % n
		}
		return m, nil
	}
	var cmd tea.Cmd
	if m.trackFocus == trackFocusDescription {
		m.trackDesc, cmd = m.trackDesc.Update(msg)
	} else {
		m.trackOutcome, cmd = m.trackOutcome.Update(msg)
	}
	return m, cmd
}

func (m appModel) updateAppended(msg detailAppendedMsg) (appModel, tea.Cmd) {
	m.detailBusy = false
	if msg.err != nil {
		return m, nil
	}
	if !msg.added {
		notify.Info(m.notices, "Nothing to add")
		return m, nil
	}
	switch m.composer {
	case composerNote:
		m.noteInput.Reset()
	case composerTracking:
		m.trackDesc.Reset()
		m.trackOutcome.Reset()
		m.trackType = 0
	}
	m.closeComposer()
	m.list.State.Replace(msg.client)
	return m, nil
}

// syncDetailBody re-renders the scrollable body and keeps the field cursor in view.
func (m *appModel) syncDetailBody() {
	if m.detail == nil {
		return
	}
	m.body.SetContent(m.detailContent(m.body.Width))
	if !m.detail.State.Editing() {
		return
	}
	switch {
	case m.fieldCursor < m.body.YOffset:
		m.body.SetYOffset(m.fieldCursor)
	case m.fieldCursor >= m.body.YOffset+m.body.Height:
		m.body.SetYOffset(m.fieldCursor - m.body.Height + 1)
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (m appModel) renderFieldRows(fields []model.Field, width int, editing bool) string {
	var b strings.Builder
	for i, f := range fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		val := oneLine(f.Value)
		if editing && i == m.fieldCursor && m.fieldEditing {
			val = m.fieldInput.View()
		} else if val == "" {
			val = styleMuted().Render("-")
		}
		if len(f.Options) > 0 && editing {
			val += styleMuted().Render("  (enter: cycle)")
		}
		line := fmt.Sprintf("%-*s %s", labelWidth, label, val)
		if editing && i == m.fieldCursor {
			line = styleSelected().Render(padOrCut(line, width))
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	return b.String()
}

func sortedPairs(entry map[string]string) string {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+entry[k])
	}
	return strings.Join(parts, "  ")
}

func (m appModel) detailContent(width int) string {
	st := m.detail.State
	if st.Phase() == clientdetail.PhaseLoading {
		return m.spinner.View() + " Loading client…"
	}
	c := st.Displayed()
	editing := st.Editing()

	switch st.Tab() {
	case clientdetail.TabData, clientdetail.TabQuickBooks, clientdetail.TabOwnership:
		return m.renderFieldRows(m.detailFields(), width, editing)

	case clientdetail.TabDocuments:
		u := c.Documents.SharePointFolderURL
		if u == "" {
			u = styleMuted().Render("not provisioned yet")
		}
		lines := []string{
			fmt.Sprintf("%-*s %s", labelWidth, "SharePoint folder", u),
			fmt.Sprintf("%-*s %s", labelWidth, "Categories", strings.Join(c.Documents.DocumentCategories, ", ")),
			fmt.Sprintf("%-*s %s", labelWidth, "Access", strings.Join(c.Documents.AccessPermissions, ", ")),
			"",
			styleMuted().Render("o: open in browser   y: copy link"),
		}
		return strings.Join(lines, "\n")

	case clientdetail.TabCredentials:
		groups := []struct {
			title   string
			entries []map[string]string
		}{
			{"Login portals", c.Credentials.LoginPortals},
			{"API keys", c.Credentials.APIKeys},
			{"Certificates", c.Credentials.Certificates},
		}
		var lines []string
		for _, g := range groups {
			lines = append(lines, styleHeading().Render(fmt.Sprintf("%s (%d)", g.title, len(g.entries))))
			for _, e := range g.entries {
				lines = append(lines, "  "+sortedPairs(e))
			}
		}
		return strings.Join(lines, "\n")

	case clientdetail.TabNotes:
		if len(c.Notes) == 0 {
			return styleMuted().Render("No notes yet. a: add note")
		}
		var blocks []string
		for i := len(c.Notes) - 1; i >= 0; i-- {
			n := c.Notes[i]
			head := styleMuted().Render(strings.TrimSpace(n.CreatedBy + " · " + formatTime(n.CreatedAt)))
			blocks = append(blocks, head+"\n"+renderMarkdown(n.Content, width-2))
		}
		return strings.Join(blocks, "\n\n")

	case clientdetail.TabTracking:
		if len(c.Tracking) == 0 {
			return styleMuted().Render("No activity yet. a: add entry")
		}
		var blocks []string
		for i := len(c.Tracking) - 1; i >= 0; i-- {
			e := c.Tracking[i]
			head := styleHeading().Render(string(e.ActivityType)) + "  " +
				styleMuted().Render(strings.TrimSpace(e.CreatedBy+" · "+formatTime(e.CreatedAt)))
			block := head + "\n  " + oneLine(e.Description)
			if e.Outcome != "" {
				block += "\n  → " + oneLine(e.Outcome)
			}
			blocks = append(blocks, block)
		}
		return strings.Join(blocks, "\n\n")
	}
	return ""
}

func (m appModel) viewComposer(width int) string {
	switch m.composer {
	case composerNote:
		return styleHeading().Render("New note") + styleMuted().Render("  ctrl+s: add   esc: close") + "\n" + m.noteInput.View()
	case composerTracking:
		focus := func(i int, s string) string {
			if i == m.trackFocus {
				return styleSelected().Render(padOrCut(s, width))
			}
			return s
		}
		act := fmt.Sprintf("%-*s ‹ %s ›", labelWidth, "Activity", model.ActivityTypes[m.trackType])
		lines := []string{
			styleHeading().Render("New activity") + styleMuted().Render("  tab: next field   ctrl+s: add   esc: close"),
			focus(trackFocusType, act),
			focus(trackFocusDescription, fmt.Sprintf("%-*s ", labelWidth, "Description *")) + renderInputLine(width-labelWidth-1, m.trackDesc.View()),
			focus(trackFocusOutcome, fmt.Sprintf("%-*s ", labelWidth, "Outcome")) + renderInputLine(width-labelWidth-1, m.trackOutcome.View()),
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

func (m appModel) viewDetail(width, height int) string {
	st := m.detail.State
	c := st.Displayed()

	title := c.DisplayName()
	if title == "" {
		title = st.ID()
	}
	head := styleMuted().Render("Clients / ") + lipgloss.NewStyle().Bold(true).Render(title)
	if c.Type != "" {
		head += styleMuted().Render("  " + string(c.Type))
	}
	switch {
	case st.Editing():
		head += "  " + lipgloss.NewStyle().Bold(true).Foreground(colorWarn).Render("EDITING")
	case m.detailBusy:
		head += "  " + m.spinner.View()
	}

	var tabs []string
	for i, t := range clientdetail.SubTabs {
		label := fmt.Sprintf("%d %s", i+1, t.Label())
		if t == st.Tab() {
			tabs = append(tabs, styleActiveTab().Render(label))
		} else {
			tabs = append(tabs, styleTab().Render(label))
		}
	}
	tabLine := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	parts := []string{head, tabLine, m.body.View()}
	if m.composer != composerNone {
		parts = append(parts, "", m.viewComposer(width))
	}
	return normalizePane(strings.Join(parts, "\n"), width, height)
}
