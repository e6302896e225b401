package tui

import (
	"fmt"
	"strings"

	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Row 0 of the create form is the person/company switch; field i sits on row i+1.

func (m appModel) formFields() []model.Field {
	return m.form.Draft.Fields()
}

func (m *appModel) toggleFormType() {
	if m.form.Draft.Type == model.ClientTypeCompany {
		m.form.Draft.SetType(model.ClientTypePerson)
	} else {
		m.form.Draft.SetType(model.ClientTypeCompany)
	}
	if n := len(m.formFields()); m.formCursor > n {
		m.formCursor = n
	}
}

func (m appModel) updateCreate(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	if m.formEditing {
		return m.updateFormInput(msg)
	}
	fields := m.formFields()

	switch {
	case key.Matches(msg, m.keys.Back):
		m.formEditing = false
		return m, m.returnToList()
	case key.Matches(msg, m.keys.Save):
		m.creating = true
		return m, tea.Batch(m.submitCreateCmd(), m.spinner.Tick)
	case key.Matches(msg, m.keys.SwitchType):
		m.toggleFormType()
	case key.Matches(msg, m.keys.Up):
		if m.formCursor > 0 {
			m.formCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.formCursor < len(fields) {
			m.formCursor++
		}
	case key.Matches(msg, m.keys.EditFld), msg.String() == " ":
		if m.formCursor == 0 {
			m.toggleFormType()
			return m, nil
		}
		f := fields[m.formCursor-1]
		if len(f.Options) > 0 {
			if err := m.form.Draft.Set(f.Name, cycleOption(f.Options, f.Value)); err != nil {
				notify.Error(m.notices, err.Error())
			}
			return m, nil
		}
		if msg.String() == " " {
			return m, nil
		}
		m.formEditing = true
		m.formInput.SetValue(f.Value)
		m.formInput.CursorEnd()
		return m, m.formInput.Focus()
	}
	return m, nil
}

func (m appModel) updateFormInput(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formEditing = false
		m.formInput.Blur()
		return m, nil
	case "enter", "tab":
		fields := m.formFields()
		if i := m.formCursor - 1; i >= 0 && i < len(fields) {
			if err := m.form.Draft.Set(fields[i].Name, m.formInput.Value()); err != nil {
				notify.Error(m.notices, err.Error())
				return m, nil
			}
		}
		m.formEditing = false
		m.formInput.Blur()
		if msg.String() == "tab" && m.formCursor < len(fields) {
			m.formCursor++
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.formInput, cmd = m.formInput.Update(msg)
	return m, cmd
}

func (m appModel) viewCreate(width, height int) string {
	d := m.form.Draft
	radio := func(on bool, label string) string {
		if on {
			return "(•) " + label
		}
		return "( ) " + label
	}
	typeLine := fmt.Sprintf("%-*s %s   %s", labelWidth, "Type",
		radio(d.Type == model.ClientTypePerson, "Person"),
		radio(d.Type == model.ClientTypeCompany, "Company"))
	if m.formCursor == 0 {
		typeLine = styleSelected().Render(padOrCut(typeLine, width))
	}

	lines := []string{
		styleHeading().Render("New client"),
		"",
		typeLine,
	}
	for i, f := range m.formFields() {
		label := f.Label
		if f.Required {
			label += " *"
		}
		val := oneLine(f.Value)
		row := i + 1
		switch {
		case m.formEditing && row == m.formCursor:
			val = m.formInput.View()
		case val == "":
			val = styleMuted().Render("-")
		}
		if len(f.Options) > 0 {
			val += styleMuted().Render("  (enter: cycle)")
		}
		line := fmt.Sprintf("%-*s %s", labelWidth, label, val)
		if row == m.formCursor {
			line = styleSelected().Render(padOrCut(line, width))
		}
		lines = append(lines, line)
	}
	if m.creating {
		lines = append(lines, "", m.spinner.View()+" Creating client…")
	}
	note := lipgloss.NewStyle().Foreground(colorMuted).Render("* required. The account manager defaults to you.")
	lines = append(lines, "", note)
	return normalizePane(strings.Join(lines, "\n"), width, height)
}
