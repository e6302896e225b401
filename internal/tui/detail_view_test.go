package tui

import (
	"strings"
	"testing"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/model"
)

func openFirst(t *testing.T, f *fixture) appModel {
	t.Helper()
	m := started(t, f)
	m = press(m, "enter")
	if m.view != viewDetail || m.detail == nil {
		t.Fatalf("expected detail view, got %s", m.view)
	}
	if m.detail.State.Phase() != clientdetail.PhaseViewing {
		t.Fatalf("expected a loaded record, phase %s", m.detail.State.Phase())
	}
	return m
}

func TestDetail_EditCancelRestoresRecord(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)

	m = press(m, "e")
	if !m.detail.State.Editing() {
		t.Fatalf("expected editing")
	}
	m = press(m, "enter")
	if !m.fieldEditing {
		t.Fatalf("expected the first field to open for input")
	}
	m.fieldInput.SetValue("Anna")
	m = press(m, "enter")
	if got := m.detail.State.Displayed().DisplayName(); got != "Anna Lee" {
		t.Fatalf("buffer not applied: %q", got)
	}
	if got := m.detail.State.Client().DisplayName(); got != "Ann Lee" {
		t.Fatalf("record changed before save: %q", got)
	}

	m = press(m, "esc")
	if m.detail.State.Editing() {
		t.Fatalf("esc should leave edit mode")
	}
	if got := m.detail.State.Displayed().DisplayName(); got != "Ann Lee" {
		t.Fatalf("cancel kept the edit: %q", got)
	}
	if len(f.backend.updates) != 0 {
		t.Fatalf("cancel must not save")
	}
}

func TestDetail_SaveSendsBufferAndUpdatesListRow(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)

	m = press(m, "e")
	m = press(m, "enter")
	m.fieldInput.SetValue("Anna")
	m = press(m, "enter")
	m = press(m, "ctrl+s")

	if len(f.backend.updates) != 1 {
		t.Fatalf("expected one update, got %d", len(f.backend.updates))
	}
	u := f.backend.updates[0]
	if p, ok := u.Data.(model.PersonData); !ok || p.FirstName != "Anna" {
		t.Fatalf("unexpected payload data %#v", u.Data)
	}
	if u.Ownership == nil || u.QuickBooks == nil {
		t.Fatalf("save should carry ownership and quickbooks")
	}
	if m.detail.State.Editing() || m.detailBusy {
		t.Fatalf("expected viewing after save")
	}
	if c, ok := m.list.State.Find("c-1"); !ok || c.DisplayName() != "Anna Lee" {
		t.Fatalf("list row not refreshed: %+v", c)
	}
	if toastText(m) != "Client updated successfully" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestDetail_EditJumpsToAnEditableTab(t *testing.T) {
	m := openFirst(t, newFixture(t, true))
	m = press(m, "5")
	if m.detail.State.Tab() != clientdetail.TabNotes {
		t.Fatalf("expected notes tab, got %s", m.detail.State.Tab())
	}
	m = press(m, "e")
	if m.detail.State.Tab() != clientdetail.TabData {
		t.Fatalf("expected data tab in edit mode, got %s", m.detail.State.Tab())
	}
	m = press(m, "tab")
	if m.detail.State.Tab() != clientdetail.TabQuickBooks {
		t.Fatalf("expected quickbooks, got %s", m.detail.State.Tab())
	}
	m = press(m, "tab")
	if m.detail.State.Tab() != clientdetail.TabOwnership {
		t.Fatalf("read-only tabs should be skipped, got %s", m.detail.State.Tab())
	}
}

func TestDetail_DeleteReturnsToListWithoutRow(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)

	m = press(m, "d")
	if m.confirm == nil || !strings.Contains(m.confirm.prompt, "Ann Lee") {
		t.Fatalf("expected a confirmation naming the client")
	}
	m = press(m, "y")
	if m.view != viewList || m.detail != nil {
		t.Fatalf("expected list view after delete, got %s", m.view)
	}
	if _, ok := m.list.State.Find("c-1"); ok {
		t.Fatalf("deleted client still listed")
	}
	if strings.Join(f.backend.deleted, ",") != "c-1" {
		t.Fatalf("deleted %v", f.backend.deleted)
	}
}

func TestDetail_LoadFailureGoesBack(t *testing.T) {
	f := newFixture(t, true)
	f.backend.getErr = errBoom
	m := started(t, f)

	m = press(m, "enter")
	if m.view != viewList || m.detail != nil {
		t.Fatalf("expected list view, got %s", m.view)
	}
	if toastText(m) != "Failed to load client" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestDetail_AddNoteTrimsAndBlankIsNoop(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)
	m = press(m, "5")

	m = press(m, "a")
	if m.composer != composerNote {
		t.Fatalf("expected note composer")
	}
	m.noteInput.SetValue("   ")
	m = press(m, "ctrl+s")
	if len(f.backend.notes) != 0 {
		t.Fatalf("blank note sent a request")
	}
	if toastText(m) != "Nothing to add" || m.composer != composerNote {
		t.Fatalf("blank note should keep the composer open, toast %q", toastText(m))
	}

	m.noteInput.SetValue("  met for **lunch**  ")
	m = press(m, "ctrl+s")
	if strings.Join(f.backend.notes, "|") != "met for **lunch**" {
		t.Fatalf("notes %q", f.backend.notes)
	}
	if m.composer != composerNone {
		t.Fatalf("composer should close after a note is added")
	}
	if n := len(m.detail.State.Client().Notes); n != 1 {
		t.Fatalf("expected the reloaded record to carry the note, got %d", n)
	}
	if toastText(m) != "Note added successfully" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestDetail_AddTrackingNeedsDescription(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)
	m = press(m, "6")
	m = press(m, "a")
	if m.composer != composerTracking {
		t.Fatalf("expected tracking composer")
	}

	m = press(m, "ctrl+s")
	if len(f.backend.tracking) != 0 {
		t.Fatalf("incomplete entry sent a request")
	}
	if toastText(m) != "Activity type and description are required" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}

	m = press(m, "tab")
	m.trackDesc.SetValue("Intro call")
	m = press(m, "ctrl+s")
	if len(f.backend.tracking) != 1 {
		t.Fatalf("expected one tracking entry, got %d", len(f.backend.tracking))
	}
	got := f.backend.tracking[0]
	if got.ActivityType != model.ActivityTypes[0] || got.Description != "Intro call" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if m.composer != composerNone {
		t.Fatalf("composer should close")
	}
}

func TestDetail_AddOutsideNotesOrTrackingExplains(t *testing.T) {
	m := openFirst(t, newFixture(t, true))
	m = press(m, "a")
	if m.composer != composerNone {
		t.Fatalf("no composer on the data tab")
	}
	if toastText(m) != "Switch to Notes or Tracking to add an entry" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestDetail_OpenAndCopySharePointLink(t *testing.T) {
	f := newFixture(t, true)
	m := openFirst(t, f)

	m = press(m, "o")
	if strings.Join(f.opened, ",") != f.backend.spURL {
		t.Fatalf("opened %v", f.opened)
	}
	if toastText(m) != "Opening SharePoint documents..." {
		t.Fatalf("unexpected toast %q", toastText(m))
	}

	m = press(m, "3")
	m = press(m, "y")
	if strings.Join(f.copied, ",") != f.backend.spURL {
		t.Fatalf("copied %v", f.copied)
	}
	if toastText(m) != "SharePoint link copied" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestDetail_ReopensAfterRestart(t *testing.T) {
	f := newFixture(t, true)
	openFirst(t, f)

	m := f.model()
	if m.view != viewDetail || m.detail == nil || m.detail.State.ID() != "c-1" {
		t.Fatalf("expected the open client to be restored")
	}
	m = drive(m, m.Init())
	if m.detail.State.Phase() != clientdetail.PhaseViewing {
		t.Fatalf("restored detail did not load")
	}
	if !strings.Contains(m.View(), "Ann Lee") {
		t.Fatalf("detail view should name the client")
	}

	m = press(m, "esc")
	m2 := f.model()
	if m2.view != viewList {
		t.Fatalf("leaving the detail should clear the saved client")
	}
}

func TestCycleOption(t *testing.T) {
	opts := []string{"", "prospect", "active"}
	cases := []struct{ cur, want string }{
		{"", "prospect"},
		{"prospect", "active"},
		{"active", ""},
		{"unknown", ""},
	}
	for _, tc := range cases {
		if got := cycleOption(opts, tc.cur); got != tc.want {
			t.Fatalf("cycleOption(%q) = %q, want %q", tc.cur, got, tc.want)
		}
	}
	if got := cycleOption([]string{"1-10", "11-50"}, ""); got != "1-10" {
		t.Fatalf("unset should advance to the first option, got %q", got)
	}
}
