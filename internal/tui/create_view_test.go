package tui

import (
	"testing"

	"greenlight-cli/internal/model"
)

func TestCreate_MissingFieldsMakesNoRequest(t *testing.T) {
	f := newFixture(t, true)
	m := started(t, f)
	m = press(m, "n")
	if m.view != viewCreate {
		t.Fatalf("expected create view, got %s", m.view)
	}

	m = press(m, "ctrl+s")
	if len(f.backend.creates) != 0 {
		t.Fatalf("invalid form sent a request")
	}
	if m.view != viewCreate || m.creating {
		t.Fatalf("expected to stay on the form")
	}
	if toastText(m) != "First name and last name are required for persons" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}

func TestCreate_TypingIntoAField(t *testing.T) {
	m := started(t, newFixture(t, true))
	m = press(m, "n")
	m = press(m, "down")
	m = press(m, "enter")
	if !m.formEditing {
		t.Fatalf("expected the first name input to open")
	}
	m = press(m, "D")
	m = press(m, "e")
	m = press(m, "tab")
	if m.formEditing {
		t.Fatalf("tab should apply the value")
	}
	if got := m.form.Draft.Person.FirstName; got != "De" {
		t.Fatalf("first name = %q", got)
	}
	if m.formCursor != 2 {
		t.Fatalf("tab should advance to the next field, cursor %d", m.formCursor)
	}
}

func TestCreate_SwitchTypeShowsCompanyFields(t *testing.T) {
	m := started(t, newFixture(t, true))
	m = press(m, "n")
	m = press(m, "ctrl+t")
	if m.form.Draft.Type != model.ClientTypeCompany {
		t.Fatalf("expected company, got %s", m.form.Draft.Type)
	}
	if fs := m.formFields(); len(fs) == 0 || fs[0].Name != "company_name" {
		t.Fatalf("unexpected fields %+v", fs)
	}
	m = press(m, "enter")
	if m.form.Draft.Type != model.ClientTypePerson {
		t.Fatalf("enter on the type row should toggle back")
	}
}

func TestCreate_SuccessPrependsAndSelects(t *testing.T) {
	f := newFixture(t, true)
	m := started(t, f)
	m = press(m, "n")
	for name, v := range map[string]string{
		"first_name":    "Dee",
		"last_name":     "Moss",
		"email":         "dee@x.test",
		"primary_owner": "owner",
	} {
		if err := m.form.Draft.Set(name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	m = press(m, "ctrl+s")
	if len(f.backend.creates) != 1 {
		t.Fatalf("expected one create, got %d", len(f.backend.creates))
	}
	if got := f.backend.creates[0].Ownership.AccountManager; got != "John Doe" {
		t.Fatalf("account manager should default to the signed-in user, got %q", got)
	}
	if m.view != viewList {
		t.Fatalf("expected list view, got %s", m.view)
	}
	ids := visibleIDs(m)
	if len(ids) == 0 || ids[0] != "new-1" {
		t.Fatalf("new client should lead the list, got %v", ids)
	}
	if c, ok := m.currentRow(); !ok || c.ID != "new-1" {
		t.Fatalf("cursor should rest on the new client")
	}
	if m.form.Draft.Person.FirstName != "" {
		t.Fatalf("form should be cleared after create")
	}
	if toastText(m) != "Client created successfully!" {
		t.Fatalf("unexpected toast %q", toastText(m))
	}
}
