package clientform

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	calls []model.NewClient
	err   error
}

func (f *fakeCreator) CreateClient(_ context.Context, in model.NewClient) (model.Client, error) {
	f.calls = append(f.calls, in)
	if f.err != nil {
		return model.Client{}, f.err
	}
	return model.Client{ID: "new-1", Type: in.Type, Data: in.Data, Ownership: in.Ownership}, nil
}

func newForm(cr Creator, rec *notify.Recorder, onCreated func(model.Client)) *Form {
	return New(cr, Options{
		Notifier:    rec,
		CurrentUser: func() string { return "John Doe" },
		OnCreated:   onCreated,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func fill(t *testing.T, f *Form, kv ...string) {
	t.Helper()
	for i := 0; i+1 < len(kv); i += 2 {
		require.NoError(t, f.Draft.Set(kv[i], kv[i+1]), kv[i])
	}
}

func TestSubmit_MissingRequiredFieldNoRequestOneNotice(t *testing.T) {
	cases := []struct {
		name string
		typ  model.ClientType
		kv   []string
		want string
	}{
		{"person without last name", model.ClientTypePerson, []string{"first_name", "Ann", "email", "a@x", "primary_owner", "me"}, "First name and last name are required for persons"},
		{"person without email", model.ClientTypePerson, []string{"first_name", "Ann", "last_name", "Lee", "primary_owner", "me"}, "Email is required"},
		{"company without name", model.ClientTypeCompany, []string{"contact_person", "Bo", "email", "b@x", "primary_owner", "me"}, "Company name is required"},
		{"company without contact", model.ClientTypeCompany, []string{"company_name", "Acme", "email", "b@x", "primary_owner", "me"}, "Contact person is required for companies"},
		{"no primary owner", model.ClientTypePerson, []string{"first_name", "Ann", "last_name", "Lee", "email", "a@x"}, "Primary owner is required"},
		{"whitespace owner", model.ClientTypePerson, []string{"first_name", "Ann", "last_name", "Lee", "email", "a@x", "primary_owner", "   "}, "Primary owner is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cr := &fakeCreator{}
			rec := &notify.Recorder{}
			f := newForm(cr, rec, nil)
			f.Draft.SetType(tc.typ)
			fill(t, f, tc.kv...)

			_, err := f.Submit(context.Background())
			var ve *model.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Empty(t, cr.calls)
			require.Len(t, rec.Notices(), 1)
			assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
			assert.Equal(t, tc.want, rec.Notices()[0].Message)
		})
	}
}

func TestSubmit_SuccessResetsAndHandsOffNewClient(t *testing.T) {
	cr := &fakeCreator{}
	rec := &notify.Recorder{}
	var got model.Client
	f := newForm(cr, rec, func(c model.Client) { got = c })
	fill(t, f, "first_name", "Ann", "last_name", "Lee", "email", "ann@x.test", "primary_owner", "user@company.com")

	created, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "new-1", got.ID)

	require.Len(t, cr.calls, 1)
	in := cr.calls[0]
	assert.Equal(t, model.ClientTypePerson, in.Type)
	assert.Equal(t, "Ann Lee", in.Data.DisplayName())
	assert.Equal(t, "John Doe", in.Ownership.AccountManager)
	assert.NotNil(t, in.Ownership.SecondaryOwners)

	assert.Equal(t, NewDraft(), f.Draft)
	last, _ := rec.Last()
	assert.Equal(t, "Client created successfully!", last.Message)
}

func TestSubmit_TransportFailureKeepsDraft(t *testing.T) {
	cr := &fakeCreator{err: errors.New("boom")}
	rec := &notify.Recorder{}
	f := newForm(cr, rec, nil)
	fill(t, f, "first_name", "Ann", "last_name", "Lee", "email", "ann@x.test", "primary_owner", "me")

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Ann", f.Draft.Person.FirstName)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to create client", last.Message)
}

func TestDraft_TypeToggleSwapsRequiredFields(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.Set("first_name", "Ann"))
	require.NoError(t, d.Set("last_name", "Lee"))
	require.NoError(t, d.Set("email", "shared@x.test"))
	require.NoError(t, d.Set("primary_owner", "me"))
	require.NoError(t, d.Validate())

	d.SetType(model.ClientTypeCompany)
	var ve *model.ValidationError
	require.ErrorAs(t, d.Validate(), &ve)
	assert.Equal(t, "company_name", ve.Field)

	require.NoError(t, d.Set("company_name", "Acme"))
	require.NoError(t, d.Set("contact_person", "Bo"))
	require.NoError(t, d.Validate())
	assert.Equal(t, "shared@x.test", d.Company.Email)

	d.SetType(model.ClientTypePerson)
	assert.Equal(t, "Ann", d.Person.FirstName)
}

func TestDraft_ExplicitAccountManagerWins(t *testing.T) {
	d := NewDraft()
	for k, v := range map[string]string{"first_name": "A", "last_name": "B", "email": "e", "primary_owner": "o", "account_manager": "Jane"} {
		require.NoError(t, d.Set(k, v))
	}
	in, err := d.Build("John Doe")
	require.NoError(t, err)
	assert.Equal(t, "Jane", in.Ownership.AccountManager)
}

func TestDraft_RejectsUnknownRelationship(t *testing.T) {
	d := NewDraft()
	assert.Error(t, d.Set("relationship_type", "enemy"))
	assert.NoError(t, d.Set("relationship_type", "Prospect"))
	assert.Equal(t, model.RelationshipProspect, d.Ownership.RelationshipType)
}

func TestDraft_FieldsFollowType(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, "first_name", d.Fields()[0].Name)
	d.SetType(model.ClientTypeCompany)
	fs := d.Fields()
	assert.Equal(t, "company_name", fs[0].Name)
	assert.Equal(t, "relationship_type", fs[len(fs)-1].Name)
}
