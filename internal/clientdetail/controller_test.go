package clientdetail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	client model.Client
	getErr error

	updates   []model.ClientUpdate
	updateErr error
	deleted   []string
	notes     []string
	tracking  []api.TrackingInput
	spURL     string
	spErr     error
}

func (f *fakeTransport) GetClient(_ context.Context, id string) (model.Client, error) {
	if f.getErr != nil {
		return model.Client{}, f.getErr
	}
	return f.client.Clone(), nil
}

func (f *fakeTransport) UpdateClient(_ context.Context, id string, u model.ClientUpdate) (model.Client, error) {
	f.updates = append(f.updates, u)
	if f.updateErr != nil {
		return model.Client{}, f.updateErr
	}
	c := f.client.Clone()
	c.Data = u.Data
	c.QuickBooks = *u.QuickBooks
	c.Credentials = *u.Credentials
	c.Ownership = *u.Ownership
	f.client = c
	return c.Clone(), nil
}

func (f *fakeTransport) DeleteClient(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTransport) AddNote(_ context.Context, id, content string) (model.Note, error) {
	f.notes = append(f.notes, content)
	n := model.Note{ID: "n", Content: content}
	f.client.Notes = append(f.client.Notes, n)
	return n, nil
}

func (f *fakeTransport) AddTrackingEntry(_ context.Context, id string, in api.TrackingInput) (model.TrackingEntry, error) {
	f.tracking = append(f.tracking, in)
	e := model.TrackingEntry{ID: "t", ActivityType: in.ActivityType, Description: in.Description}
	f.client.Tracking = append(f.client.Tracking, e)
	return e, nil
}

func (f *fakeTransport) SharePointURL(_ context.Context, id string) (string, error) {
	return f.spURL, f.spErr
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func sample() model.Client {
	return model.Client{
		ID:         "c-1",
		Type:       model.ClientTypePerson,
		Data:       model.PersonData{FirstName: "Ann", LastName: "Lee", Email: "ann@x.test"},
		QuickBooks: model.QuickBooks{CustomerID: "QB-1", CreditLimit: model.NewMoney(decimal.NewFromInt(500))},
		Ownership:  model.Ownership{PrimaryOwner: "owner", SecondaryOwners: []string{"a"}},
		Notes:      []model.Note{{ID: "n0", Content: "first"}},
	}
}

func loadedController(t *testing.T, tr *fakeTransport, opts Options) *Controller {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = quiet()
	}
	c := NewController(New(tr.client.ID), tr, opts)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, PhaseViewing, c.State.Phase())
	return c
}

func TestEditThenCancel_RestoresDisplayedRecord(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})
	before := c.State.Displayed()

	require.NoError(t, c.Edit())
	require.NoError(t, c.State.SetDataField("first_name", "Changed"))
	require.NoError(t, c.State.SetQuickBooksField("credit_limit", "99"))
	require.NoError(t, c.State.SetOwnershipField("secondary_owners", "x, y"))
	assert.Equal(t, "Changed Lee", c.State.Displayed().DisplayName())

	c.Cancel()
	assert.Equal(t, PhaseViewing, c.State.Phase())
	if diff := cmp.Diff(before, c.State.Displayed()); diff != "" {
		t.Fatalf("displayed record changed after cancel (-before +after):\n%s", diff)
	}
	assert.Empty(t, tr.updates)
}

func TestEdit_BufferIsDeepCopy(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})
	require.NoError(t, c.Edit())
	require.NoError(t, c.State.SetOwnershipField("secondary_owners", "z"))
	assert.Equal(t, []string{"a"}, c.State.Client().Ownership.SecondaryOwners)
}

func TestSave_SendsBufferAndReturnsToViewing(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	rec := &notify.Recorder{}
	var updated model.Client
	c := loadedController(t, tr, Options{Notifier: rec, Hooks: Hooks{OnUpdated: func(cl model.Client) { updated = cl }}})

	require.NoError(t, c.Edit())
	require.NoError(t, c.State.SetDataField("email", "new@x.test"))
	require.NoError(t, c.State.SetOwnershipField("relationship_type", "prospect"))
	require.NoError(t, c.Save(context.Background()))

	require.Len(t, tr.updates, 1)
	u := tr.updates[0]
	assert.Equal(t, model.ClientTypePerson, u.Type)
	assert.Equal(t, "new@x.test", u.Data.(model.PersonData).Email)
	assert.Equal(t, model.RelationshipProspect, u.Ownership.RelationshipType)
	assert.Equal(t, "QB-1", u.QuickBooks.CustomerID)

	assert.Equal(t, PhaseViewing, c.State.Phase())
	assert.Equal(t, "new@x.test", c.State.Client().Data.(model.PersonData).Email)
	assert.Equal(t, "c-1", updated.ID)
	last, _ := rec.Last()
	assert.Equal(t, "Client updated successfully", last.Message)
}

func TestSave_FailureKeepsEditing(t *testing.T) {
	tr := &fakeTransport{client: sample(), updateErr: errors.New("boom")}
	rec := &notify.Recorder{}
	c := loadedController(t, tr, Options{Notifier: rec})

	require.NoError(t, c.Edit())
	require.NoError(t, c.State.SetDataField("phone", "555"))
	require.Error(t, c.Save(context.Background()))
	assert.True(t, c.State.Editing())
	assert.Equal(t, "555", c.State.Displayed().Data.(model.PersonData).Phone)
	last, _ := rec.Last()
	assert.Equal(t, notify.LevelError, last.Level)
}

func TestSave_NotEditingIsError(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})
	assert.ErrorIs(t, c.Save(context.Background()), ErrNotEditing)
}

func TestAddNote_WhitespaceOnlyMakesNoRequest(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})
	c.State.SetNoteDraft("   \n\t ")

	added, err := c.AddNote(context.Background())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, tr.notes)
	assert.Len(t, c.State.Client().Notes, 1)
}

func TestAddNote_TrimsClearsDraftAndReloads(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})
	c.State.SetNoteDraft("  called back  ")

	added, err := c.AddNote(context.Background())
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"called back"}, tr.notes)
	assert.Empty(t, c.State.NoteDraft())
	assert.Len(t, c.State.Client().Notes, 2)
}

func TestAddTracking_RequiresTypeAndDescription(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{})

	c.State.SetTrackingDraft(TrackingDraft{ActivityType: model.ActivityCall})
	added, err := c.AddTracking(context.Background())
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, tr.tracking)

	c.State.SetTrackingDraft(TrackingDraft{ActivityType: model.ActivityMeeting, Description: "kickoff", Outcome: " signed "})
	added, err = c.AddTracking(context.Background())
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, tr.tracking, 1)
	assert.Equal(t, "signed", tr.tracking[0].Outcome)
	assert.Len(t, c.State.Client().Tracking, 1)
	assert.Equal(t, TrackingDraft{}, c.State.TrackingDraft())
}

func TestLoad_NotFoundNavigatesBack(t *testing.T) {
	tr := &fakeTransport{client: model.Client{ID: "gone"}, getErr: &api.StatusError{Code: 404}}
	rec := &notify.Recorder{}
	wentBack := false
	c := NewController(New("gone"), tr, Options{Notifier: rec, Logger: quiet(), Hooks: Hooks{OnBack: func() { wentBack = true }}})

	err := c.Load(context.Background())
	require.ErrorIs(t, err, api.ErrNotFound)
	assert.True(t, wentBack)
	assert.Equal(t, PhaseClosed, c.State.Phase())
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
}

func TestDelete_ConfirmedNotifiesUpwardAndGoesBack(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	var removed string
	wentBack := false
	var prompt string
	c := loadedController(t, tr, Options{
		Confirmer: notify.ConfirmFunc(func(p string) bool { prompt = p; return true }),
		Hooks: Hooks{
			OnDeleted: func(id string) { removed = id },
			OnBack:    func() { wentBack = true },
		},
	})

	deleted, err := c.Delete(context.Background())
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, "c-1", removed)
	assert.True(t, wentBack)
	assert.Equal(t, "Are you sure you want to delete Ann Lee? This action cannot be undone.", prompt)
}

func TestDelete_DeclinedStays(t *testing.T) {
	tr := &fakeTransport{client: sample()}
	c := loadedController(t, tr, Options{Confirmer: notify.ConfirmFunc(func(string) bool { return false })})
	deleted, err := c.Delete(context.Background())
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, tr.deleted)
	assert.Equal(t, PhaseViewing, c.State.Phase())
}

func TestOpenDocuments(t *testing.T) {
	tr := &fakeTransport{client: sample(), spURL: "https://mock.sharepoint.com/Client_c-1_Ann_Lee"}
	rec := &notify.Recorder{}
	var opened string
	c := loadedController(t, tr, Options{Notifier: rec, Opener: OpenerFunc(func(u string) error { opened = u; return nil })})

	u, err := c.OpenDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tr.spURL, u)
	assert.Equal(t, tr.spURL, opened)

	tr.spErr = errors.New("boom")
	_, err = c.OpenDocuments(context.Background())
	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to open SharePoint", last.Message)
}
