package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/bus"
	"greenlight-cli/internal/clientlist"
	"greenlight-cli/internal/logger"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"
	"greenlight-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu     sync.Mutex
	events []bus.Event
}

func (b *recordingBus) Publish(_ context.Context, e bus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
	return nil
}

func (b *recordingBus) HealthCheck(context.Context) error { return nil }

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) kinds() []bus.Kind {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bus.Kind, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Kind)
	}
	return out
}

type fixture struct {
	srv *httptest.Server
	api *api.Client
	bus *recordingBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "greenlight.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rb := &recordingBus{}
	n := 0
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, err := NewServer(Config{
		DB:     db,
		Bus:    rb,
		Logger: logger.Discard(),
		Tokens: NewStaticTokens("mock-token"),
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	require.NoError(t, err)

	hs := httptest.NewServer(s.Handler())
	t.Cleanup(hs.Close)
	return &fixture{
		srv: hs,
		api: api.New(hs.URL, api.StaticToken("mock-token"), api.WithLogger(logger.Discard())),
		bus: rb,
	}
}

func annLee() model.NewClient {
	return model.NewClient{
		Type:      model.ClientTypePerson,
		Data:      model.PersonData{FirstName: "Ann", LastName: "Lee", Email: "ann@x.test", Phone: "555-0100"},
		Ownership: model.Ownership{PrimaryOwner: "user@company.com", AccountManager: "John Doe"},
	}
}

func TestAuth_RejectsMissingAndUnknownTokens(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.srv.URL + "/api/clients")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	bad := api.New(f.srv.URL, api.StaticToken("nope"), api.WithLogger(logger.Discard()))
	_, err = bad.ListClients(context.Background(), api.ListParams{})
	require.ErrorIs(t, err, api.ErrUnauthorized)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Invalid authentication credentials", se.Detail)
}

func TestHealth_NoAuthNeeded(t *testing.T) {
	f := newFixture(t)
	anon := api.New(f.srv.URL, nil, api.WithLogger(logger.Discard()))
	h, err := anon.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h.Status)
}

func TestCreate_AssignsIdentityAndFolder(t *testing.T) {
	f := newFixture(t)
	c, err := f.api.CreateClient(context.Background(), annLee())
	require.NoError(t, err)

	assert.Equal(t, "id-1", c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
	assert.Equal(t, "https://mock.sharepoint.com/Client_id-1_Ann_Lee", c.Documents.SharePointFolderURL)
	assert.Empty(t, c.Notes)

	got, err := f.api.GetClient(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.DisplayName())
	assert.Equal(t, []bus.Kind{bus.ClientCreated}, f.bus.kinds())
}

func TestCreate_RequiresFields(t *testing.T) {
	f := newFixture(t)
	in := annLee()
	in.Ownership.PrimaryOwner = " "
	_, err := f.api.CreateClient(context.Background(), in)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Equal(t, "Primary owner is required", se.Detail)

	in = annLee()
	in.Data = model.PersonData{FirstName: "Ann", Email: "a@x"}
	_, err = f.api.CreateClient(context.Background(), in)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "First name and last name are required for persons", se.Detail)
}

func TestGet_UnknownIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.api.GetClient(context.Background(), "missing")
	require.ErrorIs(t, err, api.ErrNotFound)
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Client not found", se.Detail)

	require.ErrorIs(t, f.api.DeleteClient(context.Background(), "missing"), api.ErrNotFound)
}

func TestList_SearchTypeAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.api.CreateClient(ctx, annLee())
	require.NoError(t, err)
	_, err = f.api.CreateClient(ctx, model.NewClient{
		Type:      model.ClientTypeCompany,
		Data:      model.CompanyData{CompanyName: "Acme Corp", ContactPerson: "Bo", Email: "bo@acme.test"},
		Ownership: model.Ownership{PrimaryOwner: "me"},
	})
	require.NoError(t, err)

	all, err := f.api.ListClients(ctx, api.ListParams{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme Corp", all[0].DisplayName())

	companies, err := f.api.ListClients(ctx, api.ListParams{Type: "company"})
	require.NoError(t, err)
	require.Len(t, companies, 1)

	hits, err := f.api.ListClients(ctx, api.ListParams{Search: "ACME"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, model.ClientTypeCompany, hits[0].Type)

	page, err := f.api.ListClients(ctx, api.ListParams{Limit: 1, Skip: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Ann Lee", page[0].DisplayName())
}

func TestUpdate_ReplacesPresentFieldsAndKeepsType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.api.CreateClient(ctx, annLee())
	require.NoError(t, err)

	own := c.Ownership
	own.RelationshipType = model.RelationshipProspect
	updated, err := f.api.UpdateClient(ctx, c.ID, model.ClientUpdate{Type: c.Type, Ownership: &own})
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipProspect, updated.Ownership.RelationshipType)
	assert.Equal(t, "Ann Lee", updated.DisplayName())
	assert.True(t, updated.UpdatedAt.After(c.UpdatedAt))

	body := strings.NewReader(`{"type":"company","data":{"company_name":"X","contact_person":"Y","email":"z"}}`)
	req, err := http.NewRequest(http.MethodPut, f.srv.URL+"/api/clients/"+c.ID, body)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer mock-token")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotesAndTracking_AppendWithAuthor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.api.CreateClient(ctx, annLee())
	require.NoError(t, err)

	n, err := f.api.AddNote(ctx, c.ID, "renewal due in **May**")
	require.NoError(t, err)
	assert.Equal(t, "user@company.com", n.CreatedBy)

	e, err := f.api.AddTrackingEntry(ctx, c.ID, api.TrackingInput{ActivityType: model.ActivityCall, Description: "intro", Outcome: "follow up"})
	require.NoError(t, err)
	assert.Equal(t, "follow up", e.Outcome)

	_, err = f.api.AddTrackingEntry(ctx, c.ID, api.TrackingInput{ActivityType: "fax", Description: "x"})
	var se *api.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)

	got, err := f.api.GetClient(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Notes, 1)
	require.Len(t, got.Tracking, 1)

	hits, err := f.api.ListClients(ctx, api.ListParams{Search: "renewal"})
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = f.api.AddNote(ctx, "missing", "x")
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, []bus.Kind{bus.ClientCreated, bus.NoteAdded, bus.TrackingAdded}, f.bus.kinds())
}

func TestSharePointURL(t *testing.T) {
	f := newFixture(t)
	c, err := f.api.CreateClient(context.Background(), annLee())
	require.NoError(t, err)
	u, err := f.api.SharePointURL(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Documents.SharePointFolderURL, u)
}

func TestMicrosoftExchange(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Post(f.srv.URL+"/api/auth/microsoft?token=mock-microsoft-token", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out exchangeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "mock-token", out.AccessToken)
	assert.Equal(t, "user@company.com", out.User.Email)

	resp2, err := http.Post(f.srv.URL+"/api/auth/microsoft?token=other", "application/json", nil)
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestEndToEnd_CreateListDeleteDecrementsCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rec := &notify.Recorder{}
	list := clientlist.NewController(clientlist.New(), f.api, rec, notify.Always, logger.Discard())

	_, err := list.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, list.State.Counts()[clientlist.TabIndividual])

	created, err := f.api.CreateClient(ctx, annLee())
	require.NoError(t, err)
	list.State.Insert(created)

	_, err = list.Refresh(ctx)
	require.NoError(t, err)
	visible := list.State.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "Ann Lee", visible[0].DisplayName())
	counts := list.State.Counts()
	assert.Equal(t, 1, counts[clientlist.TabIndividual])
	assert.Equal(t, 1, counts[clientlist.TabActive])

	deleted, err := list.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, found := list.State.Find(created.ID)
	assert.False(t, found)
	counts = list.State.Counts()
	assert.Equal(t, 0, counts[clientlist.TabIndividual])
	assert.Equal(t, 0, counts[clientlist.TabActive])

	_, err = f.api.GetClient(ctx, created.ID)
	assert.ErrorIs(t, err, api.ErrNotFound)
	last, _ := rec.Last()
	assert.Equal(t, "Client deleted successfully", last.Message)
}
