package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"greenlight-cli/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedClient(t *testing.T, db *DB, id string, data model.Data, created time.Time) model.Client {
	t.Helper()
	c := model.Client{
		ID:        id,
		Type:      data.Kind(),
		Data:      data,
		Ownership: model.Ownership{PrimaryOwner: "owner@company.com"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := db.InsertClient(context.Background(), c); err != nil {
		t.Fatalf("InsertClient(%s): %v", id, err)
	}
	return c
}

func TestListClients_NewestFirstWithFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedClient(t, db, "c-1", model.PersonData{FirstName: "Ann", LastName: "Lee", Email: "ann@x.test"}, base)
	seedClient(t, db, "c-2", model.CompanyData{CompanyName: "Acme 100%", ContactPerson: "Bo", Email: "bo@acme.test"}, base.Add(time.Hour))
	seedClient(t, db, "c-3", model.PersonData{FirstName: "Cy", LastName: "Ng", Email: "cy@x.test"}, base.Add(2*time.Hour))

	all, err := db.ListClients(ctx, ClientQuery{})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(all) != 3 || all[0].ID != "c-3" || all[2].ID != "c-1" {
		t.Fatalf("expected newest first, got %v", ids(all))
	}

	people, err := db.ListClients(ctx, ClientQuery{Type: model.ClientTypePerson})
	if err != nil {
		t.Fatalf("ListClients(person): %v", err)
	}
	if len(people) != 2 {
		t.Fatalf("expected 2 persons, got %v", ids(people))
	}

	hits, err := db.ListClients(ctx, ClientQuery{Search: "ANN"})
	if err != nil {
		t.Fatalf("ListClients(search): %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "c-1" {
		t.Fatalf("expected c-1, got %v", ids(hits))
	}

	// LIKE wildcards in the term are literal.
	pct, err := db.ListClients(ctx, ClientQuery{Search: "100%"})
	if err != nil {
		t.Fatalf("ListClients(100%%): %v", err)
	}
	if len(pct) != 1 || pct[0].ID != "c-2" {
		t.Fatalf("expected c-2, got %v", ids(pct))
	}

	page, err := db.ListClients(ctx, ClientQuery{Limit: 1, Skip: 1})
	if err != nil {
		t.Fatalf("ListClients(page): %v", err)
	}
	if len(page) != 1 || page[0].ID != "c-2" {
		t.Fatalf("expected c-2 on page 2, got %v", ids(page))
	}
}

func TestUpdateClient_AppendNoteIsSearchable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	seedClient(t, db, "c-1", model.PersonData{FirstName: "Ann", LastName: "Lee", Email: "ann@x.test"}, time.Now())

	_, err := db.UpdateClient(ctx, "c-1", func(c *model.Client) error {
		c.Notes = append(c.Notes, model.Note{ID: "n-1", Content: "Renewal in March"})
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateClient: %v", err)
	}

	hits, err := db.ListClients(ctx, ClientQuery{Search: "renewal"})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if len(hits) != 1 || len(hits[0].Notes) != 1 {
		t.Fatalf("expected note match, got %#v", hits)
	}
}

func TestUpdateClient_FnErrorRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)
	seedClient(t, db, "c-1", model.PersonData{FirstName: "Ann", LastName: "Lee", Email: "ann@x.test"}, time.Now())

	boom := errors.New("boom")
	_, err := db.UpdateClient(ctx, "c-1", func(c *model.Client) error {
		c.Ownership.PrimaryOwner = "someone-else"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, err := db.GetClient(ctx, "c-1")
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Ownership.PrimaryOwner != "owner@company.com" {
		t.Fatalf("expected unchanged owner, got %q", got.Ownership.PrimaryOwner)
	}
}

func TestGetAndDeleteClient_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.GetClient(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetClient: expected ErrNotFound, got %v", err)
	}
	if err := db.DeleteClient(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteClient: expected ErrNotFound, got %v", err)
	}

	seedClient(t, db, "c-1", model.CompanyData{CompanyName: "Acme"}, time.Now())
	if err := db.DeleteClient(ctx, "c-1"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	if _, err := db.GetClient(ctx, "c-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted client to be gone, got %v", err)
	}
}

func TestKV_SetGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openTestDB(t)

	if _, ok, err := db.Get(ctx, "auth_token"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := db.Set(ctx, "auth_token", "a"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set(ctx, "auth_token", "b"); err != nil {
		t.Fatalf("Set (overwrite): %v", err)
	}
	v, ok, err := db.Get(ctx, "auth_token")
	if err != nil || !ok || v != "b" {
		t.Fatalf("Get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := db.Delete(ctx, "auth_token", "user_data"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := db.Get(ctx, "auth_token"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func ids(cs []model.Client) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
