package clientdetail

import (
	"context"
	"errors"
	"log/slog"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"
)

type Transport interface {
	GetClient(ctx context.Context, id string) (model.Client, error)
	UpdateClient(ctx context.Context, id string, u model.ClientUpdate) (model.Client, error)
	DeleteClient(ctx context.Context, id string) error
	AddNote(ctx context.Context, id, content string) (model.Note, error)
	AddTrackingEntry(ctx context.Context, id string, in api.TrackingInput) (model.TrackingEntry, error)
	SharePointURL(ctx context.Context, id string) (string, error)
}

// Opener hands a URL to the OS (browser).
type Opener interface {
	Open(url string) error
}

type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// Hooks keep the owning list in sync without a shared cache. Any may be nil.
type Hooks struct {
	OnUpdated func(c model.Client)
	OnDeleted func(id string)
	OnBack    func()
}

type Controller struct {
	State *State

	transport Transport
	notifier  notify.Notifier
	confirmer notify.Confirmer
	opener    Opener
	hooks     Hooks
	log       *slog.Logger
}

type Options struct {
	Notifier  notify.Notifier
	Confirmer notify.Confirmer
	Opener    Opener
	Hooks     Hooks
	Logger    *slog.Logger
}

func NewController(st *State, t Transport, opts Options) *Controller {
	c := &Controller{
		State:     st,
		transport: t,
		notifier:  opts.Notifier,
		confirmer: opts.Confirmer,
		opener:    opts.Opener,
		hooks:     opts.Hooks,
		log:       opts.Logger,
	}
	if c.confirmer == nil {
		c.confirmer = notify.Always
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

func (c *Controller) back() {
	c.State.Close()
	if c.hooks.OnBack != nil {
		c.hooks.OnBack()
	}
}

// Load fetches the record. Any failure (including 404) notifies and navigates back.
func (c *Controller) Load(ctx context.Context) error {
	cl, err := c.transport.GetClient(ctx, c.State.ID())
	if err != nil {
		c.log.Error("load client", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to load client")
		c.back()
		return err
	}
	c.State.Loaded(cl)
	return nil
}

// reload refreshes after an append; failures notify but stay on the page.
func (c *Controller) reload(ctx context.Context) {
	cl, err := c.transport.GetClient(ctx, c.State.ID())
	if err != nil {
		c.log.Error("reload client", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to load client")
		return
	}
	c.State.Loaded(cl)
	if c.hooks.OnUpdated != nil {
		c.hooks.OnUpdated(cl)
	}
}

func (c *Controller) Edit() error { return c.State.Edit() }

func (c *Controller) Cancel() { c.State.Cancel() }

// Save sends the edit buffer. On failure the page stays in edit mode with the buffer intact.
func (c *Controller) Save(ctx context.Context) error {
	payload, err := c.State.SavePayload()
	if err != nil {
		return err
	}
	if payload.Data != nil {
		if err := payload.Data.Validate(); err != nil {
			notify.Error(c.notifier, err.Error())
			return err
		}
	}
	updated, err := c.transport.UpdateClient(ctx, c.State.ID(), payload)
	if err != nil {
		c.log.Error("update client", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to update client")
		return err
	}
	c.State.Saved(updated)
	if c.hooks.OnUpdated != nil {
		c.hooks.OnUpdated(updated)
	}
	notify.Success(c.notifier, "Client updated successfully")
	return nil
}

// Delete asks for confirmation first; deleted is false when the user declined.
func (c *Controller) Delete(ctx context.Context) (deleted bool, err error) {
	name := c.State.Client().DisplayName()
	if name == "" {
		name = "this client"
	}
	if !c.confirmer.Confirm(notify.DeletePrompt(name)) {
		return false, nil
	}
	if err := c.DeleteConfirmed(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Controller) DeleteConfirmed(ctx context.Context) error {
	id := c.State.ID()
	if err := c.transport.DeleteClient(ctx, id); err != nil {
		c.log.Error("delete client", "id", id, "err", err)
		notify.Error(c.notifier, "Failed to delete client")
		return err
	}
	if c.hooks.OnDeleted != nil {
		c.hooks.OnDeleted(id)
	}
	notify.Success(c.notifier, "Client deleted successfully")
	c.back()
	return nil
}

// AddNote sends the note draft. A blank draft is a no-op: added is false and
// no request is made.
func (c *Controller) AddNote(ctx context.Context) (added bool, err error) {
	content, ok := c.State.NoteToSubmit()
	if !ok {
		return false, nil
	}
	if _, err := c.transport.AddNote(ctx, c.State.ID(), content); err != nil {
		c.log.Error("add note", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to add note")
		return false, err
	}
	c.State.ClearNoteDraft()
	c.reload(ctx)
	notify.Success(c.notifier, "Note added successfully")
	return true, nil
}

// AddTracking sends the tracking draft. An incomplete draft is a no-op.
func (c *Controller) AddTracking(ctx context.Context) (added bool, err error) {
	in, err := c.State.TrackingToSubmit()
	if errors.Is(err, ErrTrackingIncomplete) {
		return false, nil
	}
	if err != nil {
		notify.Error(c.notifier, err.Error())
		return false, err
	}
	if _, err := c.transport.AddTrackingEntry(ctx, c.State.ID(), in); err != nil {
		c.log.Error("add tracking entry", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to add tracking entry")
		return false, err
	}
	c.State.ClearTrackingDraft()
	c.reload(ctx)
	notify.Success(c.notifier, "Tracking entry added successfully")
	return true, nil
}

// DocumentsURL fetches the SharePoint folder link.
func (c *Controller) DocumentsURL(ctx context.Context) (string, error) {
	u, err := c.transport.SharePointURL(ctx, c.State.ID())
	if err != nil {
		c.log.Error("sharepoint url", "id", c.State.ID(), "err", err)
		notify.Error(c.notifier, "Failed to open SharePoint")
		return "", err
	}
	return u, nil
}

// OpenDocuments fetches the SharePoint link and opens it. No retry on failure.
func (c *Controller) OpenDocuments(ctx context.Context) (string, error) {
	u, err := c.DocumentsURL(ctx)
	if err != nil {
		return "", err
	}
	if c.opener == nil {
		notify.Info(c.notifier, u)
		return u, nil
	}
	if err := c.opener.Open(u); err != nil {
		c.log.Error("open sharepoint", "url", u, "err", err)
		notify.Error(c.notifier, "Failed to open SharePoint")
		return u, err
	}
	notify.Success(c.notifier, "Opening SharePoint documents...")
	return u, nil
}
