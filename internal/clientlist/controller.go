package clientlist

import (
	"context"
	"fmt"
	"log/slog"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"
)

type Transport interface {
	ListClients(ctx context.Context, p api.ListParams) ([]model.Client, error)
	DeleteClient(ctx context.Context, id string) error
}

// Controller runs list operations against a Transport and reports outcomes
// through a Notifier.
type Controller struct {
	State     *State
	transport Transport
	notifier  notify.Notifier
	confirmer notify.Confirmer
	log       *slog.Logger
}

func NewController(st *State, t Transport, n notify.Notifier, c notify.Confirmer, log *slog.Logger) *Controller {
	if st == nil {
		st = New()
	}
	if c == nil {
		c = notify.Always
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{State: st, transport: t, notifier: n, confirmer: c, log: log}
}

// Refresh fetches with the current search and type filter. A response that
// arrives after a newer Refresh started is discarded; applied reports whether
// this call's result was installed.
func (c *Controller) Refresh(ctx context.Context) (applied bool, err error) {
	seq, q := c.State.BeginFetch()
	clients, err := c.transport.ListClients(ctx, api.ListParams{
		Search: q.Search,
		Type:   string(q.Type),
		Limit:  q.Limit,
		Skip:   q.Skip,
	})
	if err != nil {
		if c.State.FailFetch(seq) {
			c.log.Error("list clients", "err", err)
			notify.Error(c.notifier, "Failed to load clients")
		}
		return false, err
	}
	applied = c.State.ApplyFetch(seq, clients)
	if !applied {
		c.log.Debug("list clients: dropped stale response", "seq", seq)
	}
	return applied, nil
}

// Delete asks for confirmation, then deletes. deleted is false when the user declined.
func (c *Controller) Delete(ctx context.Context, id string) (deleted bool, err error) {
	cl, ok := c.State.Find(id)
	name := id
	if ok {
		name = cl.DisplayName()
	}
	if !c.confirmer.Confirm(notify.DeletePrompt(name)) {
		return false, nil
	}
	if err := c.DeleteConfirmed(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteConfirmed deletes without asking and drops the row locally on success.
func (c *Controller) DeleteConfirmed(ctx context.Context, id string) error {
	if err := c.transport.DeleteClient(ctx, id); err != nil {
		c.log.Error("delete client", "id", id, "err", err)
		notify.Error(c.notifier, "Failed to delete client")
		return err
	}
	c.State.Remove(id)
	notify.Success(c.notifier, "Client deleted successfully")
	return nil
}

// DeleteSelected deletes every selected row after a single confirmation.
// It stops at the first failure and returns how many were deleted.
func (c *Controller) DeleteSelected(ctx context.Context) (int, error) {
	ids := c.State.Selected()
	if len(ids) == 0 {
		return 0, nil
	}
	what := fmt.Sprintf("%d clients", len(ids))
	if len(ids) == 1 {
		if cl, ok := c.State.Find(ids[0]); ok {
			what = cl.DisplayName()
		}
	}
	if !c.confirmer.Confirm(notify.DeletePrompt(what)) {
		return 0, nil
	}
	n := 0
	for _, id := range ids {
		if err := c.DeleteConfirmed(ctx, id); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
