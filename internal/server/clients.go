package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"greenlight-cli/internal/bus"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "timestamp": s.cfg.Now()})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(r, "limit", store.DefaultListLimit)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	skip, err := intParam(r, "skip", 0)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	cq := store.ClientQuery{Search: q.Get("search"), Limit: limit, Skip: skip}
	// Unknown client_type values are ignored rather than rejected.
	if t, err := model.ParseClientType(q.Get("client_type")); err == nil {
		cq.Type = t
	}
	clients, err := s.db.ListClients(r.Context(), cq)
	if err != nil {
		s.internalError(w, r, "list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.db.GetClient(r.Context(), r.PathValue("id"))
	if err != nil {
		s.storeError(w, r, "get client", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// folderURL names the SharePoint folder after the client: company name, or
// "first last" for persons, spaces replaced by underscores.
func (s *Server) folderURL(id string, d model.Data) string {
	name := ""
	switch v := d.(type) {
	case model.CompanyData:
		name = v.CompanyName
	case model.PersonData:
		name = v.FirstName + " " + v.LastName
	}
	return s.cfg.SharePointBase + "/Client_" + id + "_" + strings.ReplaceAll(name, " ", "_")
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var in model.NewClient
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if in.Data == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "data is required")
		return
	}
	if err := in.Data.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if strings.TrimSpace(in.Ownership.PrimaryOwner) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Primary owner is required")
		return
	}

	now := s.cfg.Now()
	c := model.Client{
		ID:        s.cfg.NewID(),
		Type:      in.Type,
		Data:      in.Data,
		Ownership: in.Ownership,
		Notes:     []model.Note{},
		Tracking:  []model.TrackingEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Ownership.SecondaryOwners == nil {
		c.Ownership.SecondaryOwners = []string{}
	}
	c.Documents.SharePointFolderURL = s.folderURL(c.ID, c.Data)

	if err := s.db.InsertClient(r.Context(), c); err != nil {
		s.internalError(w, r, "insert client", err)
		return
	}
	s.publishClient(r, bus.ClientCreated, c)
	writeJSON(w, http.StatusOK, c)
}

var errTypeChange = errors.New("client type cannot be changed")

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	var u model.ClientUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	updated, err := s.db.UpdateClient(r.Context(), r.PathValue("id"), func(c *model.Client) error {
		if u.Type != "" && u.Type != c.Type {
			return errTypeChange
		}
		if u.Data != nil {
			c.Data = u.Data
		}
		if u.QuickBooks != nil {
			c.QuickBooks = *u.QuickBooks
		}
		if u.Credentials != nil {
			c.Credentials = *u.Credentials
		}
		if u.Ownership != nil {
			c.Ownership = *u.Ownership
		}
		c.UpdatedAt = s.cfg.Now()
		return nil
	})
	if errors.Is(err, errTypeChange) {
		writeDetail(w, http.StatusBadRequest, "Client type cannot be changed")
		return
	}
	if err != nil {
		s.storeError(w, r, "update client", err)
		return
	}
	s.publishClient(r, bus.ClientUpdated, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.db.DeleteClient(r.Context(), id); err != nil {
		s.storeError(w, r, "delete client", err)
		return
	}
	s.publish(r.Context(), bus.Event{Kind: bus.ClientDeleted, ClientID: id})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Client deleted successfully"})
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	content := r.URL.Query().Get("note_content")
	if strings.TrimSpace(content) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "note_content is required")
		return
	}
	p, _ := PrincipalFromContext(r.Context())
	note := model.Note{
		ID:        s.cfg.NewID(),
		Content:   content,
		CreatedBy: createdBy(p),
		CreatedAt: s.cfg.Now(),
		Tags:      []string{},
	}
	id := r.PathValue("id")
	_, err := s.db.UpdateClient(r.Context(), id, func(c *model.Client) error {
		c.Notes = append(c.Notes, note)
		return nil
	})
	if err != nil {
		s.storeError(w, r, "add note", err)
		return
	}
	s.publish(r.Context(), bus.Event{Kind: bus.NoteAdded, ClientID: id, Payload: mustJSON(note)})
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleAddTracking(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	at := model.ActivityType(strings.ToLower(strings.TrimSpace(q.Get("activity_type"))))
	if at == "" || !at.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "activity_type must be one of call, email, meeting, proposal, contract, payment, other")
		return
	}
	desc := q.Get("description")
	if strings.TrimSpace(desc) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "description is required")
		return
	}
	p, _ := PrincipalFromContext(r.Context())
	entry := model.TrackingEntry{
		ID:           s.cfg.NewID(),
		ActivityType: at,
		Description:  desc,
		Outcome:      q.Get("outcome"),
		CreatedBy:    createdBy(p),
		CreatedAt:    s.cfg.Now(),
	}
	id := r.PathValue("id")
	_, err := s.db.UpdateClient(r.Context(), id, func(c *model.Client) error {
		c.Tracking = append(c.Tracking, entry)
		return nil
	})
	if err != nil {
		s.storeError(w, r, "add tracking entry", err)
		return
	}
	s.publish(r.Context(), bus.Event{Kind: bus.TrackingAdded, ClientID: id, Payload: mustJSON(entry)})
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleSharePointURL(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := s.db.GetClient(r.Context(), id)
	if err != nil {
		s.storeError(w, r, "sharepoint url", err)
		return
	}
	u := c.Documents.SharePointFolderURL
	if u == "" {
		u = s.folderURL(id, c.Data)
	}
	writeJSON(w, http.StatusOK, map[string]string{"sharepoint_url": u})
}

func createdBy(p Principal) string {
	if p.Email == "" {
		return "unknown"
	}
	return p.Email
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func (s *Server) publishClient(r *http.Request, kind bus.Kind, c model.Client) {
	s.publish(r.Context(), bus.Event{Kind: kind, ClientID: c.ID, Payload: mustJSON(c)})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Client not found")
		return
	}
	s.internalError(w, r, op, err)
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.log.ErrorContext(r.Context(), op, "err", err)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}
