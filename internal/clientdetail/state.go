// Package clientdetail is the view-state for one client: the loaded record,
// an edit buffer, the active sub-tab and the note/tracking drafts.
package clientdetail

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"greenlight-cli/internal/api"
	"greenlight-cli/internal/model"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseViewing
	PhaseEditing
	// PhaseClosed follows a delete or a failed load; the surface navigates away.
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseViewing:
		return "viewing"
	case PhaseEditing:
		return "editing"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type SubTab string

const (
	TabData        SubTab = "data"
	TabQuickBooks  SubTab = "quickbooks"
	TabDocuments   SubTab = "documents"
	TabCredentials SubTab = "credentials"
	TabNotes       SubTab = "notes"
	TabTracking    SubTab = "tracking"
	TabOwnership   SubTab = "ownership"
)

var SubTabs = []SubTab{TabData, TabQuickBooks, TabDocuments, TabCredentials, TabNotes, TabTracking, TabOwnership}

func (t SubTab) Label() string {
	switch t {
	case TabData:
		return "Client Data"
	case TabQuickBooks:
		return "QuickBooks"
	case TabDocuments:
		return "Documents"
	case TabCredentials:
		return "Credentials"
	case TabNotes:
		return "Notes"
	case TabTracking:
		return "Tracking"
	case TabOwnership:
		return "Ownership"
	default:
		return string(t)
	}
}

var (
	ErrNotLoaded          = errors.New("client not loaded")
	ErrNotEditing         = errors.New("not in edit mode")
	ErrTrackingIncomplete = errors.New("activity type and description are required")
)

// Buffer is the editable copy of a client. Notes and tracking are never part of it.
type Buffer struct {
	Data        model.Data
	QuickBooks  model.QuickBooks
	Credentials model.Credentials
	Ownership   model.Ownership
}

func bufferOf(c model.Client) Buffer {
	cp := c.Clone()
	return Buffer{Data: cp.Data, QuickBooks: cp.QuickBooks, Credentials: cp.Credentials, Ownership: cp.Ownership}
}

type TrackingDraft struct {
	ActivityType model.ActivityType
	Description  string
	Outcome      string
}

type State struct {
	mu sync.Mutex

	id     string
	phase  Phase
	client model.Client
	buf    Buffer
	tab    SubTab

	noteDraft     string
	trackingDraft TrackingDraft
}

func New(id string) *State {
	return &State{id: id, phase: PhaseLoading, tab: TabData}
}

func (s *State) ID() string { return s.id }

func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *State) Tab() SubTab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func (s *State) SetTab(t SubTab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = t
}

// Loaded installs a fetched record. A reload while editing keeps the buffer.
func (s *State) Loaded(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c.Clone()
	if s.phase != PhaseEditing {
		s.buf = bufferOf(s.client)
		s.phase = PhaseViewing
	}
}

func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseClosed
}

// Client is the canonical (last saved or loaded) record.
func (s *State) Client() model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client.Clone()
}

// Displayed is what the surface renders: the buffer overlaid on the canonical
// record while editing, the canonical record otherwise.
func (s *State) Displayed() model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.client.Clone()
	if s.phase == PhaseEditing {
		b := s.buf
		out.Data = b.Data
		out.QuickBooks = b.QuickBooks
		out.Credentials = b.Credentials
		out.Ownership = b.Ownership
		out = out.Clone()
	}
	return out
}

// Edit enters edit mode with a fresh deep copy of the canonical record.
func (s *State) Edit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case PhaseEditing:
		return nil
	case PhaseViewing:
		s.buf = bufferOf(s.client)
		s.phase = PhaseEditing
		return nil
	default:
		return ErrNotLoaded
	}
}

// Cancel discards the buffer unconditionally.
func (s *State) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEditing {
		return
	}
	s.buf = bufferOf(s.client)
	s.phase = PhaseViewing
}

func (s *State) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase == PhaseEditing
}

func (s *State) SetDataField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEditing {
		return ErrNotEditing
	}
	if s.buf.Data == nil {
		s.buf.Data = model.EmptyData(s.client.Type)
	}
	d, err := s.buf.Data.With(name, value)
	if err != nil {
		return err
	}
	s.buf.Data = d
	return nil
}

var QuickBooksFields = []model.Field{
	{Name: "customer_id", Label: "Customer ID"},
	{Name: "payment_terms", Label: "Payment terms"},
	{Name: "tax_id", Label: "Tax ID"},
	{Name: "credit_limit", Label: "Credit limit"},
	{Name: "account_balance", Label: "Account balance"},
	{Name: "billing_address", Label: "Billing address"},
}

func QuickBooksValue(q model.QuickBooks, name string) string {
	switch name {
	case "customer_id":
		return q.CustomerID
	case "payment_terms":
		return q.PaymentTerms
	case "tax_id":
		return q.TaxID
	case "credit_limit":
		return q.CreditLimit.Display()
	case "account_balance":
		return q.AccountBalance.Display()
	case "billing_address":
		return q.BillingAddress
	}
	return ""
}

func (s *State) SetQuickBooksField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEditing {
		return ErrNotEditing
	}
	q := &s.buf.QuickBooks
	switch name {
	case "customer_id":
		q.CustomerID = value
	case "payment_terms":
		q.PaymentTerms = value
	case "tax_id":
		q.TaxID = value
	case "billing_address":
		q.BillingAddress = value
	case "credit_limit", "account_balance":
		m, err := model.ParseMoney(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if name == "credit_limit" {
			q.CreditLimit = m
		} else {
			q.AccountBalance = m
		}
	default:
		return fmt.Errorf("unknown quickbooks field: %s", name)
	}
	return nil
}

var OwnershipFields = []model.Field{
	{Name: "primary_owner", Label: "Primary owner", Required: true},
	{Name: "department", Label: "Department"},
	{Name: "account_manager", Label: "Account manager"},
	{Name: "relationship_type", Label: "Relationship type"},
	{Name: "secondary_owners", Label: "Secondary owners"},
}

func OwnershipValue(o model.Ownership, name string) string {
	switch name {
	case "primary_owner":
		return o.PrimaryOwner
	case "department":
		return o.Department
	case "account_manager":
		return o.AccountManager
	case "relationship_type":
		return string(o.RelationshipType)
	case "secondary_owners":
		return strings.Join(o.SecondaryOwners, ", ")
	}
	return ""
}

// ApplyOwnershipField sets one ownership field on o.
func ApplyOwnershipField(o *model.Ownership, name, value string) error {
	switch name {
	case "primary_owner":
		o.PrimaryOwner = value
	case "department":
		o.Department = value
	case "account_manager":
		o.AccountManager = value
	case "relationship_type":
		rt := model.RelationshipType(strings.ToLower(strings.TrimSpace(value)))
		if !rt.Valid() {
			return fmt.Errorf("invalid relationship type: %q", value)
		}
		o.RelationshipType = rt
	case "secondary_owners":
		o.SecondaryOwners = splitList(value)
	default:
		return fmt.Errorf("unknown ownership field: %s", name)
	}
	return nil
}

func (s *State) SetOwnershipField(name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEditing {
		return ErrNotEditing
	}
	return ApplyOwnershipField(&s.buf.Ownership, name, value)
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SavePayload is the update body: type, data, quickbooks, credentials and ownership only.
func (s *State) SavePayload() (model.ClientUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseEditing {
		return model.ClientUpdate{}, ErrNotEditing
	}
	b := s.buf
	qb := b.QuickBooks.Clone()
	cr := b.Credentials.Clone()
	own := b.Ownership.Clone()
	return model.ClientUpdate{
		Type:        s.client.Type,
		Data:        b.Data,
		QuickBooks:  &qb,
		Credentials: &cr,
		Ownership:   &own,
	}, nil
}

// Saved installs the server's response and returns to viewing.
func (s *State) Saved(c model.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = c.Clone()
	s.buf = bufferOf(s.client)
	s.phase = PhaseViewing
}

func (s *State) NoteDraft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteDraft
}

func (s *State) SetNoteDraft(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteDraft = v
}

// NoteToSubmit returns the trimmed draft; ok is false when there is nothing to send.
func (s *State) NoteToSubmit() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := strings.TrimSpace(s.noteDraft)
	return v, v != ""
}

func (s *State) ClearNoteDraft() { s.SetNoteDraft("") }

func (s *State) TrackingDraft() TrackingDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackingDraft
}

func (s *State) SetTrackingDraft(d TrackingDraft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackingDraft = d
}

func (s *State) TrackingToSubmit() (api.TrackingInput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.trackingDraft
	desc := strings.TrimSpace(d.Description)
	if d.ActivityType == "" || desc == "" {
		return api.TrackingInput{}, ErrTrackingIncomplete
	}
	if !d.ActivityType.Valid() {
		return api.TrackingInput{}, fmt.Errorf("invalid activity type: %q", d.ActivityType)
	}
	return api.TrackingInput{ActivityType: d.ActivityType, Description: desc, Outcome: strings.TrimSpace(d.Outcome)}, nil
}

func (s *State) ClearTrackingDraft() { s.SetTrackingDraft(TrackingDraft{}) }
