package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type ClientType string

const (
	ClientTypePerson  ClientType = "person"
	ClientTypeCompany ClientType = "company"
)

func ParseClientType(s string) (ClientType, error) {
	switch ClientType(strings.ToLower(strings.TrimSpace(s))) {
	case ClientTypePerson:
		return ClientTypePerson, nil
	case ClientTypeCompany:
		return ClientTypeCompany, nil
	default:
		return "", fmt.Errorf("invalid client type: %q (expected person|company)", s)
	}
}

// RelationshipType is optional; the zero value means "unset".
type RelationshipType string

const (
	RelationshipProspect RelationshipType = "prospect"
	RelationshipActive   RelationshipType = "active"
	RelationshipDormant  RelationshipType = "dormant"
	RelationshipPartner  RelationshipType = "partner"
	RelationshipVendor   RelationshipType = "vendor"
)

var RelationshipTypes = []RelationshipType{
	RelationshipProspect,
	RelationshipActive,
	RelationshipDormant,
	RelationshipPartner,
	RelationshipVendor,
}

func (r RelationshipType) Valid() bool {
	if r == "" {
		return true
	}
	for _, v := range RelationshipTypes {
		if v == r {
			return true
		}
	}
	return false
}

type ActivityType string

const (
	ActivityCall     ActivityType = "call"
	ActivityEmail    ActivityType = "email"
	ActivityMeeting  ActivityType = "meeting"
	ActivityProposal ActivityType = "proposal"
	ActivityContract ActivityType = "contract"
	ActivityPayment  ActivityType = "payment"
	ActivityOther    ActivityType = "other"
)

var ActivityTypes = []ActivityType{
	ActivityCall,
	ActivityEmail,
	ActivityMeeting,
	ActivityProposal,
	ActivityContract,
	ActivityPayment,
	ActivityOther,
}

func (a ActivityType) Valid() bool {
	for _, v := range ActivityTypes {
		if v == a {
			return true
		}
	}
	return false
}

type QuickBooks struct {
	CustomerID     string `json:"customer_id,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
	PaymentTerms   string `json:"payment_terms,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
	CreditLimit    *Money `json:"credit_limit,omitempty"`
	AccountBalance *Money `json:"account_balance,omitempty"`
}

func (q QuickBooks) Clone() QuickBooks {
	out := q
	if q.CreditLimit != nil {
		v := *q.CreditLimit
		out.CreditLimit = &v
	}
	if q.AccountBalance != nil {
		v := *q.AccountBalance
		out.AccountBalance = &v
	}
	return out
}

type Documents struct {
	SharePointFolderURL string   `json:"sharepoint_folder_url,omitempty"`
	DocumentCategories  []string `json:"document_categories"`
	AccessPermissions   []string `json:"access_permissions"`
}

// Credentials is carried through updates untouched; nothing edits it yet.
type Credentials struct {
	LoginPortals []map[string]string `json:"login_portals"`
	APIKeys      []map[string]string `json:"api_keys"`
	Certificates []map[string]string `json:"certificates"`
}

// cloneStrings keeps nil and empty distinct.
func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMaps(in []map[string]string) []map[string]string {
	if in == nil {
		return nil
	}
	out := make([]map[string]string, len(in))
	for i, m := range in {
		cp := make(map[string]string, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

func (c Credentials) Clone() Credentials {
	return Credentials{
		LoginPortals: cloneMaps(c.LoginPortals),
		APIKeys:      cloneMaps(c.APIKeys),
		Certificates: cloneMaps(c.Certificates),
	}
}

type Ownership struct {
	PrimaryOwner     string           `json:"primary_owner"`
	SecondaryOwners  []string         `json:"secondary_owners"`
	Department       string           `json:"department,omitempty"`
	AccountManager   string           `json:"account_manager,omitempty"`
	RelationshipType RelationshipType `json:"relationship_type,omitempty"`
}

func (o Ownership) Clone() Ownership {
	out := o
	out.SecondaryOwners = cloneStrings(o.SecondaryOwners)
	return out
}

type Note struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
}

type TrackingEntry struct {
	ID           string       `json:"id"`
	ActivityType ActivityType `json:"activity_type"`
	Description  string       `json:"description"`
	Outcome      string       `json:"outcome,omitempty"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Client is one CRM record. Data is either PersonData or CompanyData and always
// matches Type.
type Client struct {
	ID          string
	Type        ClientType
	Data        Data
	QuickBooks  QuickBooks
	Documents   Documents
	Credentials Credentials
	Ownership   Ownership
	Notes       []Note
	Tracking    []TrackingEntry
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c Client) DisplayName() string {
	if c.Data == nil {
		return ""
	}
	return c.Data.DisplayName()
}

func (c Client) Subtitle() string {
	if c.Data == nil {
		return ""
	}
	return c.Data.Subtitle()
}

// Clone returns a deep copy; mutating the copy never affects c.
func (c Client) Clone() Client {
	out := c
	out.QuickBooks = c.QuickBooks.Clone()
	out.Credentials = c.Credentials.Clone()
	out.Ownership = c.Ownership.Clone()
	out.Documents.DocumentCategories = cloneStrings(c.Documents.DocumentCategories)
	out.Documents.AccessPermissions = cloneStrings(c.Documents.AccessPermissions)
	if c.Notes != nil {
		out.Notes = make([]Note, len(c.Notes))
		for i, n := range c.Notes {
			n.Tags = cloneStrings(n.Tags)
			out.Notes[i] = n
		}
	}
	if c.Tracking != nil {
		out.Tracking = make([]TrackingEntry, len(c.Tracking))
		copy(out.Tracking, c.Tracking)
	}
	return out
}

type clientWire struct {
	ID          string          `json:"id"`
	Type        ClientType      `json:"type"`
	Data        json.RawMessage `json:"data"`
	QuickBooks  QuickBooks      `json:"quickbooks"`
	Documents   Documents       `json:"documents"`
	Credentials Credentials     `json:"credentials"`
	Ownership   Ownership       `json:"ownership"`
	Notes       []Note          `json:"notes"`
	Tracking    []TrackingEntry `json:"tracking"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c Client) MarshalJSON() ([]byte, error) {
	data, typ, err := marshalData(c.Type, c.Data)
	if err != nil {
		return nil, err
	}
	notes := c.Notes
	if notes == nil {
		notes = []Note{}
	}
	tracking := c.Tracking
	if tracking == nil {
		tracking = []TrackingEntry{}
	}
	return json.Marshal(clientWire{
		ID:          c.ID,
		Type:        typ,
		Data:        data,
		QuickBooks:  c.QuickBooks,
		Documents:   c.Documents,
		Credentials: c.Credentials,
		Ownership:   c.Ownership,
		Notes:       notes,
		Tracking:    tracking,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
}

func (c *Client) UnmarshalJSON(b []byte) error {
	var w clientWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := UnmarshalData(w.Type, w.Data)
	if err != nil {
		return err
	}
	*c = Client{
		ID:          w.ID,
		Type:        w.Type,
		Data:        data,
		QuickBooks:  w.QuickBooks,
		Documents:   w.Documents,
		Credentials: w.Credentials,
		Ownership:   w.Ownership,
		Notes:       w.Notes,
		Tracking:    w.Tracking,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	return nil
}

var ErrTypeMismatch = errors.New("client data does not match client type")

func marshalData(typ ClientType, d Data) (json.RawMessage, ClientType, error) {
	if d == nil {
		return json.RawMessage("{}"), typ, nil
	}
	if typ != "" && typ != d.Kind() {
		return nil, "", fmt.Errorf("%w: type %s, data %s", ErrTypeMismatch, typ, d.Kind())
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, "", err
	}
	return b, d.Kind(), nil
}

// UnmarshalData decodes a data bag for the given client type.
func UnmarshalData(typ ClientType, raw json.RawMessage) (Data, error) {
	empty := len(raw) == 0 || string(raw) == "null"
	switch typ {
	case ClientTypePerson:
		var p PersonData
		if !empty {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, fmt.Errorf("decode person data: %w", err)
			}
		}
		return p, nil
	case ClientTypeCompany:
		var co CompanyData
		if !empty {
			if err := json.Unmarshal(raw, &co); err != nil {
				return nil, fmt.Errorf("decode company data: %w", err)
			}
		}
		return co, nil
	default:
		return nil, fmt.Errorf("invalid client type: %q", typ)
	}
}

// NewClient is the create payload.
type NewClient struct {
	Type      ClientType
	Data      Data
	Ownership Ownership
}

type newClientWire struct {
	Type      ClientType      `json:"type"`
	Data      json.RawMessage `json:"data"`
	Ownership Ownership       `json:"ownership"`
}

func (n NewClient) MarshalJSON() ([]byte, error) {
	data, typ, err := marshalData(n.Type, n.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(newClientWire{Type: typ, Data: data, Ownership: n.Ownership})
}

func (n *NewClient) UnmarshalJSON(b []byte) error {
	var w newClientWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	data, err := UnmarshalData(w.Type, w.Data)
	if err != nil {
		return err
	}
	*n = NewClient{Type: w.Type, Data: data, Ownership: w.Ownership}
	return nil
}

// ClientUpdate is the save payload; nil fields are left unchanged by the server.
type ClientUpdate struct {
	Type        ClientType
	Data        Data
	QuickBooks  *QuickBooks
	Credentials *Credentials
	Ownership   *Ownership
}

type clientUpdateWire struct {
	Type        ClientType      `json:"type,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	QuickBooks  *QuickBooks     `json:"quickbooks,omitempty"`
	Credentials *Credentials    `json:"credentials,omitempty"`
	Ownership   *Ownership      `json:"ownership,omitempty"`
}

func (u ClientUpdate) MarshalJSON() ([]byte, error) {
	w := clientUpdateWire{
		Type:        u.Type,
		QuickBooks:  u.QuickBooks,
		Credentials: u.Credentials,
		Ownership:   u.Ownership,
	}
	if u.Data != nil {
		data, typ, err := marshalData(u.Type, u.Data)
		if err != nil {
			return nil, err
		}
		w.Data = data
		w.Type = typ
	}
	return json.Marshal(w)
}

func (u *ClientUpdate) UnmarshalJSON(b []byte) error {
	var w clientUpdateWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := ClientUpdate{
		Type:        w.Type,
		QuickBooks:  w.QuickBooks,
		Credentials: w.Credentials,
		Ownership:   w.Ownership,
	}
	if len(w.Data) > 0 && string(w.Data) != "null" {
		if w.Type == "" {
			return errors.New("update with data requires a type")
		}
		data, err := UnmarshalData(w.Type, w.Data)
		if err != nil {
			return err
		}
		out.Data = data
	}
	*u = out
	return nil
}
