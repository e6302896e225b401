// Package clientform is the create-client form: a person/company draft plus
// ownership metadata, required-field validation and submission.
package clientform

import (
	"context"
	"log/slog"
	"strings"

	"greenlight-cli/internal/clientdetail"
	"greenlight-cli/internal/model"
	"greenlight-cli/internal/notify"
)

// Draft holds both data bags so toggling the type keeps what was typed.
// Email is shared between them.
type Draft struct {
	Type      model.ClientType
	Person    model.PersonData
	Company   model.CompanyData
	Ownership model.Ownership
}

func NewDraft() Draft {
	return Draft{Type: model.ClientTypePerson}
}

func (d *Draft) SetType(t model.ClientType) { d.Type = t }

// Data is the bag for the current type.
func (d Draft) Data() model.Data {
	if d.Type == model.ClientTypeCompany {
		return d.Company
	}
	return d.Person
}

func isOwnershipField(name string) bool {
	for _, f := range clientdetail.OwnershipFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Set assigns a field of the current type's bag or of the ownership block.
func (d *Draft) Set(name, value string) error {
	if isOwnershipField(name) {
		return clientdetail.ApplyOwnershipField(&d.Ownership, name, value)
	}
	if name == "email" {
		d.Person.Email = value
		d.Company.Email = value
		return nil
	}
	nd, err := d.Data().With(name, value)
	if err != nil {
		return err
	}
	switch v := nd.(type) {
	case model.PersonData:
		d.Person = v
	case model.CompanyData:
		d.Company = v
	}
	return nil
}

// Fields lists the data fields of the current type followed by the ownership fields.
func (d Draft) Fields() []model.Field {
	out := d.Data().Fields()
	for _, f := range clientdetail.OwnershipFields {
		if f.Name == "secondary_owners" {
			continue
		}
		f.Value = clientdetail.OwnershipValue(d.Ownership, f.Name)
		if f.Name == "relationship_type" {
			f.Options = relationshipOptions()
		}
		out = append(out, f)
	}
	return out
}

func relationshipOptions() []string {
	out := []string{""}
	for _, r := range model.RelationshipTypes {
		out = append(out, string(r))
	}
	return out
}

// Validate returns the first failing required-field check.
func (d Draft) Validate() error {
	if err := d.Data().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Ownership.PrimaryOwner) == "" {
		return &model.ValidationError{Field: "primary_owner", Message: "Primary owner is required"}
	}
	return nil
}

// Build returns the create payload. An empty account manager defaults to defaultManager.
func (d Draft) Build(defaultManager string) (model.NewClient, error) {
	if err := d.Validate(); err != nil {
		return model.NewClient{}, err
	}
	own := d.Ownership.Clone()
	if strings.TrimSpace(own.AccountManager) == "" {
		own.AccountManager = defaultManager
	}
	if own.SecondaryOwners == nil {
		own.SecondaryOwners = []string{}
	}
	return model.NewClient{Type: d.Type, Data: d.Data(), Ownership: own}, nil
}

type Creator interface {
	CreateClient(ctx context.Context, in model.NewClient) (model.Client, error)
}

// Form couples a Draft with submission. OnCreated prepends the new row to the
// list and navigates there.
type Form struct {
	Draft Draft

	creator     Creator
	notifier    notify.Notifier
	currentUser func() string
	onCreated   func(c model.Client)
	log         *slog.Logger
}

type Options struct {
	Notifier notify.Notifier
	// CurrentUser returns the signed-in user's name for the account manager default.
	CurrentUser func() string
	OnCreated   func(c model.Client)
	Logger      *slog.Logger
}

func New(c Creator, opts Options) *Form {
	f := &Form{
		Draft:       NewDraft(),
		creator:     c,
		notifier:    opts.Notifier,
		currentUser: opts.CurrentUser,
		onCreated:   opts.OnCreated,
		log:         opts.Logger,
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	return f
}

func (f *Form) Reset() { f.Draft = NewDraft() }

// Submit validates, creates and resets. A validation failure produces exactly
// one error notice and no request.
func (f *Form) Submit(ctx context.Context) (model.Client, error) {
	if err := f.Draft.Validate(); err != nil {
		notify.Error(f.notifier, err.Error())
		return model.Client{}, err
	}
	manager := ""
	if f.currentUser != nil {
		manager = f.currentUser()
	}
	in, err := f.Draft.Build(manager)
	if err != nil {
		notify.Error(f.notifier, err.Error())
		return model.Client{}, err
	}
	created, err := f.creator.CreateClient(ctx, in)
	if err != nil {
		f.log.Error("create client", "err", err)
		notify.Error(f.notifier, "Failed to create client")
		return model.Client{}, err
	}
	f.Reset()
	notify.Success(f.notifier, "Client created successfully!")
	if f.onCreated != nil {
		f.onCreated(created)
	}
	return created, nil
}
