package model

import (
	"fmt"
	"strings"
)

// Data is the per-type field bag of a client. It is a closed union: the only
// implementations are PersonData and CompanyData.
type Data interface {
	Kind() ClientType
	DisplayName() string
	Subtitle() string
	// Validate reports the first missing required field.
	Validate() error
	Fields() []Field
	// With returns a copy with the named field set.
	With(name, value string) (Data, error)

	isData()
}

// Field describes one editable field of a data bag.
type Field struct {
	Name     string
	Label    string
	Value    string
	Required bool
	// Options restricts the value when non-empty.
	Options []string
}

// ValidationError is a missing-required-field failure with a user-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// CompanySizes lists the allowed CompanyData.Size values.
var CompanySizes = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

type PersonData struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Company     string `json:"company,omitempty"`
	Position    string `json:"position,omitempty"`
}

func (PersonData) isData() {}

func (PersonData) Kind() ClientType { return ClientTypePerson }

func (p PersonData) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p PersonData) Subtitle() string {
	if p.Company != "" {
		return p.Company
	}
	return p.Email
}

func (p PersonData) Validate() error {
	if blank(p.FirstName) || blank(p.LastName) {
		return &ValidationError{Field: "first_name", Message: "First name and last name are required for persons"}
	}
	if blank(p.Email) {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	return nil
}

func (p PersonData) Fields() []Field {
	return []Field{
		{Name: "first_name", Label: "First name", Value: p.FirstName, Required: true},
		{Name: "last_name", Label: "Last name", Value: p.LastName, Required: true},
		{Name: "email", Label: "Email", Value: p.Email, Required: true},
		{Name: "phone", Label: "Phone", Value: p.Phone},
		{Name: "address", Label: "Address", Value: p.Address},
		{Name: "date_of_birth", Label: "Date of birth", Value: p.DateOfBirth},
		{Name: "company", Label: "Company", Value: p.Company},
		{Name: "position", Label: "Position", Value: p.Position},
	}
}

func (p PersonData) With(name, value string) (Data, error) {
	switch name {
	case "first_name":
		p.FirstName = value
	case "last_name":
		p.LastName = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "address":
		p.Address = value
	case "date_of_birth":
		p.DateOfBirth = value
	case "company":
		p.Company = value
	case "position":
		p.Position = value
	default:
		return p, fmt.Errorf("unknown person field: %s", name)
	}
	return p, nil
}

type CompanyData struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	Website       string `json:"website,omitempty"`
	Industry      string `json:"industry,omitempty"`
	Size          string `json:"size,omitempty"`
}

func (CompanyData) isData() {}

func (CompanyData) Kind() ClientType { return ClientTypeCompany }

func (c CompanyData) DisplayName() string {
	if c.CompanyName == "" {
		return "Unnamed Company"
	}
	return c.CompanyName
}

func (c CompanyData) Subtitle() string {
	if c.ContactPerson != "" {
		return c.ContactPerson
	}
	return c.Email
}

func (c CompanyData) Validate() error {
	if blank(c.CompanyName) {
		return &ValidationError{Field: "company_name", Message: "Company name is required"}
	}
	if blank(c.ContactPerson) {
		return &ValidationError{Field: "contact_person", Message: "Contact person is required for companies"}
	}
	if blank(c.Email) {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	return nil
}

func (c CompanyData) Fields() []Field {
	return []Field{
		{Name: "company_name", Label: "Company name", Value: c.CompanyName, Required: true},
		{Name: "contact_person", Label: "Contact person", Value: c.ContactPerson, Required: true},
		{Name: "email", Label: "Email", Value: c.Email, Required: true},
		{Name: "phone", Label: "Phone", Value: c.Phone},
		{Name: "address", Label: "Address", Value: c.Address},
		{Name: "website", Label: "Website", Value: c.Website},
		{Name: "industry", Label: "Industry", Value: c.Industry},
		{Name: "size", Label: "Size", Value: c.Size, Options: CompanySizes},
	}
}

func (c CompanyData) With(name, value string) (Data, error) {
	switch name {
	case "company_name":
		c.CompanyName = value
	case "contact_person":
		c.ContactPerson = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "address":
		c.Address = value
	case "website":
		c.Website = value
	case "industry":
		c.Industry = value
	case "size":
		if value != "" && !contains(CompanySizes, value) {
			return c, fmt.Errorf("invalid company size: %q (expected one of %s)", value, strings.Join(CompanySizes, ", "))
		}
		c.Size = value
	default:
		return c, fmt.Errorf("unknown company field: %s", name)
	}
	return c, nil
}

// EmptyData returns the zero data bag for typ.
func EmptyData(typ ClientType) Data {
	if typ == ClientTypeCompany {
		return CompanyData{}
	}
	return PersonData{}
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
