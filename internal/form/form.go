// Package form holds the text-field state behind the address finder page.
//
// The field set is fixed. Every field always has a value, the empty string by
// default, and values change only through Update or Reset.
package form

import (
	"github.com/dukerupert/addressbook/internal/domain"
)

// Field names, matching the name attributes of the page inputs.
const (
	PostCode        = "postCode"
	HouseNumber     = "houseNumber"
	FirstName       = "firstName"
	LastName        = "lastName"
	SelectedAddress = "selectedAddress"
)

// Names lists every field in display order.
var Names = []string{PostCode, HouseNumber, FirstName, LastName, SelectedAddress}

// ErrUnknownField is returned by Update for a name outside the fixed field set.
var ErrUnknownField = domain.Errorf(domain.EINVALID, "form.update", "Unknown form field")

// Fields is the flat record backing every text input and the current selection.
// The zero value is the reset state.
type Fields struct {
	PostCode        string `json:"postCode"`
	HouseNumber     string `json:"houseNumber"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	SelectedAddress string `json:"selectedAddress"`
}

// Update sets the named field to value. Other fields are left untouched and
// the value is stored as given.
func (f *Fields) Update(name, value string) error {
	p := f.field(name)
	if p == nil {
		return ErrUnknownField
	}
	*p = value
	return nil
}

// Reset restores every field to the empty string.
func (f *Fields) Reset() {
	*f = Fields{}
}

// Get returns the value of the named field and whether the name is known.
func (f *Fields) Get(name string) (string, bool) {
	p := f.field(name)
	if p == nil {
		return "", false
	}
	return *p, true
}

// Values returns the fields as a name-to-value map. All five keys are present.
func (f Fields) Values() map[string]string {
	return map[string]string{
		PostCode:        f.PostCode,
		HouseNumber:     f.HouseNumber,
		FirstName:       f.FirstName,
		LastName:        f.LastName,
		SelectedAddress: f.SelectedAddress,
	}
}

func (f *Fields) field(name string) *string {
	switch name {
	case PostCode:
		return &f.PostCode
	case HouseNumber:
		return &f.HouseNumber
	case FirstName:
		return &f.FirstName
	case LastName:
		return &f.LastName
	case SelectedAddress:
		return &f.SelectedAddress
	}
	return nil
}
