// Package addressbook stores the entries composed on the finder page.
//
// The finder only appends and reads; how entries are kept is up to the Book
// implementation. MemoryBook keeps them for the life of the process,
// PostgresBook persists them.
package addressbook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dukerupert/addressbook/internal/address"
)

// Book is the address book collaborator.
type Book interface {
	// AddAddress appends an entry. The book owns the entry afterwards.
	AddAddress(ctx context.Context, entry Entry) error

	// Entries returns the accumulated entries in insertion order.
	Entries(ctx context.Context) ([]Entry, error)
}

// Entry is a selected address plus the personal details entered for it.
type Entry struct {
	// ID is the candidate id the entry was created from.
	ID        string
	Address   address.Address
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// NewEntry composes an entry from a selected candidate.
// Names are taken as given; empty names are allowed.
func NewEntry(c address.Candidate, firstName, lastName string) Entry {
	return Entry{
		ID:        c.ID,
		Address:   c.Address.Clone(),
		FirstName: firstName,
		LastName:  lastName,
	}
}

// FullName joins first and last name with a single space.
func (e Entry) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// MarshalJSON renders the entry flat, the way the address fields arrive from
// the lookup service, with the personal fields alongside.
func (e Entry) MarshalJSON() ([]byte, error) {
	m := e.Address.Fields()
	m["id"] = e.ID
	m["firstName"] = e.FirstName
	m["lastName"] = e.LastName
	if !e.CreatedAt.IsZero() {
		m["createdAt"] = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	return json.Marshal(m)
}

func (e Entry) clone() Entry {
	e.Address = e.Address.Clone()
	return e
}
