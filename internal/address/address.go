package address

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Lookuper defines the interface for postcode lookups.
// Implementations talk to a remote address service; the service is
// authoritative for input format, so callers pass values through unvalidated.
type Lookuper interface {
	// Lookup returns the addresses matching a postcode and house number.
	// Service-reported failures are returned as *ServiceError (wrapped in a
	// domain error); anything else that prevents a usable answer is reported
	// as a fetch failure.
	Lookup(ctx context.Context, postcode, houseNumber string) ([]Address, error)
}

// Address is a raw address as returned by the lookup service.
// Fields beyond postcode, street and houseNumber are kept verbatim in Extra.
type Address struct {
	Postcode    string
	Street      string
	HouseNumber string
	Extra       map[string]any
}

// Candidate is an Address decorated with the identifier used to select it.
type Candidate struct {
	Address
	ID string
}

// CandidateID derives the selection identifier for an address.
// Two addresses with the same postcode, street and number share an id.
func CandidateID(a Address) string {
	return a.Postcode + "-" + a.Street + "-" + a.HouseNumber
}

// NewCandidate attaches the derived id to an address.
func NewCandidate(a Address) Candidate {
	return Candidate{Address: a, ID: CandidateID(a)}
}

// NewCandidates converts a lookup result into selectable candidates,
// preserving order. Duplicate ids are not removed.
func NewCandidates(addrs []Address) []Candidate {
	out := make([]Candidate, len(addrs))
	for i, a := range addrs {
		out[i] = NewCandidate(a)
	}
	return out
}

// Find returns the candidate with the given id.
func Find(candidates []Candidate, id string) (Candidate, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

// Format renders an address on one line: "Main St 1, 1234AB".
// A city supplied by the lookup service is appended when present.
func Format(a Address) string {
	line := strings.TrimSpace(a.Street + " " + a.HouseNumber)
	parts := []string{}
	if line != "" {
		parts = append(parts, line)
	}
	if a.Postcode != "" {
		parts = append(parts, a.Postcode)
	}
	if city, ok := a.Extra["city"].(string); ok && city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// Clone returns a copy of the address that shares no map with the original.
func (a Address) Clone() Address {
	if a.Extra != nil {
		extra := make(map[string]any, len(a.Extra))
		for k, v := range a.Extra {
			extra[k] = v
		}
		a.Extra = extra
	}
	return a
}

// Fields returns the address as a flat map, the shape the lookup service uses.
func (a Address) Fields() map[string]any {
	m := make(map[string]any, len(a.Extra)+3)
	for k, v := range a.Extra {
		m[k] = v
	}
	m["postcode"] = a.Postcode
	m["street"] = a.Street
	m["houseNumber"] = a.HouseNumber
	return m
}

// MarshalJSON flattens Extra into the object alongside the known fields.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Fields())
}

// UnmarshalJSON accepts the lookup service shape. Numeric values are kept as
// json.Number so they survive a round trip unchanged.
func (a *Address) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*a = FromMap(raw)
	return nil
}

// MarshalJSON adds the derived id to the flattened address.
func (c Candidate) MarshalJSON() ([]byte, error) {
	m := c.Address.Fields()
	m["id"] = c.ID
	return json.Marshal(m)
}

// FromMap builds an Address from a decoded JSON or YAML object.
// Missing known fields become empty strings; non-string scalars are formatted.
func FromMap(raw map[string]any) Address {
	var a Address
	if raw == nil {
		return a
	}
	a.Postcode = scalar(raw["postcode"])
	a.Street = scalar(raw["street"])
	a.HouseNumber = scalar(raw["houseNumber"])
	for k, v := range raw {
		switch k {
		case "postcode", "street", "houseNumber":
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]any)
		}
		a.Extra[k] = v
	}
	return a
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
