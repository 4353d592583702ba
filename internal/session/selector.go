package session

import "github.com/dukerupert/addressbook/internal/address"

// Option is one choice in the candidate radio group.
type Option struct {
	ID       string
	Label    string
	Address  address.Address
	Selected bool
}

// Options renders the candidate list as a single-select group. At most one
// option is selected: the first whose id matches the current selection.
func Options(s State) []Option {
	opts := make([]Option, len(s.Candidates))
	selected := s.Fields.SelectedAddress == ""
	for i, c := range s.Candidates {
		opts[i] = Option{
			ID:      c.ID,
			Label:   address.Format(c.Address),
			Address: c.Address,
		}
		if !selected && c.ID == s.Fields.SelectedAddress {
			opts[i].Selected = true
			selected = true
		}
	}
	return opts
}

// HasSelection reports whether a selection is set, which gates the
// personal-info form.
func (s State) HasSelection() bool {
	return s.Fields.SelectedAddress != ""
}
