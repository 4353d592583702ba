package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/form"
	"github.com/dukerupert/addressbook/internal/session"
)

func TestOptions(t *testing.T) {
	candidates := address.NewCandidates([]address.Address{
		{Postcode: "1234AB", Street: "Main St", HouseNumber: "1"},
		{Postcode: "1234AB", Street: "Main St", HouseNumber: "3"},
	})

	tests := []struct {
		name     string
		selected string
		want     []bool
	}{
		{"nothing selected", "", []bool{false, false}},
		{"second selected", "1234AB-Main St-3", []bool{false, true}},
		{"unknown selection", "9999ZZ-Nowhere-1", []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := session.State{
				Fields:     form.Fields{SelectedAddress: tt.selected},
				Candidates: candidates,
			}

			opts := session.Options(state)

			require.Len(t, opts, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, opts[i].Selected, "option %d", i)
				assert.Equal(t, candidates[i].ID, opts[i].ID)
			}
			assert.Equal(t, "Main St 1, 1234AB", opts[0].Label)
		})
	}
}

func TestOptions_DuplicateIDsSelectOnlyFirst(t *testing.T) {
	dup := address.Address{Postcode: "1234AB", Street: "Main St", HouseNumber: "1"}
	state := session.State{
		Fields:     form.Fields{SelectedAddress: "1234AB-Main St-1"},
		Candidates: address.NewCandidates([]address.Address{dup, dup}),
	}

	opts := session.Options(state)

	require.Len(t, opts, 2)
	assert.True(t, opts[0].Selected)
	assert.False(t, opts[1].Selected)
}

func TestOptions_Empty(t *testing.T) {
	assert.Empty(t, session.Options(session.State{}))
}
