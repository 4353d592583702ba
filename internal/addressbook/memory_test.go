package addressbook_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/addressbook"
)

func mainStreet() address.Candidate {
	return address.NewCandidate(address.Address{Postcode: "1234AB", Street: "Main St", HouseNumber: "1"})
}

func TestNewEntry(t *testing.T) {
	entry := addressbook.NewEntry(mainStreet(), "Jane", "Doe")

	want := addressbook.Entry{
		ID:        "1234AB-Main St-1",
		Address:   address.Address{Postcode: "1234AB", Street: "Main St", HouseNumber: "1"},
		FirstName: "Jane",
		LastName:  "Doe",
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("NewEntry() mismatch (-want +got):\n%s", diff)
	}
}

func TestEntry_FullName(t *testing.T) {
	assert.Equal(t, "Jane Doe", addressbook.Entry{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane", addressbook.Entry{FirstName: "Jane"}.FullName())
	assert.Equal(t, "Doe", addressbook.Entry{LastName: "Doe"}.FullName())
	assert.Equal(t, "", addressbook.Entry{}.FullName())
}

func TestEntry_MarshalJSON(t *testing.T) {
	entry := addressbook.NewEntry(mainStreet(), "Jane", "Doe")

	out, err := json.Marshal(entry)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "1234AB-Main St-1",
		"postcode": "1234AB",
		"street": "Main St",
		"houseNumber": "1",
		"firstName": "Jane",
		"lastName": "Doe"
	}`, string(out))
}

func TestMemoryBook_AddAndList(t *testing.T) {
	ctx := context.Background()
	book := addressbook.NewMemoryBook()

	require.NoError(t, book.AddAddress(ctx, addressbook.NewEntry(mainStreet(), "Jane", "Doe")))
	require.NoError(t, book.AddAddress(ctx, addressbook.NewEntry(mainStreet(), "", "")))

	entries, err := book.Entries(ctx)
	require.NoError(t, err)

	want := []addressbook.Entry{
		addressbook.NewEntry(mainStreet(), "Jane", "Doe"),
		addressbook.NewEntry(mainStreet(), "", ""),
	}
	if diff := cmp.Diff(want, entries, cmpopts.IgnoreFields(addressbook.Entry{}, "CreatedAt")); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
	for _, e := range entries {
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestMemoryBook_EntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	book := addressbook.NewMemoryBook()

	c := mainStreet()
	c.Extra = map[string]any{"city": "Springfield"}
	entry := addressbook.NewEntry(c, "Jane", "Doe")
	require.NoError(t, book.AddAddress(ctx, entry))

	// Mutating the caller's copy or a listed copy leaves the stored entry alone.
	entry.Address.Extra["city"] = "Shelbyville"
	listed, _ := book.Entries(ctx)
	listed[0].FirstName = "John"
	listed[0].Address.Extra["city"] = "Capital City"

	again, _ := book.Entries(ctx)
	assert.Equal(t, "Jane", again[0].FirstName)
	assert.Equal(t, "Springfield", again[0].Address.Extra["city"])
}

func TestMemoryBook_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	book := addressbook.NewMemoryBook()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = book.AddAddress(ctx, addressbook.NewEntry(mainStreet(), "Jane", "Doe"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, book.Len())
}
