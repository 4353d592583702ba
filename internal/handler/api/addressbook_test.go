package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/addressbook"
	"github.com/dukerupert/addressbook/internal/domain"
)

type failingBook struct{}

func (failingBook) AddAddress(ctx context.Context, entry addressbook.Entry) error { return nil }
func (failingBook) Entries(ctx context.Context) ([]addressbook.Entry, error) {
	return nil, domain.Internal(errors.New("connection reset"), "addressbook.entries", "failed to list entries")
}

func TestAddressBookHandler_List(t *testing.T) {
	book := addressbook.NewMemoryBook()
	candidate := address.NewCandidate(address.Address{
		Postcode:    "1234AB",
		Street:      "Main St",
		HouseNumber: "1",
		Extra:       map[string]any{"city": "Springfield"},
	})
	require.NoError(t, book.AddAddress(context.Background(), addressbook.NewEntry(candidate, "Jane", "Doe")))

	rec := httptest.NewRecorder()
	NewAddressBookHandler(book).List(rec, httptest.NewRequest(http.MethodGet, "/api/addressbook", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	got := body.Entries[0]
	assert.Equal(t, "1234AB", got["postcode"])
	assert.Equal(t, "Main St", got["street"])
	assert.Equal(t, "1", got["houseNumber"])
	assert.Equal(t, "Springfield", got["city"])
	assert.Equal(t, "Jane", got["firstName"])
	assert.Equal(t, "Doe", got["lastName"])
	assert.Equal(t, "1234AB-Main St-1", got["id"])
}

func TestAddressBookHandler_ListEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAddressBookHandler(addressbook.NewMemoryBook()).List(rec, httptest.NewRequest(http.MethodGet, "/api/addressbook", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestAddressBookHandler_ListFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewAddressBookHandler(failingBook{}).List(rec, httptest.NewRequest(http.MethodGet, "/api/addressbook", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
