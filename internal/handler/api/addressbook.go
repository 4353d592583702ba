package api

import (
	"encoding/json"
	"net/http"

	"github.com/dukerupert/addressbook/internal/addressbook"
	"github.com/dukerupert/addressbook/internal/handler"
	"github.com/dukerupert/addressbook/internal/middleware"
)

// AddressBookHandler exposes the address book to scripts and other services
type AddressBookHandler struct {
	book addressbook.Book
}

// NewAddressBookHandler creates a new address book handler
func NewAddressBookHandler(book addressbook.Book) *AddressBookHandler {
	return &AddressBookHandler{book: book}
}

// List handles GET /api/addressbook
//
// Response: {"entries": [...]} in insertion order, each entry flat with the
// address fields as received from the lookup service plus id, firstName and
// lastName.
func (h *AddressBookHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.book.Entries(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if entries == nil {
		entries = []addressbook.Entry{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"entries": entries}); err != nil {
		middleware.GetLogger(r.Context()).Error("failed to encode address book", "error", err)
	}
}
