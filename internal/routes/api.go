package routes

import (
	"github.com/dukerupert/addressbook/internal/router"
)

// RegisterAPIRoutes registers read-only JSON routes. They need no session.
func RegisterAPIRoutes(r *router.Router, deps APIDeps) {
	r.Get("/api/addressbook", deps.AddressBookHandler.List)
}
