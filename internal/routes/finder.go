package routes

import (
	"github.com/dukerupert/addressbook/internal/middleware"
	"github.com/dukerupert/addressbook/internal/router"
)

// RegisterFinderRoutes registers the finder page and its form posts.
// These routes carry a session and require a CSRF token on every post.
func RegisterFinderRoutes(r *router.Router, deps FinderDeps) {
	pages := r.Group(
		middleware.MaxBodySize(middleware.FormMaxBodySize),
		middleware.CSRF(deps.Cookies),
		middleware.Sessions(deps.Sessions, deps.Cookies),
	)

	pages.Get("/{$}", deps.Handler.Page)
	pages.Post("/select", deps.Handler.Select)
	pages.Post("/person", deps.Handler.Person)
	pages.Post("/clear", deps.Handler.Clear)

	if deps.LookupLimiter != nil {
		pages.Post("/lookup", deps.Handler.Lookup, deps.LookupLimiter.Middleware)
	} else {
		pages.Post("/lookup", deps.Handler.Lookup)
	}
}
