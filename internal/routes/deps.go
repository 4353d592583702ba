package routes

import (
	"github.com/dukerupert/addressbook/internal/cookie"
	"github.com/dukerupert/addressbook/internal/handler/api"
	"github.com/dukerupert/addressbook/internal/handler/finder"
	"github.com/dukerupert/addressbook/internal/middleware"
	"github.com/dukerupert/addressbook/internal/session"
)

// FinderDeps contains dependencies for the finder page routes
type FinderDeps struct {
	Handler *finder.Handler

	// Sessions holds one finder controller per browser
	Sessions *session.Store
	Cookies  *cookie.Config

	// LookupLimiter throttles POST /lookup, which calls the lookup service
	LookupLimiter *middleware.RateLimiter
}

// APIDeps contains dependencies for JSON API routes
type APIDeps struct {
	AddressBookHandler *api.AddressBookHandler
}
