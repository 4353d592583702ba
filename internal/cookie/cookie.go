// Package cookie provides the cookie helpers used for the finder session and
// the CSRF token.
package cookie

import (
	"net/http"
	"time"
)

// Cookie names used throughout the application.
const (
	// SessionCookieName carries the finder session id.
	SessionCookieName = "addressbook_session"

	// CSRFCookieName stores the CSRF token for form protection.
	CSRFCookieName = "addressbook_csrf"
)

// Config holds cookie configuration.
type Config struct {
	// Domain scopes cookies. Empty means host-only cookies, which is what a
	// single-host deployment wants.
	Domain string

	// Secure determines whether cookies require HTTPS.
	// Should be true in production, false in development.
	Secure bool
}

// NewConfig creates a new cookie configuration.
func NewConfig(domain string, secure bool) *Config {
	return &Config{Domain: domain, Secure: secure}
}

// SetSession sets an HttpOnly, SameSite=Lax cookie on path "/".
func (c *Config) SetSession(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetReadable sets a cookie that page scripts may read, such as the CSRF
// token htmx echoes back in a header.
func (c *Config) SetReadable(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Domain:   c.Domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: false,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Get retrieves a cookie value from the request.
// Returns empty string if cookie not found.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
