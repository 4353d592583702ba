package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/addressbook/internal/cookie"
	"github.com/dukerupert/addressbook/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
})

func TestRequestID(t *testing.T) {
	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{"generated when missing", "", false},
		{"kept from proxy", "lb-1234", true},
		{"replaced when it has spaces", "bad id", false},
		{"replaced when too long", strings.Repeat("a", 200), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(RequestIDHeader, tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.inbound, seen)
			} else {
				assert.NotEqual(t, tt.inbound, seen)
			}
		})
	}
}

func TestGetClientIP_IgnoresProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	req.Header.Set("X-Real-IP", "10.0.0.2")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.Equal(t, "198.51.100.4", GetClientIP(req))
}

func TestClientIPBehind(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)
	keyFunc := ClientIPBehind(trusted)

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"untrusted peer headers ignored", "198.51.100.4:1", "203.0.113.7", "203.0.113.8", "198.51.100.4"},
		{"trusted peer forwarded for", "10.1.2.3:1", "203.0.113.7", "", "203.0.113.7"},
		{"spoofed leftmost hop skipped", "10.1.2.3:1", "1.2.3.4, 203.0.113.7, 10.9.9.9", "", "203.0.113.7"},
		{"single trusted ip", "192.0.2.1:1", "203.0.113.7", "", "203.0.113.7"},
		{"trusted peer real ip", "10.1.2.3:1", "", "203.0.113.8", "203.0.113.8"},
		{"trusted peer no headers", "10.1.2.3:1", "", "", "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, keyFunc(req))
		})
	}
}

func TestClientIPBehind_NoTrustedProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")

	assert.Equal(t, "198.51.100.4", ClientIPBehind(nil)(req))
}

func TestParseTrustedProxies_Invalid(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/8", "proxy.local"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proxy.local")
}

func TestRateLimiter_Middleware_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := rl.Middleware(okHandler)

	for i, xff := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
		req.RemoteAddr = "198.51.100.4:5555"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i == 0 {
			assert.Equal(t, http.StatusOK, rec.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code, "a new X-Forwarded-For value must not reset the limit")
		}
	}
}

func newTestStore() *session.Store {
	return session.NewStore(func(id string) *session.Controller {
		return session.NewController(session.Deps{})
	}, time.Hour)
}

func TestSessions_CreatesAndReuses(t *testing.T) {
	store := newTestStore()
	cookies := cookie.NewConfig("", false)

	var first *session.Controller
	var firstID string
	h := Sessions(store, cookies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		first = GetSession(r.Context())
		firstID = GetSessionID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, first)
	require.NotEmpty(t, firstID)
	cookiesSet := rec.Result().Cookies()
	require.Len(t, cookiesSet, 1)
	assert.Equal(t, cookie.SessionCookieName, cookiesSet[0].Name)
	assert.Equal(t, firstID, cookiesSet[0].Value)

	var second *session.Controller
	h2 := Sessions(store, cookies)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		second = GetSession(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookiesSet[0])
	h2.ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestSessions_UnknownCookieGetsNewSession(t *testing.T) {
	store := newTestStore()
	var id string
	h := Sessions(store, cookie.NewConfig("", false))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = GetSessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookie.SessionCookieName, Value: "forged"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotEqual(t, "forged", id)
	assert.Equal(t, 1, store.Len())
}

func TestGetSession_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, GetSession(req.Context()))
	assert.Empty(t, GetSessionID(req.Context()))
}

func TestCSRF(t *testing.T) {
	cookies := cookie.NewConfig("", false)
	h := CSRF(cookies)(okHandler)

	// GET issues a token
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	issued := rec.Result().Cookies()
	require.Len(t, issued, 1)
	token := issued[0].Value
	require.NotEmpty(t, token)

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
		req.AddCookie(issued[0])
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("header token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
		req.AddCookie(issued[0])
		req.Header.Set(CSRFHeaderName, token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("form token accepted", func(t *testing.T) {
		form := url.Values{CSRFFormFieldName: {token}}
		req := httptest.NewRequest(http.MethodPost, "/person", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(issued[0])
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
		req.AddCookie(issued[0])
		req.Header.Set(CSRFHeaderName, "nope")
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		var body map[string]map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "forbidden", body["error"]["code"])
	})
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 2})
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("a"))

	now = now.Add(2 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.buckets)
}

func TestLookupRateLimiterConfig(t *testing.T) {
	cfg := LookupRateLimiterConfig()

	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 10, cfg.BurstSize)

	req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
	req.RemoteAddr = "198.51.100.4:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "198.51.100.4", cfg.KeyFunc(req))
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	h := rl.Middleware(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/lookup", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(8)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/person", strings.NewReader(strings.Repeat("x", 32)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/person", strings.NewReader("small"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	})
	rec := httptest.NewRecorder()
	Timeout(10*time.Millisecond)(slow).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	Timeout(time.Second)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(DefaultSecurityHeadersConfig())(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", rec.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "https://unpkg.com")

	rec = httptest.NewRecorder()
	SecurityHeaders(SecurityHeadersConfig{})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	h := m.Middleware(okHandler)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/lookup", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("POST", "/lookup", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "/static/*", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", "other", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestAccessLogCapturesStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusSeeOther)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/person", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
