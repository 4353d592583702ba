package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dukerupert/addressbook/internal/domain"
)

// LookupPath is the endpoint the lookup service exposes.
const LookupPath = "/api/getAddresses"

// FetchFailedMessage is shown when the service could not be reached or
// answered with something other than a lookup response.
const FetchFailedMessage = "Failed to fetch addresses"

// maxResponseSize bounds how much of a lookup response is read.
const maxResponseSize = 1 << 20

// ServiceError is an error reported by the lookup service itself.
// Message is the service text, passed on to users verbatim.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return "lookup service: " + e.Message
}

// ClientConfig configures the HTTP lookup client.
type ClientConfig struct {
	// BaseURL is the scheme and host of the lookup service (e.g. "http://localhost:3001").
	BaseURL string

	// Timeout bounds a single lookup request. Zero means no client-side timeout;
	// the caller's context still applies.
	Timeout time.Duration

	// HTTPClient overrides the transport. Defaults to a client with Timeout.
	HTTPClient *http.Client
}

// Client calls the remote lookup service over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ Lookuper = (*Client)(nil)

// NewClient creates a lookup client for the service at cfg.BaseURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid lookup base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid lookup base URL %q: scheme and host required", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		endpoint: base.String() + LookupPath,
		http:     httpClient,
	}, nil
}

// lookupResponse is the service envelope. Details is a pointer so a missing
// list can be told apart from an empty one.
type lookupResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"errormessage"`
	Details      *[]Address `json:"details"`
}

// Lookup issues one GET request for the postcode and house number.
// The HTTP status is not interpreted; the body decides the outcome.
func (c *Client) Lookup(ctx context.Context, postcode, houseNumber string) ([]Address, error) {
	const op = "address.lookup"

	q := url.Values{}
	q.Set("postcode", postcode)
	q.Set("streetnumber", houseNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, domain.Unavailable(err, op, FetchFailedMessage)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Unavailable(err, op, FetchFailedMessage)
	}
	defer resp.Body.Close()

	var body lookupResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return nil, domain.Unavailable(fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err), op, FetchFailedMessage)
	}

	if body.Status == "error" {
		return nil, &domain.Error{
			Code:    domain.EINVALID,
			Op:      op,
			Message: body.ErrorMessage,
			Err:     &ServiceError{Message: body.ErrorMessage},
		}
	}

	if body.Details == nil {
		return nil, domain.Unavailable(errors.New("response has no details"), op, FetchFailedMessage)
	}

	return *body.Details, nil
}

// IsServiceError reports whether err came from the lookup service rather
// than from transport or decoding.
func IsServiceError(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
