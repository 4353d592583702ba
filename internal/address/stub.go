package address

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stub answers lookup requests from a fixed data set so the finder can be
// run without the real service. It speaks the same wire format.
type Stub struct {
	byPostcode map[string][]Address
	logger     *slog.Logger
}

// stubFile is the YAML layout read by LoadStub:
//
//	addresses:
//	  - postcode: 1234AB
//	    street: Main St
//	    houseNumber: "1"
//	    city: Springfield
type stubFile struct {
	Addresses []map[string]any `yaml:"addresses"`
}

// LoadStub reads stub data from a YAML file.
func LoadStub(path string, logger *slog.Logger) (*Stub, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stub data: %w", err)
	}
	defer f.Close()
	return ReadStub(f, logger)
}

// ReadStub parses stub data from r.
func ReadStub(r io.Reader, logger *slog.Logger) (*Stub, error) {
	var data stubFile
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse stub data: %w", err)
	}

	addrs := make([]Address, 0, len(data.Addresses))
	for _, raw := range data.Addresses {
		addrs = append(addrs, FromMap(raw))
	}
	return NewStub(addrs, logger), nil
}

// NewStub builds a stub over the given addresses.
func NewStub(addrs []Address, logger *slog.Logger) *Stub {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Stub{byPostcode: make(map[string][]Address), logger: logger}
	for _, a := range addrs {
		key := normalizePostcode(a.Postcode)
		s.byPostcode[key] = append(s.byPostcode[key], a)
	}
	return s
}

// Len returns the number of addresses served.
func (s *Stub) Len() int {
	n := 0
	for _, list := range s.byPostcode {
		n += len(list)
	}
	return n
}

// ServeHTTP handles GET /api/getAddresses?postcode=&streetnumber=.
// An empty streetnumber matches every address at the postcode.
func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	number := strings.TrimSpace(r.URL.Query().Get("streetnumber"))

	s.logger.Debug("stub lookup", "postcode", postcode, "streetnumber", number)

	if strings.TrimSpace(postcode) == "" {
		writeStubError(w, "Postcode is required")
		return
	}

	atPostcode, ok := s.byPostcode[normalizePostcode(postcode)]
	if !ok {
		writeStubError(w, "Postcode not found")
		return
	}

	matches := make([]Address, 0, len(atPostcode))
	for _, a := range atPostcode {
		if number == "" || strings.EqualFold(a.HouseNumber, number) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		writeStubError(w, "House number not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"details": matches,
	})
}

func writeStubError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":       "error",
		"errormessage": message,
	})
}

// normalizePostcode uppercases and strips spaces so "1234 ab" matches "1234AB".
func normalizePostcode(p string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(p), " ", ""))
}
