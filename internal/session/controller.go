// Package session owns the per-browser state of the address finder: the form
// fields, the candidates from the last lookup, the current error and the
// loading flag. Handlers drive it one event at a time.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/addressbook/internal/address"
	"github.com/dukerupert/addressbook/internal/addressbook"
	"github.com/dukerupert/addressbook/internal/domain"
	"github.com/dukerupert/addressbook/internal/form"
)

// User-facing messages for a rejected submission.
const (
	NoSelectionMessage       = "No address selected, try to select an address or find one if you haven't"
	SelectionNotFoundMessage = "Selected address not found"
)

var (
	// ErrNoSelection is returned by Submit when nothing is selected or there
	// are no candidates to select from.
	ErrNoSelection = domain.Invalid("session.submit", NoSelectionMessage)

	// ErrSelectionNotFound is returned by Submit when the selected id is not
	// among the current candidates, e.g. after a newer lookup replaced them.
	ErrSelectionNotFound = domain.NotFound("session.submit", SelectionNotFoundMessage)

	// ErrSuperseded is returned by Lookup when a newer lookup or a reset
	// started while it was in flight. Its result was discarded.
	ErrSuperseded = errors.New("lookup superseded")
)

// Lookup and submit outcomes reported to the Recorder.
const (
	OutcomeOK           = "ok"
	OutcomeServiceError = "service_error"
	OutcomeFetchFailed  = "fetch_failed"
	OutcomeStale        = "stale"
	OutcomeNoSelection  = "no_selection"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Recorder receives lookup and submission outcomes, normally for metrics.
type Recorder interface {
	LookupFinished(outcome string, duration time.Duration)
	SubmitFinished(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) LookupFinished(string, time.Duration) {}
func (nopRecorder) SubmitFinished(string)                {}

// Deps are the collaborators a Controller works with.
type Deps struct {
	Lookuper address.Lookuper
	Book     addressbook.Book
	Recorder Recorder
	Logger   *slog.Logger
}

// State is a point-in-time copy of a controller's state.
type State struct {
	Fields     form.Fields
	Candidates []address.Candidate
	Error      string
	Loading    bool
}

// Controller holds the finder state for one browser session.
// It is safe for concurrent use; the lock is never held across a lookup or
// an address book call.
type Controller struct {
	lookuper address.Lookuper
	book     addressbook.Book
	recorder Recorder
	logger   *slog.Logger

	mu         sync.Mutex
	fields     form.Fields
	candidates []address.Candidate
	errMsg     string
	loading    bool
	generation uint64
}

// NewController creates a controller with empty fields.
func NewController(deps Deps) *Controller {
	if deps.Recorder == nil {
		deps.Recorder = nopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Controller{
		lookuper: deps.Lookuper,
		book:     deps.Book,
		recorder: deps.Recorder,
		logger:   deps.Logger,
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Fields:     c.fields,
		Candidates: append([]address.Candidate(nil), c.candidates...),
		Error:      c.errMsg,
		Loading:    c.loading,
	}
}

// UpdateField sets one form field.
func (c *Controller) UpdateField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.Update(name, value)
}

// Select records id as the selected candidate. The id is not checked against
// the candidate list here; Submit does that.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	c.fields.SelectedAddress = id
	c.mu.Unlock()
}

// Deselect clears the selection.
func (c *Controller) Deselect() {
	c.Select("")
}

// Lookup searches for the current postcode and house number.
//
// Prior error and candidates are cleared and the loading flag set before the
// request is made. When the request finishes its result is applied only if
// no newer lookup or reset happened meanwhile; otherwise ErrSuperseded is
// returned and the state is left to the newer attempt.
func (c *Controller) Lookup(ctx context.Context) error {
	c.mu.Lock()
	c.errMsg = ""
	c.candidates = nil
	c.loading = true
	c.generation++
	gen := c.generation
	postcode, number := c.fields.PostCode, c.fields.HouseNumber
	c.mu.Unlock()

	start := time.Now()
	addrs, err := c.lookuper.Lookup(ctx, postcode, number)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("discarding superseded lookup", "postcode", postcode, "generation", gen, "current", c.generation)
		c.recorder.LookupFinished(OutcomeStale, elapsed)
		return ErrSuperseded
	}
	c.loading = false

	if err != nil {
		var se *address.ServiceError
		if errors.As(err, &se) {
			c.errMsg = se.Message
			c.recorder.LookupFinished(OutcomeServiceError, elapsed)
			c.logger.Info("lookup rejected by service", "postcode", postcode, "message", se.Message)
			return err
		}

		c.errMsg = address.FetchFailedMessage
		c.recorder.LookupFinished(OutcomeFetchFailed, elapsed)
		c.logger.Warn("lookup failed", "postcode", postcode, "error", err)
		if domain.ErrorCode(err) != domain.EUNAVAILABLE {
			err = domain.Unavailable(err, "session.lookup", address.FetchFailedMessage)
		}
		return err
	}

	c.candidates = address.NewCandidates(addrs)
	c.recorder.LookupFinished(OutcomeOK, elapsed)
	c.logger.Debug("lookup succeeded", "postcode", postcode, "candidates", len(c.candidates))
	return nil
}

// Submit validates the selection and appends the composed entry to the
// address book. On a validation failure nothing is appended.
func (c *Controller) Submit(ctx context.Context) (addressbook.Entry, error) {
	c.mu.Lock()
	c.errMsg = ""

	if c.fields.SelectedAddress == "" || len(c.candidates) == 0 {
		c.errMsg = NoSelectionMessage
		c.mu.Unlock()
		c.recorder.SubmitFinished(OutcomeNoSelection)
		return addressbook.Entry{}, ErrNoSelection
	}

	candidate, ok := address.Find(c.candidates, c.fields.SelectedAddress)
	if !ok {
		c.errMsg = SelectionNotFoundMessage
		c.mu.Unlock()
		c.recorder.SubmitFinished(OutcomeNotFound)
		return addressbook.Entry{}, ErrSelectionNotFound
	}

	entry := addressbook.NewEntry(candidate, c.fields.FirstName, c.fields.LastName)
	c.mu.Unlock()

	if err := c.book.AddAddress(ctx, entry); err != nil {
		c.mu.Lock()
		c.errMsg = domain.ErrorMessage(err)
		c.mu.Unlock()
		c.recorder.SubmitFinished(OutcomeError)
		c.logger.Error("failed to add address book entry", "error", err, "entry_id", entry.ID)
		return addressbook.Entry{}, err
	}

	c.recorder.SubmitFinished(OutcomeOK)
	c.logger.Info("address book entry added", "entry_id", entry.ID)
	return entry, nil
}

// ClearAll resets the fields, drops the candidates and the error, and
// abandons any lookup still in flight.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields.Reset()
	c.candidates = nil
	c.errMsg = ""
	c.loading = false
	c.generation++
}
