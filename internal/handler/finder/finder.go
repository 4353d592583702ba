// Package finder serves the address finder page and its form posts.
//
// Every post updates the session's controller and redirects back to the
// page, which renders the controller's current state.
package finder

import (
	"errors"
	"net/http"

	"github.com/dukerupert/addressbook/internal/addressbook"
	"github.com/dukerupert/addressbook/internal/domain"
	"github.com/dukerupert/addressbook/internal/form"
	"github.com/dukerupert/addressbook/internal/handler"
	"github.com/dukerupert/addressbook/internal/middleware"
	"github.com/dukerupert/addressbook/internal/session"
	"github.com/dukerupert/addressbook/internal/telemetry"
)

// Handler handles the finder page
type Handler struct {
	renderer *handler.Renderer
	book     addressbook.Book
}

// NewHandler creates a new finder handler
func NewHandler(renderer *handler.Renderer, book addressbook.Book) *Handler {
	return &Handler{
		renderer: renderer,
		book:     book,
	}
}

// PageData is what the index template renders.
type PageData struct {
	CSRFToken string
	State     session.State
	Options   []session.Option
	Entries   []addressbook.Entry
}

// Page handles GET /
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	entries, err := h.book.Entries(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	state := ctrl.Snapshot()
	h.renderer.RenderHTTP(w, r, "index", PageData{
		CSRFToken: middleware.GetCSRFToken(r.Context()),
		State:     state,
		Options:   session.Options(state),
		Entries:   entries,
	})
}

// Lookup handles POST /lookup
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if !h.updateFields(w, r, ctrl, form.PostCode, form.HouseNumber) {
		return
	}

	telemetry.AddBreadcrumb(r.Context(), "finder", "address lookup", sessionExtras(r))

	err := ctrl.Lookup(r.Context())
	switch {
	case err == nil:
	case errors.Is(err, session.ErrSuperseded):
		middleware.GetLogger(r.Context()).Debug("lookup superseded by a newer request")
	case domain.IsCode(err, domain.EUNAVAILABLE):
		telemetry.CaptureError(r.Context(), err, sessionExtras(r))
	}

	handler.RedirectTo(w, r, "/")
}

// Select handles POST /select. An empty selectedAddress clears the selection.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("finder.select", "Invalid form data"))
		return
	}

	if id := r.PostFormValue(form.SelectedAddress); id != "" {
		ctrl.Select(id)
	} else {
		ctrl.Deselect()
	}

	handler.RedirectTo(w, r, "/")
}

// Person handles POST /person: it stores the names and submits the selected
// address to the address book. Rejections are shown on the page.
func (h *Handler) Person(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}
	if !h.updateFields(w, r, ctrl, form.FirstName, form.LastName) {
		return
	}

	if _, err := ctrl.Submit(r.Context()); err != nil && domain.IsCode(err, domain.EINTERNAL) {
		telemetry.CaptureError(r.Context(), err, sessionExtras(r))
	}

	handler.RedirectTo(w, r, "/")
}

// Clear handles POST /clear
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.controller(w, r)
	if !ok {
		return
	}

	ctrl.ClearAll()
	handler.RedirectTo(w, r, "/")
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	ctrl := middleware.GetSession(r.Context())
	if ctrl == nil {
		handler.ErrorResponse(w, r, domain.Internal(nil, "finder.session", "no session in request context"))
		return nil, false
	}
	return ctrl, true
}

func sessionExtras(r *http.Request) map[string]interface{} {
	return map[string]interface{}{"session_id": middleware.GetSessionID(r.Context())}
}

// updateFields copies the named form values into the controller. Absent
// values are stored as empty strings, like an emptied input.
func (h *Handler) updateFields(w http.ResponseWriter, r *http.Request, ctrl *session.Controller, names ...string) bool {
	if err := r.ParseForm(); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("finder.form", "Invalid form data"))
		return false
	}
	for _, name := range names {
		if err := ctrl.UpdateField(name, r.PostFormValue(name)); err != nil {
			handler.ErrorResponse(w, r, err)
			return false
		}
	}
	return true
}
