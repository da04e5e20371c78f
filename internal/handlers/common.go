package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/lehigh-university-libraries/portal/internal/cataloging"
	"github.com/lehigh-university-libraries/portal/internal/metrics"
	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/session"
	"github.com/lehigh-university-libraries/portal/internal/storage"
	"github.com/lehigh-university-libraries/portal/internal/views"
)

type Handler struct {
	catalog     *cataloging.Service
	auth        *session.Authenticator
	sessions    *session.Manager
	views       *views.Renderer
	metrics     *metrics.Metrics
	staffPrefix string
}

// Deps are the services a Handler delegates to
type Deps struct {
	Catalog     *cataloging.Service
	Auth        *session.Authenticator
	Sessions    *session.Manager
	Metrics     *metrics.Metrics
	StaffPrefix string
}

func New(d Deps) (*Handler, error) {
	if d.Catalog == nil || d.Auth == nil || d.Sessions == nil {
		return nil, errors.New("handlers: catalog, auth and sessions are required")
	}
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}
	prefix := d.StaffPrefix
	if prefix == "" {
		prefix = session.DefaultStaffPrefix
	}
	return &Handler{
		catalog:     d.Catalog,
		auth:        d.Auth,
		sessions:    d.Sessions,
		views:       renderer,
		metrics:     d.Metrics,
		staffPrefix: prefix,
	}, nil
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "code", code)
	}
	h.writeJSONStatus(w, code, apiError{Error: message})
}

// writeServiceError maps service errors onto API responses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSONStatus(w, http.StatusBadRequest, apiError{Error: ve.Message, Field: ve.Field})
	case isNotFound(err):
		h.writeError(w, "Book not found", http.StatusNotFound)
	case errors.Is(err, cataloging.ErrAlreadyReserved):
		h.writeError(w, "Book already reserved", http.StatusConflict)
	default:
		slog.Error("Request failed", "err", err)
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Page helpers

// render writes a full HTML page. The page is buffered so that flash cookies
// and the status code can still be set when rendering succeeds.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, page, title string, data any) {
	p := views.Page{
		Title:     title,
		Path:      r.URL.Path,
		Actor:     session.ActorFrom(r.Context()),
		Flashes:   h.sessions.Flashes(w, r),
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	}

	var buf bytes.Buffer
	if err := h.views.Render(&buf, page, p); err != nil {
		slog.Error("Unable to render page", "page", page, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write page", "page", page, "err", err)
	}
}

type errorData struct {
	Status  int
	Heading string
	Message string
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, code int, message string) {
	heading := http.StatusText(code)
	switch code {
	case http.StatusNotFound:
		heading = "Page not found"
		if message == "" {
			message = "Oops! The page you are looking for does not exist."
		}
	case http.StatusForbidden:
		heading = "Access denied"
		if message == "" {
			message = "Your account does not have access to this page."
		}
	}
	h.render(w, r, code, views.PageError, heading, errorData{Status: code, Heading: heading, Message: message})
}

// pageError renders the error page matching a service error
func (h *Handler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		h.renderError(w, r, http.StatusNotFound, "We could not find that book.")
		return
	}
	if r.Context().Err() != nil {
		return
	}
	slog.Error("Request failed", "path", r.URL.Path, "err", err)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func (h *Handler) flash(w http.ResponseWriter, r *http.Request, kind, title, message string) {
	if err := h.sessions.AddFlash(w, r, session.Flash{Kind: kind, Title: title, Message: message}); err != nil {
		slog.Error("Unable to store flash", "err", err)
	}
}

// redirect answers a form post
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func isNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}

func validationMessage(err error) (string, bool) {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}
