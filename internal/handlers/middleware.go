package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"

	"github.com/lehigh-university-libraries/portal/internal/session"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// observe logs every request and records it in the request metrics
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		h.metrics.ObserveRequest(route, strconv.Itoa(rec.status), elapsed)
		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// plaintext tells the CSRF check the site is served over plain HTTP,
// which relaxes its strict Referer matching
func plaintext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

// HandleCSRFFailure answers a rejected form post
func (h *Handler) HandleCSRFFailure(w http.ResponseWriter, r *http.Request) {
	slog.Warn("CSRF check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	h.renderError(w, r, http.StatusForbidden, "Your form expired. Go back, reload the page and try again.")
}

// HandleAPICSRFFailure answers an API write without a valid X-CSRF-Token header
func (h *Handler) HandleAPICSRFFailure(w http.ResponseWriter, r *http.Request) {
	slog.Warn("CSRF check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
	h.writeError(w, "Missing or invalid X-CSRF-Token header", http.StatusForbidden)
}

// exposeCSRFToken returns the request's CSRF token in the X-CSRF-Token response header
func exposeCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// requireAPIRole is the JSON counterpart of session.RequireRole:
// anonymous callers get 401 and other roles get 403.
func (h *Handler) requireAPIRole(roles ...session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := session.ActorFrom(r.Context())
			switch {
			case !actor.SignedIn():
				h.writeError(w, "Authentication required", http.StatusUnauthorized)
			case !actor.HasRole(roles...):
				h.writeError(w, actor.Role.Label()+" accounts cannot use this endpoint", http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// HandleForbidden renders the page shown to a signed-in actor without the required role
func (h *Handler) HandleForbidden(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusForbidden, "")
}

func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "")
}
