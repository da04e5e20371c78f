package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lehigh-university-libraries/portal/internal/session"
)

// RouterOptions configures cross-cutting protection on the router
type RouterOptions struct {
	CSRFKey []byte
	// Secure marks cookies Secure and enables the strict HTTPS Referer check
	Secure bool
}

// Router wires every page, form and API route
func (h *Handler) Router(opts RouterOptions) http.Handler {
	r := mux.NewRouter()
	r.Use(h.observe)

	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	}).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(h.metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.PathPrefix("/static/").HandlerFunc(h.HandleStatic).Methods(http.MethodGet, http.MethodHead)

	csrfOptions := func(onFailure http.HandlerFunc) []csrf.Option {
		return []csrf.Option{
			csrf.Secure(opts.Secure),
			csrf.Path("/"),
			csrf.SameSite(csrf.SameSiteLaxMode),
			csrf.ErrorHandler(onFailure),
		}
	}
	protect := csrf.Protect(opts.CSRFKey, csrfOptions(h.HandleCSRFFailure)...)
	apiProtect := csrf.Protect(opts.CSRFKey, csrfOptions(h.HandleAPICSRFFailure)...)

	withSession := func(next http.Handler) http.Handler {
		next = h.sessions.Middleware(next)
		if !opts.Secure {
			next = plaintext(next)
		}
		return next
	}
	stack := func(next http.Handler) http.Handler {
		return withSession(protect(next))
	}

	// The API checks roles before CSRF so that callers without the role get
	// a JSON 401/403. Librarians send the token in the X-CSRF-Token header;
	// every API response carries a fresh one.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(withSession)
	apiToken := func(next http.HandlerFunc) http.Handler {
		return apiProtect(exposeCSRFToken(next))
	}
	apiLibrarian := h.requireAPIRole(session.RoleLibrarian)
	apiStudent := h.requireAPIRole(session.RoleStudent)

	api.Handle("/books", apiToken(h.HandleAPIBooks)).Methods(http.MethodGet)
	api.Handle("/books/{id}", apiToken(h.HandleAPIBook)).Methods(http.MethodGet)
	api.Handle("/books/{id}", apiLibrarian(apiToken(h.HandleAPIUpdateBook))).Methods(http.MethodPut)
	api.Handle("/facets", apiToken(h.HandleAPIFacets)).Methods(http.MethodGet)
	api.Handle("/reservations", apiStudent(apiToken(h.HandleAPIReservations))).Methods(http.MethodGet)

	app := r.NewRoute().Subrouter()
	app.Use(stack)

	forbidden := http.HandlerFunc(h.HandleForbidden)
	signedIn := session.RequireRole(forbidden)
	librarian := session.RequireRole(forbidden, session.RoleLibrarian)
	student := session.RequireRole(forbidden, session.RoleStudent)

	app.HandleFunc("/", h.HandleHome).Methods(http.MethodGet)
	app.HandleFunc("/login", h.HandleLoginPage).Methods(http.MethodGet)
	app.HandleFunc("/login", h.HandleLogin).Methods(http.MethodPost)
	app.HandleFunc("/register", h.HandleRegister).Methods(http.MethodPost)
	app.HandleFunc("/logout", h.HandleLogout).Methods(http.MethodPost)

	app.HandleFunc("/books", h.HandleBooks).Methods(http.MethodGet)
	app.Handle("/books", librarian(http.HandlerFunc(h.HandleCreateBook))).Methods(http.MethodPost)
	app.HandleFunc("/books/{id}", h.HandleBook).Methods(http.MethodGet)
	app.Handle("/books/{id}", librarian(http.HandlerFunc(h.HandleUpdateBook))).Methods(http.MethodPost)
	app.Handle("/books/{id}/reserve", student(http.HandlerFunc(h.HandleReserve))).Methods(http.MethodPost)

	app.Handle("/dashboard", signedIn(http.HandlerFunc(h.HandleDashboard))).Methods(http.MethodGet)
	app.Handle("/admin", librarian(http.HandlerFunc(h.HandleAdmin))).Methods(http.MethodGet)
	app.Handle("/admin/inventory.csv", librarian(http.HandlerFunc(h.HandleInventoryCSV))).Methods(http.MethodGet)

	r.NotFoundHandler = h.observe(stack(http.HandlerFunc(h.HandleNotFound)))
	return r
}
