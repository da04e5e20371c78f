package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/portal/internal/report"
	"github.com/lehigh-university-libraries/portal/internal/session"
	"github.com/lehigh-university-libraries/portal/internal/views"
)

// HandleDashboard shows the dashboard for the signed-in role
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	actor := session.ActorFrom(r.Context())
	switch actor.Role {
	case session.RoleLibrarian:
		h.render(w, r, http.StatusOK, views.PageLibrarianDashboard, "Dashboard", h.catalog.LibrarianDashboard())
	case session.RoleStudent:
		h.render(w, r, http.StatusOK, views.PageStudentDashboard, "Dashboard", h.catalog.StudentDashboard(actor.ID))
	default:
		http.Redirect(w, r, session.LoginURL(r.URL.RequestURI()), http.StatusFound)
	}
}

func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageLibrarianDashboard, "Admin", h.catalog.LibrarianDashboard())
}

// HandleInventoryCSV downloads the live catalog
func (h *Handler) HandleInventoryCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, h.catalog.Books()); err != nil {
		slog.Error("Unable to build inventory export", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write inventory export", "err", err)
	}
}
