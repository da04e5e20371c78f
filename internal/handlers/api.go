package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lehigh-university-libraries/portal/internal/catalog"
	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/session"
)

type searchResponse struct {
	Query        string        `json:"query"`
	Categories   []string      `json:"categories"`
	Availability string        `json:"availability"`
	Sort         string        `json:"sort"`
	Total        int           `json:"total"`
	Books        []models.Book `json:"books"`
}

func (h *Handler) HandleAPIBooks(w http.ResponseWriter, r *http.Request) {
	state, err := catalog.ParseFilterState(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	books, err := h.catalog.Search(r.Context(), state)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, searchResponse{
		Query:        state.Query,
		Categories:   state.CategoryList(),
		Availability: state.Availability.String(),
		Sort:         state.Sort.String(),
		Total:        len(books),
		Books:        books,
	})
}

func (h *Handler) HandleAPIBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalog.Book(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, book)
}

// HandleAPIUpdateBook applies a JSON BookForm. Mounted behind the librarian gate.
func (h *Handler) HandleAPIUpdateBook(w http.ResponseWriter, r *http.Request) {
	var form models.BookForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	book, err := h.catalog.UpdateBook(mux.Vars(r)["id"], form)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, book)
}

func (h *Handler) HandleAPIFacets(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.catalog.Facets())
}

// HandleAPIReservations lists the signed-in student's reservations. Mounted behind the student gate.
func (h *Handler) HandleAPIReservations(w http.ResponseWriter, r *http.Request) {
	reservations := h.catalog.Reservations(session.ActorFrom(r.Context()).ID)
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	h.writeJSON(w, reservations)
}
