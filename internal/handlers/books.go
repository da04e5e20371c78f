package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lehigh-university-libraries/portal/internal/catalog"
	"github.com/lehigh-university-libraries/portal/internal/cataloging"
	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/session"
	"github.com/lehigh-university-libraries/portal/internal/views"
)

const (
	featuredCount = 4
	relatedCount  = 4
)

type homeData struct {
	Featured []models.Book
	Stats    models.LibraryStats
}

// bookFormView backs the add and edit dialogs
type bookFormView struct {
	Action     string
	Form       models.BookForm
	Categories []string
	Error      string
	Open       bool
}

type booksData struct {
	Books               []models.Book
	State               catalog.FilterState
	Facets              catalog.Facets
	AvailabilityOptions []catalog.Availability
	SortOptions         []catalog.SortKey
	AddForm             bookFormView
}

type bookData struct {
	Book        models.Book
	Related     []models.Book
	Reservation *models.Reservation
	EditForm    bookFormView
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		Featured: h.catalog.Featured(featuredCount),
		Stats:    h.catalog.Stats(),
	}
	h.render(w, r, http.StatusOK, views.PageHome, "", data)
}

func (h *Handler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	state, err := catalog.ParseFilterState(r.URL.Query())
	if err != nil {
		msg, _ := validationMessage(err)
		h.renderError(w, r, http.StatusBadRequest, "Invalid search: "+msg)
		return
	}
	h.renderBooks(w, r, http.StatusOK, state, h.newBookForm("/books", models.DefaultBookForm()))
}

func (h *Handler) renderBooks(w http.ResponseWriter, r *http.Request, code int, state catalog.FilterState, addForm bookFormView) {
	books, err := h.catalog.Search(r.Context(), state)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	data := booksData{
		Books:               books,
		State:               state,
		Facets:              h.catalog.Facets(),
		AvailabilityOptions: catalog.AvailabilityOptions,
		SortOptions:         catalog.SortOptions,
		AddForm:             addForm,
	}
	h.render(w, r, code, views.PageBooks, "Browse Books", data)
}

func (h *Handler) HandleBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	book, err := h.catalog.Book(r.Context(), id)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	h.renderBook(w, r, http.StatusOK, book, h.newBookForm("/books/"+url.PathEscape(book.ID), models.FormFromBook(book)))
}

func (h *Handler) renderBook(w http.ResponseWriter, r *http.Request, code int, book models.Book, editForm bookFormView) {
	data := bookData{
		Book:     book,
		Related:  h.catalog.Related(book.ID, relatedCount),
		EditForm: editForm,
	}
	if actor := session.ActorFrom(r.Context()); actor.CanReserve() {
		if res, ok := h.catalog.Reservation(actor.ID, book.ID); ok {
			data.Reservation = &res
		}
	}
	h.render(w, r, code, views.PageBook, book.Title, data)
}

func (h *Handler) HandleCreateBook(w http.ResponseWriter, r *http.Request) {
	form, err := parseBookForm(r)
	if err == nil {
		var book models.Book
		if book, err = h.catalog.AddBook(form); err == nil {
			h.flash(w, r, "success", "Book Added", fmt.Sprintf("%q has been added to the catalog.", book.Title))
			redirect(w, r, "/books/"+url.PathEscape(book.ID))
			return
		}
	}

	msg, ok := validationMessage(err)
	if !ok {
		h.pageError(w, r, err)
		return
	}
	view := h.newBookForm("/books", form)
	view.Error = msg
	view.Open = true
	h.renderBooks(w, r, http.StatusBadRequest, catalog.DefaultFilterState(), view)
}

func (h *Handler) HandleUpdateBook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	form, err := parseBookForm(r)
	if err == nil {
		var book models.Book
		if book, err = h.catalog.UpdateBook(id, form); err == nil {
			h.flash(w, r, "success", "Book Updated", fmt.Sprintf("%q has been updated.", book.Title))
			redirect(w, r, "/books/"+url.PathEscape(book.ID))
			return
		}
	}

	msg, ok := validationMessage(err)
	if !ok {
		h.pageError(w, r, err)
		return
	}
	book, getErr := h.catalog.Book(r.Context(), id)
	if getErr != nil {
		h.pageError(w, r, getErr)
		return
	}
	view := h.newBookForm("/books/"+url.PathEscape(id), form)
	view.Error = msg
	view.Open = true
	h.renderBook(w, r, http.StatusBadRequest, book, view)
}

func (h *Handler) HandleReserve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor := session.ActorFrom(r.Context())

	res, err := h.catalog.Reserve(r.Context(), id, actor.ID)
	switch {
	case err == nil && res.Status == models.ReservationReserved:
		h.flash(w, r, "success", "Book Reserved",
			fmt.Sprintf("You've successfully reserved %q. Please pick it up within 24 hours.", res.BookTitle))
	case err == nil:
		h.flash(w, r, "success", "Added to Waitlist",
			fmt.Sprintf("You're on the waitlist for %q. We'll let you know when a copy is free.", res.BookTitle))
	case errors.Is(err, cataloging.ErrAlreadyReserved):
		h.flash(w, r, "error", "Already reserved", "You already have a reservation for this book.")
	default:
		h.pageError(w, r, err)
		return
	}
	slog.Debug("Reservation handled", "book", id, "student", actor.ID)
	redirect(w, r, "/books/"+url.PathEscape(id))
}

func (h *Handler) newBookForm(action string, form models.BookForm) bookFormView {
	return bookFormView{
		Action:     action,
		Form:       form,
		Categories: catalog.DefaultCategories,
	}
}

// parseBookForm reads the add and edit dialogs. Numbers that do not parse are validation errors.
func parseBookForm(r *http.Request) (models.BookForm, error) {
	if err := r.ParseForm(); err != nil {
		return models.BookForm{}, &models.ValidationError{Message: "invalid form submission"}
	}
	f := r.PostForm
	form := models.BookForm{
		Title:       strings.TrimSpace(f.Get("title")),
		Author:      strings.TrimSpace(f.Get("author")),
		ISBN:        strings.TrimSpace(f.Get("isbn")),
		Description: strings.TrimSpace(f.Get("description")),
		Publisher:   strings.TrimSpace(f.Get("publisher")),
		Published:   strings.TrimSpace(f.Get("published")),
		Category:    strings.TrimSpace(f.Get("category")),
		Language:    strings.TrimSpace(f.Get("language")),
		CoverImage:  strings.TrimSpace(f.Get("coverImage")),
	}

	numbers := []struct {
		field string
		dst   *int
	}{
		{"pageCount", &form.PageCount},
		{"availableCopies", &form.AvailableCopies},
		{"totalCopies", &form.TotalCopies},
	}
	for _, n := range numbers {
		raw := strings.TrimSpace(f.Get(n.field))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return form, &models.ValidationError{Field: n.field, Message: "must be a whole number"}
		}
		*n.dst = v
	}
	return form, nil
}
