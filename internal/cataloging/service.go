package cataloging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lehigh-university-libraries/portal/internal/catalog"
	"github.com/lehigh-university-libraries/portal/internal/latency"
	"github.com/lehigh-university-libraries/portal/internal/metrics"
	"github.com/lehigh-university-libraries/portal/internal/models"
	"github.com/lehigh-university-libraries/portal/internal/storage"
)

// ErrAlreadyReserved is returned when a student asks for the same book twice
var ErrAlreadyReserved = errors.New("book already reserved")

const DefaultCacheSize = 256

// Options tunes a Service. Zero values fall back to defaults.
type Options struct {
	CacheSize      int
	SearchLatency  time.Duration
	ReserveLatency time.Duration
	Metrics        *metrics.Metrics
}

// Service runs catalog searches and mutations against the book store
type Service struct {
	books        *storage.BookStore
	reservations *storage.ReservationStore
	cache        *lru.Cache[string, []models.Book]
	generation   atomic.Uint64
	metrics      *metrics.Metrics
	opts         Options
	now          func() time.Time
}

func NewService(books *storage.BookStore, reservations *storage.ReservationStore, opts Options) (*Service, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if books == nil {
		books = storage.New()
	}
	if reservations == nil {
		reservations = storage.NewReservationStore()
	}
	cache, err := lru.New[string, []models.Book](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	s := &Service{
		books:        books,
		reservations: reservations,
		cache:        cache,
		metrics:      opts.Metrics,
		opts:         opts,
		now:          time.Now,
	}
	s.metrics.SetCatalogSize(books.Len())
	return s, nil
}

// Search returns the books matching state in display order
func (s *Service) Search(ctx context.Context, state catalog.FilterState) ([]models.Book, error) {
	if err := latency.Wait(ctx, s.opts.SearchLatency); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	key := state.Key()
	if cached, ok := s.cache.Get(key); ok {
		s.metrics.ObserveSearch(true, len(cached))
		return slices.Clone(cached), nil
	}

	gen := s.generation.Load()
	result := catalog.FilterAndSort(s.books.List(), state)
	// a mutation during the search makes this result stale
	if s.generation.Load() == gen {
		s.cache.Add(key, result)
		if s.generation.Load() != gen {
			s.cache.Remove(key)
		}
	}
	s.metrics.ObserveSearch(false, len(result))
	slog.Debug("Catalog search", "query", state.Query, "results", len(result))
	return slices.Clone(result), nil
}

func (s *Service) Book(ctx context.Context, id string) (models.Book, error) {
	if err := latency.Wait(ctx, s.opts.SearchLatency); err != nil {
		return models.Book{}, fmt.Errorf("load book: %w", err)
	}
	return s.books.Get(id)
}

// Related returns up to n other books in the same category, in catalog order
func (s *Service) Related(id string, n int) []models.Book {
	book, err := s.books.Get(id)
	if err != nil {
		return nil
	}
	var related []models.Book
	for _, b := range s.books.List() {
		if len(related) == n {
			break
		}
		if b.ID != book.ID && b.Category == book.Category {
			related = append(related, b)
		}
	}
	return related
}

// Featured returns the first n books with free copies
func (s *Service) Featured(n int) []models.Book {
	var featured []models.Book
	for _, b := range s.books.List() {
		if len(featured) == n {
			break
		}
		if b.Available() {
			featured = append(featured, b)
		}
	}
	return featured
}

func (s *Service) Facets() catalog.Facets {
	return catalog.ComputeFacets(s.books.List())
}

func (s *Service) Books() []models.Book {
	return s.books.List()
}

// AddBook validates the form and appends a new book
func (s *Service) AddBook(form models.BookForm) (models.Book, error) {
	if err := form.Validate(); err != nil {
		return models.Book{}, err
	}
	book := form.NewBook("book-" + uuid.NewString())
	if err := s.books.Add(book); err != nil {
		return models.Book{}, fmt.Errorf("failed to add book: %w", err)
	}
	s.invalidate()
	slog.Info("Book added", "id", book.ID, "title", book.Title)
	return book, nil
}

// UpdateBook applies the form to an existing book. The last write wins.
func (s *Service) UpdateBook(id string, form models.BookForm) (models.Book, error) {
	book, err := s.books.Get(id)
	if err != nil {
		return models.Book{}, err
	}
	if err := form.Validate(); err != nil {
		return models.Book{}, err
	}
	form.ApplyTo(&book)
	if err := s.books.Update(book); err != nil {
		return models.Book{}, fmt.Errorf("failed to update book: %w", err)
	}
	s.invalidate()
	slog.Info("Book updated", "id", book.ID, "title", book.Title)
	return book, nil
}

// ReplaceCatalog swaps in a whole catalog, e.g. after the catalog file changed
func (s *Service) ReplaceCatalog(books []models.Book) error {
	if err := s.books.Replace(books); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	s.invalidate()
	slog.Info("Catalog replaced", "books", len(books))
	return nil
}

func (s *Service) invalidate() {
	s.generation.Add(1)
	s.cache.Purge()
	s.metrics.SetCatalogSize(s.books.Len())
}

// Reserve places a hold for a student. Books without free copies put the
// student on the waitlist. Copy counts are left alone.
func (s *Service) Reserve(ctx context.Context, bookID, studentID string) (models.Reservation, error) {
	if studentID == "" {
		return models.Reservation{}, &models.ValidationError{Field: "studentId", Message: "a student is required"}
	}
	book, err := s.books.Get(bookID)
	if err != nil {
		return models.Reservation{}, err
	}
	if existing, ok := s.reservations.Find(studentID, bookID); ok {
		return existing, ErrAlreadyReserved
	}

	if err := latency.Wait(ctx, s.opts.ReserveLatency); err != nil {
		return models.Reservation{}, fmt.Errorf("reserve: %w", err)
	}

	status := models.ReservationWaitlisted
	if book.Available() {
		status = models.ReservationReserved
	}
	r := models.Reservation{
		ID:        uuid.NewString(),
		BookID:    book.ID,
		BookTitle: book.Title,
		StudentID: studentID,
		Status:    status,
		CreatedAt: s.now(),
	}
	// a second submit may have landed during the wait
	if existing, added := s.reservations.AddIfAbsent(r); !added {
		return existing, ErrAlreadyReserved
	}
	s.metrics.IncReservation(string(status))
	slog.Info("Reservation placed", "book", book.ID, "student", studentID, "status", status)
	return r, nil
}

// Reservation returns the student's hold on a book, if any
func (s *Service) Reservation(studentID, bookID string) (models.Reservation, bool) {
	return s.reservations.Find(studentID, bookID)
}

func (s *Service) Reservations(studentID string) []models.Reservation {
	return s.reservations.ForStudent(studentID)
}

// Stats summarises the live catalog and reservations
func (s *Service) Stats() models.LibraryStats {
	var st models.LibraryStats
	for _, b := range s.books.List() {
		st.Titles++
		st.TotalCopies += b.TotalCopies
		st.AvailableCopies += b.AvailableCopies
		if !b.Available() {
			st.Unavailable++
		}
	}
	st.CheckedOut = st.TotalCopies - st.AvailableCopies
	counts := s.reservations.Counts()
	st.Reservations = counts[models.ReservationReserved]
	st.Waitlisted = counts[models.ReservationWaitlisted]
	return st
}
