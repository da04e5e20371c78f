package storage

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

var (
	// ErrNotFound is returned when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateID is returned when adding a book whose id is taken.
	ErrDuplicateID = errors.New("duplicate book id")
)

// BookStore is the in-memory catalog. List order is insertion order.
type BookStore struct {
	books []models.Book
	index map[string]int
	mu    sync.RWMutex
}

func New() *BookStore {
	return &BookStore{
		index: make(map[string]int),
	}
}

// NewSeeded returns a store holding the fixture catalog
func NewSeeded() *BookStore {
	s := New()
	if err := s.Replace(Fixtures()); err != nil {
		panic(fmt.Sprintf("invalid fixture catalog: %v", err))
	}
	return s
}

func (s *BookStore) Get(id string) (models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, exists := s.index[id]
	if !exists {
		return models.Book{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return cloneBook(s.books[i]), nil
}

// List returns a copy of every book in catalog order
func (s *BookStore) List() []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Book, len(s.books))
	for i, b := range s.books {
		result[i] = cloneBook(b)
	}
	return result
}

func (s *BookStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

func (s *BookStore) Add(book models.Book) error {
	if err := book.CheckInvariants(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[book.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, book.ID)
	}
	s.index[book.ID] = len(s.books)
	s.books = append(s.books, cloneBook(book))
	return nil
}

// Update overwrites the book with the same id. Last write wins.
func (s *BookStore) Update(book models.Book) error {
	if err := book.CheckInvariants(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, exists := s.index[book.ID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, book.ID)
	}
	s.books[i] = cloneBook(book)
	return nil
}

// Replace swaps the whole catalog. Nothing changes if any record is invalid.
func (s *BookStore) Replace(books []models.Book) error {
	index := make(map[string]int, len(books))
	next := make([]models.Book, 0, len(books))
	for _, b := range books {
		if err := b.CheckInvariants(); err != nil {
			return fmt.Errorf("book %q: %w", b.ID, err)
		}
		if _, dup := index[b.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, b.ID)
		}
		index[b.ID] = len(next)
		next = append(next, cloneBook(b))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = next
	s.index = index
	return nil
}

func cloneBook(b models.Book) models.Book {
	b.Subjects = slices.Clone(b.Subjects)
	return b
}
