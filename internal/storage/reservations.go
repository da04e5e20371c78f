package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

// ReservationStore keeps reservations in the order they were made
type ReservationStore struct {
	reservations []models.Reservation
	mu           sync.RWMutex
}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{}
}

// AddIfAbsent stores r unless the student already holds the same book.
// The existing reservation is returned when one is found.
func (s *ReservationStore) AddIfAbsent(r models.Reservation) (models.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reservations {
		if existing.StudentID == r.StudentID && existing.BookID == r.BookID {
			return existing, false
		}
	}
	s.reservations = append(s.reservations, r)
	return r, true
}

// ForStudent returns a student's reservations, newest first
func (s *ReservationStore) ForStudent(studentID string) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Reservation
	for i := len(s.reservations) - 1; i >= 0; i-- {
		if s.reservations[i].StudentID == studentID {
			result = append(result, s.reservations[i])
		}
	}
	return result
}

// Find returns an existing reservation of a book by a student
func (s *ReservationStore) Find(studentID, bookID string) (models.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reservations {
		if r.StudentID == studentID && r.BookID == bookID {
			return r, true
		}
	}
	return models.Reservation{}, false
}

// Counts tallies reservations by status
func (s *ReservationStore) Counts() map[models.ReservationStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ReservationStatus]int, 2)
	for _, r := range s.reservations {
		counts[r.Status]++
	}
	return counts
}
