package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/lehigh-university-libraries/portal/internal/models"
)

func TestBookStoreCRUD(t *testing.T) {
	s := NewSeeded()

	if s.Len() != 6 {
		t.Fatalf("Expected 6 seeded books, got %d", s.Len())
	}

	book, err := s.Get("1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if book.Title != "Introduction to Algorithms" {
		t.Errorf("Expected Introduction to Algorithms, got %s", book.Title)
	}

	if _, err := s.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := s.Add(models.Book{ID: "1", TotalCopies: 1}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Expected ErrDuplicateID, got %v", err)
	}

	if err := s.Add(models.Book{ID: "7", Title: "Calculus", TotalCopies: 2, AvailableCopies: 2}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	list := s.List()
	if list[len(list)-1].ID != "7" {
		t.Errorf("Expected new book to be appended, got %s", list[len(list)-1].ID)
	}

	book.AvailableCopies = 0
	if err := s.Update(book); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	updated, _ := s.Get("1")
	if updated.AvailableCopies != 0 {
		t.Errorf("Expected update to persist, got %d available", updated.AvailableCopies)
	}
	if list := s.List(); list[0].ID != "1" {
		t.Errorf("Expected update to keep position, got %s first", list[0].ID)
	}
}

func TestBookStoreRejectsInvariantViolations(t *testing.T) {
	s := NewSeeded()

	err := s.Update(models.Book{ID: "1", AvailableCopies: 9, TotalCopies: 5})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	err = s.Replace([]models.Book{{ID: "a", TotalCopies: 1}, {ID: "a", TotalCopies: 1}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Expected ErrDuplicateID, got %v", err)
	}
	if s.Len() != 6 {
		t.Errorf("Expected failed replace to leave the catalog untouched, got %d books", s.Len())
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := NewSeeded()
	list := s.List()
	list[0].Subjects[0] = "mutated"

	book, _ := s.Get(list[0].ID)
	if book.Subjects[0] == "mutated" {
		t.Error("Expected List to return independent copies")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".json", ".jsonl", ".parquet"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog"+ext)
			want := Fixtures()

			if err := Save(path, want); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("catalog.csv"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestLoadJSONLReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	content := `{"id":"1","title":"ok","totalCopies":1}` + "\n\n" + `{"id":` + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected parse error")
	}
	if want := "line 3"; !strings.Contains(err.Error(), want) {
		t.Errorf("Expected error to mention %q, got %v", want, err)
	}
}

func TestReservationStore(t *testing.T) {
	s := NewReservationStore()
	s.AddIfAbsent(models.Reservation{ID: "r1", BookID: "1", StudentID: "S1", Status: models.ReservationReserved})
	s.AddIfAbsent(models.Reservation{ID: "r2", BookID: "2", StudentID: "S1", Status: models.ReservationWaitlisted})
	s.AddIfAbsent(models.Reservation{ID: "r3", BookID: "1", StudentID: "S2", Status: models.ReservationReserved})

	existing, added := s.AddIfAbsent(models.Reservation{ID: "r4", BookID: "1", StudentID: "S1", Status: models.ReservationReserved})
	if added {
		t.Error("Expected a second hold on the same book to be refused")
	}
	if existing.ID != "r1" {
		t.Errorf("Expected existing reservation r1, got %s", existing.ID)
	}

	mine := s.ForStudent("S1")
	if len(mine) != 2 || mine[0].ID != "r2" {
		t.Errorf("Expected newest first for S1, got %+v", mine)
	}
	if _, ok := s.Find("S2", "1"); !ok {
		t.Error("Expected to find S2's reservation")
	}
	counts := s.Counts()
	if counts[models.ReservationReserved] != 2 || counts[models.ReservationWaitlisted] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestWatcherReloadsCatalog(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := Save(path, Fixtures()[:2]); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan []models.Book, 1)
	w := NewWatcher(path, func(books []models.Book) error {
		select {
		case reloaded <- books:
		default:
		}
		return nil
	}, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := Save(path, Fixtures()); err != nil {
		t.Fatal(err)
	}

	select {
	case books := <-reloaded:
		if len(books) != 6 {
			t.Errorf("Expected 6 books after reload, got %d", len(books))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() returned %v", err)
	}
}
