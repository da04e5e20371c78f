package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Book represents a catalog record
type Book struct {
	ID              string   `json:"id" yaml:"id" parquet:"id"`
	Title           string   `json:"title" yaml:"title" parquet:"title"`
	Author          string   `json:"author" yaml:"author" parquet:"author"`
	CoverImage      string   `json:"coverImage,omitempty" yaml:"coverImage,omitempty" parquet:"cover_image"`
	AvailableCopies int      `json:"availableCopies" yaml:"availableCopies" parquet:"available_copies"`
	TotalCopies     int      `json:"totalCopies" yaml:"totalCopies" parquet:"total_copies"`
	Published       string   `json:"published" yaml:"published" parquet:"published"` // year string, e.g. "2009"
	Publisher       string   `json:"publisher,omitempty" yaml:"publisher,omitempty" parquet:"publisher"`
	Category        string   `json:"category" yaml:"category" parquet:"category"`
	ISBN            string   `json:"isbn" yaml:"isbn" parquet:"isbn"`
	Description     string   `json:"description" yaml:"description" parquet:"description"`
	PageCount       int      `json:"pageCount" yaml:"pageCount" parquet:"page_count"`
	Language        string   `json:"language" yaml:"language" parquet:"language"`
	Subjects        []string `json:"subjects" yaml:"subjects" parquet:"subjects,list"`
}

// Available reports whether at least one copy can be borrowed
func (b Book) Available() bool {
	return b.AvailableCopies > 0
}

// PublicationYear parses the leading digits of Published.
// "2009" and "2009-05" yield 2009; "September 2009" and "" are not ok.
func (b Book) PublicationYear() (int, bool) {
	s := strings.TrimSpace(b.Published)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}

// CheckInvariants validates the copy counts of a stored record
func (b Book) CheckInvariants() error {
	if b.ID == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if b.TotalCopies < 0 {
		return &ValidationError{Field: "totalCopies", Message: "total copies cannot be negative"}
	}
	if b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies {
		return &ValidationError{Field: "availableCopies", Message: "available copies must be between 0 and total copies"}
	}
	return nil
}

// ReservationStatus is the outcome of a reservation request
type ReservationStatus string

const (
	ReservationReserved   ReservationStatus = "reserved"
	ReservationWaitlisted ReservationStatus = "waitlisted"
)

// Reservation represents a student's hold on a book
type Reservation struct {
	ID        string            `json:"id"`
	BookID    string            `json:"bookId"`
	BookTitle string            `json:"bookTitle"`
	StudentID string            `json:"studentId"`
	Status    ReservationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// Account is a registered student
type Account struct {
	StudentID    string    `json:"studentId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BorrowedBook is a loan shown on the student dashboard
type BorrowedBook struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	CoverImage string `json:"coverImage,omitempty"`
	DueDate    string `json:"dueDate"`
	IsOverdue  bool   `json:"isOverdue"`
}

// Notification is a student dashboard message
type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"` // "overdue", "reminder", "approval"
}

// OverdueLoan is a row of the librarian overdue table
type OverdueLoan struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Student     string `json:"student"`
	StudentID   string `json:"studentId"`
	DueDate     string `json:"dueDate"`
	DaysOverdue int    `json:"daysOverdue"`
}

// Severity buckets the overdue badge colour
func (o OverdueLoan) Severity() string {
	switch {
	case o.DaysOverdue > 5:
		return "high"
	case o.DaysOverdue > 2:
		return "medium"
	default:
		return "low"
	}
}

// Activity is a recent circulation event
type Activity struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Book      string `json:"book"`
	Student   string `json:"student,omitempty"`
	Admin     string `json:"admin,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Timestamp string `json:"timestamp"`
}

// LibraryStats summarises the live catalog
type LibraryStats struct {
	Titles          int `json:"titles"`
	TotalCopies     int `json:"totalCopies"`
	AvailableCopies int `json:"availableCopies"`
	CheckedOut      int `json:"checkedOut"`
	Unavailable     int `json:"unavailable"`
	Reservations    int `json:"reservations"`
	Waitlisted      int `json:"waitlisted"`
}

// UtilizationPercent is the share of copies currently out
func (s LibraryStats) UtilizationPercent() int {
	if s.TotalCopies == 0 {
		return 0
	}
	return s.CheckedOut * 100 / s.TotalCopies
}

func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}
