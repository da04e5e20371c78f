package cataloging

import "github.com/lehigh-university-libraries/portal/internal/models"

// ReadingHistory is the semester summary on the student dashboard
type ReadingHistory struct {
	Borrowed       int `json:"borrowed"`
	OnTimeReturns  int `json:"onTimeReturns"`
	OverdueReturns int `json:"overdueReturns"`
}

type StudentDashboard struct {
	Borrowed      []models.BorrowedBook `json:"borrowed"`
	Reservations  []models.Reservation  `json:"reservations"`
	Notifications []models.Notification `json:"notifications"`
	History       ReadingHistory        `json:"history"`
}

type LibrarianDashboard struct {
	Stats    models.LibraryStats  `json:"stats"`
	Overdue  []models.OverdueLoan `json:"overdue"`
	Activity []models.Activity    `json:"activity"`
	Books    []models.Book        `json:"books"`
}

// StudentDashboard combines the student's loans with their live reservations.
// Loans and notifications are not tracked yet, so every student sees the same sample set.
func (s *Service) StudentDashboard(studentID string) StudentDashboard {
	return StudentDashboard{
		Borrowed:      sampleLoans(),
		Reservations:  s.reservations.ForStudent(studentID),
		Notifications: sampleNotifications(),
		History:       ReadingHistory{Borrowed: 8, OnTimeReturns: 7, OverdueReturns: 1},
	}
}

// LibrarianDashboard shows live catalog stats next to the circulation desk feed
func (s *Service) LibrarianDashboard() LibrarianDashboard {
	return LibrarianDashboard{
		Stats:    s.Stats(),
		Overdue:  sampleOverdue(),
		Activity: sampleActivity(),
		Books:    s.books.List(),
	}
}

func sampleLoans() []models.BorrowedBook {
	return []models.BorrowedBook{
		{ID: "1", Title: "Introduction to Algorithms", Author: "Thomas H. Cormen", DueDate: "2025-05-15"},
		{ID: "2", Title: "Clean Code", Author: "Robert C. Martin", DueDate: "2025-05-03", IsOverdue: true},
		{ID: "3", Title: "Design Patterns", Author: "Erich Gamma", DueDate: "2025-05-20"},
	}
}

func sampleNotifications() []models.Notification {
	return []models.Notification{
		{ID: "1", Message: `Your book "Clean Code" is overdue`, Timestamp: "2025-05-01", Type: "overdue"},
		{ID: "2", Message: `"Introduction to Algorithms" is due in 2 days`, Timestamp: "2025-05-01", Type: "reminder"},
		{ID: "3", Message: `Your book request for "Machine Learning" has been approved`, Timestamp: "2025-04-28", Type: "approval"},
	}
}

func sampleOverdue() []models.OverdueLoan {
	return []models.OverdueLoan{
		{ID: "1", Title: "Clean Code", Student: "Alex Johnson", StudentID: "SID12345", DueDate: "2025-04-25", DaysOverdue: 6},
		{ID: "2", Title: "JavaScript: The Good Parts", Student: "Emma Smith", StudentID: "SID67890", DueDate: "2025-04-28", DaysOverdue: 3},
		{ID: "3", Title: "Design Patterns", Student: "Michael Brown", StudentID: "SID24680", DueDate: "2025-04-30", DaysOverdue: 1},
	}
}

func sampleActivity() []models.Activity {
	return []models.Activity{
		{ID: "1", Action: "Book Return", Book: "Introduction to Economics", Student: "Sarah Williams", Timestamp: "2025-05-01 14:30"},
		{ID: "2", Action: "Book Checkout", Book: "World History Volume II", Student: "David Garcia", Timestamp: "2025-05-01 13:15"},
		{ID: "3", Action: "Fine Payment", Book: "Programming in Python", Student: "Lisa Chen", Amount: "$5.50", Timestamp: "2025-05-01 11:20"},
		{ID: "4", Action: "New Book Added", Book: "Artificial Intelligence: A Modern Approach", Admin: "Admin User", Timestamp: "2025-05-01 09:45"},
	}
}
