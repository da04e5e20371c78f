package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/lehigh-university-libraries/portal/internal/latency"
	"github.com/lehigh-university-libraries/portal/internal/metrics"
	"github.com/lehigh-university-libraries/portal/internal/models"
)

var (
	// ErrUnauthorized is returned for any rejected login
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrAccountExists = errors.New("an account with this student ID already exists")
)

const (
	// DefaultStaffPrefix marks librarian identifiers
	DefaultStaffPrefix = "LIB"
	// UnauthorizedMessage is shown for every rejected login
	UnauthorizedMessage = "Please check your credentials and try again."
)

// Credentials is the submitted login form
type Credentials struct {
	Kind       Role   `json:"kind"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// RegistrationForm is the submitted student sign-up form
type RegistrationForm struct {
	FullName        string `json:"fullName"`
	StudentID       string `json:"studentId"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the form before anything is stored
func (f RegistrationForm) Validate() error {
	required := []struct{ field, value string }{
		{"fullName", f.FullName},
		{"studentId", f.StudentID},
		{"email", f.Email},
		{"password", f.Password},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &models.ValidationError{Field: r.field, Message: "this field is required"}
		}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		return &models.ValidationError{Field: "email", Message: "enter a valid email address"}
	}
	if len(f.Password) > 72 {
		return &models.ValidationError{Field: "password", Message: "password must be at most 72 bytes"}
	}
	if f.Password != f.ConfirmPassword {
		return &models.ValidationError{Field: "confirmPassword", Message: "passwords do not match"}
	}
	return nil
}

// AccountStore keeps registered students in memory
type AccountStore struct {
	accounts map[string]models.Account
	mu       sync.RWMutex
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]models.Account)}
}

func (s *AccountStore) Get(studentID string) (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[studentID]
	return a, ok
}

// Create stores a new account, failing if the student ID is taken
func (s *AccountStore) Create(a models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[a.StudentID]; exists {
		return fmt.Errorf("%s: %w", a.StudentID, ErrAccountExists)
	}
	s.accounts[a.StudentID] = a
	return nil
}

func (s *AccountStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// Authenticator resolves login and registration forms into actors
type Authenticator struct {
	accounts    *AccountStore
	metrics     *metrics.Metrics
	staffPrefix string
	latency     time.Duration
	hashCost    int
	now         func() time.Time
}

func NewAuthenticator(accounts *AccountStore, m *metrics.Metrics, staffPrefix string, delay time.Duration) *Authenticator {
	if staffPrefix == "" {
		staffPrefix = DefaultStaffPrefix
	}
	if accounts == nil {
		accounts = NewAccountStore()
	}
	return &Authenticator{
		accounts:    accounts,
		metrics:     m,
		staffPrefix: staffPrefix,
		latency:     delay,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Login checks credentials and returns the actor to persist.
// Students are not checked against any store; librarians must carry the staff prefix.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (Actor, error) {
	id := strings.TrimSpace(creds.Identifier)
	if id == "" {
		return Anonymous, &models.ValidationError{Field: "identifier", Message: "this field is required"}
	}
	if creds.Password == "" {
		return Anonymous, &models.ValidationError{Field: "password", Message: "this field is required"}
	}
	if creds.Kind != RoleStudent && creds.Kind != RoleLibrarian {
		return Anonymous, &models.ValidationError{Field: "kind", Message: "choose student or librarian"}
	}

	if err := latency.Wait(ctx, a.latency); err != nil {
		return Anonymous, fmt.Errorf("login: %w", err)
	}

	switch creds.Kind {
	case RoleLibrarian:
		if !strings.HasPrefix(id, a.staffPrefix) {
			slog.Info("Rejected librarian login", "identifier", id)
			a.metrics.IncLogin(RoleLibrarian.String(), "unauthorized")
			return Anonymous, ErrUnauthorized
		}
		a.metrics.IncLogin(RoleLibrarian.String(), "ok")
		return Actor{Role: RoleLibrarian, ID: id, Name: "Librarian " + id}, nil
	default:
		name := "Student " + id
		if acct, ok := a.accounts.Get(id); ok {
			name = acct.FullName
		}
		a.metrics.IncLogin(RoleStudent.String(), "ok")
		return Actor{Role: RoleStudent, ID: id, Name: name}, nil
	}
}

// Register creates a student account. It does not sign the student in.
func (a *Authenticator) Register(ctx context.Context, form RegistrationForm) (models.Account, error) {
	if err := form.Validate(); err != nil {
		return models.Account{}, err
	}
	studentID := strings.TrimSpace(form.StudentID)
	if _, exists := a.accounts.Get(studentID); exists {
		return models.Account{}, fmt.Errorf("%s: %w", studentID, ErrAccountExists)
	}

	if err := latency.Wait(ctx, a.latency); err != nil {
		return models.Account{}, fmt.Errorf("register: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), a.hashCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}

	acct := models.Account{
		StudentID:    studentID,
		FullName:     strings.TrimSpace(form.FullName),
		Email:        strings.TrimSpace(form.Email),
		PasswordHash: string(hash),
		CreatedAt:    a.now(),
	}
	if err := a.accounts.Create(acct); err != nil {
		return models.Account{}, err
	}
	slog.Info("Registered student account", "student_id", studentID)
	return acct, nil
}
