package session

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"
)

// CookieName is the name of the signed session cookie
const CookieName = "library_session"

const (
	keyRole      = "role"
	keyActorID   = "actor_id"
	keyActorName = "actor_name"
)

// Flash is a one-shot toast shown on the next rendered page
type Flash struct {
	Kind    string // "success" or "error"
	Title   string
	Message string
}

func init() {
	gob.Register(Flash{})
}

// Manager persists the actor in a signed cookie
type Manager struct {
	store sessions.Store
	name  string
}

// NewManager builds a cookie-backed manager. secret signs the cookie.
func NewManager(secret []byte, secure bool, maxAge int) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewManagerWithStore(store)
}

func NewManagerWithStore(store sessions.Store) *Manager {
	return &Manager{store: store, name: CookieName}
}

// session returns the request's session. A cookie that fails to decode yields a fresh session.
func (m *Manager) session(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, m.name)
	if err != nil {
		slog.Debug("Discarding unreadable session cookie", "err", err)
	}
	if s == nil {
		s = sessions.NewSession(m.store, m.name)
	}
	return s
}

// Load rehydrates the actor. Missing, forged or unknown values are Anonymous.
func (m *Manager) Load(r *http.Request) Actor {
	s := m.session(r)
	raw, _ := s.Values[keyRole].(string)
	role := ParseRole(raw)
	if role == RoleAnonymous {
		return Anonymous
	}
	id, _ := s.Values[keyActorID].(string)
	name, _ := s.Values[keyActorName].(string)
	return Actor{Role: role, ID: id, Name: name}
}

// Save persists a signed-in actor
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, a Actor) error {
	if !a.SignedIn() {
		return m.Clear(w, r)
	}
	s := m.session(r)
	s.Values[keyRole] = string(a.Role)
	s.Values[keyActorID] = a.ID
	s.Values[keyActorName] = a.Name
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear signs the visitor out, leaving pending flashes in place
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	s := m.session(r)
	delete(s.Values, keyRole)
	delete(s.Values, keyActorID)
	delete(s.Values, keyActorName)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, f Flash) error {
	s := m.session(r)
	s.AddFlash(f)
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("failed to save flash: %w", err)
	}
	return nil
}

// Flashes pops pending flashes
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.session(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(r, w); err != nil {
		slog.Error("Unable to save session after reading flashes", "err", err)
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// Middleware stores the rehydrated actor on the request context
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := m.Load(r)
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole gates a handler. Anonymous visitors are sent to the login page;
// signed-in visitors without one of roles get forbidden. With no roles any signed-in actor passes.
func RequireRole(forbidden http.Handler, roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFrom(r.Context())
			if !actor.SignedIn() {
				http.Redirect(w, r, LoginURL(r.URL.RequestURI()), http.StatusFound)
				return
			}
			if len(roles) > 0 && !actor.HasRole(roles...) {
				slog.Info("Forbidden", "path", r.URL.Path, "role", actor.Role.String())
				forbidden.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginURL is the login page with a return path
func LoginURL(next string) string {
	next = SafeNext(next)
	if next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeNext keeps redirects on this site. Anything else becomes "/".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
