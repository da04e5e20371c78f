// Package session decides who the current visitor is and what they may do.
//
// A visitor is Anonymous, a Student or a Librarian. The role is carried in a
// signed cookie and rehydrated on every request; anything that does not
// decode to a known role is treated as Anonymous.
package session

import "context"

// Role is the active actor's role
type Role string

const (
	RoleAnonymous Role = ""
	RoleStudent   Role = "student"
	RoleLibrarian Role = "librarian"
)

// ParseRole maps a persisted flag to a role. Unknown values are Anonymous.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleStudent:
		return RoleStudent
	case RoleLibrarian:
		return RoleLibrarian
	default:
		return RoleAnonymous
	}
}

func (r Role) String() string {
	if r == RoleAnonymous {
		return "anonymous"
	}
	return string(r)
}

// Label is the capitalised role name shown in the navbar
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleLibrarian:
		return "Librarian"
	default:
		return "Guest"
	}
}

// Actor is the visitor behind a request
type Actor struct {
	Role Role
	ID   string // student or staff id
	Name string
}

// Anonymous is the signed-out actor
var Anonymous = Actor{}

func (a Actor) SignedIn() bool { return a.Role != RoleAnonymous }

// ShowsDashboardNav gates the Dashboard navbar entry
func (a Actor) ShowsDashboardNav() bool { return a.SignedIn() }

// ShowsAdminNav gates the Admin navbar entry
func (a Actor) ShowsAdminNav() bool { return a.Role == RoleLibrarian }

// CanReserve gates the reservation action on book details
func (a Actor) CanReserve() bool { return a.Role == RoleStudent }

// CanEdit gates the edit and add book actions
func (a Actor) CanEdit() bool { return a.Role == RoleLibrarian }

// HasRole reports whether the actor holds one of roles
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

type actorKey struct{}

// WithActor stores the actor on a context
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom returns the actor stored by WithActor, or Anonymous
func ActorFrom(ctx context.Context) Actor {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok {
		return Anonymous
	}
	return a
}
