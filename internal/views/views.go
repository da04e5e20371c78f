// Package views renders the portal's server-side HTML pages.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/lehigh-university-libraries/portal/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages rendered inside the shared layout
const (
	PageHome               = "home"
	PageLogin              = "login"
	PageBooks              = "books"
	PageBook               = "book"
	PageStudentDashboard   = "dashboard_student"
	PageLibrarianDashboard = "dashboard_librarian"
	PageError              = "error"
)

var pageNames = []string{
	PageHome,
	PageLogin,
	PageBooks,
	PageBook,
	PageStudentDashboard,
	PageLibrarianDashboard,
	PageError,
}

// Page is what every template receives
type Page struct {
	Title     string
	Path      string
	Actor     session.Actor
	Flashes   []session.Flash
	CSRFField template.HTML
	Data      any
}

// Renderer holds one parsed template set per page
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"add":   func(a, b int) int { return a + b },
	"lower": strings.ToLower,
	"initial": func(s string) string {
		for _, r := range s {
			return strings.ToUpper(string(r))
		}
		return "?"
	},
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into w
func (r *Renderer) Render(w io.Writer, name string, p Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	if err := t.ExecuteTemplate(w, "layout", p); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// Static returns the embedded static assets
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
