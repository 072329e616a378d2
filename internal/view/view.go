// Package view renders the server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"warbler/internal/model"
	"warbler/internal/session"
)

//go:embed templates
var templateFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsGlob = "templates/partials/*.html"
)

// Page is the data every template receives. Data holds the page-specific part.
type Page struct {
	Title       string
	CurrentUser *model.User
	Flashes     []session.Flash
	Data        any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"timestamp": func(t time.Time) string {
		return t.Format("02 January 2006")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	// dict builds the argument map for partial templates.
	"dict": func(kv ...any) (map[string]any, error) {
		if len(kv)%2 != 0 {
			return nil, errors.New("dict needs key/value pairs")
		}
		m := make(map[string]any, len(kv)/2)
		for i := 0; i < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict key %v is not a string", kv[i])
			}
			m[key] = kv[i+1]
		}
		return m, nil
	},
}

// New parses the layout and every page under templates/. Pages are addressed by
// their path without the extension, e.g. "users/show".
func New() (*Renderer, error) {
	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, layoutFile, partialsGlob)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	err = fs.WalkDir(templateFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == "templates/partials" {
				return fs.SkipDir
			}
			return nil
		}
		if path == layoutFile || !strings.HasSuffix(path, ".html") {
			return nil
		}

		tmpl, err := template.Must(layout.Clone()).ParseFS(templateFS, path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		name := strings.TrimSuffix(strings.TrimPrefix(path, "templates/"), ".html")
		r.pages[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Render executes page into a buffer and writes it with status. Nothing is
// written if the template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Page) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
