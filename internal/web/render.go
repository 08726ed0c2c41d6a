package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/latoulicious/holocron/internal/version"
	"github.com/latoulicious/holocron/pkg/notify"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

// PlaceholderImage is shown when a portrait fails to load
const PlaceholderImage = "/assets/placeholder.svg"

// Renderer executes page templates; each page is parsed together with the base layout
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates once
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"now":         time.Now,
		"placeholder": func() string { return PlaceholderImage },
		"version":     func() string { return version.Get().Version },
		"join":        strings.Join,
		"toastClass": func(s notify.Status) string {
			return "toast toast-" + string(s)
		},
		"toggleArgs": toggleArgs,
	}

	base, err := template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/base.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "templates/"), ".tmpl")
		if name == "base" {
			continue
		}
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		page, err := clone.ParseFS(templateFS, file)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", file, err)
		}
		pages[name] = page
	}
	return &Renderer{pages: pages}, nil
}

// toggleForm feeds the shared favorite toggle partial
type toggleForm struct {
	Field    string
	Token    string
	Return   string
	ID       int
	Name     string
	URL      string
	ImageURL string
	Favorite bool
}

func toggleArgs(page interface{ Base() Layout }, id int, name, url, imageURL string, favorite bool) toggleForm {
	base := page.Base()
	return toggleForm{
		Field:    base.CSRFField,
		Token:    base.CSRFToken,
		Return:   base.ReturnTo,
		ID:       id,
		Name:     name,
		URL:      url,
		ImageURL: imageURL,
		Favorite: favorite,
	}
}

// Render executes the named page into the base layout
func (rd *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := rd.pages[page]
	if !ok {
		return fmt.Errorf("unknown page template %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Assets serves the embedded static files
func Assets() http.Handler {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
