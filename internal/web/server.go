package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	mw "github.com/latoulicious/holocron/internal/middleware"
	"github.com/latoulicious/holocron/pkg/catalog"
	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/notify"
)

// Deps are the collaborators the web server is built from
type Deps struct {
	Catalog        *catalog.CatalogService
	Detail         *catalog.DetailService
	Cookies        *mw.Cookies
	Health         *Health
	LoggerFactory  logging.LoggerFactory
	RequestTimeout time.Duration
}

// Server renders the catalog, detail and favorites pages
type Server struct {
	catalog  *catalog.CatalogService
	detail   *catalog.DetailService
	cookies  *mw.Cookies
	health   *Health
	notes    notify.CatalogBuilder
	renderer *Renderer
	factory  logging.LoggerFactory
	timeout  time.Duration
}

// NewServer creates a new Server
func NewServer(deps Deps) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	factory := deps.LoggerFactory
	if factory == nil {
		factory = logging.GetGlobalLoggerFactory()
	}
	health := deps.Health
	if health == nil {
		health = NewHealth(nil, nil)
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Server{
		catalog:  deps.Catalog,
		detail:   deps.Detail,
		cookies:  deps.Cookies,
		health:   health,
		notes:    notify.Default(),
		renderer: renderer,
		factory:  factory,
		timeout:  timeout,
	}, nil
}

// Router builds the HTTP handler
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For; deploy behind a proxy that sets it
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(s.factory))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", s.health.HandleHealth)
	r.Get("/status", s.health.HandleStatus)
	r.Handle("/assets/*", http.StripPrefix("/assets/", Assets()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Use(s.cookies.Session)
		r.Use(mw.CSRF)

		r.Get("/", s.handleCatalog)
		r.Get("/character/{id}", s.handleDetail)
		r.Get("/favorites", s.handleFavorites)
		r.Post("/favorites/toggle", s.handleToggle)
	})

	r.NotFound(s.handleNotFound)
	return r
}
