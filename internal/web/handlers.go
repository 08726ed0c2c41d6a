package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-chi/chi/v5"

	mw "github.com/latoulicious/holocron/internal/middleware"
	"github.com/latoulicious/holocron/pkg/catalog"
	"github.com/latoulicious/holocron/pkg/favorites"
	"github.com/latoulicious/holocron/pkg/notify"
)

type Layout struct {
	Title          string
	CSRFToken      string
	CSRFField      string
	Toasts         []notify.Notification
	FavoritesCount int
	ReturnTo       string
}

// Base exposes the layout to template helpers
func (l Layout) Base() Layout { return l }

type catalogPage struct {
	Layout
	View      catalog.PageView
	Favorites map[string]bool
}

type detailPage struct {
	Layout
	View       catalog.DetailView
	IsFavorite bool
}

type favoritesPage struct {
	Layout
	Entries []favorites.Entry
}

type errorPage struct {
	Layout
	Status  int
	Message string
}

// loadFavorites reads the visitor's favorites; corrupt state becomes a warning toast
func (s *Server) loadFavorites(w http.ResponseWriter, r *http.Request) (*favorites.Store, []notify.Notification) {
	store := favorites.NewStore(s.cookies.Storage(w, r))
	toasts := []notify.Notification{}
	if err := store.Load(); err != nil {
		logger := mw.LoggerFrom(r.Context())
		if errors.Is(err, favorites.ErrCorruptState) {
			logger.Warn("Stored favorites are corrupt, starting empty", map[string]interface{}{
				"error": err.Error(),
			})
			toasts = append(toasts, s.notes.FavoritesReset())
		} else {
			logger.Error("Failed to read favorites", err, nil)
		}
	}
	return store, toasts
}

func (s *Server) newLayout(w http.ResponseWriter, r *http.Request, title string, store *favorites.Store, toasts []notify.Notification) Layout {
	flash := s.cookies.ConsumeFlash(w, r)
	return Layout{
		Title:          title,
		CSRFToken:      mw.GetSession(r).CSRFToken,
		CSRFField:      mw.CSRFFormField,
		Toasts:         append(flash, toasts...),
		FavoritesCount: store.Len(),
		ReturnTo:       r.URL.RequestURI(),
	}
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	page := catalog.ParsePage(r.URL.Query().Get("page"))
	store, toasts := s.loadFavorites(w, r)

	view := s.catalog.Page(r.Context(), page)
	if view.Err != nil {
		toasts = append(toasts, s.notes.FetchFailed())
	}

	data := catalogPage{
		Layout:    s.newLayout(w, r, "All Characters", store, toasts),
		View:      view,
		Favorites: store.Names(),
	}
	s.render(w, r, http.StatusOK, "catalog", data)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := catalog.ParseID(chi.URLParam(r, "id"))
	if !ok {
		s.renderError(w, r, http.StatusNotFound, "Character not found.")
		return
	}

	store, toasts := s.loadFavorites(w, r)
	view := s.detail.Load(r.Context(), id)

	status := http.StatusOK
	title := "Character"
	switch {
	case view.State == catalog.StateLoaded:
		title = view.Character.Name
	case view.NotFound():
		status = http.StatusNotFound
	case view.TimedOut():
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusBadGateway
	}
	if view.State == catalog.StateFailed && !view.NotFound() {
		toasts = append(toasts, s.notes.DetailFailed())
	}

	data := detailPage{
		Layout: s.newLayout(w, r, title, store, toasts),
		View:   view,
	}
	if view.Character != nil {
		data.IsFavorite = store.Contains(view.Character.Name)
	}
	s.render(w, r, status, "detail", data)
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	store, toasts := s.loadFavorites(w, r)
	data := favoritesPage{
		Layout:  s.newLayout(w, r, "Favorites", store, toasts),
		Entries: store.List(),
	}
	s.render(w, r, http.StatusOK, "favorites", data)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Malformed request.")
		return
	}

	entry := favorites.Entry{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		URL:      strings.TrimSpace(r.PostFormValue("url")),
		ImageURL: strings.TrimSpace(r.PostFormValue("imageUrl")),
	}
	entry.ID, _ = strconv.Atoi(r.PostFormValue("id"))
	if entry.Name == "" {
		s.renderError(w, r, http.StatusBadRequest, "Missing character name.")
		return
	}

	store, _ := s.loadFavorites(w, r)
	action, err := store.Toggle(entry)
	logger := mw.LoggerFrom(r.Context())
	switch {
	case err != nil:
		logger.Error("Failed to toggle favorite", err, map[string]interface{}{"name": entry.Name})
		s.cookies.AddFlash(w, r, s.notes.Error("Could not update favorites", ""))
	case action == favorites.Added:
		logger.Info("Favorite added", map[string]interface{}{"name": entry.Name, "count": store.Len()})
		s.cookies.AddFlash(w, r, s.notes.FavoriteAdded(entry.Name))
	default:
		logger.Info("Favorite removed", map[string]interface{}{"name": entry.Name, "count": store.Len()})
		s.cookies.AddFlash(w, r, s.notes.FavoriteRemoved(entry.Name))
	}

	http.Redirect(w, r, safeReturn(r.PostFormValue("return")), http.StatusSeeOther)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "404 page not found", http.StatusNotFound)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	store, toasts := s.loadFavorites(w, r)
	data := errorPage{
		Layout:  s.newLayout(w, r, http.StatusText(status), store, toasts),
		Status:  status,
		Message: message,
	}
	s.render(w, r, status, "error", data)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.renderer.Render(w, status, page, data); err != nil {
		mw.LoggerFrom(r.Context()).Error("Failed to render page", err, map[string]interface{}{"page": page})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// safeReturn only allows local absolute paths as redirect targets
func safeReturn(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.ContainsRune(target, '\\') {
		return "/"
	}
	for _, r := range target {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return "/"
		}
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return "/"
	}
	return target
}
