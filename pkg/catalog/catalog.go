package catalog

import (
	"context"
	"strconv"
	"strings"

	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/swapi"
)

// PageSize is the listing page size the API serves
const PageSize = 10

// PeopleSource is the subset of the API client the views need
type PeopleSource interface {
	ListPeople(ctx context.Context, page int) (swapi.PeoplePage, error)
	GetPerson(ctx context.Context, id int) (swapi.Person, error)
	GetFilm(ctx context.Context, ref string) (swapi.Film, error)
	GetNamed(ctx context.Context, ref string) (swapi.NamedResource, error)
}

// CharacterSummary is one card on the catalog page
type CharacterSummary struct {
	ID       int
	Name     string
	Height   string
	Mass     string
	ImageURL string
	URL      string
}

// PageView is the rendered state of one catalog page
type PageView struct {
	Page       int
	Characters []CharacterSummary
	HasPrev    bool
	HasNext    bool
	Err        error
}

// PrevPage is the page number the Previous control links to
func (v PageView) PrevPage() int {
	if v.Page <= 1 {
		return 1
	}
	return v.Page - 1
}

// NextPage is the page number the Next control links to
func (v PageView) NextPage() int {
	return v.Page + 1
}

// Empty reports whether there is nothing to show
func (v PageView) Empty() bool {
	return len(v.Characters) == 0
}

// CatalogService builds catalog pages from the listing endpoint
type CatalogService struct {
	source    PeopleSource
	imageBase string
	logger    logging.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(source PeopleSource, imageBase string, logger logging.Logger) *CatalogService {
	if logger == nil {
		logger = logging.GetGlobalLoggerFactory().CreateViewLogger("catalog")
	}
	return &CatalogService{
		source:    source,
		imageBase: imageBase,
		logger:    logger,
	}
}

// Page fetches page n once and maps its results to cards.
// On failure the view carries the error and an empty list.
func (s *CatalogService) Page(ctx context.Context, page int) PageView {
	if page < 1 {
		page = 1
	}
	view := PageView{
		Page:       page,
		Characters: []CharacterSummary{},
		HasPrev:    page > 1,
	}

	result, err := s.source.ListPeople(ctx, page)
	if err != nil {
		s.logger.Error("Error fetching characters", err, map[string]interface{}{
			"page":        page,
			"error_class": swapi.Classify(err),
		})
		view.Err = err
		return view
	}

	for i, person := range result.Results {
		id := SynthesizedID(i, page)
		view.Characters = append(view.Characters, CharacterSummary{
			ID:       id,
			Name:     person.Name,
			Height:   person.Height,
			Mass:     person.Mass,
			ImageURL: swapi.ImageURL(s.imageBase, id),
			URL:      person.URL,
		})
	}
	// A short page is the last one
	view.HasNext = len(view.Characters) >= PageSize

	s.logger.Debug("Catalog page built", map[string]interface{}{
		"page":       page,
		"characters": len(view.Characters),
		"has_next":   view.HasNext,
	})
	return view
}

// SynthesizedID numbers characters by position, assuming fixed-size pages
func SynthesizedID(index, page int) int {
	return index + 1 + (page-1)*PageSize
}

// ParsePage reads a page query value; anything invalid is page 1
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseID reads a character id path value
func ParseID(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
