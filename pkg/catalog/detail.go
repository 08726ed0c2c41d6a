package catalog

import (
	"context"
	"errors"

	"github.com/latoulicious/holocron/pkg/common"
	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/swapi"
)

// State is the detail view's load state
type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateFailed  State = "failed"
)

// CharacterDetail is the full record shown on the detail page
type CharacterDetail struct {
	ID        int
	Name      string
	Height    string
	Mass      string
	HairColor string
	SkinColor string
	EyeColor  string
	BirthYear string
	Gender    string
	Homeworld string
	Species   []string
	Vehicles  []string
	Starships []string
	Films     []string
	ImageURL  string
	URL       string
}

// DetailView is the rendered state of one detail page
type DetailView struct {
	ID        int
	State     State
	Character *CharacterDetail
	// FilmTitles holds the resolved titles in reference order
	FilmTitles   []string
	FilmFailures []common.Failure
	// Names maps a related reference URL to its resolved name
	Names map[string]string
	Err   error
}

// NotFound reports whether the record does not exist upstream
func (v DetailView) NotFound() bool {
	return errors.Is(v.Err, swapi.ErrNotFound)
}

// TimedOut reports whether the view failed because loading took too long
func (v DetailView) TimedOut() bool {
	return errors.Is(v.Err, common.ErrViewTimeout)
}

// SpeciesLabel is the first species or "Unknown"
func (v DetailView) SpeciesLabel() string {
	if v.Character == nil || len(v.Character.Species) == 0 {
		return "Unknown"
	}
	return v.name(v.Character.Species[0])
}

// HomeworldLabel is the homeworld name, falling back to the reference itself
func (v DetailView) HomeworldLabel() string {
	if v.Character == nil {
		return ""
	}
	return v.name(v.Character.Homeworld)
}

// VehicleLabels lists the vehicles; empty means "No vehicles listed"
func (v DetailView) VehicleLabels() []string {
	if v.Character == nil {
		return []string{}
	}
	return v.names(v.Character.Vehicles)
}

// StarshipLabels lists the starships; empty means "No starships listed"
func (v DetailView) StarshipLabels() []string {
	if v.Character == nil {
		return []string{}
	}
	return v.names(v.Character.Starships)
}

func (v DetailView) name(ref string) string {
	if name, ok := v.Names[ref]; ok && name != "" {
		return name
	}
	return ref
}

func (v DetailView) names(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		out = append(out, v.name(ref))
	}
	return out
}

// DetailOptions tunes the detail fan-out
type DetailOptions struct {
	// FetchLimit bounds concurrent related fetches
	FetchLimit int
	// ResolveReferences looks up names for homeworld, species, vehicles and starships
	ResolveReferences bool
}

// DetailService builds detail pages from the record endpoint
type DetailService struct {
	source    PeopleSource
	imageBase string
	timeouts  *common.TimeoutManager
	opts      DetailOptions
	logger    logging.Logger
}

// NewDetailService creates a new DetailService
func NewDetailService(source PeopleSource, imageBase string, timeouts *common.TimeoutManager, opts DetailOptions, logger logging.Logger) *DetailService {
	if logger == nil {
		logger = logging.GetGlobalLoggerFactory().CreateViewLogger("detail")
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = common.DefaultFetchLimit
	}
	return &DetailService{
		source:    source,
		imageBase: imageBase,
		timeouts:  timeouts,
		opts:      opts,
		logger:    logger,
	}
}

// Load moves a view from Loading to Loaded or Failed.
// Only the character record decides the state; related fetches that fail are
// reported per reference.
func (s *DetailService) Load(ctx context.Context, id int) DetailView {
	view := DetailView{
		ID:           id,
		State:        StateLoading,
		FilmTitles:   []string{},
		FilmFailures: []common.Failure{},
		Names:        map[string]string{},
	}

	err := s.timeouts.Run(ctx, "detail", func(ctx context.Context) error {
		person, err := s.source.GetPerson(ctx, id)
		if err != nil {
			return err
		}

		view.Character = toDetail(id, person, s.imageBase)
		view.State = StateLoaded
		s.resolve(ctx, &view)
		return nil
	})
	if err != nil && view.State != StateLoaded {
		view.State = StateFailed
		view.Err = err
		s.logger.Error("Error fetching character details", err, map[string]interface{}{
			"character_id": id,
			"error_class":  swapi.Classify(err),
			"timed_out":    errors.Is(err, common.ErrViewTimeout),
		})
		return view
	}

	if len(view.FilmFailures) > 0 {
		s.logger.Warn("Some films could not be resolved", map[string]interface{}{
			"character_id": id,
			"failed":       len(view.FilmFailures),
			"resolved":     len(view.FilmTitles),
		})
	}
	return view
}

func (s *DetailService) resolve(ctx context.Context, view *DetailView) {
	c := view.Character

	films := common.FetchAll(ctx, c.Films, s.opts.FetchLimit, func(ctx context.Context, ref string) (string, error) {
		film, err := s.source.GetFilm(ctx, ref)
		if err != nil {
			return "", err
		}
		return film.Title, nil
	})
	view.FilmTitles = films.Values
	view.FilmFailures = films.Failures

	if !s.opts.ResolveReferences {
		return
	}

	refs := relatedRefs(c)
	if len(refs) == 0 {
		return
	}
	named := common.FetchAll(ctx, refs, s.opts.FetchLimit, func(ctx context.Context, ref string) (swapi.NamedResource, error) {
		res, err := s.source.GetNamed(ctx, ref)
		if err != nil {
			return swapi.NamedResource{}, err
		}
		// Keyed by the reference as written on the record
		res.URL = ref
		return res, nil
	})
	for _, res := range named.Values {
		view.Names[res.URL] = res.Name
	}
	if len(named.Failures) > 0 {
		s.logger.Debug("Related references left unresolved", map[string]interface{}{
			"character_id": view.ID,
			"refs":         named.FailedRefs(),
		})
	}
}

// relatedRefs collects unique non-empty related references
func relatedRefs(c *CharacterDetail) []string {
	seen := map[string]bool{}
	refs := []string{}
	add := func(list ...string) {
		for _, ref := range list {
			if ref == "" || seen[ref] {
				continue
			}
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	add(c.Homeworld)
	add(c.Species...)
	add(c.Vehicles...)
	add(c.Starships...)
	return refs
}

func toDetail(id int, p swapi.Person, imageBase string) *CharacterDetail {
	return &CharacterDetail{
		ID:        id,
		Name:      p.Name,
		Height:    p.Height,
		Mass:      p.Mass,
		HairColor: p.HairColor,
		SkinColor: p.SkinColor,
		EyeColor:  p.EyeColor,
		BirthYear: p.BirthYear,
		Gender:    p.Gender,
		Homeworld: p.Homeworld,
		Species:   p.Species,
		Vehicles:  p.Vehicles,
		Starships: p.Starships,
		Films:     p.Films,
		ImageURL:  swapi.ImageURL(imageBase, id),
		URL:       p.URL,
	}
}
