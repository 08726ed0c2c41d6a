package swapi

import "strings"

// Person is a validated character record from the record or listing endpoint
type Person struct {
	Name      string
	Height    string
	Mass      string
	HairColor string
	SkinColor string
	EyeColor  string
	BirthYear string
	Gender    string
	Homeworld string
	Films     []string
	Species   []string
	Vehicles  []string
	Starships []string
	URL       string
}

// PeoplePage is one page of the listing endpoint
type PeoplePage struct {
	Count    int
	Next     string
	Previous string
	Results  []Person
}

// HasNext reports whether the API advertised a following page
func (p PeoplePage) HasNext() bool {
	return p.Next != ""
}

// Film is a validated film record
type Film struct {
	Title       string
	EpisodeID   int
	Director    string
	ReleaseDate string
	URL         string
}

// NamedResource is any referenced record identified by its name (planet, species, vehicle, starship)
type NamedResource struct {
	Name string
	URL  string
}

type listPayload struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  *[]personPayload `json:"results"`
}

type personPayload struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	HairColor string   `json:"hair_color"`
	SkinColor string   `json:"skin_color"`
	EyeColor  string   `json:"eye_color"`
	BirthYear string   `json:"birth_year"`
	Gender    string   `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Vehicles  []string `json:"vehicles"`
	Starships []string `json:"starships"`
	URL       string   `json:"url"`
}

type filmPayload struct {
	Title       string `json:"title"`
	EpisodeID   int    `json:"episode_id"`
	Director    string `json:"director"`
	ReleaseDate string `json:"release_date"`
	URL         string `json:"url"`
}

type namedPayload struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (p listPayload) toPage(source string) (PeoplePage, error) {
	if p.Results == nil {
		return PeoplePage{}, &DecodeError{URL: source, Field: "results"}
	}

	page := PeoplePage{
		Count:    p.Count,
		Next:     deref(p.Next),
		Previous: deref(p.Previous),
		Results:  make([]Person, 0, len(*p.Results)),
	}
	for _, raw := range *p.Results {
		person, err := raw.toPerson(source)
		if err != nil {
			return PeoplePage{}, err
		}
		page.Results = append(page.Results, person)
	}
	return page, nil
}

func (p personPayload) toPerson(source string) (Person, error) {
	if strings.TrimSpace(p.Name) == "" {
		return Person{}, &DecodeError{URL: source, Field: "name"}
	}
	return Person{
		Name:      strings.TrimSpace(p.Name),
		Height:    p.Height,
		Mass:      p.Mass,
		HairColor: p.HairColor,
		SkinColor: p.SkinColor,
		EyeColor:  p.EyeColor,
		BirthYear: p.BirthYear,
		Gender:    p.Gender,
		Homeworld: p.Homeworld,
		Films:     nonNil(p.Films),
		Species:   nonNil(p.Species),
		Vehicles:  nonNil(p.Vehicles),
		Starships: nonNil(p.Starships),
		URL:       p.URL,
	}, nil
}

func (p filmPayload) toFilm(source string) (Film, error) {
	if strings.TrimSpace(p.Title) == "" {
		return Film{}, &DecodeError{URL: source, Field: "title"}
	}
	return Film{
		Title:       strings.TrimSpace(p.Title),
		EpisodeID:   p.EpisodeID,
		Director:    p.Director,
		ReleaseDate: p.ReleaseDate,
		URL:         defaultString(p.URL, source),
	}, nil
}

func (p namedPayload) toNamed(source string) (NamedResource, error) {
	if strings.TrimSpace(p.Name) == "" {
		return NamedResource{}, &DecodeError{URL: source, Field: "name"}
	}
	return NamedResource{
		Name: strings.TrimSpace(p.Name),
		URL:  defaultString(p.URL, source),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func defaultString(val, fallback string) string {
	if strings.TrimSpace(val) == "" {
		return fallback
	}
	return strings.TrimSpace(val)
}
