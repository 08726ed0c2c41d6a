package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/holocron/pkg/common"
	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/swapi"
)

const api = "https://swapi.dev/api"

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ListPeople(ctx context.Context, page int) (swapi.PeoplePage, error) {
	args := m.Called(ctx, page)
	return args.Get(0).(swapi.PeoplePage), args.Error(1)
}

func (m *mockSource) GetPerson(ctx context.Context, id int) (swapi.Person, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(swapi.Person), args.Error(1)
}

func (m *mockSource) GetFilm(ctx context.Context, ref string) (swapi.Film, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(swapi.Film), args.Error(1)
}

func (m *mockSource) GetNamed(ctx context.Context, ref string) (swapi.NamedResource, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(swapi.NamedResource), args.Error(1)
}

func testLogger() logging.Logger {
	return logging.NewLoggerFactory().CreateViewLogger("catalog_test")
}

func people(prefix string, n int) []swapi.Person {
	out := make([]swapi.Person, n)
	for i := range out {
		out[i] = swapi.Person{Name: fmt.Sprintf("%s %d", prefix, i), Height: "172", Mass: "77"}
	}
	return out
}

func TestCatalogService_FirstPage(t *testing.T) {
	source := &mockSource{}
	source.On("ListPeople", mock.Anything, 1).Return(swapi.PeoplePage{Results: people("p1", 10)}, nil).Once()

	view := NewCatalogService(source, "https://img", testLogger()).Page(context.Background(), 1)

	require.NoError(t, view.Err)
	require.Len(t, view.Characters, 10)
	assert.Equal(t, 1, view.Characters[0].ID)
	assert.Equal(t, 10, view.Characters[9].ID)
	assert.Equal(t, "https://img/1.jpg", view.Characters[0].ImageURL)
	assert.False(t, view.HasPrev)
	assert.True(t, view.HasNext)
	source.AssertExpectations(t)
}

func TestCatalogService_PagesDoNotIntermix(t *testing.T) {
	source := &mockSource{}
	source.On("ListPeople", mock.Anything, 2).Return(swapi.PeoplePage{Results: people("p2", 10)}, nil).Once()
	source.On("ListPeople", mock.Anything, 3).Return(swapi.PeoplePage{Results: people("p3", 10)}, nil).Once()

	svc := NewCatalogService(source, "", testLogger())
	two := svc.Page(context.Background(), 2)
	three := svc.Page(context.Background(), 3)

	for _, c := range two.Characters {
		assert.Contains(t, c.Name, "p2")
		assert.GreaterOrEqual(t, c.ID, 11)
		assert.LessOrEqual(t, c.ID, 20)
	}
	for _, c := range three.Characters {
		assert.Contains(t, c.Name, "p3")
		assert.GreaterOrEqual(t, c.ID, 21)
	}
	assert.True(t, two.HasPrev)
	assert.Equal(t, 1, two.PrevPage())
	assert.Equal(t, 4, three.NextPage())
}

func TestCatalogService_ShortPageDisablesNext(t *testing.T) {
	source := &mockSource{}
	source.On("ListPeople", mock.Anything, 9).Return(swapi.PeoplePage{Results: people("p9", 2)}, nil)

	view := NewCatalogService(source, "", testLogger()).Page(context.Background(), 9)
	assert.False(t, view.HasNext)
	assert.True(t, view.HasPrev)
	assert.Equal(t, 81, view.Characters[0].ID)
}

func TestCatalogService_FailureYieldsEmptyList(t *testing.T) {
	source := &mockSource{}
	boom := &swapi.StatusError{URL: api + "/people/?page=1", StatusCode: 500}
	source.On("ListPeople", mock.Anything, 1).Return(swapi.PeoplePage{}, boom).Once()

	view := NewCatalogService(source, "", testLogger()).Page(context.Background(), 1)
	assert.ErrorIs(t, view.Err, boom)
	assert.True(t, view.Empty())
	assert.NotNil(t, view.Characters)
	assert.False(t, view.HasNext)
	source.AssertNumberOfCalls(t, "ListPeople", 1)
}

func TestCatalogService_ClampsPage(t *testing.T) {
	source := &mockSource{}
	source.On("ListPeople", mock.Anything, 1).Return(swapi.PeoplePage{Results: people("p", 1)}, nil)

	view := NewCatalogService(source, "", testLogger()).Page(context.Background(), -3)
	assert.Equal(t, 1, view.Page)
}

func TestParsePageAndID(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 4, ParsePage(" 4 "))

	id, ok := ParseID("12")
	assert.True(t, ok)
	assert.Equal(t, 12, id)
	_, ok = ParseID("-1")
	assert.False(t, ok)
	_, ok = ParseID("luke")
	assert.False(t, ok)
}

func TestSynthesizedID(t *testing.T) {
	assert.Equal(t, 1, SynthesizedID(0, 1))
	assert.Equal(t, 15, SynthesizedID(4, 2))
}

func lukeRecord() swapi.Person {
	return swapi.Person{
		Name:      "Luke Skywalker",
		Height:    "172",
		Mass:      "77",
		HairColor: "blond",
		SkinColor: "fair",
		EyeColor:  "blue",
		BirthYear: "19BBY",
		Gender:    "male",
		Homeworld: api + "/planets/1/",
		Films:     []string{api + "/films/1/", api + "/films/2/"},
		Species:   []string{},
		Vehicles:  []string{api + "/vehicles/14/"},
		Starships: []string{},
		URL:       api + "/people/1/",
	}
}

func TestDetailService_FilmTitlesInOrder(t *testing.T) {
	source := &mockSource{}
	source.On("GetPerson", mock.Anything, 1).Return(lukeRecord(), nil)
	source.On("GetFilm", mock.Anything, api+"/films/1/").
		After(20*time.Millisecond).Return(swapi.Film{Title: "A New Hope"}, nil)
	source.On("GetFilm", mock.Anything, api+"/films/2/").Return(swapi.Film{Title: "The Empire Strikes Back"}, nil)

	svc := NewDetailService(source, "", nil, DetailOptions{FetchLimit: 2}, testLogger())
	view := svc.Load(context.Background(), 1)

	require.Equal(t, StateLoaded, view.State)
	assert.Equal(t, []string{"A New Hope", "The Empire Strikes Back"}, view.FilmTitles)
	assert.Empty(t, view.FilmFailures)
	assert.Equal(t, "Luke Skywalker", view.Character.Name)
}

func TestDetailService_SpeciesLabel(t *testing.T) {
	source := &mockSource{}
	record := lukeRecord()
	record.Films = []string{}
	source.On("GetPerson", mock.Anything, 1).Return(record, nil)

	droid := lukeRecord()
	droid.Films = []string{}
	droid.Species = []string{api + "/species/2/"}
	source.On("GetPerson", mock.Anything, 2).Return(droid, nil)

	svc := NewDetailService(source, "", nil, DetailOptions{}, testLogger())

	assert.Equal(t, "Unknown", svc.Load(context.Background(), 1).SpeciesLabel())
	assert.Equal(t, api+"/species/2/", svc.Load(context.Background(), 2).SpeciesLabel())
}

func TestDetailService_ResolvesReferenceNames(t *testing.T) {
	source := &mockSource{}
	record := lukeRecord()
	record.Films = []string{}
	record.Species = []string{api + "/species/1/"}
	source.On("GetPerson", mock.Anything, 1).Return(record, nil)
	source.On("GetNamed", mock.Anything, api+"/planets/1/").Return(swapi.NamedResource{Name: "Tatooine"}, nil)
	source.On("GetNamed", mock.Anything, api+"/species/1/").Return(swapi.NamedResource{Name: "Human"}, nil)
	source.On("GetNamed", mock.Anything, api+"/vehicles/14/").Return(swapi.NamedResource{}, errors.New("offline"))

	svc := NewDetailService(source, "", nil, DetailOptions{ResolveReferences: true}, testLogger())
	view := svc.Load(context.Background(), 1)

	require.Equal(t, StateLoaded, view.State)
	assert.Equal(t, "Tatooine", view.HomeworldLabel())
	assert.Equal(t, "Human", view.SpeciesLabel())
	assert.Equal(t, []string{api + "/vehicles/14/"}, view.VehicleLabels())
	assert.Empty(t, view.StarshipLabels())
}

func TestDetailService_PartialFilmFailure(t *testing.T) {
	source := &mockSource{}
	source.On("GetPerson", mock.Anything, 1).Return(lukeRecord(), nil)
	source.On("GetFilm", mock.Anything, api+"/films/1/").Return(swapi.Film{}, &swapi.StatusError{StatusCode: 502})
	source.On("GetFilm", mock.Anything, api+"/films/2/").Return(swapi.Film{Title: "The Empire Strikes Back"}, nil)

	view := NewDetailService(source, "", nil, DetailOptions{}, testLogger()).Load(context.Background(), 1)

	assert.Equal(t, StateLoaded, view.State)
	assert.Equal(t, []string{"The Empire Strikes Back"}, view.FilmTitles)
	require.Len(t, view.FilmFailures, 1)
	assert.Equal(t, api+"/films/1/", view.FilmFailures[0].Ref)
}

func TestDetailService_RecordFailure(t *testing.T) {
	source := &mockSource{}
	source.On("GetPerson", mock.Anything, 404).Return(swapi.Person{}, &swapi.StatusError{StatusCode: 404})

	view := NewDetailService(source, "", nil, DetailOptions{}, testLogger()).Load(context.Background(), 404)

	assert.Equal(t, StateFailed, view.State)
	assert.True(t, view.NotFound())
	assert.Nil(t, view.Character)
	assert.Equal(t, "Unknown", view.SpeciesLabel())
	source.AssertNotCalled(t, "GetFilm", mock.Anything, mock.Anything)
}

func TestDetailService_TimeoutFails(t *testing.T) {
	source := &mockSource{}
	source.On("GetPerson", mock.Anything, 1).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		<-ctx.Done()
	}).Return(swapi.Person{}, context.DeadlineExceeded)

	timeouts := common.NewTimeoutManager(20 * time.Millisecond)
	view := NewDetailService(source, "", timeouts, DetailOptions{}, testLogger()).Load(context.Background(), 1)

	assert.Equal(t, StateFailed, view.State)
	assert.True(t, view.TimedOut())
}
