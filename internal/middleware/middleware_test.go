package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/holocron/pkg/favorites"
	"github.com/latoulicious/holocron/pkg/logging"
	"github.com/latoulicious/holocron/pkg/notify"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testCookies() *Cookies {
	signer, _ := NewSigner(testKey)
	return NewCookies(signer, false)
}

// carry copies response cookies onto a follow-up request, honouring deletions
func carry(t *testing.T, rec *httptest.ResponseRecorder, req *http.Request, prev []*http.Cookie) []*http.Cookie {
	t.Helper()
	jar := map[string]*http.Cookie{}
	for _, c := range prev {
		jar[c.Name] = c
	}
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(jar, c.Name)
			continue
		}
		jar[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(jar))
	for _, c := range jar {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		out = append(out, c)
	}
	return out
}

func TestSigner_RoundTripAndTamper(t *testing.T) {
	signer, ephemeral := NewSigner(testKey)
	assert.False(t, ephemeral)

	value := signer.Sign([]byte(`[{"name":"Luke Skywalker"}]`))
	payload, err := signer.Verify(value)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Luke Skywalker"}]`, string(payload))

	_, err = signer.Verify("x" + value)
	assert.ErrorIs(t, err, ErrBadSignature)

	other, ephemeral := NewSigner("")
	assert.True(t, ephemeral)
	_, err = other.Verify(value)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestCookieStorage_FavoritesSurviveRequests(t *testing.T) {
	cookies := testCookies()

	req := httptest.NewRequest(http.MethodPost, "/favorites/toggle", nil)
	rec := httptest.NewRecorder()
	store := favorites.NewStore(cookies.Storage(rec, req))
	require.NoError(t, store.Load())
	_, err := store.Toggle(favorites.Entry{Name: "Luke Skywalker", ID: 1})
	require.NoError(t, err)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	carry(t, rec, next, nil)
	reloaded := favorites.NewStore(cookies.Storage(httptest.NewRecorder(), next))
	require.NoError(t, reloaded.Load())
	assert.True(t, reloaded.Contains("Luke Skywalker"))
}

func TestCookieStorage_ChunksLargeValuesAndExpiresStale(t *testing.T) {
	cookies := testCookies()
	big := strings.Repeat("a", chunkSize*2)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, cookies.Storage(rec, req).SetItem("favorites", big))

	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
		assert.LessOrEqual(t, len(c.Value), chunkSize)
		assert.True(t, c.HttpOnly)
	}
	assert.True(t, names["holocron_favorites.2"])

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	jar := carry(t, rec, next, nil)
	got, ok, err := cookies.Storage(httptest.NewRecorder(), next).GetItem("favorites")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, big, got)

	shrinkRec := httptest.NewRecorder()
	require.NoError(t, cookies.Storage(shrinkRec, next).SetItem("favorites", "[]"))
	expired := 0
	for _, c := range shrinkRec.Result().Cookies() {
		if c.MaxAge < 0 {
			expired++
		}
	}
	assert.Equal(t, 2, expired)

	final := httptest.NewRequest(http.MethodGet, "/", nil)
	carry(t, shrinkRec, final, jar)
	got, ok, err = cookies.Storage(httptest.NewRecorder(), final).GetItem("favorites")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "[]", got)
}

func TestCookieStorage_TamperedValueIsCorrupt(t *testing.T) {
	cookies := testCookies()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "holocron_favorites", Value: "1"})
	req.AddCookie(&http.Cookie{Name: "holocron_favorites.0", Value: "bm90IHNpZ25lZA.AAAA"})

	store := favorites.NewStore(cookies.Storage(httptest.NewRecorder(), req))
	err := store.Load()
	assert.ErrorIs(t, err, favorites.ErrCorruptState)
	assert.Equal(t, 0, store.Len())
}

func TestCookieStorage_AbsentIsEmpty(t *testing.T) {
	cookies := testCookies()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok, err := cookies.Storage(httptest.NewRecorder(), req).GetItem("favorites")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlash_RoundTrip(t *testing.T) {
	cookies := testCookies()
	req := httptest.NewRequest(http.MethodPost, "/favorites/toggle", nil)
	rec := httptest.NewRecorder()
	cookies.AddFlash(rec, req, notify.Default().FavoriteAdded("Luke Skywalker"))

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	carry(t, rec, next, nil)
	nextRec := httptest.NewRecorder()
	list := cookies.ConsumeFlash(nextRec, next)
	require.Len(t, list, 1)
	assert.Equal(t, "Added to favorites", list[0].Title)

	cleared := false
	for _, c := range nextRec.Result().Cookies() {
		if c.Name == FlashCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestSessionAndCSRF(t *testing.T) {
	cookies := testCookies()
	var token string
	handler := cookies.Session(CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = GetSession(r).CSRFToken
		w.WriteHeader(http.StatusNoContent)
	})))

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)
	require.Equal(t, http.StatusNoContent, firstRec.Code)
	require.NotEmpty(t, token)

	form := url.Values{CSRFFormField: {token}}
	post := httptest.NewRequest(http.MethodPost, "/favorites/toggle", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	carry(t, firstRec, post, nil)
	postRec := httptest.NewRecorder()
	handler.ServeHTTP(postRec, post)
	assert.Equal(t, http.StatusNoContent, postRec.Code)

	bad := httptest.NewRequest(http.MethodPost, "/favorites/toggle", strings.NewReader("_csrf=nope"))
	bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	carry(t, firstRec, bad, nil)
	badRec := httptest.NewRecorder()
	handler.ServeHTTP(badRec, bad)
	assert.Equal(t, http.StatusForbidden, badRec.Code)
}

func TestLogger_AttachesRequestLogger(t *testing.T) {
	var got logging.Logger
	var rid string
	handler := chiMid.RequestID(Logger(logging.NewLoggerFactory())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LoggerFrom(r.Context())
		rid, _ = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/character/1", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotNil(t, got)
	assert.NotEmpty(t, rid)
}

func TestCookieLifetimes(t *testing.T) {
	cookies := testCookies()

	rec := httptest.NewRecorder()
	cookies.Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies.AddFlash(w, r, notify.Default().FavoriteAdded("Luke Skywalker"))
	})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	ages := map[string]int{}
	for _, c := range rec.Result().Cookies() {
		ages[c.Name] = c.MaxAge
	}
	assert.Equal(t, 30*24*60*60, ages[SessionCookieName])
	assert.Equal(t, 5*60, ages[FlashCookieName])
}
