package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/latoulicious/holocron/pkg/favorites"
)

const (
	storageCookiePrefix = "holocron_"
	// chunkSize keeps each cookie under the common 4096 byte limit
	chunkSize = 3800
	// persistentMaxAge stands in for "no expiry"
	persistentMaxAge = 10 * 365 * 24 * 60 * 60
)

// CookieStorage is a request-scoped favorites.Storage backed by signed, chunked cookies.
// A key is stored as a count cookie "holocron_<key>" plus chunks "holocron_<key>.<n>".
type CookieStorage struct {
	cookies *Cookies
	w       http.ResponseWriter
	r       *http.Request
	written map[string]string
}

var _ favorites.Storage = (*CookieStorage)(nil)

// Storage returns the browser storage for one request/response pair
func (c *Cookies) Storage(w http.ResponseWriter, r *http.Request) *CookieStorage {
	return &CookieStorage{
		cookies: c,
		w:       w,
		r:       r,
		written: map[string]string{},
	}
}

// GetItem returns the value last written in this request, else the value the browser sent
func (s *CookieStorage) GetItem(key string) (string, bool, error) {
	if v, ok := s.written[key]; ok {
		return v, true, nil
	}

	name := storageCookiePrefix + key
	head, err := s.r.Cookie(name)
	if err != nil {
		return "", false, nil
	}
	n, err := strconv.Atoi(head.Value)
	if err != nil || n < 1 {
		return "", false, fmt.Errorf("%w: bad chunk count for %s", favorites.ErrCorruptState, name)
	}

	var b strings.Builder
	for i := 0; i < n; i++ {
		chunk, err := s.r.Cookie(chunkName(name, i))
		if err != nil {
			return "", false, fmt.Errorf("%w: missing chunk %d of %s", favorites.ErrCorruptState, i, name)
		}
		b.WriteString(chunk.Value)
	}

	payload, err := s.cookies.signer.Verify(b.String())
	if err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", favorites.ErrCorruptState, name, err)
	}
	return string(payload), true, nil
}

// SetItem writes the value as cookies on the response and expires stale chunks
func (s *CookieStorage) SetItem(key, value string) error {
	name := storageCookiePrefix + key
	signed := s.cookies.signer.Sign([]byte(value))

	chunks := splitChunks(signed, chunkSize)
	http.SetCookie(s.w, s.cookies.cookie(name, strconv.Itoa(len(chunks)), persistentMaxAge))
	for i, chunk := range chunks {
		http.SetCookie(s.w, s.cookies.cookie(chunkName(name, i), chunk, persistentMaxAge))
	}

	if prev, err := s.r.Cookie(name); err == nil {
		if old, err := strconv.Atoi(prev.Value); err == nil {
			for i := len(chunks); i < old; i++ {
				http.SetCookie(s.w, s.cookies.cookie(chunkName(name, i), "", -1))
			}
		}
	}

	s.written[key] = value
	return nil
}

func chunkName(name string, i int) string {
	return name + "." + strconv.Itoa(i)
}

func splitChunks(s string, size int) []string {
	if s == "" {
		return []string{""}
	}
	chunks := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		chunks = append(chunks, s[:size])
		s = s[size:]
	}
	return append(chunks, s)
}
