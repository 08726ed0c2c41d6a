package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SessionCookieName holds the signed session
const SessionCookieName = "holocron_session"

const sessionMaxAge = 30 * 24 * time.Hour

// SessionData is the anonymous visitor session; it carries no user identity
type SessionData struct {
	ID        string    `json:"id"`
	CSRFToken string    `json:"csrf"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cookies holds the cookie policy shared by all holocron cookies
type Cookies struct {
	signer *Signer
	secure bool
}

// NewCookies creates the cookie policy
func NewCookies(signer *Signer, secure bool) *Cookies {
	return &Cookies{signer: signer, secure: secure}
}

func (c *Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// Session loads or initializes a session and stores it in request context
func (c *Cookies) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, ok := c.readSession(r)
		if !ok {
			sd = &SessionData{
				ID:        uuid.NewString(),
				CSRFToken: newCSRFToken(),
				CreatedAt: time.Now().UTC(),
			}
			b, _ := json.Marshal(sd)
			http.SetCookie(w, c.cookie(SessionCookieName, c.signer.Sign(b), int(sessionMaxAge.Seconds())))
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c *Cookies) readSession(r *http.Request) (*SessionData, bool) {
	ck, err := r.Cookie(SessionCookieName)
	if err != nil || ck.Value == "" {
		return nil, false
	}
	payload, err := c.signer.Verify(ck.Value)
	if err != nil {
		return nil, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil || sd.ID == "" || sd.CSRFToken == "" {
		return nil, false
	}
	return &sd, true
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if sd, ok := r.Context().Value(ctxKeySession).(*SessionData); ok {
		return sd
	}
	return &SessionData{}
}

func newCSRFToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
