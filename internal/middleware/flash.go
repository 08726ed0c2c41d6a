package middleware

import (
	"net/http"
	"time"

	"github.com/latoulicious/holocron/pkg/notify"
)

// FlashCookieName carries notifications across a redirect
const FlashCookieName = "holocron_flash"

const flashMaxAge = 5 * time.Minute

// AddFlash queues notifications for the next rendered page
func (c *Cookies) AddFlash(w http.ResponseWriter, r *http.Request, list ...notify.Notification) {
	if len(list) == 0 {
		return
	}
	pending := append(c.readFlash(r), list...)
	value, err := notify.Encode(pending)
	if err != nil {
		LoggerFrom(r.Context()).Error("Failed to encode flash notifications", err, nil)
		return
	}
	http.SetCookie(w, c.cookie(FlashCookieName, c.signer.Sign([]byte(value)), int(flashMaxAge.Seconds())))
}

// ConsumeFlash returns pending notifications and clears the cookie
func (c *Cookies) ConsumeFlash(w http.ResponseWriter, r *http.Request) []notify.Notification {
	if _, err := r.Cookie(FlashCookieName); err != nil {
		return []notify.Notification{}
	}
	http.SetCookie(w, c.cookie(FlashCookieName, "", -1))
	return c.readFlash(r)
}

func (c *Cookies) readFlash(r *http.Request) []notify.Notification {
	ck, err := r.Cookie(FlashCookieName)
	if err != nil || ck.Value == "" {
		return []notify.Notification{}
	}
	payload, err := c.signer.Verify(ck.Value)
	if err != nil {
		return []notify.Notification{}
	}
	list, err := notify.Decode(string(payload), time.Now())
	if err != nil {
		return []notify.Notification{}
	}
	return list
}
