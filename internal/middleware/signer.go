package middleware

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// ErrBadSignature is returned for cookie values that fail verification
var ErrBadSignature = errors.New("cookie signature mismatch")

// Signer signs and verifies cookie payloads with HMAC-SHA256
type Signer struct {
	key []byte
}

// NewSigner uses key, or a random per-process key when key is empty.
// The second return value reports whether the key is ephemeral.
func NewSigner(key string) (*Signer, bool) {
	if key != "" {
		return &Signer{key: []byte(key)}, false
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("middleware: cannot generate signing key: " + err.Error())
	}
	return &Signer{key: b}, true
}

// Sign returns "payload.signature", both base64url encoded
func (s *Signer) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify returns the payload of a value produced by Sign
func (s *Signer) Verify(value string) ([]byte, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 2 {
		return nil, ErrBadSignature
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrBadSignature
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrBadSignature
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrBadSignature
	}
	return payload, nil
}
