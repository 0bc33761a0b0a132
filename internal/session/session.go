// Package session implements the client-side session cookie: an
// HMAC-SHA256-signed JSON payload carrying the Spotify token pair. Sessions
// are immutable values; a token refresh produces a new Session rather than
// mutating the old one.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	// CookieName identifies the session cookie.
	CookieName = "musicmind_session"

	// CookieTTL bounds how long the browser keeps the cookie. The access
	// token inside expires much sooner and is refreshed by the auth gate.
	CookieTTL = 24 * time.Hour

	// ExpiryMargin is subtracted from the provider's token TTL so a token
	// is refreshed slightly before Spotify would start rejecting it.
	ExpiryMargin = 60 * time.Second
)

// Decode errors.
var (
	ErrNoSession        = errors.New("no session cookie")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrMalformedSession = errors.New("malformed session payload")
)

// Session holds the token state for an authenticated user.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch milliseconds
}

// FromToken builds a Session from an OAuth token, applying the safety margin
// to the expiry. The oauth2 package sets Expiry to issuance time plus the
// provider's expires_in.
func FromToken(token *oauth2.Token) Session {
	return Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.Add(-ExpiryMargin).UnixMilli(),
	}
}

// Refreshed returns a new Session with the refreshed access token and expiry.
// Spotify may omit the refresh token from refresh responses, in which case
// the previous one is kept.
func (s Session) Refreshed(token *oauth2.Token) Session {
	next := FromToken(token)
	if next.RefreshToken == "" {
		next.RefreshToken = s.RefreshToken
	}
	return next
}

// Expired reports whether the access token has passed its expiry at time now.
func (s Session) Expired(now time.Time) bool {
	return now.UnixMilli() > s.ExpiresAt
}

// Token converts the session back to an OAuth token.
func (s Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       time.UnixMilli(s.ExpiresAt),
		TokenType:    "Bearer",
	}
}

// Codec signs and verifies session cookies.
type Codec struct {
	key    []byte
	secure bool // Secure + SameSite=None for cross-site production frontends
}

// NewCodec creates a Codec with the given signing key. secure selects the
// production cookie profile.
func NewCodec(key string, secure bool) *Codec {
	return &Codec{key: []byte(key), secure: secure}
}

// Encode writes the session cookie on the response.
func (c *Codec) Encode(w http.ResponseWriter, s Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}

	value := base64.RawURLEncoding.EncodeToString(payload)
	signed := value + "." + c.sign(value)

	http.SetCookie(w, c.cookie(signed, int(CookieTTL.Seconds())))
	return nil
}

// Decode reads and verifies the session cookie from the request.
// Returns ErrNoSession if the cookie is absent, ErrInvalidSignature if it was
// tampered with, and ErrMalformedSession if the payload does not parse.
func (c *Codec) Decode(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, ErrNoSession
	}

	value, sig, ok := strings.Cut(cookie.Value, ".")
	if !ok {
		return Session{}, ErrMalformedSession
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(value))) {
		return Session{}, ErrInvalidSignature
	}

	payload, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Session{}, ErrMalformedSession
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, ErrMalformedSession
	}
	if s.AccessToken == "" {
		return Session{}, ErrMalformedSession
	}
	return s, nil
}

// Clear removes the session cookie.
func (c *Codec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *Codec) sign(value string) string {
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Codec) cookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.secure {
		// The production frontend is served from a different origin.
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: sameSite,
		MaxAge:   maxAge,
	}
}
