// Package auth handles the Spotify OAuth2 authorization-code flow and
// access-token refresh.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// ErrRefreshFailed is returned when the token endpoint rejects a refresh
// attempt. The caller must destroy the session and re-authenticate the user;
// there is no retry.
var ErrRefreshFailed = errors.New("token refresh failed")

// Authenticator wraps the Spotify OAuth2 configuration.
type Authenticator struct {
	spotify *spotifyauth.Authenticator
	config  *oauth2.Config
}

// New creates an Authenticator for the given client credentials.
func New(clientID, clientSecret, redirectURI string) *Authenticator {
	return &Authenticator{
		spotify: spotifyauth.New(
			spotifyauth.WithClientID(clientID),
			spotifyauth.WithClientSecret(clientSecret),
			spotifyauth.WithRedirectURL(redirectURI),
			spotifyauth.WithScopes(
				spotifyauth.ScopeUserReadPrivate,
				spotifyauth.ScopeUserReadEmail,
				spotifyauth.ScopeUserTopRead,
			),
		),
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
	}
}

// AuthURL returns the Spotify authorize URL for the given state.
func (a *Authenticator) AuthURL(state string) string {
	return a.spotify.AuthURL(state)
}

// Exchange trades an authorization code for a token pair.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.spotify.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return token, nil
}

// Refresh performs a single refresh-token grant against the token endpoint.
// Returns ErrRefreshFailed on any rejection so the caller can map it to a
// session-expired response without inspecting provider details.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return token, nil
}

// HTTPClient returns an http.Client that authorizes requests with the token.
// The client does not auto-refresh; expiry is handled by the auth gate so the
// session cookie stays the single source of token state.
func (a *Authenticator) HTTPClient(ctx context.Context, token *oauth2.Token) *http.Client {
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
}

// GenerateState creates a random state string for CSRF protection.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
