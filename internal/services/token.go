package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/radar/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenSafetyMargin is how long before reported expiry a cached token is
// treated as expired and refreshed.
const tokenSafetyMargin = 60 * time.Second

// TokenProvider acquires bearer tokens through the client-credentials grant
// and caches them until shortly before expiry.
//
// The underlying [oauth2.TokenSource] is mutex-guarded, so concurrent
// callers during a refresh share a single credential exchange and all
// receive the resulting token.
type TokenProvider struct {
	source oauth2.TokenSource
}

// NewTokenProvider creates a TokenProvider for the given credentials.
//
// tokenURL defaults to the Spotify accounts endpoint; tests point it at a
// local server. A nil client uses [http.DefaultClient].
func NewTokenProvider(clientID, clientSecret, tokenURL string, client *http.Client) (*TokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	ctx := context.Background()
	if client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	}

	return &TokenProvider{
		source: oauth2.ReuseTokenSourceWithExpiry(nil, conf.TokenSource(ctx), tokenSafetyMargin),
	}, nil
}

// Token returns a valid bearer token, performing a credential exchange when
// no cached token is live within the safety margin.
//
// A rejected exchange surfaces [shared.ErrAuthFailed]; callers treat it as
// fatal for the whole discovery request.
func (p *TokenProvider) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

var _ TokenSource = (*TokenProvider)(nil)

// StaticTokenSource returns a TokenSource that always yields the given
// token value. Used for tests and pre-issued tokens.
func StaticTokenSource(value string) TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: value})
}
