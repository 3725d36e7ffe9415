package spotify

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/plcopy/internal/domain/failure"
)

// DefaultTokenURL is the Spotify accounts token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// AuthConfig represents the client-credentials settings.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	AuthStyle    string // "header" (HTTP Basic) or "params" (form fields)
}

// TokenProvider exchanges client credentials for a bearer token.
type TokenProvider struct {
	cc         clientcredentials.Config
	httpClient *http.Client
}

// NewTokenProvider creates a TokenProvider. Missing credentials are a
// configuration error and never reach the network.
func NewTokenProvider(cfg AuthConfig, httpClient *http.Client) (*TokenProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, failure.Markf(failure.ErrConfiguration, "spotify client_id and client_secret are required")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	style := oauth2.AuthStyleInHeader
	switch cfg.AuthStyle {
	case "", "header":
	case "params":
		style = oauth2.AuthStyleInParams
	default:
		return nil, failure.Markf(failure.ErrConfiguration, "unsupported auth style: %s", cfg.AuthStyle)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &TokenProvider{
		cc: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    style,
		},
		httpClient: httpClient,
	}, nil
}

// Token performs one client-credentials request and returns the access token.
// Failures are marked [failure.ErrAuthentication] and are not retried.
func (p *TokenProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	zlog.Debug().Msgf("requesting access token: url=%s", p.cc.TokenURL)

	tok, err := p.cc.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	if err != nil {
		return nil, failure.Mark(errors.Wrap(err, "failed to obtain access token"), failure.ErrAuthentication)
	}

	zlog.Debug().Msgf("access token obtained: type=%s expiry=%s", tok.Type(), tok.Expiry)
	return tok, nil
}
