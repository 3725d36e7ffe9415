// Package spotify provides read-only access to Spotify playlists:
// the client-credentials token exchange, the page sources and the paging loop.
package spotify

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
	"github.com/osa030/plcopy/internal/infra/config"
)

// Client is a Spotify API client.
type Client struct {
	tokens  *TokenProvider
	fetcher *Fetcher
}

// New creates a Client from configuration. Every request made by the client
// is bounded by cfg.Spotify.Timeout.
func New(cfg *config.Config) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.Spotify.Timeout}

	tokens, err := NewTokenProvider(AuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		TokenURL:     cfg.Spotify.TokenURL,
		AuthStyle:    cfg.Spotify.AuthStyle,
	}, httpClient)
	if err != nil {
		return nil, err
	}

	source, err := NewPageSourceFromConfig(cfg.Spotify.Backend, httpClient)
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(source, FetchOptions{
		PageSize:          cfg.Pagination.PageSize,
		TightBound:        cfg.Pagination.TightBound,
		Concurrency:       cfg.Pagination.Concurrency,
		MaxRetries:        cfg.Spotify.MaxRetries,
		RetryDelay:        cfg.Spotify.RetryDelay,
		RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
	})

	return NewWithComponents(tokens, fetcher), nil
}

// NewWithComponents creates a Client from prebuilt parts.
func NewWithComponents(tokens *TokenProvider, fetcher *Fetcher) *Client {
	return &Client{tokens: tokens, fetcher: fetcher}
}

// GetPlaylistTracks obtains one token and retrieves all tracks of the playlist with it.
func (c *Client) GetPlaylistTracks(ctx context.Context, ref playlist.Reference) (track.Collection, error) {
	zlog.Info().Msg("fetching access token")
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	zlog.Info().Msgf("retrieving songs: playlist=%s", ref)
	return c.fetcher.FetchAll(ctx, tok, ref)
}

// NewPageSourceFromConfig creates the page source named by the backend config.
func NewPageSourceFromConfig(cfg config.BackendConfig, httpClient *http.Client) (PageSource, error) {
	zlog.Debug().Msgf("creating page source: type=%s settings=%+v", cfg.Type, cfg.Settings)

	switch cfg.Type {
	case "rest", "":
		var settings RESTSettings
		if err := decodeSettings(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "invalid rest backend settings")
		}
		return NewRESTSource(settings, httpClient), nil

	case "sdk":
		var settings SDKSettings
		if err := decodeSettings(cfg.Settings, &settings); err != nil {
			return nil, errors.Wrap(err, "invalid sdk backend settings")
		}
		return NewSDKSource(settings, httpClient), nil

	default:
		return nil, failure.Markf(failure.ErrConfiguration, "unsupported backend type: %s", cfg.Type)
	}
}

// decodeSettings decodes, defaults and validates backend settings.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return failure.Mark(errors.Wrap(err, "failed to decode settings"), failure.ErrConfiguration)
	}
	if err := defaults.Set(out); err != nil {
		return failure.Mark(errors.Wrap(err, "failed to set defaults"), failure.ErrConfiguration)
	}
	if err := validator.New().Struct(out); err != nil {
		return failure.Mark(errors.Wrap(err, "validation failed"), failure.ErrConfiguration)
	}
	return nil
}
