package spotify

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
)

// SDKSettings represents settings for the zmb3/spotify backend.
type SDKSettings struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	Market  string `mapstructure:"market" validate:"omitempty,len=2"`
}

// SDKSource reads playlist pages through the zmb3/spotify client.
// The SDK has no user-scoped endpoint, so the reference owner is ignored.
type SDKSource struct {
	settings   SDKSettings
	httpClient *http.Client
}

// NewSDKSource creates an SDKSource.
func NewSDKSource(settings SDKSettings, httpClient *http.Client) *SDKSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SDKSource{settings: settings, httpClient: httpClient}
}

// Name returns the backend name.
func (s *SDKSource) Name() string {
	return "sdk"
}

// client builds an SDK client that authorizes every request with tok.
// The token is static: it is never refreshed mid-run.
func (s *SDKSource) client(tok *oauth2.Token) *spotify.Client {
	authed := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(tok),
			Base:   s.httpClient.Transport,
		},
		Timeout: s.httpClient.Timeout,
	}

	var opts []spotify.ClientOption
	if s.settings.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(strings.TrimRight(s.settings.BaseURL, "/")+"/"))
	}
	return spotify.New(authed, opts...)
}

// Page fetches one page of playlist items.
func (s *SDKSource) Page(ctx context.Context, tok *oauth2.Token, ref playlist.Reference, offset, limit int) (*Page, error) {
	opts := []spotify.RequestOption{
		spotify.Limit(limit),
		spotify.Offset(offset),
	}
	if s.settings.Market != "" {
		opts = append(opts, spotify.Market(s.settings.Market))
	}

	page, err := s.client(tok).GetPlaylistItems(ctx, spotify.ID(ref.ID), opts...)
	if err != nil {
		var apiErr spotify.Error
		if errors.As(err, &apiErr) {
			return nil, &StatusError{StatusCode: apiErr.Status, Message: apiErr.Message}
		}
		return nil, errors.Wrap(err, "failed to get playlist items")
	}

	items := make([]track.Track, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convertItem(item))
	}

	return &Page{Total: int(page.Total), Items: items}, nil
}

// convertItem converts a playlist item (track or episode) to a domain Track.
func convertItem(item spotify.PlaylistItem) track.Track {
	switch {
	case item.Track.Track != nil:
		t := item.Track.Track
		artists := make([]string, len(t.Artists))
		for i, a := range t.Artists {
			artists[i] = a.Name
		}
		return track.New(t.Name, artists...)
	case item.Track.Episode != nil:
		return track.New(item.Track.Episode.Name)
	default:
		return track.New("")
	}
}
