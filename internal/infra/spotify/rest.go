package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"

	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
)

// DefaultAPIBaseURL is the Spotify Web API root.
const DefaultAPIBaseURL = "https://api.spotify.com/v1"

// RESTSettings represents settings for the plain HTTP backend.
type RESTSettings struct {
	BaseURL     string `mapstructure:"base_url" default:"https://api.spotify.com/v1" validate:"url"`
	IgnoreOwner bool   `mapstructure:"ignore_owner"`
}

// RESTSource reads playlist pages with hand-built GET requests.
type RESTSource struct {
	baseURL     string
	ignoreOwner bool
	httpClient  *http.Client
}

// tracksPage is the playlist tracks response.
// Reference: https://developer.spotify.com/documentation/web-api/reference/get-playlists-tracks
type tracksPage struct {
	Total int `json:"total"`
	Items []struct {
		Track *struct {
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}

// apiError is the Spotify error envelope.
type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError reports a non-success HTTP status from the API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
}

// NewRESTSource creates a RESTSource.
func NewRESTSource(settings RESTSettings, httpClient *http.Client) *RESTSource {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RESTSource{
		baseURL:     strings.TrimRight(baseURL, "/"),
		ignoreOwner: settings.IgnoreOwner,
		httpClient:  httpClient,
	}
}

// Name returns the backend name.
func (s *RESTSource) Name() string {
	return "rest"
}

// endpoint returns the tracks URL, user scoped when the reference has an owner.
func (s *RESTSource) endpoint(ref playlist.Reference) string {
	if ref.UserScoped() && !s.ignoreOwner {
		return fmt.Sprintf("%s/users/%s/playlists/%s/tracks", s.baseURL, url.PathEscape(ref.Owner), ref.ID)
	}
	return fmt.Sprintf("%s/playlists/%s/tracks", s.baseURL, ref.ID)
}

// Page fetches one page of playlist items.
func (s *RESTSource) Page(ctx context.Context, tok *oauth2.Token, ref playlist.Reference, offset, limit int) (*Page, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(ref)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil {
			statusErr.Message = apiErr.Error.Message
		}
		return nil, statusErr
	}

	var response tracksPage
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	items := make([]track.Track, 0, len(response.Items))
	for _, item := range response.Items {
		// Unavailable items still count toward total.
		if item.Track == nil {
			items = append(items, track.New(""))
			continue
		}
		artists := make([]string, len(item.Track.Artists))
		for i, a := range item.Track.Artists {
			artists[i] = a.Name
		}
		items = append(items, track.New(item.Track.Name, artists...))
	}

	return &Page{Total: response.Total, Items: items}, nil
}
