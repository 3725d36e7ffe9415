package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"

	"github.com/osa030/plcopy/internal/domain/track"
)

func TestSDKSource_Page(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/playlists/ABC123/")
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		assert.Equal(t, "JP", r.URL.Query().Get("market"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"href": "",
			"limit": 100,
			"offset": 100,
			"total": 101,
			"items": [
				{"added_at": "2024-01-01T00:00:00Z", "track": {"type": "track", "id": "t1", "name": "Foo", "artists": [{"id": "a1", "name": "Bar"}]}}
			]
		}`)
	}))
	defer server.Close()

	s := NewSDKSource(SDKSettings{BaseURL: server.URL, Market: "JP"}, server.Client())
	assert.Equal(t, "sdk", s.Name())

	page, err := s.Page(context.Background(), testToken, testRef, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 101, page.Total)
	assert.Equal(t, []track.Track{track.New("Foo", "Bar")}, page.Items)
}

func TestSDKSource_PageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"status":404,"message":"Not found."}}`)
	}))
	defer server.Close()

	s := NewSDKSource(SDKSettings{BaseURL: server.URL}, server.Client())
	page, err := s.Page(context.Background(), testToken, testRef, 0, 100)
	require.Error(t, err)
	assert.Nil(t, page)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 404, statusErr.StatusCode)
	assert.False(t, isRetryable(err))
}

func TestConvertItem(t *testing.T) {
	tests := []struct {
		name     string
		item     spotify.PlaylistItem
		expected track.Track
	}{
		{
			name: "track",
			item: spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{
				Track: &spotify.FullTrack{SimpleTrack: spotify.SimpleTrack{
					Name:    "Duet",
					Artists: []spotify.SimpleArtist{{Name: "A"}, {Name: "B"}},
				}},
			}},
			expected: track.New("Duet", "A", "B"),
		},
		{
			name: "episode",
			item: spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{
				Episode: &spotify.EpisodePage{Name: "Pod"},
			}},
			expected: track.New("Pod"),
		},
		{
			name:     "unavailable",
			item:     spotify.PlaylistItem{},
			expected: track.New(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertItem(tt.item))
		})
	}
}
