package playlist

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/plcopy/internal/domain/failure"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Reference
	}{
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/playlist/ABC123",
			expected: Reference{ID: "ABC123"},
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M?si=abc123",
			expected: Reference{ID: "37i9dQZF1DXcBWIGoYBM5M"},
		},
		{
			name:     "HTTP URL with trailing slash",
			input:    "http://open.spotify.com/playlist/testID/",
			expected: Reference{ID: "testID"},
		},
		{
			name:     "localized URL",
			input:    "https://open.spotify.com/intl-ja/playlist/abc123",
			expected: Reference{ID: "abc123"},
		},
		{
			name:     "user scoped URL",
			input:    "https://open.spotify.com/user/alice/playlist/ABC123",
			expected: Reference{Owner: "alice", ID: "ABC123"},
		},
		{
			name:     "user scoped URI",
			input:    "spotify:user:alice:playlist:ABC123",
			expected: Reference{Owner: "alice", ID: "ABC123"},
		},
		{
			name:     "playlist URI",
			input:    "spotify:playlist:ABC123",
			expected: Reference{ID: "ABC123"},
		},
		{
			name:     "surrounding whitespace",
			input:    "  spotify:playlist:ABC123\n",
			expected: Reference{ID: "ABC123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ref)
		})
	}
}

func TestParse_FormsAgree(t *testing.T) {
	fromURL, err := Parse("https://open.spotify.com/user/alice/playlist/ABC123?si=x")
	require.NoError(t, err)
	fromURI, err := Parse("spotify:user:alice:playlist:ABC123")
	require.NoError(t, err)

	assert.Equal(t, fromURI, fromURL)
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"ABC123",
		"spotify:track:ABC123",
		"spotify:user:alice:playlist",
		"spotify:user::playlist:ABC123:extra",
		"https://open.spotify.com/track/ABC123",
		"https://open.spotify.com/playlist/",
		"https://open.spotify.com/playlist/AB-C!",
		"ftp://open.spotify.com/playlist/ABC123",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			ref, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, failure.ErrArgument))
			assert.Equal(t, Reference{}, ref, "parse must not partially assign")
		})
	}
}

func TestReference_URI(t *testing.T) {
	assert.Equal(t, "spotify:user:alice:playlist:ABC", Reference{Owner: "alice", ID: "ABC"}.URI())
	assert.Equal(t, "spotify:playlist:ABC", Reference{ID: "ABC"}.URI())
	assert.True(t, Reference{Owner: "alice", ID: "ABC"}.UserScoped())
}
