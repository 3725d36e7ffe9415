package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/infra/spotify"
)

func TestCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"abc","token_type":"Bearer","expires_in":3600}`)
	}))
	defer server.Close()

	tok, err := check(spotify.AuthConfig{ClientID: "x", ClientSecret: "y", TokenURL: server.URL}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
}

func TestCheck_MissingCredentials(t *testing.T) {
	_, err := check(spotify.AuthConfig{ClientID: "x"}, time.Second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
	assert.Equal(t, failure.ExitUsage, failure.ExitCode(err))
}

func TestCheck_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := check(spotify.AuthConfig{ClientID: "x", ClientSecret: "y", TokenURL: server.URL}, 5*time.Second)
	require.Error(t, err)
	assert.Equal(t, failure.ExitRuntime, failure.ExitCode(err))
}

func TestPrintToken(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	printToken(&buf, &oauth2.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: now.Add(time.Hour)}, now)
	assert.Contains(t, buf.String(), "Token type: Bearer")
	assert.Contains(t, buf.String(), "2024-01-01T01:00:00Z (in 1h0m0s)")

	buf.Reset()
	printToken(&buf, &oauth2.Token{AccessToken: "abc"}, now)
	assert.Contains(t, buf.String(), "Expires:    never")
}
