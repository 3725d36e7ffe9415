package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/plcopy/internal/domain/failure"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"PLCOPY_SOURCE_DIR",
		"PLCOPY_TARGET_DIR",
		"PLCOPY_EXPORT_PATH",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plcopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: x
  client_secret: y
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://accounts.spotify.com/api/token", cfg.Spotify.TokenURL)
	assert.Equal(t, "header", cfg.Spotify.AuthStyle)
	assert.Equal(t, 10*time.Second, cfg.Spotify.Timeout)
	assert.Equal(t, 3, cfg.Spotify.MaxRetries)
	assert.Equal(t, "rest", cfg.Spotify.Backend.Type)
	assert.Equal(t, 100, cfg.Pagination.PageSize)
	assert.Equal(t, 1, cfg.Pagination.Concurrency)
	assert.False(t, cfg.Pagination.TightBound)
	assert.Equal(t, "fail", cfg.Library.OnError)
	assert.Equal(t, "./export.md", cfg.Export.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
spotify:
  client_id: x
  client_secret: y
  auth_style: params
  timeout: 3s
  backend:
    type: sdk
    settings:
      market: JP
pagination:
  page_size: 50
  tight_bound: true
  concurrency: 4
library:
  source_dir: /music
  target_dir: /out
  on_error: skip
  extensions: [".mp3", ".flac"]
export:
  path: out/list.md
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "params", cfg.Spotify.AuthStyle)
	assert.Equal(t, 3*time.Second, cfg.Spotify.Timeout)
	assert.Equal(t, "sdk", cfg.Spotify.Backend.Type)
	assert.Equal(t, "JP", cfg.Spotify.Backend.Settings["market"])
	assert.Equal(t, 50, cfg.Pagination.PageSize)
	assert.True(t, cfg.Pagination.TightBound)
	assert.Equal(t, 4, cfg.Pagination.Concurrency)
	assert.Equal(t, "/music", cfg.Library.SourceDir)
	assert.Equal(t, "skip", cfg.Library.OnError)
	assert.Equal(t, []string{".mp3", ".flac"}, cfg.Library.Extensions)
	assert.Equal(t, "out/list.md", cfg.Export.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("PLCOPY_TARGET_DIR", "/env/target")

	path := writeConfig(t, `
spotify:
  client_id: file-id
library:
  target_dir: /file/target
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "/env/target", cfg.Library.TargetDir)
}

func TestLoad_EnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("SPOTIFY_CLIENT_ID", "x")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "y")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "x", cfg.Spotify.ClientID)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing client id",
			body:   "spotify:\n  client_secret: y\n",
			errMsg: "ClientID",
		},
		{
			name:   "missing client secret",
			body:   "spotify:\n  client_id: x\n",
			errMsg: "ClientSecret",
		},
		{
			name:   "invalid auth style",
			body:   "spotify:\n  client_id: x\n  client_secret: y\n  auth_style: digest\n",
			errMsg: "AuthStyle",
		},
		{
			name:   "page size too large",
			body:   "spotify:\n  client_id: x\n  client_secret: y\npagination:\n  page_size: 500\n",
			errMsg: "PageSize",
		},
		{
			name:   "unknown backend",
			body:   "spotify:\n  client_id: x\n  client_secret: y\n  backend:\n    type: grpc\n",
			errMsg: "Type",
		},
		{
			name:   "malformed yaml",
			body:   "spotify: [",
			errMsg: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.Is(err, failure.ErrConfiguration))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, failure.ErrConfiguration))
}

func TestConfig_ValidateLibrary(t *testing.T) {
	src := t.TempDir()

	tests := []struct {
		name    string
		library LibraryConfig
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid",
			library: LibraryConfig{SourceDir: src, TargetDir: filepath.Join(src, "out"), OnError: "fail"},
		},
		{
			name:    "missing source",
			library: LibraryConfig{TargetDir: "/out", OnError: "fail"},
			wantErr: true,
			errMsg:  "SourceDir",
		},
		{
			name:    "source does not exist",
			library: LibraryConfig{SourceDir: filepath.Join(src, "missing"), TargetDir: "/out", OnError: "fail"},
			wantErr: true,
			errMsg:  "SourceDir",
		},
		{
			name:    "missing target",
			library: LibraryConfig{SourceDir: src, OnError: "fail"},
			wantErr: true,
			errMsg:  "TargetDir",
		},
		{
			name:    "invalid error policy",
			library: LibraryConfig{SourceDir: src, TargetDir: "/out", OnError: "ignore"},
			wantErr: true,
			errMsg:  "OnError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Library: tt.library}
			err := cfg.ValidateLibrary()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.True(t, errors.Is(err, failure.ErrConfiguration))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
