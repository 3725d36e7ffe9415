// Package main provides the Spotify credentials check tool.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/infra/spotify"
)

var (
	app          = kingpin.New("plcopy-auth", "Verify Spotify client credentials for plcopy")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").String()
	tokenURL     = app.Flag("token-url", "Token endpoint").Default(spotify.DefaultTokenURL).String()
	authStyle    = app.Flag("auth-style", "How credentials are sent").Default("header").Enum("header", "params")
	timeout      = app.Flag("timeout", "Request timeout").Default("10s").Duration()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	if _, err := app.Parse(os.Args[1:]); err != nil {
		app.Errorf("%v", err)
		os.Exit(failure.ExitUsage)
	}

	tok, err := check(spotify.AuthConfig{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		TokenURL:     *tokenURL,
		AuthStyle:    *authStyle,
	}, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plcopy-auth: %v\n", err)
		os.Exit(failure.ExitCode(err))
	}

	printToken(os.Stdout, tok, time.Now())
}

// check performs one client-credentials exchange.
func check(cfg spotify.AuthConfig, timeout time.Duration) (*oauth2.Token, error) {
	p, err := spotify.NewTokenProvider(cfg, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Token(ctx)
}

func printToken(w io.Writer, tok *oauth2.Token, now time.Time) {
	fmt.Fprintln(w, "=== Credentials OK ===")
	fmt.Fprintf(w, "Token type: %s\n", tok.Type())
	if tok.Expiry.IsZero() {
		fmt.Fprintln(w, "Expires:    never")
		return
	}
	fmt.Fprintf(w, "Expires:    %s (in %s)\n", tok.Expiry.Format(time.RFC3339), tok.Expiry.Sub(now).Round(time.Second))
}
