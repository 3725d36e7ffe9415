// Package playlist provides the playlist reference parsed from user input.
package playlist

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/osa030/plcopy/internal/domain/failure"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Reference identifies a playlist on Spotify.
type Reference struct {
	Owner string // Owner user ID, empty when the input did not carry one
	ID    string // Spotify Playlist ID
}

// UserScoped reports whether the reference carries an owner.
func (r Reference) UserScoped() bool {
	return r.Owner != ""
}

// URI returns the colon-delimited Spotify URI for the reference.
func (r Reference) URI() string {
	if r.Owner == "" {
		return "spotify:playlist:" + r.ID
	}
	return fmt.Sprintf("spotify:user:%s:playlist:%s", r.Owner, r.ID)
}

func (r Reference) String() string {
	return r.URI()
}

// Parse extracts a Reference from a playlist URL or Spotify URI.
//
// Accepted forms:
//
//	https://open.spotify.com/playlist/ID
//	https://open.spotify.com/user/OWNER/playlist/ID
//	spotify:user:OWNER:playlist:ID
//	spotify:playlist:ID
//
// Parse either returns a complete Reference or an error marked
// [failure.ErrArgument].
func Parse(input string) (Reference, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reference{}, failure.Markf(failure.ErrArgument, "playlist reference is empty")
	}

	var (
		ref Reference
		err error
	)
	if strings.HasPrefix(input, "spotify:") {
		ref, err = parseURI(input)
	} else {
		ref, err = parseURL(input)
	}
	if err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// parseURI handles the colon-delimited spotify: scheme.
func parseURI(input string) (Reference, error) {
	parts := strings.Split(input, ":")

	switch {
	case len(parts) == 5 && parts[1] == "user" && parts[3] == "playlist":
		return build(input, parts[2], parts[4])
	case len(parts) == 3 && parts[1] == "playlist":
		return build(input, "", parts[2])
	default:
		return Reference{}, failure.Markf(failure.ErrArgument, "incorrect playlist URI: %q", input)
	}
}

// parseURL handles http(s) URLs containing a playlist/<id> path segment.
func parseURL(input string) (Reference, error) {
	u, err := url.Parse(input)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Reference{}, failure.Markf(failure.ErrArgument, "incorrect playlist string: %q", input)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	var owner, id string
	for i := 0; i < len(segments)-1; i++ {
		switch segments[i] {
		case "user", "users":
			owner = segments[i+1]
		case "playlist", "playlists":
			id = segments[i+1]
		}
	}
	if id == "" {
		return Reference{}, failure.Markf(failure.ErrArgument, "no playlist/<id> segment in %q", input)
	}

	return build(input, owner, id)
}

func build(input, owner, id string) (Reference, error) {
	if !idPattern.MatchString(id) {
		return Reference{}, failure.Markf(failure.ErrArgument, "invalid playlist id %q in %q", id, input)
	}
	if strings.ContainsAny(owner, ":/") {
		return Reference{}, failure.Markf(failure.ErrArgument, "invalid owner %q in %q", owner, input)
	}
	return Reference{Owner: owner, ID: id}, nil
}
