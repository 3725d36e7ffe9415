// Package export renders a track collection as a markdown document.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
)

// DefaultPath is where Write puts the document when no path is given.
const DefaultPath = "./export.md"

// Render renders the collection:
//
//	Playlist id: <id>          (only when ref is non-nil)
//
//	1. <artists> - <name>
//	...
//
//	Artists: <artists of track 1>, <artists of track 2>, ...
//
// There is no trailing newline. An empty collection is an error.
func Render(ref *playlist.Reference, c track.Collection) ([]byte, error) {
	if c.Empty() {
		return nil, failure.Markf(failure.ErrEmptyResult, "playlist has no tracks")
	}

	var buf bytes.Buffer
	if ref != nil {
		fmt.Fprintf(&buf, "Playlist id: %s\n\n", ref.ID)
	}
	for i, t := range c {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.ArtistLine(), t.Name)
	}
	buf.WriteString("\nArtists: ")
	buf.WriteString(strings.Join(c.ArtistLines(), ", "))

	return buf.Bytes(), nil
}

// Write renders the collection and overwrites path with it.
// Nothing is written when rendering fails.
func Write(path string, ref *playlist.Reference, c track.Collection) error {
	data, err := Render(ref, c)
	if err != nil {
		return err
	}

	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return failure.Mark(errors.Wrap(err, "failed to create export directory"), failure.ErrFilesystem)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return failure.Mark(errors.Wrapf(err, "failed to write export file %s", path), failure.ErrFilesystem)
	}

	zlog.Info().Msgf("exported %d tracks: path=%s", len(c), path)
	return nil
}
