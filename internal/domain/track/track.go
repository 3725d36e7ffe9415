// Package track provides the Track domain entity.
package track

import "strings"

// Track represents a playlist entry as retrieved from Spotify.
type Track struct {
	Name    string   // Track name
	Artists []string // Artist names, in API order
}

// New creates a Track, copying the artist slice so the result is not aliased.
func New(name string, artists ...string) Track {
	a := make([]string, len(artists))
	copy(a, artists)
	return Track{Name: name, Artists: a}
}

// ArtistLine returns the artist names joined by ", ".
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Collection is an ordered list of tracks in retrieval order
// (page order, then in-page order).
type Collection []Track

// Names returns every track name in collection order.
// Duplicates are preserved.
func (c Collection) Names() []string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name
	}
	return names
}

// ArtistLines returns the per-track artist strings in collection order.
func (c Collection) ArtistLines() []string {
	lines := make([]string, len(c))
	for i, t := range c {
		lines[i] = t.ArtistLine()
	}
	return lines
}

// Empty reports whether the collection has no tracks.
func (c Collection) Empty() bool {
	return len(c) == 0
}
