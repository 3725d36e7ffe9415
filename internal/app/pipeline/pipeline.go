// Package pipeline runs a complete plcopy job: fetch the playlist, then copy
// matching library files and export the track list.
package pipeline

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/plcopy/internal/app/export"
	"github.com/osa030/plcopy/internal/app/library"
	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
)

// TrackFetcher retrieves the complete track collection of a playlist.
type TrackFetcher interface {
	GetPlaylistTracks(ctx context.Context, ref playlist.Reference) (track.Collection, error)
}

// Copier copies library files matching the given track names.
type Copier interface {
	Run(ctx context.Context, names []string) (*library.Result, error)
}

// Options selects the stages that run after retrieval.
type Options struct {
	Copy       bool
	Export     bool
	ExportPath string
	// ExportHeader adds the "Playlist id" header line to the export.
	ExportHeader bool
}

// Report represents the outcome of a pipeline run.
type Report struct {
	RunID      string
	Tracks     track.Collection
	Library    *library.Result // nil when copying did not run
	ExportPath string          // empty when exporting did not run
}

// Pipeline holds the collaborators of a run.
type Pipeline struct {
	fetcher TrackFetcher
	copier  Copier
}

// New creates a Pipeline. copier may be nil when no run copies files.
func New(fetcher TrackFetcher, copier Copier) *Pipeline {
	return &Pipeline{fetcher: fetcher, copier: copier}
}

// Run fetches the playlist and then runs the selected stages concurrently.
// Both stages only read the collection. The first stage error cancels the other.
func (p *Pipeline) Run(ctx context.Context, ref playlist.Reference, opts Options) (*Report, error) {
	if opts.Copy && p.copier == nil {
		return nil, failure.Markf(failure.ErrConfiguration, "copy requested but no library is configured")
	}

	runID := uuid.NewString()
	log := zlog.With().Str("run_id", runID).Str("playlist", ref.ID).Logger()
	log.Info().Msgf("run started: copy=%t export=%t", opts.Copy, opts.Export)

	tracks, err := p.fetcher.GetPlaylistTracks(ctx, ref)
	if err != nil {
		return nil, errors.Wrap(err, "failed to retrieve playlist")
	}
	log.Info().Msgf("playlist retrieved: tracks=%d", len(tracks))

	report := &Report{RunID: runID, Tracks: tracks}
	if tracks.Empty() && opts.Copy && !opts.Export {
		log.Warn().Msg("playlist has no tracks, nothing to copy")
	}

	g, gctx := errgroup.WithContext(ctx)

	if opts.Copy {
		g.Go(func() error {
			result, err := p.copier.Run(gctx, tracks.Names())
			if err != nil {
				return errors.Wrap(err, "failed to copy library files")
			}
			report.Library = result
			return nil
		})
	}

	if opts.Export {
		path := opts.ExportPath
		if path == "" {
			path = export.DefaultPath
		}
		var header *playlist.Reference
		if opts.ExportHeader {
			header = &ref
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return errors.Wrap(err, "export cancelled")
			}
			if err := export.Write(path, header, tracks); err != nil {
				return errors.Wrap(err, "failed to export playlist")
			}
			report.ExportPath = path
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Msgf("run failed: %v", err)
		return nil, err
	}

	log.Info().Msg("run finished")
	return report, nil
}
