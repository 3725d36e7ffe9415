// Package main provides the plcopy command line entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/plcopy/internal/app/export"
	"github.com/osa030/plcopy/internal/app/library"
	"github.com/osa030/plcopy/internal/app/pipeline"
	"github.com/osa030/plcopy/internal/domain/failure"
	"github.com/osa030/plcopy/internal/domain/playlist"
	"github.com/osa030/plcopy/internal/domain/track"
	"github.com/osa030/plcopy/internal/infra/config"
	"github.com/osa030/plcopy/internal/infra/logger"
	"github.com/osa030/plcopy/internal/infra/spotify"
)

const defaultConfigPath = "config/plcopy.yaml"

var (
	app        = kingpin.New("plcopy", "Copy the songs of a Spotify playlist out of a local music library")
	configPath = app.Flag("config", "Path to config file").Default(defaultConfigPath).String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: log.output from config)").String()
	dryRun     = app.Flag("dry-run", "Report matching files without copying them").Bool()

	runCmd      = app.Command("run", "Fetch the playlist, copy matching files and export the track list (default)").Default()
	runPlaylist = runCmd.Arg("playlist", "Playlist URL or Spotify URI").String()

	copyCmd      = app.Command("copy", "Fetch the playlist and copy matching files")
	copyPlaylist = copyCmd.Arg("playlist", "Playlist URL or Spotify URI").String()

	exportCmd      = app.Command("export", "Fetch the playlist and export the track list")
	exportPlaylist = exportCmd.Arg("playlist", "Playlist URL or Spotify URI").String()
	exportOutput   = exportCmd.Flag("output", "Export file path (default: export.path from config)").Short('o').String()

	listCmd      = app.Command("list", "Fetch the playlist and print its tracks")
	listPlaylist = listCmd.Arg("playlist", "Playlist URL or Spotify URI").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command, err := app.Parse(os.Args[1:])
	if err != nil {
		app.Errorf("%v", err)
		os.Exit(failure.ExitUsage)
	}

	os.Exit(execute(command))
}

// execute runs the command and returns the process exit code. Using a
// separate function ensures deferred cleanup runs before os.Exit.
func execute(command string) int {
	// Console logging until the config names the real output.
	if _, err := logger.Init(logger.Config{Output: "stderr", Level: flagLevel("info")}); err != nil {
		fmt.Fprintf(os.Stderr, "plcopy: failed to initialize logger: %v\n", err)
		return failure.ExitRuntime
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, command)
	if err != nil {
		zlog.Error().Msgf("%v", err)
		if *logfile != "" {
			fmt.Fprintf(os.Stderr, "plcopy: %v\n", err)
		}
	}
	return failure.ExitCode(err)
}

// run resolves the playlist and configuration, then executes command.
// The playlist argument is checked before anything touches the network.
func run(ctx context.Context, command string) error {
	ref, err := playlist.Parse(playlistArg(command))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	closer, err := logger.Init(logger.Config{
		Output: firstNonEmpty(*logfile, cfg.Log.Output),
		Level:  flagLevel(cfg.Log.Level),
	})
	if err != nil {
		return failure.Mark(err, failure.ErrConfiguration)
	}
	defer closer.Close()

	if *dryRun {
		cfg.Library.DryRun = true
	}

	client, err := spotify.New(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify client")
	}

	if command == listCmd.FullCommand() {
		tracks, err := client.GetPlaylistTracks(ctx, ref)
		if err != nil {
			return err
		}
		return printTracks(os.Stdout, tracks)
	}

	opts := pipeline.Options{
		Copy:         command == runCmd.FullCommand() || command == copyCmd.FullCommand(),
		Export:       command == runCmd.FullCommand() || command == exportCmd.FullCommand(),
		ExportPath:   firstNonEmpty(*exportOutput, cfg.Export.Path),
		ExportHeader: !cfg.Export.OmitHeader,
	}

	var copier pipeline.Copier
	if opts.Copy {
		m, err := newMatcher(cfg)
		if err != nil {
			return err
		}
		copier = m
	}

	report, err := pipeline.New(client, copier).Run(ctx, ref, opts)
	if err != nil {
		return err
	}

	if report.Library != nil {
		fmt.Printf("copied %d files (%d scanned, %d matched, %d skipped)\n",
			report.Library.Copies, report.Library.Scanned, len(report.Library.Matches), len(report.Library.Errors))
	}
	if report.ExportPath != "" {
		fmt.Printf("exported %d tracks to %s\n", len(report.Tracks), report.ExportPath)
	}
	return nil
}

// loadConfig loads the config file. A missing default file falls back to
// environment-only configuration.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			zlog.Debug().Msgf("config file not found, using environment only: %s", path)
			path = ""
		}
	}

	zlog.Info().Msgf("Loading config from %s", firstNonEmpty(path, "environment"))
	return config.Load(path)
}

// newMatcher validates the library section and creates the matcher.
func newMatcher(cfg *config.Config) (*library.Matcher, error) {
	if err := cfg.ValidateLibrary(); err != nil {
		return nil, err
	}
	return library.NewMatcher(library.Config{
		SourceDir:  cfg.Library.SourceDir,
		TargetDir:  cfg.Library.TargetDir,
		OnError:    cfg.Library.OnError,
		Extensions: cfg.Library.Extensions,
		DryRun:     cfg.Library.DryRun,
	})
}

// printTracks writes the numbered track list without the header.
func printTracks(w io.Writer, tracks track.Collection) error {
	if tracks.Empty() {
		zlog.Warn().Msg("playlist has no tracks")
		return nil
	}
	data, err := export.Render(nil, tracks)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func playlistArg(command string) string {
	switch command {
	case copyCmd.FullCommand():
		return *copyPlaylist
	case exportCmd.FullCommand():
		return *exportPlaylist
	case listCmd.FullCommand():
		return *listPlaylist
	default:
		return *runPlaylist
	}
}

// flagLevel returns debug when -v is given, level otherwise.
func flagLevel(level string) string {
	if *verbose {
		return "debug"
	}
	return level
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
