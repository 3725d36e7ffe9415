// Package library matches playlist track names against a local music tree
// and copies the matching files into a target directory.
package library

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/plcopy/internal/domain/failure"
)

// Error policies.
const (
	OnErrorFail = "fail"
	OnErrorSkip = "skip"
)

// Config represents matcher settings.
type Config struct {
	SourceDir  string
	TargetDir  string
	OnError    string   // OnErrorFail (default) or OnErrorSkip
	Extensions []string // allowed file extensions, empty means all
	DryRun     bool
}

// Result represents the outcome of a matcher run.
type Result struct {
	Matches map[string][]string // source path -> matched track names
	Copies  int                 // files written (or that would be written in dry run)
	Scanned int                 // regular files visited
	Errors  []error             // entries skipped under OnErrorSkip
}

// Matcher walks a source tree and copies files whose base name contains a track name.
type Matcher struct {
	sourceDir  string
	targetDir  string
	skipErrors bool
	extensions map[string]bool
	dryRun     bool
}

// NewMatcher creates a Matcher.
func NewMatcher(cfg Config) (*Matcher, error) {
	if cfg.SourceDir == "" || cfg.TargetDir == "" {
		return nil, failure.Markf(failure.ErrConfiguration, "source and target directories are required")
	}

	sourceDir, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, failure.Mark(errors.Wrap(err, "failed to resolve source directory"), failure.ErrConfiguration)
	}
	targetDir, err := filepath.Abs(cfg.TargetDir)
	if err != nil {
		return nil, failure.Mark(errors.Wrap(err, "failed to resolve target directory"), failure.ErrConfiguration)
	}
	if sourceDir == targetDir {
		return nil, failure.Markf(failure.ErrConfiguration, "target directory must differ from source directory: %s", sourceDir)
	}

	info, err := os.Stat(sourceDir)
	if err != nil {
		return nil, failure.Mark(errors.Wrapf(err, "failed to stat source directory %s", sourceDir), failure.ErrFilesystem)
	}
	if !info.IsDir() {
		return nil, failure.Markf(failure.ErrConfiguration, "source is not a directory: %s", sourceDir)
	}

	var skip bool
	switch cfg.OnError {
	case OnErrorFail, "":
	case OnErrorSkip:
		skip = true
	default:
		return nil, failure.Markf(failure.ErrConfiguration, "unsupported error policy: %s", cfg.OnError)
	}

	var extensions map[string]bool
	if len(cfg.Extensions) > 0 {
		extensions = make(map[string]bool, len(cfg.Extensions))
		for _, ext := range cfg.Extensions {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			extensions[ext] = true
		}
	}

	return &Matcher{
		sourceDir:  sourceDir,
		targetDir:  targetDir,
		skipErrors: skip,
		extensions: extensions,
		dryRun:     cfg.DryRun,
	}, nil
}

// Run walks the source tree depth-first and, for every regular file whose
// base name contains a track name (case-sensitive), copies the file to
// target/<base name>. A file is copied once per matching name; when two
// source files share a base name the last one written wins.
//
// Symbolic links are followed. Each real directory is walked at most once, so
// links that point back into the tree terminate. Empty names are ignored. The
// target directory is created if missing and is never descended into. Under
// OnErrorFail the first filesystem error aborts the run; under OnErrorSkip it
// is recorded in Result.Errors.
func (m *Matcher) Run(ctx context.Context, names []string) (*Result, error) {
	names = nonEmpty(names)
	result := &Result{Matches: make(map[string][]string)}

	if !m.dryRun {
		if err := os.MkdirAll(m.targetDir, 0o755); err != nil {
			return nil, failure.Mark(errors.Wrapf(err, "failed to create target directory %s", m.targetDir), failure.ErrFilesystem)
		}
	}

	zlog.Info().Msgf("scanning library: source=%s target=%s names=%d dry_run=%t",
		m.sourceDir, m.targetDir, len(names), m.dryRun)

	root, err := filepath.EvalSymlinks(m.sourceDir)
	if err != nil {
		return nil, failure.Mark(errors.Wrapf(err, "failed to resolve source directory %s", m.sourceDir), failure.ErrFilesystem)
	}
	w := &walker{
		Matcher: m,
		names:   names,
		result:  result,
		target:  realPath(m.targetDir),
		visited: make(map[string]bool),
	}
	if err := w.walk(ctx, root, m.sourceDir); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "library scan cancelled")
		}
		return nil, err
	}

	zlog.Info().Msgf("library scan finished: scanned=%d matched=%d copies=%d errors=%d",
		result.Scanned, len(result.Matches), result.Copies, len(result.Errors))
	return result, nil
}

// walker carries the state of one Run.
type walker struct {
	*Matcher
	names   []string
	result  *Result
	target  string          // resolved target directory
	visited map[string]bool // resolved directories already walked
}

// walk visits the tree at the resolved directory root. Paths are reported
// under logical, the path through which root was reached.
func (w *walker) walk(ctx context.Context, root, logical string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		shown := logicalPath(root, logical, path)
		if err != nil {
			return w.handle(w.result, errors.Wrapf(err, "failed to read %s", shown))
		}

		if d.IsDir() {
			if path == w.target {
				zlog.Debug().Msgf("skipping target directory: %s", shown)
				return filepath.SkipDir
			}
			if w.visited[path] {
				zlog.Debug().Msgf("skipping already visited directory: %s", shown)
				return filepath.SkipDir
			}
			w.visited[path] = true
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return w.followLink(ctx, path, shown)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return w.file(ctx, path, shown)
	})
}

// followLink resolves a symbolic link and treats the result as a regular file
// or as a directory to recurse into.
func (w *walker) followLink(ctx context.Context, path, shown string) error {
	info, err := os.Stat(path)
	if err != nil {
		return w.handle(w.result, errors.Wrapf(err, "failed to follow link %s", shown))
	}

	switch {
	case info.IsDir():
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return w.handle(w.result, errors.Wrapf(err, "failed to resolve link %s", shown))
		}
		if resolved == w.target || w.visited[resolved] {
			zlog.Debug().Msgf("not following link %s -> %s", shown, resolved)
			return nil
		}
		return w.walk(ctx, resolved, shown)
	case info.Mode().IsRegular():
		return w.file(ctx, path, shown)
	default:
		return nil
	}
}

// file matches one regular file against the track names and copies it.
func (w *walker) file(ctx context.Context, path, shown string) error {
	w.result.Scanned++
	if w.extensions != nil && !w.extensions[strings.ToLower(filepath.Ext(path))] {
		return nil
	}

	base := filepath.Base(shown)
	for _, name := range w.names {
		if !strings.Contains(base, name) {
			continue
		}
		w.result.Matches[shown] = append(w.result.Matches[shown], name)

		dst := filepath.Join(w.targetDir, base)
		if w.dryRun {
			zlog.Info().Msgf("would copy: %s -> %s (track=%q)", shown, dst, name)
			w.result.Copies++
			continue
		}
		if err := CopyFile(ctx, path, dst); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return w.handle(w.result, errors.Wrapf(err, "failed to copy %s", shown))
		}
		zlog.Info().Msgf("copied: %s -> %s (track=%q)", shown, dst, name)
		w.result.Copies++
	}
	return nil
}

// realPath resolves links in path, falling back to path when it does not exist.
func realPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return path
}

// logicalPath maps path under the resolved root back under logical.
func logicalPath(root, logical, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.Join(logical, rel)
}

// handle applies the error policy to a per-entry error.
func (m *Matcher) handle(result *Result, err error) error {
	err = failure.Mark(err, failure.ErrFilesystem)
	if !m.skipErrors {
		return err
	}
	zlog.Warn().Msgf("skipping entry: %v", err)
	result.Errors = append(result.Errors, err)
	return nil
}

func nonEmpty(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
