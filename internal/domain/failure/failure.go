// Package failure declares the error kinds surfaced by a plcopy run.
//
// Call sites attach a kind with [Mark] so callers can test it with errors.Is
// no matter how many times the error was wrapped afterwards.
package failure

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration reports missing or invalid configuration (pre-flight).
	ErrConfiguration = errors.New("configuration error")
	// ErrArgument reports an absent or malformed playlist reference (pre-flight).
	ErrArgument = errors.New("argument error")
	// ErrAuthentication reports a failed token exchange.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRetrieval reports a failed or inconsistent page retrieval.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrEmptyResult reports a playlist with no tracks.
	ErrEmptyResult = errors.New("empty playlist")
	// ErrFilesystem reports an unreadable source, unwritable target or failed copy.
	ErrFilesystem = errors.New("filesystem error")
)

// Exit codes returned by the CLI.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitUsage   = 2
)

// Mark tags err with the given kind. A nil err stays nil.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}

// Markf creates a new error of the given kind.
func Markf(kind error, format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), kind)
}

// Kind returns the kind err was marked with, or nil if it carries none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrConfiguration,
		ErrArgument,
		ErrAuthentication,
		ErrRetrieval,
		ErrEmptyResult,
		ErrFilesystem,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch Kind(err) {
	case ErrConfiguration, ErrArgument:
		return ExitUsage
	default:
		return ExitRuntime
	}
}
