package tabmeta

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := runner.Run(ctx, doc)
//	if errors.Is(err, tabmeta.ErrMalformedDocument) {
//	    // The source export is unusable; nothing was written.
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMalformedDocument indicates the source document does not have the
	// expected top-level shape. This is fatal for the whole run.
	ErrMalformedDocument = errors.New("malformed catalog document")

	// ErrDocumentNotFound indicates the source document file was not found.
	ErrDocumentNotFound = errors.New("catalog document not found")

	// ErrRunFailed indicates at least one table could not be persisted.
	// The run report still covers every table.
	ErrRunFailed = errors.New("extraction run failed")

	// ErrConnectionFailed indicates the PostgreSQL sink connection failed.
	ErrConnectionFailed = errors.New("connection failed")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrMalformedDocument):
		return ExitDocumentError
	case errors.Is(err, ErrDocumentNotFound):
		return ExitDocumentError
	case errors.Is(err, ErrRunFailed):
		return ExitRunFailed
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	errStr := err.Error()

	// Cobra reports flag and argument misuse as plain errors; classify the
	// known message shapes as usage errors.
	for _, pattern := range []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts 1 arg(s)",
		"required flag",
		"invalid argument",
	} {
		if strings.Contains(errStr, pattern) {
			return ExitUsageError
		}
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
