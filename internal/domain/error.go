package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("could not read database row")

	// Queue errors
	ErrTooManyPendingJobs = errors.New("too many pending jobs for user")
	ErrJobAlreadyTerminal = errors.New("job already in a terminal state")

	// Typo checking errors
	ErrEmptyText       = errors.New("text cannot be empty")
	ErrTextTooLong     = errors.New("text exceeds maximum length")
	ErrNoProvider      = errors.New("no AI provider is available")
	ErrMalformedResult = errors.New("provider returned malformed result")

	// Extraction errors
	ErrDocumentNotFound = errors.New("document not found")
	ErrFileNotFound     = errors.New("file not found")

	ErrStaleTimeout = errors.New("stale processing timeout")
)

// ErrorKind classifies a processing failure so pipelines can decide
// between retrying, failing fast, or rejecting synchronously.
type ErrorKind int

const (
	// KindTransient failures consume a retry slot; the job goes back to
	// pending until the retry budget runs out.
	KindTransient ErrorKind = iota
	// KindValidation failures are surfaced to the producer and never
	// enter the queue.
	KindValidation
	// KindFatal failures mark the job failed immediately without
	// consuming the retry budget.
	KindFatal
	// KindStale marks a job that sat in processing past the stale
	// window; it is forced to failed regardless of remaining retries.
	KindStale
)

// Classify maps an error onto an ErrorKind. Unknown errors count as
// transient so the retry counter remains the backstop.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrEmptyText),
		errors.Is(err, ErrTextTooLong),
		errors.Is(err, ErrTooManyPendingJobs),
		errors.Is(err, ErrInvalidArgument):
		return KindValidation
	case errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNoProvider):
		return KindFatal
	case errors.Is(err, ErrStaleTimeout):
		return KindStale
	default:
		// ErrFileNotFound lands here on purpose: the upload may still
		// be flushing to disk, so the retry budget gets a chance to
		// see it appear.
		return KindTransient
	}
}
