package ai

import "errors"

var (
	// ErrUnsupportedFormat indicates the analysis service rejected the file
	// format. Not retryable; the stage fails terminally.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrServiceUnavailable indicates a timeout or rate limit from an
	// external collaborator. Retryable under the pipeline's backoff policy.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrBadResponse indicates a malformed response from a collaborator
	// that survived retries.
	ErrBadResponse = errors.New("malformed service response")
)
