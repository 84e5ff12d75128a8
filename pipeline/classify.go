package pipeline

import (
	"context"
	"errors"

	"github.com/poiesic/doctwin/ai"
	"github.com/poiesic/doctwin/core"
	"github.com/poiesic/doctwin/storage"
)

// retryable reports whether a stage error is worth another attempt.
// Transient service failures and storage I/O failures qualify; malformed
// input and permanently rejected formats do not.
func retryable(err error) bool {
	if errors.Is(err, ai.ErrServiceUnavailable) {
		return true
	}
	if errors.Is(err, storage.ErrStorage) {
		return true
	}
	return false
}

// permanent reports whether a stage error can never succeed on retry.
func permanent(err error) bool {
	return errors.Is(err, ai.ErrUnsupportedFormat) ||
		errors.Is(err, core.ErrInvalidDocument) ||
		errors.Is(err, ErrUnsupportedFile) ||
		errors.Is(err, ErrNoConverter)
}

// silent reports whether an error ends the attempt without any status
// write: another worker holds the claim, or the file was deleted while this
// worker was running.
func silent(err error) bool {
	return errors.Is(err, storage.ErrConflict) ||
		errors.Is(err, storage.ErrTombstoned) ||
		errors.Is(err, storage.ErrNotFound)
}

// interrupted reports whether the attempt stopped because the caller's
// context ended, not because the work itself failed. The file keeps its
// *_STARTED claim so the recovery sweep can re-drive it.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
