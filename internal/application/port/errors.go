package port

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a versioned write loses to a concurrent
	// writer; the caller must re-read before retrying
	ErrConflict = errors.New("version conflict")
)
