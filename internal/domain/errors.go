package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a permanent 404-equivalent miss on a source page.
	ErrNotFound = errors.New("source: not found")
	// ErrMalformed marks a response the source returned but we cannot use.
	ErrMalformed = errors.New("source: malformed response")
	// ErrEmptyDataset is fatal: the run produced no usable entities.
	ErrEmptyDataset = errors.New("run produced an empty dataset")
)

// FetchError classifies a failed source fetch. Transient errors are
// retryable (timeouts, 5xx, connection resets); permanent ones are not.
type FetchError struct {
	Op        string // which source operation failed
	Status    int    // HTTP status when applicable, 0 otherwise
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: %s failure (status %d): %v", e.Op, kind, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s failure: %v", e.Op, kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTransientFetch reports whether err is a retryable fetch failure.
func IsTransientFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// WriteError wraps a failure to persist the output artifact. Always fatal.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string { return fmt.Sprintf("write %s: %v", e.Path, e.Err) }
func (e *WriteError) Unwrap() error { return e.Err }
