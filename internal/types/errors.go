package types

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotFound reports a root or subtree path that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied reports a root or entry that cannot be read.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrCancelled reports a walk aborted on request.
	ErrCancelled = errors.New("scan cancelled")
	// ErrMalformed is reserved for format parsers.
	ErrMalformed = errors.New("malformed input")
)

// ClassifyPathError maps an I/O error for path onto the error taxonomy.
// Errors that are neither missing paths nor permission failures are reported as unreadable.
func ClassifyPathError(path string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrCancelled):
		return err
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("%w: %s: %v", ErrPermissionDenied, path, err)
	}
}
