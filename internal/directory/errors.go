package directory

import (
	"errors"
	"fmt"
)

// Outcomes of directory operations. Transport-level errors never escape this
// package; callers branch on these to pick an HTTP status.
var (
	// ErrUnavailable means the directory could not be reached or the admin
	// bind was rejected. Nothing was attempted against the tree.
	ErrUnavailable = errors.New("directory unavailable")

	// ErrConflict means an entry already exists at the target DN.
	ErrConflict = errors.New("entry already exists")

	// ErrNotFound means the operation's target entry does not exist.
	ErrNotFound = errors.New("entry not found")

	// ErrOperationFailed means the directory accepted the connection but
	// rejected the specific operation.
	ErrOperationFailed = errors.New("directory operation failed")
)

// ValidationError reports the first missing field of a create payload,
// checked in a fixed order.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}
