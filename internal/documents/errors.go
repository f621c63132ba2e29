package documents

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrStatusConflict means the document was not in the expected status.
	ErrStatusConflict = errors.New("document status conflict")
)
