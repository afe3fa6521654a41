package coordinate

import "errors"

var (
	// ErrMalformed indicates a coordinate that cannot be read as group:name:version,
	// even with best-effort normalisation.
	ErrMalformed = errors.New("malformed coordinate")
)
