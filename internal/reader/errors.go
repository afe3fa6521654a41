package reader

import "errors"

var (
	// ErrUnknownFormat indicates a reader type name that is not registered.
	ErrUnknownFormat = errors.New("unknown input format")

	// ErrInvalidPath indicates an input path that does not exist or has the wrong file type.
	ErrInvalidPath = errors.New("invalid input path")

	// ErrMalformedRow indicates a line or record that cannot be interpreted.
	ErrMalformedRow = errors.New("malformed input row")
)
