package graph

import "errors"

var (
	// ErrNotApplicable indicates an operation that is only defined for the other artifact kind,
	// such as adding findings to an internal artifact.
	ErrNotApplicable = errors.New("operation not applicable to artifact kind")

	// ErrUnknownArtifact indicates a key that is not present in the graph.
	ErrUnknownArtifact = errors.New("unknown artifact")

	// ErrUnknownVersion indicates an edge recorded against a version the artifact does not have.
	ErrUnknownVersion = errors.New("unknown artifact version")

	// ErrDuplicateArtifact indicates an attempt to store a second node under an existing key.
	ErrDuplicateArtifact = errors.New("duplicate artifact")
)
