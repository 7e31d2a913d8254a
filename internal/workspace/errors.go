package workspace

import "errors"

// Registry errors.
var (
	// ErrEmptyDirectory is returned when creating a workspace with an
	// empty directory.
	ErrEmptyDirectory = errors.New("workspace directory is required")

	// ErrDirectoryNotFound is returned when creating a workspace for a
	// directory that does not exist.
	ErrDirectoryNotFound = errors.New("workspace directory does not exist")
)
