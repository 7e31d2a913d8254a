package engine

import "errors"

// Engine resolution errors.
var (
	// ErrInvalidOptions is returned when an options document is not
	// valid JSON.
	ErrInvalidOptions = errors.New("options is not valid JSON")

	// ErrNoManifest is returned when a project root has no engine
	// manifest or conventional engine script.
	ErrNoManifest = errors.New("no engine manifest found")

	// ErrMissingEngine is returned when a manifest names no engine
	// script.
	ErrMissingEngine = errors.New("manifest: engine is required")

	// ErrInvalidEnginePath is returned when a manifest's engine path is
	// absolute, escapes the project root, or is not a .lua file.
	ErrInvalidEnginePath = errors.New("manifest: invalid engine path")
)
