package luafmt

import "errors"

// Engine runtime errors.
var (
	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoFormatFunction is returned when an engine script does not
	// define a global format function.
	ErrNoFormatFunction = errors.New("engine script does not define format()")

	// ErrBadResult is returned when format() returns something other
	// than a string.
	ErrBadResult = errors.New("format() returned a non-string result")

	// ErrScriptFailed is returned when an engine script fails to load
	// or raises during execution.
	ErrScriptFailed = errors.New("engine script failed")
)
