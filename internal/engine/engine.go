package engine

import "context"

// Engine is the formatting backend capability. Implementations must be
// safe for concurrent use and hold no per-call state: a single instance
// may be shared by the registry and any number of in-flight calls.
type Engine interface {
	// Format returns the formatted form of code under opts. The opts
	// document carries at minimum the parser name under "parser" and,
	// for file formatting, the file path under "filepath".
	Format(ctx context.Context, code string, opts Options) (string, error)

	// ID identifies the engine instance for the process lifetime.
	ID() string

	// Source names where the engine was loaded from (a script path, or
	// "builtin" for the embedded baseline).
	Source() string
}

// ResolutionSource records which branch a per-root resolution took.
type ResolutionSource int

const (
	// SourceDefault means the process-default engine was used.
	SourceDefault ResolutionSource = iota

	// SourceLocal means a project-local engine was resolved.
	SourceLocal
)

// String returns the source name.
func (s ResolutionSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Resolution is the result of resolving an engine for a project root.
// The fallback to the default engine is deliberate and silent; Source
// makes the taken branch observable.
type Resolution struct {
	Engine Engine
	Source ResolutionSource
}
