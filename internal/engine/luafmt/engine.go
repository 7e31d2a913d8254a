package luafmt

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"
)

// BuiltinSource identifies the embedded baseline engine.
const BuiltinSource = "builtin"

//go:embed baseline.lua
var baselineScript string

// Engine is a formatting engine backed by a Lua script.
//
// Engines are stateless from the caller's perspective: format calls do
// not accumulate script state between invocations, and a single Engine
// may be shared by any number of workspaces. Calls are serialized
// internally because the underlying Lua state is single-threaded.
type Engine struct {
	mu sync.Mutex

	id     string
	source string
	state  *State
}

// Load loads an engine script from a file.
func Load(path string, opts ...StateOption) (*Engine, error) {
	st := NewState(opts...)
	if err := st.DoFile(path); err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptFailed, path, err)
	}
	return newEngine(path, st)
}

// LoadScript loads an engine from an in-memory Lua chunk. source names
// the chunk for diagnostics.
func LoadScript(source, script string, opts ...StateOption) (*Engine, error) {
	st := NewState(opts...)
	if err := st.DoString(script); err != nil {
		st.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptFailed, source, err)
	}
	return newEngine(source, st)
}

// Baseline loads the embedded baseline engine.
func Baseline(opts ...StateOption) (*Engine, error) {
	return LoadScript(BuiltinSource, baselineScript, opts...)
}

func newEngine(source string, st *State) (*Engine, error) {
	if !st.HasFunction("format") {
		st.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoFormatFunction, source)
	}
	return &Engine{
		id:     uuid.NewString(),
		source: source,
		state:  st,
	}, nil
}

// ID returns the engine instance identifier, unique per loaded engine.
func (e *Engine) ID() string {
	return e.id
}

// Source returns the script path the engine was loaded from, or
// BuiltinSource for the embedded baseline.
func (e *Engine) Source() string {
	return e.source
}

// Format runs the script's format function. optionsJSON is the opaque
// options document; it is delivered to the script as a Lua table.
func (e *Engine) Format(ctx context.Context, code, optionsJSON string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.state.IsClosed() {
		return "", ErrStateClosed
	}

	opts := optionsTable(e.state.L, optionsJSON)

	results, err := e.state.Call(ctx, "format", lua.LString(code), opts)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrScriptFailed, e.source, err)
	}

	if len(results) == 0 {
		return "", fmt.Errorf("%w: %s: no return value", ErrBadResult, e.source)
	}

	switch first := results[0].(type) {
	case lua.LString:
		return string(first), nil
	case *lua.LNilType:
		// Convention: return nil, "message" signals a formatting error.
		if len(results) > 1 {
			if msg, ok := results[1].(lua.LString); ok {
				return "", fmt.Errorf("%w: %s: %s", ErrScriptFailed, e.source, string(msg))
			}
		}
		return "", fmt.Errorf("%w: %s: nil result", ErrBadResult, e.source)
	default:
		return "", fmt.Errorf("%w: %s: got %s", ErrBadResult, e.source, first.Type())
	}
}

// Close releases the engine's Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Close()
}
