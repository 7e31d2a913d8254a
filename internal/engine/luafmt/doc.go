// Package luafmt executes formatting engine scripts in a sandboxed Lua
// runtime.
//
// An engine script is a Lua file that defines a global function:
//
//	function format(code, options)
//	    -- options is a table; options.parser and options.filepath are
//	    -- plain string fields when set by the caller
//	    return formatted          -- or: return nil, "error message"
//	end
//
// Scripts run with a restricted standard library (base, table, string,
// math) and with load/dofile/loadfile removed. There is no io, os, debug,
// or package access. Execution is bounded by a best-effort timeout and
// honors context cancellation.
//
// The package ships an embedded baseline engine used when no other engine
// script is installed. The baseline is a conservative normalizer, not a
// full formatter: it exists so a process always has a working default
// engine to fall back to.
package luafmt
