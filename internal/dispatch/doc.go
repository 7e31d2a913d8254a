// Package dispatch routes formatting requests to the right engine
// instance.
//
// Whole-file formatting resolves the requesting workspace's engine,
// overlays the parser name and file path onto the options, and delegates.
// Engine failures surface verbatim: for a user-initiated "format this
// file" action, silently returning unformatted text would be worse than
// an explicit error.
//
// Embedded-fragment formatting (a CSS block inside a tagged template
// literal, say) maps the tag name to a parser, always uses the
// process-default engine, and swallows every failure by returning the
// original fragment. A half-typed snippet must never abort formatting of
// the surrounding document.
package dispatch
