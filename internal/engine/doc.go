// Package engine defines the formatting engine contract and resolves
// engine instances.
//
// An Engine turns source text into formatted text under an opaque
// Options document. The package never implements formatting rules
// itself: engines are Lua scripts executed by the luafmt runtime.
//
// The Loader resolves engines at two levels:
//
//   - The process-default engine, found through an explicit script path,
//     the user's engine search paths, or the embedded baseline. It is
//     loaded once and cached for the life of the process.
//   - A project-local engine, discovered through the project's
//     fmtbridge.json manifest (or the conventional .fmtbridge/engine.lua).
//     Any resolution failure falls back to the default engine; the
//     Resolution result records which branch was taken.
//
// Per-project engines let a project format with its own pinned engine
// script while guaranteeing that formatting never fails outright because
// a local engine is missing.
package engine
