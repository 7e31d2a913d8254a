// Package workspace maps workspace identifiers to project roots and
// their resolved formatting engines.
//
// A workspace is created by the host when it discovers a project root
// and deleted when the host discards that root. Engine resolution
// happens exactly once, at creation: it is the most expensive operation
// in the system (filesystem probing plus script loading), so hosts must
// not create redundant workspaces for the same root.
//
// Resolving an unknown or stale id is not an error: it degrades to a
// synthetic default-engine record. This favors availability over strict
// correctness; a host using a deleted id still gets its file formatted,
// just not with the project's pinned engine.
package workspace
