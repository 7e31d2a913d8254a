// Package config resolves formatting options for a project root.
//
// Options originate from a config file at the root (.fmtbridgerc.json,
// .fmtbridgerc.jsonc, or .fmtbridgerc.toml, first match wins) and are
// handed to the dispatcher as an opaque document. The dispatcher itself
// never reads config files; this package belongs to the host layer.
//
// The package also owns the file-extension to parser table and ignore
// pattern matching, both host concerns the dispatcher stays out of, and
// a file watcher that triggers a reload callback when the resolved
// config file changes.
package config
