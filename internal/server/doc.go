// Package server exposes the format dispatcher over JSON-RPC 2.0 with
// Content-Length framed messages on a byte stream, typically stdio.
//
// Methods:
//
//	workspace/create  register a project root, returns its id
//	workspace/delete  forget a workspace id
//	workspace/list    list the registered workspaces
//	format/file       format a whole file with its workspace's engine
//	format/embedded   format an embedded fragment, never fails
//	plugins/resolve   list plugin-provided languages
//	shutdown          stop serving after the response is written
//
// Each created workspace gets its configuration resolved from its root
// and kept fresh by a file watcher; format/file requests use that
// configuration as the base layer under the request's own options.
package server
