package dispatch

import (
	"context"
	"strings"

	"github.com/dshills/fmtbridge/internal/engine"
	"github.com/dshills/fmtbridge/internal/workspace"
)

// Dispatcher routes format requests to workspace engines.
type Dispatcher struct {
	registry *workspace.Registry
	loader   *engine.Loader
}

// New creates a dispatcher over the given registry and engine loader.
func New(registry *workspace.Registry, loader *engine.Loader) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		loader:   loader,
	}
}

// FileRequest is a whole-file format request.
type FileRequest struct {
	// Code is the file contents.
	Code string

	// Parser names the grammar/printer the engine should use.
	Parser string

	// Filename is the file path, used by engines for path-based
	// heuristics.
	Filename string

	// WorkspaceID selects the engine. 0 or an unknown id means the
	// process-default engine.
	WorkspaceID uint32

	// Options is the externally computed options document.
	Options engine.Options
}

// FormatFile formats a whole file with the requesting workspace's
// engine. The parser and filepath fields are overlaid onto the options
// before delegating, overriding any prior values; the caller's Options
// value is never modified. Engine errors propagate verbatim: no retry,
// no fallback.
func (d *Dispatcher) FormatFile(ctx context.Context, req FileRequest) (string, error) {
	ws, err := d.registry.Resolve(ctx, req.WorkspaceID)
	if err != nil {
		return "", err
	}

	opts, err := req.Options.With("parser", req.Parser)
	if err != nil {
		return "", err
	}
	opts, err = opts.With("filepath", req.Filename)
	if err != nil {
		return "", err
	}

	return ws.Engine.Format(ctx, req.Code, opts)
}

// EmbeddedRequest is an embedded-fragment format request. There is no
// workspace id: an inline fragment has no filesystem context, so
// embedded formatting always targets the process-default engine.
type EmbeddedRequest struct {
	// Code is the fragment text.
	Code string

	// Tag is the embedding tag name (e.g. a template-literal tag).
	Tag string

	// Options is the externally computed options document, without a
	// parser.
	Options engine.Options
}

// FormatEmbedded formats an embedded code fragment. Unknown tags return
// the fragment unchanged, and any failure (engine load, option merge,
// formatting) also returns the original fragment. On success the result
// is trimmed of trailing whitespace and newlines.
func (d *Dispatcher) FormatEmbedded(ctx context.Context, req EmbeddedRequest) string {
	parser, ok := ParserForTag(req.Tag)
	if !ok {
		return req.Code
	}

	formatted, err := d.formatEmbedded(ctx, req, parser)
	if err != nil {
		return req.Code
	}
	return formatted
}

// formatEmbedded is the fallible inner path; FormatEmbedded maps its
// failure to "return the original text".
func (d *Dispatcher) formatEmbedded(ctx context.Context, req EmbeddedRequest, parser string) (string, error) {
	eng, err := d.loader.Default(ctx)
	if err != nil {
		return "", err
	}

	// No filepath: embedded fragments have no file identity.
	opts, err := req.Options.With("parser", parser)
	if err != nil {
		return "", err
	}

	formatted, err := eng.Format(ctx, req.Code, opts)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(formatted, " \t\r\n"), nil
}

// ResolvePlugins returns the plugin-provided languages. Plugin loading
// is not implemented; the list is empty.
//
// TODO: load engine plugins and let them extend the tag and parser
// tables.
func (d *Dispatcher) ResolvePlugins() []string {
	return []string{}
}
