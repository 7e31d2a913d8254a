package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/dshills/fmtbridge/internal/config"
	"github.com/dshills/fmtbridge/internal/dispatch"
	"github.com/dshills/fmtbridge/internal/engine"
	"github.com/dshills/fmtbridge/internal/textedit"
	"github.com/dshills/fmtbridge/internal/workspace"
)

// Server serves format requests over JSON-RPC 2.0 with Content-Length
// framed messages.
type Server struct {
	reader *bufio.Reader
	writer io.Writer

	registry   *workspace.Registry
	dispatcher *dispatch.Dispatcher

	// Per-workspace resolved configuration, kept fresh by a config
	// watcher on the workspace root.
	configMu sync.Mutex
	configs  map[uint32]*workspaceConfig

	writeMu sync.Mutex
	trace   func(format string, args ...any)
}

// workspaceConfig holds a workspace's resolved configuration and the
// watcher refreshing it.
type workspaceConfig struct {
	mu       sync.Mutex
	resolved *config.Resolved
	watcher  *config.Watcher
}

func (c *workspaceConfig) update(r *config.Resolved) {
	c.mu.Lock()
	c.resolved = r
	c.mu.Unlock()
}

func (c *workspaceConfig) options() engine.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved.Options
}

// Option configures a Server.
type Option func(*Server)

// WithTrace installs a trace function called with a line per handled
// request. Used by the CLI's debug flag.
func WithTrace(trace func(format string, args ...any)) Option {
	return func(s *Server) {
		s.trace = trace
	}
}

// New creates a server reading requests from r and writing responses
// to w.
func New(r io.Reader, w io.Writer, registry *workspace.Registry, dispatcher *dispatch.Dispatcher, opts ...Option) *Server {
	s := &Server{
		reader:     bufio.NewReaderSize(r, 64*1024),
		writer:     w,
		registry:   registry,
		dispatcher: dispatcher,
		configs:    make(map[uint32]*workspaceConfig),
		trace:      func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve reads and handles requests until EOF, a shutdown request, or
// context cancellation. It returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer s.closeWatchers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := s.readMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}

		if shutdown := s.handle(ctx, msg); shutdown {
			return nil
		}
	}
}

// readMessage reads a single Content-Length framed message.
func (s *Server) readMessage() (json.RawMessage, error) {
	var contentLength int
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "content-length:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				length, err := strconv.Atoi(strings.TrimSpace(parts[1]))
				if err == nil {
					contentLength = length
				}
			}
		}
		// Ignore Content-Type and other headers.
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// handle parses and dispatches one message. It reports whether the
// message was a shutdown request.
func (s *Server) handle(ctx context.Context, data json.RawMessage) bool {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		s.reply(nil, nil, &RPCError{Code: CodeParseError, Message: "invalid JSON"})
		return false
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.reply(req.ID, nil, &RPCError{Code: CodeInvalidRequest, Message: "not a JSON-RPC 2.0 request"})
		return false
	}

	s.trace("rpc: %s", req.Method)

	var (
		result   any
		rpcErr   *RPCError
		shutdown bool
	)
	switch req.Method {
	case "workspace/create":
		result, rpcErr = s.handleWorkspaceCreate(ctx, req.Params)
	case "workspace/delete":
		result, rpcErr = s.handleWorkspaceDelete(req.Params)
	case "workspace/list":
		result = s.handleWorkspaceList(ctx)
	case "format/file":
		result, rpcErr = s.handleFormatFile(ctx, req.Params)
	case "format/embedded":
		result, rpcErr = s.handleFormatEmbedded(ctx, req.Params)
	case "plugins/resolve":
		result = ResolvePluginsResult{Plugins: s.dispatcher.ResolvePlugins()}
	case "shutdown":
		result = json.RawMessage("null")
		shutdown = true
	default:
		rpcErr = &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", req.Method)}
	}

	// Notifications get no response.
	if req.ID != nil {
		s.reply(req.ID, result, rpcErr)
	}
	return shutdown
}

func (s *Server) handleWorkspaceCreate(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p WorkspaceCreateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("workspace/create: %v", err)
	}
	if p.Directory == "" {
		return nil, invalidParams("workspace/create: directory is required")
	}

	id, err := s.registry.Create(ctx, p.Directory)
	if err != nil {
		if errors.Is(err, workspace.ErrEmptyDirectory) || errors.Is(err, workspace.ErrDirectoryNotFound) {
			return nil, invalidParams("workspace/create: %v", err)
		}
		return nil, internalError(err)
	}

	ws, err := s.registry.Resolve(ctx, id)
	if err != nil {
		return nil, internalError(err)
	}

	s.watchConfig(id, p.Directory)
	s.trace("workspace %d created for %s (%d active)", id, p.Directory, s.registry.Len())

	return WorkspaceCreateResult{ID: id, Source: ws.Source.String()}, nil
}

// watchConfig resolves the workspace's configuration and starts a
// watcher keeping it fresh. A resolve or watch failure leaves the
// workspace with empty options; formatting still works.
func (s *Server) watchConfig(id uint32, directory string) {
	resolved, err := config.Resolve(directory)
	if err != nil {
		resolved = &config.Resolved{}
	}
	wc := &workspaceConfig{resolved: resolved}
	if w, err := config.Watch(directory, wc.update); err == nil {
		wc.watcher = w
	}

	s.configMu.Lock()
	s.configs[id] = wc
	s.configMu.Unlock()
}

// workspaceOptions returns the workspace's current resolved options, or
// the zero options for unknown ids.
func (s *Server) workspaceOptions(id uint32) engine.Options {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	if wc, ok := s.configs[id]; ok {
		return wc.options()
	}
	return engine.Options{}
}

// closeWatchers stops all workspace config watchers.
func (s *Server) closeWatchers() {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	for id, wc := range s.configs {
		if wc.watcher != nil {
			wc.watcher.Close()
		}
		delete(s.configs, id)
	}
}

func (s *Server) handleWorkspaceDelete(params json.RawMessage) (any, *RPCError) {
	var p WorkspaceDeleteParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("workspace/delete: %v", err)
	}
	s.registry.Delete(p.ID)

	s.configMu.Lock()
	if wc, ok := s.configs[p.ID]; ok {
		delete(s.configs, p.ID)
		if wc.watcher != nil {
			wc.watcher.Close()
		}
	}
	s.configMu.Unlock()

	return json.RawMessage("null"), nil
}

func (s *Server) handleWorkspaceList(ctx context.Context) WorkspaceListResult {
	ids := s.registry.IDs()
	records := make([]WorkspaceRecord, 0, len(ids))
	for _, id := range ids {
		ws, err := s.registry.Resolve(ctx, id)
		if err != nil || ws.ID != id {
			continue
		}
		records = append(records, WorkspaceRecord{
			ID:     ws.ID,
			Root:   ws.Root,
			Source: ws.Source.String(),
		})
	}
	return WorkspaceListResult{Workspaces: records}
}

func (s *Server) handleFormatFile(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p FormatFileParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("format/file: %v", err)
	}
	if p.Parser == "" {
		return nil, invalidParams("format/file: parser is required")
	}

	reqOpts, err := engine.ParseOptions(string(p.Options))
	if err != nil {
		return nil, invalidParams("format/file: %v", err)
	}

	// Workspace config is the base layer; request options override it.
	opts, err := s.workspaceOptions(p.WorkspaceID).Merge(reqOpts)
	if err != nil {
		return nil, internalError(err)
	}

	formatted, err := s.dispatcher.FormatFile(ctx, dispatch.FileRequest{
		Code:        p.Code,
		Parser:      p.Parser,
		Filename:    p.Filename,
		WorkspaceID: p.WorkspaceID,
		Options:     opts,
	})
	if err != nil {
		return nil, internalError(err)
	}
	formatted = applyFinalNewline(formatted, opts)

	result := FormatFileResult{Formatted: formatted}
	if edit, changed := textedit.Minimal(p.Code, formatted); changed {
		result.Edit = &edit
		result.Range = editRange(p.Code, edit)
	}
	return result, nil
}

// applyFinalNewline applies the insertFinalNewline option to an engine
// result. Absent or non-boolean values leave the text as the engine
// produced it.
func applyFinalNewline(formatted string, opts engine.Options) string {
	if v := opts.Get("insertFinalNewline"); v.IsBool() {
		return textedit.EnsureFinalNewline(formatted, v.Bool())
	}
	return formatted
}

// editRange converts an edit's byte offsets into line/character
// positions within the source text.
func editRange(source string, edit textedit.Edit) *Range {
	startLine, startChar := textedit.Position(source, edit.Start)
	endLine, endChar := textedit.Position(source, edit.End)
	return &Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

func (s *Server) handleFormatEmbedded(ctx context.Context, params json.RawMessage) (any, *RPCError) {
	var p FormatEmbeddedParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("format/embedded: %v", err)
	}

	// A bad options document is a failure like any other: the fragment
	// comes back unchanged.
	opts, err := engine.ParseOptions(string(p.Options))
	if err != nil {
		return FormatEmbeddedResult{Formatted: p.Code}, nil
	}

	formatted := s.dispatcher.FormatEmbedded(ctx, dispatch.EmbeddedRequest{
		Code:    p.Code,
		Tag:     p.Tag,
		Options: opts,
	})
	return FormatEmbeddedResult{Formatted: formatted}, nil
}

// reply writes a response. A nil id (parse failure) gets a null id per
// the JSON-RPC spec.
func (s *Server) reply(id *json.RawMessage, result any, rpcErr *RPCError) {
	respID := json.RawMessage("null")
	if id != nil {
		respID = *id
	}

	resp := response{
		JSONRPC: "2.0",
		ID:      respID,
		Result:  result,
		Error:   rpcErr,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(s.writer, header); err != nil {
		return
	}
	_, _ = s.writer.Write(data)
}
