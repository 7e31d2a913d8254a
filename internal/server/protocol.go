package server

import (
	"encoding/json"

	"github.com/dshills/fmtbridge/internal/textedit"
)

// request is an incoming JSON-RPC request or notification.
type request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

// response is an outgoing JSON-RPC response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// WorkspaceCreateParams are the parameters for workspace/create.
type WorkspaceCreateParams struct {
	Directory string `json:"directory"`
}

// WorkspaceCreateResult is the result of workspace/create.
type WorkspaceCreateResult struct {
	ID     uint32 `json:"id"`
	Source string `json:"source"`
}

// WorkspaceDeleteParams are the parameters for workspace/delete.
type WorkspaceDeleteParams struct {
	ID uint32 `json:"id"`
}

// WorkspaceRecord is one entry in a workspace/list result.
type WorkspaceRecord struct {
	ID     uint32 `json:"id"`
	Root   string `json:"root"`
	Source string `json:"source"`
}

// WorkspaceListResult is the result of workspace/list.
type WorkspaceListResult struct {
	Workspaces []WorkspaceRecord `json:"workspaces"`
}

// FormatFileParams are the parameters for format/file.
type FormatFileParams struct {
	Code        string          `json:"code"`
	Parser      string          `json:"parser"`
	Filename    string          `json:"filename"`
	WorkspaceID uint32          `json:"workspaceId,omitempty"`
	Options     json.RawMessage `json:"options,omitempty"`
}

// Position is a zero-based line/character location in the source text.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is the line/character span of an edit in the source text.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FormatFileResult is the result of format/file. Edit is the minimal
// replacement turning the input into the formatted output, with Range
// giving the same span in line/character form; both are nil when the
// input was already formatted.
type FormatFileResult struct {
	Formatted string         `json:"formatted"`
	Edit      *textedit.Edit `json:"edit,omitempty"`
	Range     *Range         `json:"range,omitempty"`
}

// FormatEmbeddedParams are the parameters for format/embedded.
type FormatEmbeddedParams struct {
	Code    string          `json:"code"`
	Tag     string          `json:"tag"`
	Options json.RawMessage `json:"options,omitempty"`
}

// FormatEmbeddedResult is the result of format/embedded.
type FormatEmbeddedResult struct {
	Formatted string `json:"formatted"`
}

// ResolvePluginsResult is the result of plugins/resolve.
type ResolvePluginsResult struct {
	Plugins []string `json:"plugins"`
}
