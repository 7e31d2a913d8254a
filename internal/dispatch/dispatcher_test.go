package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/fmtbridge/internal/engine"
	"github.com/dshills/fmtbridge/internal/workspace"
)

const echoScript = `
function format(code, options)
    return "parser=" .. tostring(options.parser) .. ";filepath=" .. tostring(options.filepath) .. ";" .. code
end
`

const upperScript = `
function format(code, options)
    return string.upper(code)
end
`

const failScript = `
function format(code, options)
    error("engine failure")
end
`

func writeScript(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// testDispatcher builds a dispatcher whose default engine runs script.
func testDispatcher(t *testing.T, script string) *Dispatcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "default.lua")
	writeScript(t, path, script)
	loader := engine.NewLoader(engine.WithSearchPaths(), engine.WithDefaultScript(path))
	return New(workspace.NewRegistry(loader), loader)
}

// baselineDispatcher builds a dispatcher on the embedded baseline engine.
func baselineDispatcher() *Dispatcher {
	loader := engine.NewLoader(engine.WithSearchPaths())
	return New(workspace.NewRegistry(loader), loader)
}

func mustOptions(t *testing.T, s string) engine.Options {
	t.Helper()
	o, err := engine.ParseOptions(s)
	if err != nil {
		t.Fatal(err)
	}
	return o
}

func TestFormatFileSetsParserAndFilepath(t *testing.T) {
	d := testDispatcher(t, echoScript)

	// Prior parser and filepath values must be overridden.
	opts := mustOptions(t, `{"parser":"stale","filepath":"stale.txt"}`)
	got, err := d.FormatFile(context.Background(), FileRequest{
		Code:     "const x=1",
		Parser:   "babel",
		Filename: "a.js",
		Options:  opts,
	})
	if err != nil {
		t.Fatalf("FormatFile() error = %v", err)
	}

	want := "parser=babel;filepath=a.js;const x=1"
	if got != want {
		t.Errorf("FormatFile() = %q, want %q", got, want)
	}

	// The caller's options value is untouched.
	if parser := opts.Get("parser").String(); parser != "stale" {
		t.Errorf("caller options parser = %q after FormatFile(), want %q", parser, "stale")
	}
}

func TestFormatFileEmptyOptions(t *testing.T) {
	d := testDispatcher(t, echoScript)

	got, err := d.FormatFile(context.Background(), FileRequest{
		Code:     "x",
		Parser:   "css",
		Filename: "a.css",
	})
	if err != nil {
		t.Fatalf("FormatFile() error = %v", err)
	}
	if got != "parser=css;filepath=a.css;x" {
		t.Errorf("FormatFile() = %q", got)
	}
}

func TestFormatFileUsesWorkspaceEngine(t *testing.T) {
	d := testDispatcher(t, echoScript)
	ctx := context.Background()

	root := t.TempDir()
	writeScript(t, filepath.Join(root, ".fmtbridge", "engine.lua"), upperScript)

	id, err := d.registry.Create(ctx, root)
	if err != nil {
		t.Fatal(err)
	}

	got, err := d.FormatFile(ctx, FileRequest{
		Code:        "abc",
		Parser:      "babel",
		Filename:    "a.js",
		WorkspaceID: id,
	})
	if err != nil {
		t.Fatalf("FormatFile() error = %v", err)
	}
	if got != "ABC" {
		t.Errorf("FormatFile() = %q, want workspace engine result %q", got, "ABC")
	}

	// Workspace id 0 uses the default engine.
	got, err = d.FormatFile(ctx, FileRequest{Code: "abc", Parser: "babel", Filename: "a.js"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "parser=") {
		t.Errorf("FormatFile() with id 0 = %q, want default engine result", got)
	}
}

func TestFormatFileStaleWorkspaceDegrades(t *testing.T) {
	d := testDispatcher(t, echoScript)
	ctx := context.Background()

	root := t.TempDir()
	writeScript(t, filepath.Join(root, ".fmtbridge", "engine.lua"), upperScript)

	id, err := d.registry.Create(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	d.registry.Delete(id)

	got, err := d.FormatFile(ctx, FileRequest{Code: "abc", Parser: "babel", Filename: "a.js", WorkspaceID: id})
	if err != nil {
		t.Fatalf("FormatFile() with stale id error = %v", err)
	}
	if !strings.HasPrefix(got, "parser=") {
		t.Errorf("FormatFile() with stale id = %q, want default engine result", got)
	}
}

func TestFormatFileErrorPropagates(t *testing.T) {
	d := testDispatcher(t, failScript)

	_, err := d.FormatFile(context.Background(), FileRequest{Code: "x", Parser: "css", Filename: "a.css"})
	if err == nil {
		t.Fatal("FormatFile() should surface engine errors")
	}
	if !strings.Contains(err.Error(), "engine failure") {
		t.Errorf("FormatFile() error = %v, want engine failure message", err)
	}
}

func TestFormatEmbeddedUnknownTag(t *testing.T) {
	d := testDispatcher(t, upperScript)

	code := "color: red"
	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: code, Tag: "unknown-tag"})
	if got != code {
		t.Errorf("FormatEmbedded() = %q, want original %q", got, code)
	}
}

func TestFormatEmbeddedFailureReturnsOriginal(t *testing.T) {
	d := testDispatcher(t, failScript)

	code := "color: red"
	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: code, Tag: "css"})
	if got != code {
		t.Errorf("FormatEmbedded() = %q, want original %q", got, code)
	}
}

func TestFormatEmbeddedDefaultEngineFailureReturnsOriginal(t *testing.T) {
	loader := engine.NewLoader(
		engine.WithSearchPaths(),
		engine.WithDefaultScript(filepath.Join(t.TempDir(), "missing.lua")),
	)
	d := New(workspace.NewRegistry(loader), loader)

	code := "color: red"
	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: code, Tag: "css"})
	if got != code {
		t.Errorf("FormatEmbedded() = %q, want original %q", got, code)
	}
}

func TestFormatEmbeddedSetsParser(t *testing.T) {
	d := testDispatcher(t, echoScript)

	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: "x", Tag: "gql"})
	want := "parser=graphql;filepath=nil;x"
	if got != want {
		t.Errorf("FormatEmbedded() = %q, want %q", got, want)
	}
}

func TestFormatEmbeddedTrimsTrailing(t *testing.T) {
	script := `
function format(code, options)
    return code .. ";\n\n"
end
`
	d := testDispatcher(t, script)

	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: "color: red", Tag: "css"})
	if got != "color: red;" {
		t.Errorf("FormatEmbedded() = %q, want %q", got, "color: red;")
	}
}

func TestFormatEmbeddedBaselineCSS(t *testing.T) {
	d := baselineDispatcher()

	got := d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: "color: red", Tag: "css"})
	if got != "color: red;" {
		t.Errorf("FormatEmbedded() = %q, want %q", got, "color: red;")
	}

	// The same fragment under an unknown tag is untouched.
	got = d.FormatEmbedded(context.Background(), EmbeddedRequest{Code: "color: red", Tag: "unknown-tag"})
	if got != "color: red" {
		t.Errorf("FormatEmbedded() = %q, want %q", got, "color: red")
	}
}

func TestParserForTag(t *testing.T) {
	tests := []struct {
		tag    string
		parser string
		ok     bool
	}{
		{"css", "css", true},
		{"graphql", "graphql", true},
		{"gql", "graphql", true},
		{"html", "html", true},
		{"markdown", "markdown", true},
		{"md", "markdown", true},
		{"js", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		parser, ok := ParserForTag(tt.tag)
		if parser != tt.parser || ok != tt.ok {
			t.Errorf("ParserForTag(%q) = %q, %v, want %q, %v", tt.tag, parser, ok, tt.parser, tt.ok)
		}
	}
}

func TestResolvePlugins(t *testing.T) {
	d := baselineDispatcher()

	plugins := d.ResolvePlugins()
	if plugins == nil {
		t.Fatal("ResolvePlugins() = nil, want empty slice")
	}
	if len(plugins) != 0 {
		t.Errorf("ResolvePlugins() len = %d, want 0", len(plugins))
	}
}
