package config

import (
	"path/filepath"
	"strings"
)

// parsersByExt maps file extensions to parser identifiers. Extending
// this table through plugins is the dispatcher's ResolvePlugins stub;
// until that lands the table is fixed.
var parsersByExt = map[string]string{
	".css":      "css",
	".scss":     "scss",
	".less":     "less",
	".json":     "json",
	".jsonc":    "json",
	".json5":    "json5",
	".yaml":     "yaml",
	".yml":      "yaml",
	".graphql":  "graphql",
	".gql":      "graphql",
	".html":     "html",
	".htm":      "html",
	".vue":      "vue",
	".md":       "markdown",
	".markdown": "markdown",
	".js":       "babel",
	".jsx":      "babel",
	".mjs":      "babel",
	".cjs":      "babel",
	".ts":       "typescript",
	".tsx":      "typescript",
	".mts":      "typescript",
	".cts":      "typescript",
}

// ParserForPath returns the parser identifier for a file path, keyed on
// its extension. The second return is false for unsupported files.
func ParserForPath(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	parser, ok := parsersByExt[ext]
	return parser, ok
}
