package dispatch

// tagParsers maps embedding tag names to parser identifiers. The table
// is fixed; unknown tags are unsupported, not an error.
var tagParsers = map[string]string{
	"css":      "css",
	"graphql":  "graphql",
	"gql":      "graphql",
	"html":     "html",
	"markdown": "markdown",
	"md":       "markdown",
}

// ParserForTag returns the parser identifier for an embedding tag name.
func ParserForTag(tag string) (string, bool) {
	parser, ok := tagParsers[tag]
	return parser, ok
}
