package config

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-project ignore file, read in addition to
// the config's ignore patterns.
const IgnoreFileName = ".fmtbridgeignore"

// Ignore matches paths against gitignore-style patterns. Supported
// subset: glob patterns (path.Match syntax), bare names matching any
// path segment, slash-containing patterns anchored at the root, a
// trailing slash restricting a pattern to directory prefixes, and "!"
// negation with last-match-wins.
type Ignore struct {
	rules []ignoreRule
}

type ignoreRule struct {
	pattern  string
	negate   bool
	anchored bool // contains a slash: match against the full relative path
	dirOnly  bool
}

// NewIgnore compiles ignore patterns. Blank lines and "#" comments are
// skipped.
func NewIgnore(patterns []string) *Ignore {
	ig := &Ignore{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		rule := ignoreRule{}
		if strings.HasPrefix(p, "!") {
			rule.negate = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			rule.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		p = strings.TrimPrefix(p, "/")
		rule.anchored = strings.Contains(p, "/")
		rule.pattern = p
		if rule.pattern != "" {
			ig.rules = append(ig.rules, rule)
		}
	}
	return ig
}

// LoadIgnoreFile reads patterns from root's ignore file. A missing file
// yields no patterns.
func LoadIgnoreFile(root string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	return patterns, scanner.Err()
}

// Match reports whether the slash-separated path, relative to the
// project root, is ignored.
func (ig *Ignore) Match(rel string) bool {
	rel = strings.TrimPrefix(filepath.ToSlash(rel), "/")
	ignored := false
	for _, rule := range ig.rules {
		if rule.matches(rel) {
			ignored = !rule.negate
		}
	}
	return ignored
}

func (rule ignoreRule) matches(rel string) bool {
	if rule.anchored {
		if ok, _ := path.Match(rule.pattern, rel); ok {
			return true
		}
		// A directory pattern ignores everything beneath it.
		if strings.HasPrefix(rel, rule.pattern+"/") {
			return true
		}
		return false
	}

	segments := strings.Split(rel, "/")
	// Direct-only patterns may not match the final segment (a file).
	limit := len(segments)
	if rule.dirOnly {
		limit--
	}
	for i := 0; i < len(segments); i++ {
		if i >= limit && rule.dirOnly {
			break
		}
		if ok, _ := path.Match(rule.pattern, segments[i]); ok {
			return true
		}
	}
	return false
}
