// Package textedit computes minimal text edits between a source text
// and its formatted form, for hosts that apply range-based edits instead
// of replacing whole documents.
package textedit

import (
	"strings"
	"unicode/utf8"
)

// Edit replaces source[Start:End] with NewText. Offsets are byte
// offsets into the source text.
type Edit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"newText"`
}

// Minimal returns the single minimal edit transforming source into
// formatted. The second return is false when the texts are equal and no
// edit is needed.
func Minimal(source, formatted string) (Edit, bool) {
	if source == formatted {
		return Edit{}, false
	}

	// Common prefix, advanced rune by rune so the cut never lands inside
	// a multi-byte sequence.
	prefix := 0
	for prefix < len(source) && prefix < len(formatted) {
		sr, sn := utf8.DecodeRuneInString(source[prefix:])
		fr, fn := utf8.DecodeRuneInString(formatted[prefix:])
		if sr != fr || sn != fn {
			break
		}
		prefix += sn
	}

	// Common suffix by bytes, bounded so it cannot overlap the prefix.
	suffix := 0
	for suffix < len(source)-prefix && suffix < len(formatted)-prefix &&
		source[len(source)-1-suffix] == formatted[len(formatted)-1-suffix] {
		suffix++
	}

	return Edit{
		Start:   prefix,
		End:     len(source) - suffix,
		NewText: formatted[prefix : len(formatted)-suffix],
	}, true
}

// Position converts a byte offset into zero-based line and column
// (column counted in bytes within the line).
func Position(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	before := source[:offset]
	line = strings.Count(before, "\n")
	if idx := strings.LastIndexByte(before, '\n'); idx >= 0 {
		col = len(before) - idx - 1
	} else {
		col = len(before)
	}
	return line, col
}

// EnsureFinalNewline applies the final-newline policy: when insert is
// false, trailing whitespace and newlines are stripped; when true, the
// text ends with a single trailing newline.
func EnsureFinalNewline(s string, insert bool) string {
	if !insert {
		return strings.TrimRight(s, " \t\r\n")
	}
	if s == "" {
		return s
	}
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
