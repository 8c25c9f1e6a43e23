package lsp

import (
	"strings"

	"github.com/hlvm-dev/hqlc/internal/helpers"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"go.lsp.dev/protocol"
)

// offsetToPosition converts a byte offset into text to an LSP Position
// (zero-based line and UTF-16 character, §6: "zero-based lines and columns
// as per LSP"). LocationOrNil's Column is a byte offset into the line;
// string literals, template text, and comments are not restricted to
// ASCII, so it's re-measured in UTF-16 code units (helpers.StringToUTF16,
// the same conversion the teacher's source maps use for JS string
// columns) to match what an LSP client expects Position.Character to
// count.
func offsetToPosition(text string, offset int) protocol.Position {
	ml := logger.LocationOrNil(&logger.Source{Contents: text}, logger.Range{Loc: logger.Loc{Start: int32(offset)}})
	if ml == nil {
		return protocol.Position{}
	}
	col := len(helpers.StringToUTF16(ml.LineText[:ml.Column]))
	return protocol.Position{Line: uint32(ml.Line - 1), Character: uint32(col)}
}

// locToRange converts a byte-offset Loc plus a token length to an LSP
// Range, the shape every hover/definition/document-symbol response needs.
func locToRange(text string, loc logger.Loc, length int) protocol.Range {
	start := offsetToPosition(text, int(loc.Start))
	end := offsetToPosition(text, int(loc.Start)+length)
	return protocol.Range{Start: start, End: end}
}

// offsetFromPosition is the inverse of offsetToPosition: it walks lines up
// to pos.Line, then decodes pos.Character UTF-16 code units into that
// line's byte length. Out-of-range positions clamp to the nearest valid
// offset rather than erroring, since a client's cursor can briefly outrun a
// not-yet-republished document during fast typing.
func offsetFromPosition(text string, pos protocol.Position) int {
	line := 0
	lineStart := 0
	for i := 0; i < len(text) && line < int(pos.Line); i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	if line < int(pos.Line) {
		return len(text)
	}
	lineEnd := len(text)
	if idx := strings.IndexByte(text[lineStart:], '\n'); idx >= 0 {
		lineEnd = lineStart + idx
	}

	units := helpers.StringToUTF16(text[lineStart:lineEnd])
	charIdx := int(pos.Character)
	if charIdx > len(units) {
		charIdx = len(units)
	}
	offset := lineStart + len(helpers.UTF16ToString(units[:charIdx]))
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// identifierAt returns the contiguous identifier-constituent run of text
// touching offset, the word a hover/definition/completion request resolves
// against. HQL identifiers may contain the usual alphanumerics plus the
// Lisp-ish `-`, `?`, `!`, `*`, `+`, `/`, `<`, `>`, `=`, and `_` and `.`; everything else
// (whitespace, parens, brackets, quotes) is a boundary.
func identifierAt(text string, offset int) string {
	if offset > len(text) {
		offset = len(text)
	}
	start := offset
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	return text[start:end]
}

func isIdentByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	}
	return strings.IndexByte("-?!*+/<>=_.", b) >= 0
}
