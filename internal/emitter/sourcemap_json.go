package emitter

import (
	"github.com/hlvm-dev/hqlc/internal/helpers"
	"github.com/hlvm-dev/hqlc/internal/sourcemap"
)

// buildSourceMapJSON assembles a single-source source-map-v3 document from
// one chunk's VLQ-encoded mappings. internal/sourcemap has no such
// assembler itself: its ChunkBuilder/Chunk split is grounded on the
// teacher's js_printer, which needs that split because a bundle joins many
// chunks computed in parallel across files. HQL compiles one file at a
// time, so there is exactly one chunk, and it is simplest to wrap it here
// at the `{source, sourceMap}` contract boundary rather than add a
// one-chunk special case to the shared package.
func buildSourceMapJSON(chunk sourcemap.Chunk, sourcePath string, sourceContents string, asciiOnly bool) string {
	var buf []byte
	buf = append(buf, `{"version":3,"sources":[`...)
	buf = append(buf, helpers.QuoteForJSON(sourcePath, asciiOnly)...)
	buf = append(buf, `],"sourcesContent":[`...)
	buf = append(buf, helpers.QuoteForJSON(sourceContents, asciiOnly)...)
	buf = append(buf, `],"names":[`...)
	for i, name := range chunk.QuotedNames {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, name...)
	}
	buf = append(buf, `],"mappings":"`...)
	buf = append(buf, chunk.Mappings...)
	buf = append(buf, `"}`...)
	return string(buf)
}
