// Package emitter implements 4.E: IR -> target source text + source map.
// The print loop and its addSourceMapping discipline are adapted from
// internal/js_printer/js_printer.go's `printer` (a byte-slice buffer plus a
// ChunkBuilder updated once per printed node that carries a position);
// HQL's IR has a single fixed JS rendering per node (no downleveling
// feature matrix, no renamer), so the printer here is considerably
// smaller than the teacher's.
package emitter

import (
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/sourcemap"
)

// Options configures one Emit call.
type Options struct {
	// AddSourceMappings enables source-map construction (§4.E). Disabled in
	// contexts that never read a map back, e.g. the REPL's throwaway eval.
	AddSourceMappings bool
	ASCIIOnly         bool
	// SourcePath is recorded as the map's single `sources` entry.
	SourcePath string
	// SourceContents is the original HQL text: needed to build the
	// line-offset tables AddSourceMapping binary-searches, and embedded
	// verbatim as the map's sourcesContent entry.
	SourceContents string
}

// Result is 4.E's `{ source, sourceMap }`. SourceMap is the serialized
// source-map-v3 JSON document, empty when Options.AddSourceMappings is
// false.
type Result struct {
	Source    string
	SourceMap string
}

// Emit renders program to source text (§4.E contract): statement order is
// preserved, `isJS` identifiers are never escaped, async function
// expressions keep their flag, and — when enabled — every IR node with a
// non-synthetic position contributes a source-map entry. The runtime
// helper prelude is printed first; its own lines carry no mapping, which
// is exactly what shifts every subsequent mapping's generated line by the
// prelude's height without extra bookkeeping (S8).
func Emit(program *ir.Program, opts Options) Result {
	p := &printer{asciiOnly: opts.ASCIIOnly}
	if opts.AddSourceMappings {
		lineCount := int32(countLines(opts.SourceContents))
		tables := sourcemap.GenerateLineOffsetTables(opts.SourceContents, lineCount)
		builder := sourcemap.MakeChunkBuilder(tables, opts.ASCIIOnly)
		p.builder = &builder
	}

	p.print(preludeSource)

	for _, stmt := range program.Body {
		p.printStmt(stmt, 0)
	}

	result := Result{Source: string(p.js)}
	if p.builder != nil {
		chunk := p.builder.GenerateChunk(p.js)
		result.SourceMap = buildSourceMapJSON(chunk, opts.SourcePath, opts.SourceContents, opts.ASCIIOnly)
	}
	return result
}

func countLines(s string) int {
	n := 1
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
		}
	}
	return n
}

// printer accumulates emitted bytes and, optionally, source-map state.
type printer struct {
	js        []byte
	builder   *sourcemap.ChunkBuilder
	asciiOnly bool
	// stmtDepth is the indentation depth of the statement currently being
	// printed, kept so an expression-level construct with its own block
	// body (a function expression) can indent relative to where it sits
	// rather than always restarting at column zero.
	stmtDepth int
}

func (p *printer) print(s string) { p.js = append(p.js, s...) }

func (p *printer) printIndent(depth int) {
	for i := 0; i < depth; i++ {
		p.js = append(p.js, ' ', ' ')
	}
}

// addSourceMapping records that the text printed so far ends at loc, unless
// loc is the zero value — a zero Loc marks a node synthesized by lowering
// (e.g. a do-block's IIFE wrapper) rather than one the reader produced
// (ir.go: "A zero Loc means synthetic").
func (p *printer) addSourceMapping(loc logger.Loc) {
	if p.builder == nil || loc.Start == 0 {
		return
	}
	p.builder.AddSourceMapping(loc, "", p.js)
}
