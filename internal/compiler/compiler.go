// Package compiler wires the six pipeline stages (§2) into the two
// entry points external callers actually need: Compile, which turns one
// file's source into emitted JavaScript, and Analyze, which runs the same
// pipeline for diagnostics and project indexing without ever throwing
// (§7: "A bulk analysis always returns a result ... never throws").
package compiler

import (
	"github.com/hlvm-dev/hqlc/internal/config"
	"github.com/hlvm-dev/hqlc/internal/emitter"
	"github.com/hlvm-dev/hqlc/internal/lower"
	"github.com/hlvm-dev/hqlc/internal/macro"
	"github.com/hlvm-dev/hqlc/internal/reader"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// CompileResult is 4.E's `{ source, sourceMap }` widened with the errors
// collected across every stage (§7's propagation rule: the reader keeps
// going after a bad form, expansion and lowering drop only the offending
// top-level form, so Source/SourceMap may still be meaningful even when
// Errors is non-empty).
type CompileResult struct {
	Source    string
	SourceMap string
	Errors    []error
}

// Compile runs the full pipeline (reader -> macro expander -> IR lowerer
// -> emitter) over one file's contents. currentDir is the directory
// lowering resolves relative bindings against (4.D); it is ordinarily
// filePath's parent.
func Compile(source, filePath, currentDir string, opts config.CompileOptions) CompileResult {
	forms, parseErrs := reader.ReadResult(source, filePath)

	var errs []error
	for _, e := range parseErrs {
		errs = append(errs, e)
	}

	runtime := macro.NewRuntime()
	expanded, expandErrs := runtime.ExpandAll(forms)
	errs = append(errs, expandErrs...)

	root := symbols.NewGlobalScope()
	program, _, lowerErrs := lower.Lower(expanded, currentDir, root)
	errs = append(errs, lowerErrs...)

	result := emitter.Emit(program, emitter.Options{
		AddSourceMappings: opts.AddSourceMappings,
		ASCIIOnly:         opts.ASCIIOnly,
		SourcePath:        filePath,
		SourceContents:    source,
	})

	return CompileResult{Source: result.Source, SourceMap: result.SourceMap, Errors: errs}
}
