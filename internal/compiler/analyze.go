package compiler

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/lower"
	"github.com/hlvm-dev/hqlc/internal/macro"
	"github.com/hlvm-dev/hqlc/internal/project"
	"github.com/hlvm-dev/hqlc/internal/reader"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// Resolve looks up one import specifier seen in filePath and reports the
// absolute path it resolves to, mirroring internal/resolver.Resolver's
// signature without binding Analyze to that concrete type — the project
// index's watcher-driven re-analysis and the LSP's one-off hover lookups
// each own a Resolver instance with different caching lifetimes.
type Resolve func(specifier, containingFile string) (resolvedPath string, ok bool)

// AnalyzeResult is §7's bulk-analysis contract: `{ast?, symbols, errors}`.
// Index is always non-nil; it is populated from whatever partial AST/IR
// survived (and is empty when the reader produced no forms), same as Symbols.
type AnalyzeResult struct {
	Forms   []ast.Node
	Symbols *symbols.Scope
	Index   *project.FileIndex
	Errors  []error
}

// Analyze runs the pipeline for diagnostics and project indexing (4.F). It
// never panics on malformed input: every stage's errors are collected and
// whatever partial forms/symbols/IR survived are still used to build the
// best available FileIndex, so a caller mid-edit still gets usable
// completions and diagnostics for the rest of the file.
func Analyze(source, filePath, currentDir string, lastModified int64, resolve Resolve) AnalyzeResult {
	forms, parseErrs := reader.ReadResult(source, filePath)

	var errs []error
	for _, e := range parseErrs {
		errs = append(errs, e)
	}

	runtime := macro.NewRuntime()
	expanded, expandErrs := runtime.ExpandAll(forms)
	errs = append(errs, expandErrs...)

	root := symbols.NewGlobalScope()
	program, scope, lowerErrs := lower.Lower(expanded, currentDir, root)
	errs = append(errs, lowerErrs...)

	index := buildFileIndex(filePath, source, lastModified, scope, program, resolve)

	return AnalyzeResult{Forms: expanded, Symbols: scope, Index: index, Errors: errs}
}

// buildFileIndex turns one file's lowered IR and symbol scope into a
// project.FileIndex (4.F). Import/export specifics — module path, re-export
// FromModule, namespace vs. named vs. default shape — live only on the IR's
// SImport/SExportNamed/SExportVar/SExportDefault statements; symbols.Record
// tracks whether a binding is imported or exported but not which module a
// re-export came from, so this walks program.Body directly rather than the
// scope alone.
func buildFileIndex(filePath, source string, lastModified int64, scope *symbols.Scope, program *ir.Program, resolve Resolve) *project.FileIndex {
	fi := project.NewFileIndex(filePath, lastModified)

	for _, record := range scope.GetAllSymbols() {
		fi.Symbols[record.Name] = record
	}

	src := &logger.Source{Contents: source, PrettyPath: filePath}

	for _, stmt := range program.Body {
		switch s := stmt.Data.(type) {
		case *ir.SImport:
			fi.Imports = append(fi.Imports, buildImportInfo(s, stmt.Loc, filePath, src, resolve))
		case *ir.SExportNamed:
			for _, spec := range s.Specifiers {
				fi.Exports[spec.Name] = project.ExportInfo{
					SymbolName:     spec.Name,
					LocalName:      spec.LocalName,
					IsReExport:     s.FromModule != "",
					OriginalModule: s.FromModule,
				}
			}
		case *ir.SExportVar:
			fi.Exports[s.Decl.Name] = project.ExportInfo{SymbolName: s.Decl.Name, LocalName: s.Decl.Name}
		case *ir.SExportDefault:
			fi.Exports["default"] = project.ExportInfo{SymbolName: "default", LocalName: "default"}
		}
	}

	return fi
}

func buildImportInfo(s *ir.SImport, loc logger.Loc, filePath string, src *logger.Source, resolve Resolve) project.ImportInfo {
	line, column := 0, 0
	if ml := logger.LocationOrNil(src, logger.Range{Loc: loc}); ml != nil {
		line, column = ml.Line, ml.Column
	}

	resolvedPath := ""
	if resolve != nil {
		if rp, ok := resolve(s.ModulePath, filePath); ok {
			resolvedPath = rp
		}
	}

	info := project.ImportInfo{
		ModulePath:        s.ModulePath,
		ResolvedPath:      resolvedPath,
		IsNamespaceImport: s.IsNamespace,
		NamespaceName:     s.NamespaceName,
	}

	switch {
	case s.IsNamespace:
		info.ImportedSymbols = []project.ImportedSymbol{{Name: s.NamespaceName, LocalName: s.NamespaceName, Line: line, Column: column}}
	case s.HasDefault:
		info.ImportedSymbols = []project.ImportedSymbol{{Name: "default", LocalName: s.DefaultLocal, Line: line, Column: column}}
	default:
		for _, spec := range s.Specifiers {
			info.ImportedSymbols = append(info.ImportedSymbols, project.ImportedSymbol{
				Name: spec.Name, LocalName: spec.LocalName, Line: line, Column: column,
			})
		}
	}
	return info
}
