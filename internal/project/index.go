// Package project implements 4.F: the workspace-wide symbol index with
// export/import graphs and re-export chain resolution. Grounded on
// gnana997-uispec/pkg/indexer's SymbolIndexer (mutex-guarded maps, O(1)
// lookup, reverse index for removal, remove-before-reinsert discipline)
// and its WorkspaceScanner/FileWatcher for workspace discovery and
// incremental re-index (§5, §9 open question).
package project

import "github.com/hlvm-dev/hqlc/internal/symbols"

// ImportedSymbol is one named binding pulled from an import (§3 File index:
// "importedSymbols: [{name, localName, line, column}]").
type ImportedSymbol struct {
	Name      string
	LocalName string
	Line      int
	Column    int
}

// ImportInfo describes one import declaration, keyed by module path; when
// several symbols share a module they coalesce under one ImportInfo (4.F).
type ImportInfo struct {
	ModulePath        string
	ResolvedPath      string
	ImportedSymbols   []ImportedSymbol
	IsNamespaceImport bool
	NamespaceName     string
}

// ExportInfo is one exported binding. For a plain export, LocalName names
// the symbol defined in this file. For a re-export (IsReExport), LocalName
// is the name as known in OriginalModule, and OriginalModule is always set
// (§3 invariant: "every re-export's originalModule is set; non-re-exports
// have no originalModule").
type ExportInfo struct {
	SymbolName     string
	LocalName      string
	SymbolID       string
	IsReExport     bool
	OriginalModule string
}

// FileIndex is one file's analysis snapshot (§3). SuffixMatchAmbiguous
// records, per export name, whether the re-export resolver in
// ProjectIndex.GetExportedSymbol had to fall back to filename-suffix
// matching and found more than one candidate (§9 open question).
type FileIndex struct {
	FilePath             string
	LastModified         int64
	Symbols              map[string]*symbols.Record
	Exports              map[string]ExportInfo
	Imports              []ImportInfo
	SuffixMatchAmbiguous map[string]bool
}

func NewFileIndex(filePath string, lastModified int64) *FileIndex {
	return &FileIndex{
		FilePath:             filePath,
		LastModified:         lastModified,
		Symbols:              make(map[string]*symbols.Record),
		Exports:              make(map[string]ExportInfo),
		SuffixMatchAmbiguous: make(map[string]bool),
	}
}
