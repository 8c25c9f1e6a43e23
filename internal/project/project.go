package project

import (
	"path"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// hotFileCacheSize bounds fileCache, the fast-access view over
// fileIndices. Eviction from fileCache never drops a file's authoritative
// record — only GetFileIndex's LRU-tracked lookup path, mirroring
// gnana997-uispec/pkg/indexer's SymbolIndexer.fileCache (an LRU layered
// over an unbounded primary map purely for recency bookkeeping).
const hotFileCacheSize = 2000

// ProjectIndex is the workspace-wide symbol index (§3 "Project index"):
// fileIndices plus the derived exportIndex/importGraph/dependentGraph.
// Guarded by a single RWMutex, mirroring SymbolIndexer's single-writer,
// many-readers discipline — the core compiler is single-threaded (§5), but
// the LSP server's debounced watcher and request handlers both touch this
// structure and must not race.
type ProjectIndex struct {
	mu sync.RWMutex

	fileIndices    map[string]*FileIndex
	fileCache      *lru.Cache[string, *FileIndex]
	exportIndex    map[string]map[string]bool // export name -> set of paths
	importGraph    map[string]map[string]bool // path -> set of resolved paths it imports
	dependentGraph map[string]map[string]bool // path -> set of paths that import it
}

func NewProjectIndex() *ProjectIndex {
	cache, _ := lru.New[string, *FileIndex](hotFileCacheSize)
	return &ProjectIndex{
		fileIndices:    make(map[string]*FileIndex),
		fileCache:      cache,
		exportIndex:    make(map[string]map[string]bool),
		importGraph:    make(map[string]map[string]bool),
		dependentGraph: make(map[string]map[string]bool),
	}
}

// GetFileIndex returns path's current FileIndex through the LRU-tracked
// fast path, falling back to the authoritative map on a cache miss (the
// file is still fully indexed; only its place in the recency list was
// evicted).
func (p *ProjectIndex) GetFileIndex(filePath string) (*FileIndex, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if fi, ok := p.fileCache.Get(filePath); ok {
		return fi, true
	}
	fi, ok := p.fileIndices[filePath]
	return fi, ok
}

// IndexFile fully replaces any prior record for path (4.F contract). The
// removal step runs first and is total, so the derived indices can never
// retain a stale entry from the previous version of this file (§9: "The
// removal step must be total").
func (p *ProjectIndex) IndexFile(filePath string, fi *FileIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeFileLocked(filePath)
	p.fileIndices[filePath] = fi
	p.fileCache.Add(filePath, fi)

	for name := range fi.Exports {
		if p.exportIndex[name] == nil {
			p.exportIndex[name] = make(map[string]bool)
		}
		p.exportIndex[name][filePath] = true
	}

	for _, imp := range fi.Imports {
		if imp.ResolvedPath == "" {
			continue
		}
		if p.importGraph[filePath] == nil {
			p.importGraph[filePath] = make(map[string]bool)
		}
		p.importGraph[filePath][imp.ResolvedPath] = true

		if p.dependentGraph[imp.ResolvedPath] == nil {
			p.dependentGraph[imp.ResolvedPath] = make(map[string]bool)
		}
		p.dependentGraph[imp.ResolvedPath][filePath] = true
	}
}

// RemoveFile drops path's record and every derived index entry it
// contributed (4.F contract).
func (p *ProjectIndex) RemoveFile(filePath string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeFileLocked(filePath)
}

func (p *ProjectIndex) removeFileLocked(filePath string) {
	existing, ok := p.fileIndices[filePath]
	if !ok {
		return
	}

	for name := range existing.Exports {
		if set, ok := p.exportIndex[name]; ok {
			delete(set, filePath)
			if len(set) == 0 {
				delete(p.exportIndex, name)
			}
		}
	}

	if targets, ok := p.importGraph[filePath]; ok {
		for target := range targets {
			if dependents, ok := p.dependentGraph[target]; ok {
				delete(dependents, filePath)
				if len(dependents) == 0 {
					delete(p.dependentGraph, target)
				}
			}
		}
		delete(p.importGraph, filePath)
	}

	delete(p.fileIndices, filePath)
	p.fileCache.Remove(filePath)
}

// FindExports returns every file path whose file index lists name among
// its exports (4.F, §8 invariant 4).
func (p *ProjectIndex) FindExports(name string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.exportIndex[name]
	out := make([]string, 0, len(set))
	for filePath := range set {
		out = append(out, filePath)
	}
	sort.Strings(out)
	return out
}

func (p *ProjectIndex) GetImports(filePath string) []ImportInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	fi, ok := p.fileIndices[filePath]
	if !ok {
		return nil
	}
	return fi.Imports
}

func (p *ProjectIndex) GetDependents(filePath string) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := p.dependentGraph[filePath]
	out := make([]string, 0, len(set))
	for dependent := range set {
		out = append(out, dependent)
	}
	sort.Strings(out)
	return out
}

func (p *ProjectIndex) GetAllFiles() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.fileIndices))
	for filePath := range p.fileIndices {
		out = append(out, filePath)
	}
	sort.Strings(out)
	return out
}

type Stats struct {
	FileCount     int
	ExportedNames int
	ImportEdges   int
}

func (p *ProjectIndex) GetStats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	edges := 0
	for _, targets := range p.importGraph {
		edges += len(targets)
	}
	return Stats{
		FileCount:     len(p.fileIndices),
		ExportedNames: len(p.exportIndex),
		ImportEdges:   edges,
	}
}

// GetExportedSymbol follows re-export chains starting at (name, path) to
// the original, non-re-exported definition (4.F). The open question in §9
// is resolved by preferring the already-known ResolvedPath on the
// re-exporting file's own ImportInfo for OriginalModule, falling back to a
// workspace-wide filename-suffix match only when no such import exists,
// and recording the ambiguity when more than one file matches by suffix.
// A visited set terminates re-export cycles (§8 invariant 6, scenario S7).
func (p *ProjectIndex) GetExportedSymbol(name string, filePath string) (*symbols.Record, bool) {
	p.mu.Lock() // may write SuffixMatchAmbiguous on the fallback path
	defer p.mu.Unlock()
	return p.resolveExportedSymbol(name, filePath, make(map[string]bool))
}

func (p *ProjectIndex) resolveExportedSymbol(name, filePath string, visited map[string]bool) (*symbols.Record, bool) {
	key := filePath + "\x00" + name
	if visited[key] {
		return nil, false
	}
	visited[key] = true

	fi, ok := p.fileIndices[filePath]
	if !ok {
		return nil, false
	}
	export, ok := fi.Exports[name]
	if !ok {
		return nil, false
	}
	if !export.IsReExport {
		record, ok := fi.Symbols[export.LocalName]
		return record, ok
	}

	nextPath, ok := p.resolveReExportTarget(fi, export)
	if !ok {
		return nil, false
	}
	return p.resolveExportedSymbol(export.LocalName, nextPath, visited)
}

func (p *ProjectIndex) resolveReExportTarget(fi *FileIndex, export ExportInfo) (string, bool) {
	for _, imp := range fi.Imports {
		if imp.ModulePath == export.OriginalModule && imp.ResolvedPath != "" {
			return imp.ResolvedPath, true
		}
	}

	suffix := path.Base(export.OriginalModule)
	var match string
	matchCount := 0
	for candidate := range p.fileIndices {
		if strings.HasSuffix(candidate, suffix) {
			match = candidate
			matchCount++
		}
	}
	if matchCount == 0 {
		return "", false
	}
	if matchCount > 1 {
		fi.SuffixMatchAmbiguous[export.SymbolName] = true
	}
	return match, true
}

// SearchSymbols implements the workspace symbol search (4.F, §3's
// case-insensitive substring contract, ranked per the exact-before-
// substring ordering in the supplemented search feature): exact-name
// matches sort first, then substring matches, each group in file-then-name
// order for determinism.
func (p *ProjectIndex) SearchSymbols(query string, maxResults int) []*symbols.Record {
	if maxResults <= 0 {
		maxResults = 100
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	lowerQuery := strings.ToLower(query)
	var exact, substring []*symbols.Record

	filePaths := make([]string, 0, len(p.fileIndices))
	for filePath := range p.fileIndices {
		filePaths = append(filePaths, filePath)
	}
	sort.Strings(filePaths)

	for _, filePath := range filePaths {
		fi := p.fileIndices[filePath]
		names := make([]string, 0, len(fi.Symbols))
		for name := range fi.Symbols {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			lowerName := strings.ToLower(name)
			switch {
			case lowerName == lowerQuery:
				exact = append(exact, fi.Symbols[name])
			case strings.Contains(lowerName, lowerQuery):
				substring = append(substring, fi.Symbols[name])
			}
		}
	}

	results := append(exact, substring...)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}
