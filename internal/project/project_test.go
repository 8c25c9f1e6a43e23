package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/symbols"
)

func recordFor(name string) *symbols.Record {
	return &symbols.Record{Name: name, Kind: symbols.KindFunction, IsExported: true}
}

func TestIndexFile_PopulatesExportIndexAndGraphs(t *testing.T) {
	p := NewProjectIndex()

	a := NewFileIndex("/workspace/a.hql", 1)
	a.Symbols["add"] = recordFor("add")
	a.Exports["add"] = ExportInfo{SymbolName: "add", LocalName: "add"}
	p.IndexFile("/workspace/a.hql", a)

	b := NewFileIndex("/workspace/b.hql", 1)
	b.Imports = []ImportInfo{{ModulePath: "./a.hql", ResolvedPath: "/workspace/a.hql"}}
	p.IndexFile("/workspace/b.hql", b)

	assert.Equal(t, []string{"/workspace/a.hql"}, p.FindExports("add"))
	assert.Equal(t, "/workspace/a.hql", p.GetImports("/workspace/b.hql")[0].ResolvedPath)
	assert.Equal(t, []string{"/workspace/b.hql"}, p.GetDependents("/workspace/a.hql"))
}

func TestIndexFile_ReindexRemovesStaleEntriesFirst(t *testing.T) {
	p := NewProjectIndex()

	v1 := NewFileIndex("/workspace/a.hql", 1)
	v1.Exports["old"] = ExportInfo{SymbolName: "old", LocalName: "old"}
	v1.Symbols["old"] = recordFor("old")
	p.IndexFile("/workspace/a.hql", v1)

	v2 := NewFileIndex("/workspace/a.hql", 2)
	v2.Exports["new"] = ExportInfo{SymbolName: "new", LocalName: "new"}
	v2.Symbols["new"] = recordFor("new")
	p.IndexFile("/workspace/a.hql", v2)

	assert.Empty(t, p.FindExports("old"))
	assert.Equal(t, []string{"/workspace/a.hql"}, p.FindExports("new"))
}

func TestRemoveFile_DropsDerivedIndices(t *testing.T) {
	p := NewProjectIndex()

	a := NewFileIndex("/workspace/a.hql", 1)
	a.Exports["add"] = ExportInfo{SymbolName: "add", LocalName: "add"}
	a.Symbols["add"] = recordFor("add")
	p.IndexFile("/workspace/a.hql", a)

	b := NewFileIndex("/workspace/b.hql", 1)
	b.Imports = []ImportInfo{{ModulePath: "./a.hql", ResolvedPath: "/workspace/a.hql"}}
	p.IndexFile("/workspace/b.hql", b)

	p.RemoveFile("/workspace/a.hql")

	assert.Empty(t, p.FindExports("add"))
	assert.Equal(t, []string{"/workspace/b.hql"}, p.GetAllFiles())
}

func TestGetExportedSymbol_FollowsResolvedPathReExport(t *testing.T) {
	p := NewProjectIndex()

	a := NewFileIndex("/workspace/a.hql", 1)
	a.Symbols["add"] = recordFor("add")
	a.Exports["add"] = ExportInfo{SymbolName: "add", LocalName: "add"}
	p.IndexFile("/workspace/a.hql", a)

	b := NewFileIndex("/workspace/b.hql", 1)
	b.Imports = []ImportInfo{{ModulePath: "./a.hql", ResolvedPath: "/workspace/a.hql"}}
	b.Exports["add"] = ExportInfo{SymbolName: "add", LocalName: "add", IsReExport: true, OriginalModule: "./a.hql"}
	p.IndexFile("/workspace/b.hql", b)

	record, ok := p.GetExportedSymbol("add", "/workspace/b.hql")
	require.True(t, ok)
	assert.Equal(t, "add", record.Name)
}

func TestGetExportedSymbol_FallsBackToSuffixMatchAndFlagsAmbiguity(t *testing.T) {
	p := NewProjectIndex()

	util1 := NewFileIndex("/workspace/lib1/util.hql", 1)
	util1.Symbols["helper"] = recordFor("helper")
	util1.Exports["helper"] = ExportInfo{SymbolName: "helper", LocalName: "helper"}
	p.IndexFile("/workspace/lib1/util.hql", util1)

	util2 := NewFileIndex("/workspace/lib2/util.hql", 1)
	util2.Symbols["helper"] = recordFor("helper")
	util2.Exports["helper"] = ExportInfo{SymbolName: "helper", LocalName: "helper"}
	p.IndexFile("/workspace/lib2/util.hql", util2)

	reexport := NewFileIndex("/workspace/main.hql", 1)
	reexport.Exports["helper"] = ExportInfo{SymbolName: "helper", LocalName: "helper", IsReExport: true, OriginalModule: "./util.hql"}
	p.IndexFile("/workspace/main.hql", reexport)

	record, ok := p.GetExportedSymbol("helper", "/workspace/main.hql")
	require.True(t, ok)
	assert.Equal(t, "helper", record.Name)
	assert.True(t, reexport.SuffixMatchAmbiguous["helper"])
}

func TestGetExportedSymbol_CycleTerminatesAndReturnsFalse(t *testing.T) {
	p := NewProjectIndex()

	a := NewFileIndex("/workspace/a.hql", 1)
	a.Imports = []ImportInfo{{ModulePath: "./b.hql", ResolvedPath: "/workspace/b.hql"}}
	a.Exports["x"] = ExportInfo{SymbolName: "x", LocalName: "x", IsReExport: true, OriginalModule: "./b.hql"}
	p.IndexFile("/workspace/a.hql", a)

	b := NewFileIndex("/workspace/b.hql", 1)
	b.Imports = []ImportInfo{{ModulePath: "./a.hql", ResolvedPath: "/workspace/a.hql"}}
	b.Exports["x"] = ExportInfo{SymbolName: "x", LocalName: "x", IsReExport: true, OriginalModule: "./a.hql"}
	p.IndexFile("/workspace/b.hql", b)

	_, ok := p.GetExportedSymbol("x", "/workspace/a.hql")
	assert.False(t, ok)
}

func TestGetFileIndex_FallsBackToAuthoritativeMapAfterCacheEviction(t *testing.T) {
	p := NewProjectIndex()
	fi := NewFileIndex("/workspace/a.hql", 1)
	p.IndexFile("/workspace/a.hql", fi)

	p.fileCache.Remove("/workspace/a.hql")

	got, ok := p.GetFileIndex("/workspace/a.hql")
	require.True(t, ok)
	assert.Same(t, fi, got)
}

func TestSearchSymbols_RanksExactBeforeSubstring(t *testing.T) {
	p := NewProjectIndex()

	fi := NewFileIndex("/workspace/a.hql", 1)
	fi.Symbols["map"] = recordFor("map")
	fi.Symbols["flatMap"] = recordFor("flatMap")
	p.IndexFile("/workspace/a.hql", fi)

	results := p.SearchSymbols("map", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "map", results[0].Name)
	assert.Equal(t, "flatMap", results[1].Name)
}
