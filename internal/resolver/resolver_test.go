package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/fs"
)

func TestResolve_RelativeImportFindsSourceExtension(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/a.hql": "(def add (fn [a b] (+ a b)))",
		"/workspace/b.hql": `(import [add] "./a.hql")`,
	})
	r := NewResolver(mock, []string{"/workspace"})

	result, ok := r.Resolve("./a.hql", "/workspace/b.hql")
	require.True(t, ok)
	assert.False(t, result.IsExternal)
	assert.Equal(t, "/workspace/a.hql", result.AbsPath)
}

func TestResolve_RelativeImportWithoutExtensionProbesOrder(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/lib/util.ts": "export const id = (x) => x;",
		"/workspace/main.hql":    `(import [id] "./lib/util")`,
	})
	r := NewResolver(mock, []string{"/workspace"})

	result, ok := r.Resolve("./lib/util", "/workspace/main.hql")
	require.True(t, ok)
	assert.Equal(t, "/workspace/lib/util.ts", result.AbsPath)
}

func TestResolve_BareSpecifierFallsBackToWorkspaceRoot(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/shared/math.hql": "(def pi 3.14159)",
	})
	r := NewResolver(mock, []string{"/workspace"})

	result, ok := r.Resolve("shared/math", "/workspace/nested/dir/entry.hql")
	require.True(t, ok)
	assert.Equal(t, "/workspace/shared/math.hql", result.AbsPath)
}

func TestResolve_ExternalPrefixesShortCircuit(t *testing.T) {
	mock := fs.NewMockFS(nil)
	r := NewResolver(mock, []string{"/workspace"})

	for _, spec := range []string{"npm:lodash", "jsr:@std/path", "http://example.com/mod.js", "https://example.com/mod.js", "node:fs"} {
		result, ok := r.Resolve(spec, "/workspace/a.hql")
		require.True(t, ok, spec)
		assert.True(t, result.IsExternal, spec)
		assert.Equal(t, spec, result.AbsPath, spec)
	}
}

func TestResolve_ExplicitExtensionIsTriedBeforeAppendingAnother(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/util.ts":     "export const x = 1;",
		"/workspace/util.ts.hql": "(def x 2)",
	})
	r := NewResolver(mock, []string{"/workspace"})

	result, ok := r.Resolve("./util.ts", "/workspace/a.hql")
	require.True(t, ok)
	assert.Equal(t, "/workspace/util.ts", result.AbsPath)
}

func TestResolve_MissingFileFails(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/a.hql": "(def x 1)",
	})
	r := NewResolver(mock, []string{"/workspace"})

	_, ok := r.Resolve("./missing", "/workspace/a.hql")
	assert.False(t, ok)
}

func TestResolve_InvalidateForcesReprobe(t *testing.T) {
	mock := fs.NewMockFS(map[string]string{
		"/workspace/a.hql": "(def x 1)",
	})
	r := NewResolver(mock, []string{"/workspace"})

	_, ok := r.Resolve("./b.hql", "/workspace/a.hql")
	assert.False(t, ok)

	mock2 := fs.NewMockFS(map[string]string{
		"/workspace/a.hql": "(def x 1)",
		"/workspace/b.hql": "(def y 2)",
	})
	r.fsys = mock2
	r.Invalidate("/workspace/b.hql")

	result, ok := r.Resolve("./b.hql", "/workspace/a.hql")
	require.True(t, ok)
	assert.Equal(t, "/workspace/b.hql", result.AbsPath)
}
