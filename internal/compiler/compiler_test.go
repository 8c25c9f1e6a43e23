package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/config"
)

func TestCompile_EmitsJavaScriptForSimpleDef(t *testing.T) {
	result := Compile(`(def add (fn add [a b] (+ a b)))`, "add.hql", ".", config.CompileOptions{})
	require.Empty(t, result.Errors)
	assert.Contains(t, result.Source, "function add")
	assert.Empty(t, result.SourceMap)
}

func TestCompile_AddSourceMappingsProducesNonEmptyMap(t *testing.T) {
	result := Compile(`(def x 1)`, "x.hql", ".", config.CompileOptions{AddSourceMappings: true})
	require.Empty(t, result.Errors)
	assert.NotEmpty(t, result.SourceMap)
}

func TestCompile_OneBadFormDoesNotStopTheRestFromEmitting(t *testing.T) {
	result := Compile(`(recur 1) (def x 2)`, "mixed.hql", ".", config.CompileOptions{})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Source, "x = 2")
}

func TestCompile_UnterminatedFormReportsParseErrorAndEmitsNothing(t *testing.T) {
	result := Compile(`(def x`, "bad.hql", ".", config.CompileOptions{})
	require.NotEmpty(t, result.Errors)
	empty := Compile(``, "bad.hql", ".", config.CompileOptions{})
	assert.Equal(t, empty.Source, result.Source)
}
