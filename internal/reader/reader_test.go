package reader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/reader"
)

// S1. Reader, positions: `(a 1)` is one list with head symbol `a` at column
// 2 and one integer `1` at column 4 (both 0-based byte offsets here since
// Loc.Start counts bytes, not 1-based columns — see logger.computeLineAndColumn
// for the column numbers actually surfaced to users).
func TestReadS1Positions(t *testing.T) {
	forms, errs := reader.ReadResult("(a 1)", "s1.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 1)

	list := forms[0].Data.(*ast.List)
	require.Len(t, list.Items, 2)

	sym := list.Items[0].Data.(*ast.Symbol)
	assert.Equal(t, "a", sym.Name)
	assert.EqualValues(t, 1, list.Items[0].Loc.Start)

	lit := list.Items[1].Data.(*ast.Literal)
	assert.Equal(t, ast.LiteralInt, lit.Kind)
	assert.EqualValues(t, 1, lit.Int)
	assert.EqualValues(t, 3, list.Items[1].Loc.Start)
}

func TestReadVectorAndHashMapDesugar(t *testing.T) {
	forms, errs := reader.ReadResult("[1 2] {:a 1}", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 2)

	vec, ok := ast.HeadSymbol(forms[0])
	require.True(t, ok)
	assert.Equal(t, "vector", vec)

	hm, ok := ast.HeadSymbol(forms[1])
	require.True(t, ok)
	assert.Equal(t, "hash-map", hm)
}

func TestReadQuoteReaderMacros(t *testing.T) {
	forms, errs := reader.ReadResult("'x ~y ~@z", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 3)

	head, _ := ast.HeadSymbol(forms[0])
	assert.Equal(t, "quote", head)
	head, _ = ast.HeadSymbol(forms[1])
	assert.Equal(t, "unquote", head)
	head, _ = ast.HeadSymbol(forms[2])
	assert.Equal(t, "unquote-splicing", head)
}

// S2's macro body: `(+ 1 ~x) must read as (quasiquote (+ 1 (unquote x))).
func TestReadQuasiquoteList(t *testing.T) {
	forms, errs := reader.ReadResult("`(+ 1 ~x)", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 1)

	head, _ := ast.HeadSymbol(forms[0])
	assert.Equal(t, "quasiquote", head)

	outer := forms[0].Data.(*ast.List)
	inner := outer.Items[1].Data.(*ast.List)
	unquoteHead, _ := ast.HeadSymbol(inner.Items[2])
	assert.Equal(t, "unquote", unquoteHead)
}

func TestReadTemplateLiteral(t *testing.T) {
	forms, errs := reader.ReadResult("`hello ${x}!`", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 1)

	head, _ := ast.HeadSymbol(forms[0])
	assert.Equal(t, "template-literal", head)

	list := forms[0].Data.(*ast.List)
	require.Len(t, list.Items, 4)
	assert.Equal(t, "hello ", list.Items[1].Data.(*ast.Literal).Str)
	assert.Equal(t, "x", list.Items[2].Data.(*ast.Symbol).Name)
	assert.Equal(t, "!", list.Items[3].Data.(*ast.Literal).Str)
}

func TestReadNumericLiteralVariants(t *testing.T) {
	forms, errs := reader.ReadResult("0x1F 0b101 0o17 -3 1.5 2n", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 6)

	assert.EqualValues(t, 31, forms[0].Data.(*ast.Literal).Int)
	assert.EqualValues(t, 5, forms[1].Data.(*ast.Literal).Int)
	assert.EqualValues(t, 15, forms[2].Data.(*ast.Literal).Int)
	assert.EqualValues(t, -3, forms[3].Data.(*ast.Literal).Int)
	assert.Equal(t, ast.LiteralFloat, forms[4].Data.(*ast.Literal).Kind)
	assert.EqualValues(t, 1.5, forms[4].Data.(*ast.Literal).Float)
	assert.EqualValues(t, 2, forms[5].Data.(*ast.Literal).Int)
}

func TestReadNegativeRadixLiteralVariants(t *testing.T) {
	forms, errs := reader.ReadResult("-0x1F -0b101 -0o17", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 3)

	assert.EqualValues(t, -31, forms[0].Data.(*ast.Literal).Int)
	assert.EqualValues(t, -5, forms[1].Data.(*ast.Literal).Int)
	assert.EqualValues(t, -15, forms[2].Data.(*ast.Literal).Int)
}

func TestReadUnterminatedListRecordsParseError(t *testing.T) {
	forms, errs := reader.ReadResult("(a b", "t.hql")
	assert.Empty(t, forms)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unterminated list")
}

func TestReadContinuesAfterTopLevelForm(t *testing.T) {
	forms, errs := reader.ReadResult("(a 1) (b 2)", "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 2)
}
