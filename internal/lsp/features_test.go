package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlvm-dev/hqlc/internal/symbols"
)

func TestLevenshtein_IdenticalStringsAreZero(t *testing.T) {
	assert.Equal(t, 0, levenshtein("add", "add"))
}

func TestLevenshtein_SingleSubstitution(t *testing.T) {
	assert.Equal(t, 1, levenshtein("add", "ada"))
}

func TestLevenshtein_SingleInsertion(t *testing.T) {
	assert.Equal(t, 1, levenshtein("ad", "add"))
}

func TestNearestByEditDistance_FindsClosestWithinBudget(t *testing.T) {
	suggestion, ok := nearestByEditDistance("adde", []string{"add", "subtract", "multiply"})
	assert.True(t, ok)
	assert.Equal(t, "add", suggestion)
}

func TestNearestByEditDistance_RejectsBeyondBudget(t *testing.T) {
	_, ok := nearestByEditDistance("x", []string{"subtract", "multiply"})
	assert.False(t, ok)
}

func TestNearestByEditDistance_NoCandidates(t *testing.T) {
	_, ok := nearestByEditDistance("add", nil)
	assert.False(t, ok)
}

func TestNearestByEditDistance_CatchesSingleCharacterDeletionViaTypoDetector(t *testing.T) {
	suggestion, ok := nearestByEditDistance("functon", []string{"function", "subtract"})
	assert.True(t, ok)
	assert.Equal(t, "function", suggestion)
}

func TestEnclosingCallHead_FindsImmediateEnclosingForm(t *testing.T) {
	text := "(add 1 "
	assert.Equal(t, "add", enclosingCallHead(text, len(text)))
}

func TestEnclosingCallHead_SkipsBalancedNestedForms(t *testing.T) {
	text := "(add (mul 2 3) "
	assert.Equal(t, "add", enclosingCallHead(text, len(text)))
}

func TestEnclosingCallHead_EmptyOutsideAnyForm(t *testing.T) {
	assert.Equal(t, "", enclosingCallHead("add 1", 5))
}

func TestHoverText_FunctionShowsParams(t *testing.T) {
	record := &symbols.Record{Name: "add", Kind: symbols.KindFunction, Params: []string{"a", "b"}}
	assert.Equal(t, "function add(a, b)", hoverText(record))
}

func TestHoverText_DefaultShowsName(t *testing.T) {
	record := &symbols.Record{Name: "x", Kind: symbols.KindVariable}
	assert.Equal(t, "x", hoverText(record))
}

func TestSemanticKindName_MapsFunctionAndMacro(t *testing.T) {
	assert.Equal(t, "function", semanticKindName(symbols.KindFunction))
	assert.Equal(t, "macro", semanticKindName(symbols.KindMacro))
	assert.Equal(t, "variable", semanticKindName(symbols.KindVariable))
}

func TestSemanticTypeIndex_MatchesLegendPosition(t *testing.T) {
	idx := semanticTypeIndex(symbols.KindFunction)
	assert.Equal(t, "function", semanticTokenTypes[idx])
}
