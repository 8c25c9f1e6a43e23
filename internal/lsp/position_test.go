package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/hlvm-dev/hqlc/internal/logger"
)

func TestOffsetToPosition_FirstLine(t *testing.T) {
	pos := offsetToPosition("(def add 1)", 5)
	assert.Equal(t, uint32(0), pos.Line)
	assert.Equal(t, uint32(5), pos.Character)
}

func TestOffsetToPosition_SecondLine(t *testing.T) {
	text := "(def a 1)\n(def b 2)"
	pos := offsetToPosition(text, 15)
	assert.Equal(t, uint32(1), pos.Line)
	assert.Equal(t, uint32(5), pos.Character)
}

func TestLocToRange_SpansTokenLength(t *testing.T) {
	text := "(def add 1)"
	r := locToRange(text, logger.Loc{Start: 5}, 3)
	assert.Equal(t, protocol.Position{Line: 0, Character: 5}, r.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 8}, r.End)
}

func TestOffsetFromPosition_RoundTripsWithOffsetToPosition(t *testing.T) {
	text := "(def a 1)\n(def b 2)\n(def c 3)"
	for _, offset := range []int{0, 5, 11, len(text)} {
		pos := offsetToPosition(text, offset)
		assert.Equal(t, offset, offsetFromPosition(text, pos))
	}
}

func TestOffsetFromPosition_ClampsOutOfRangePosition(t *testing.T) {
	text := "(def a 1)"
	offset := offsetFromPosition(text, protocol.Position{Line: 50, Character: 0})
	assert.Equal(t, len(text), offset)
}

func TestOffsetToPosition_NonBMPCharacterCountsAsTwoUTF16Units(t *testing.T) {
	// "🎉" is 4 UTF-8 bytes but a surrogate pair (2 UTF-16 code units) in LSP's
	// Position.Character space.
	text := `(def s "🎉x")`
	afterEmoji := len(`(def s "🎉`)
	pos := offsetToPosition(text, afterEmoji)
	assert.Equal(t, uint32(0), pos.Line)
	assert.Equal(t, uint32(len(`(def s "`)+2), pos.Character)
}

func TestOffsetFromPosition_RoundTripsNonBMPCharacter(t *testing.T) {
	text := `(def s "🎉x")`
	for _, offset := range []int{0, len(`(def s "`), len(`(def s "🎉`), len(text)} {
		pos := offsetToPosition(text, offset)
		assert.Equal(t, offset, offsetFromPosition(text, pos))
	}
}

func TestIdentifierAt_ExpandsOverIdentChars(t *testing.T) {
	text := "(def add-one 1)"
	assert.Equal(t, "add-one", identifierAt(text, 7))
	assert.Equal(t, "add-one", identifierAt(text, 5))
	assert.Equal(t, "add-one", identifierAt(text, 12))
}

func TestIdentifierAt_EmptyAtParenBoundary(t *testing.T) {
	text := "(+ a b)"
	assert.Equal(t, "", identifierAt(text, 0))
}
