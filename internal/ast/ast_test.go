package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

func TestHeadSymbol(t *testing.T) {
	list := ast.ListOf([]ast.Node{
		ast.Sym("if", logger.Loc{}),
		ast.BoolLit(true, logger.Loc{}),
	}, logger.Loc{})

	name, ok := ast.HeadSymbol(list)
	assert.True(t, ok)
	assert.Equal(t, "if", name)
}

func TestHeadSymbolRejectsEmptyList(t *testing.T) {
	_, ok := ast.HeadSymbol(ast.ListOf(nil, logger.Loc{}))
	assert.False(t, ok)
}

func TestSymbolSigilClassification(t *testing.T) {
	tests := []struct {
		name        string
		sigilMethod bool
		isKeyword   bool
		jsPath      bool
	}{
		{".method", true, false, false},
		{":keyword", false, true, false},
		{"js/console", false, false, true},
		{"plain", false, false, false},
	}
	for _, tt := range tests {
		n := ast.Sym(tt.name, logger.Loc{})
		sym := n.Data.(*ast.Symbol)
		assert.Equal(t, tt.sigilMethod, sym.SigilMethod, tt.name)
		assert.Equal(t, tt.isKeyword, sym.IsKeyword, tt.name)
		assert.Equal(t, tt.jsPath, sym.JSPath, tt.name)
	}
}

func TestArrayPatternIsCompound(t *testing.T) {
	p := &ast.Pattern{Data: &ast.ArrayPattern{}}
	assert.True(t, p.IsCompound())

	id := &ast.Pattern{Data: &ast.IdentifierPattern{Name: "x"}}
	assert.False(t, id.IsCompound())
}

func TestIndex32ZeroValueIsInvalid(t *testing.T) {
	var zero ast.Index32
	assert.False(t, zero.IsValid())

	i := ast.MakeIndex32(5)
	assert.True(t, i.IsValid())
	assert.Equal(t, uint32(5), i.GetIndex())
}
