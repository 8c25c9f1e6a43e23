// Package ast defines the immutable tree the reader produces (4.A) and the
// destructuring patterns consumed by the lowerer and symbol collector (§3).
// The node set mirrors js_ast's sum-type-via-marker-method shape: a
// small wrapper struct carrying a position plus an interface implemented
// only by pointer receivers of the concrete variants.
package ast

import "github.com/hlvm-dev/hqlc/internal/logger"

// Node wraps any of the three AST variants with its source position.
type Node struct {
	Data N
	Loc  logger.Loc
}

// N is never invoked; its sole purpose is a closed variant set.
type N interface{ isNode() }

func (*Literal) isNode() {}
func (*Symbol) isNode()  {}
func (*List) isNode()    {}

type LiteralKind uint8

const (
	LiteralNil LiteralKind = iota
	LiteralBool
	LiteralInt
	LiteralFloat
	LiteralString
)

// Literal is a reader-produced scalar value (§3: nil, boolean, integer,
// float, string).
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Symbol is an interned name. A leading '.' marks a method-call sigil, a
// leading ':' marks a keyword-like tag, and a "js/" path prefix marks host
// interop; SigilMethod/IsKeyword/JSPath reflect which of those, if any,
// apply so the lowerer need not re-parse the name.
type Symbol struct {
	Name        string
	SigilMethod bool
	IsKeyword   bool
	JSPath      bool
}

// List is an ordered sequence of nodes — the only compound AST shape; every
// reader macro (quote, vector literal, hash-map literal, template literal)
// desugars to one of these with a distinguished head symbol.
type List struct {
	Items []Node
}

func Sym(name string, loc logger.Loc) Node {
	sigil := len(name) > 0 && name[0] == '.'
	keyword := len(name) > 0 && name[0] == ':'
	jsPath := len(name) >= 3 && name[:3] == "js/"
	return Node{Data: &Symbol{Name: name, SigilMethod: sigil, IsKeyword: keyword, JSPath: jsPath}, Loc: loc}
}

func IntLit(v int64, loc logger.Loc) Node {
	return Node{Data: &Literal{Kind: LiteralInt, Int: v}, Loc: loc}
}

func FloatLit(v float64, loc logger.Loc) Node {
	return Node{Data: &Literal{Kind: LiteralFloat, Float: v}, Loc: loc}
}

func StringLit(v string, loc logger.Loc) Node {
	return Node{Data: &Literal{Kind: LiteralString, Str: v}, Loc: loc}
}

func BoolLit(v bool, loc logger.Loc) Node {
	return Node{Data: &Literal{Kind: LiteralBool, Bool: v}, Loc: loc}
}

func NilLit(loc logger.Loc) Node {
	return Node{Data: &Literal{Kind: LiteralNil}, Loc: loc}
}

func ListOf(items []Node, loc logger.Loc) Node {
	return Node{Data: &List{Items: items}, Loc: loc}
}

// HeadSymbol returns the name of a list's first element when it is a plain
// symbol, used pervasively by the macro expander (4.C) and lowerer's
// dispatch factory (4.D) to do case analysis on head position.
func HeadSymbol(n Node) (string, bool) {
	list, ok := n.Data.(*List)
	if !ok || len(list.Items) == 0 {
		return "", false
	}
	sym, ok := list.Items[0].Data.(*Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// IsSymbolNamed reports whether n is exactly the symbol `name`.
func IsSymbolNamed(n Node, name string) bool {
	sym, ok := n.Data.(*Symbol)
	return ok && sym.Name == name
}
