package ast

import "github.com/hlvm-dev/hqlc/internal/logger"

// Pattern is the destructuring shape attached to let/fn/var bindings (§3).
type Pattern struct {
	Data P
	Loc  logger.Loc
}

type P interface{ isPattern() }

func (*IdentifierPattern) isPattern() {}
func (*ArrayPattern) isPattern()      {}
func (*ObjectPattern) isPattern()     {}
func (*RestPattern) isPattern()       {}

// IdentifierPattern binds a single name, with an optional type annotation
// (surface syntax only, erased by the lowerer) and default value.
type IdentifierPattern struct {
	Name    string
	Type    string
	Default *Node
}

// ArrayElement is one slot of an ArrayPattern: either a nested pattern, a
// skip hole (`_`), or — on the last element — a rest pattern.
type ArrayElement struct {
	Pattern *Pattern
	IsSkip  bool
}

type ArrayPattern struct {
	Elements []ArrayElement
	Rest     *Pattern
}

// ObjectField is one keyed slot of an ObjectPattern, with optional local
// rename and default value.
type ObjectField struct {
	Key       string
	LocalName string
	Pattern   *Pattern
	Default   *Node
}

type ObjectPattern struct {
	Fields []ObjectField
	Rest   *Pattern
}

// RestPattern captures the remaining elements/fields of an enclosing array
// or object pattern under a single name.
type RestPattern struct {
	Name string
}

// IsCompound reports whether a pattern needs a temporary binding to
// destructure (4.D: "introducing temporary bindings when a sub-pattern is
// compound").
func (p *Pattern) IsCompound() bool {
	switch p.Data.(type) {
	case *ArrayPattern, *ObjectPattern:
		return true
	default:
		return false
	}
}
