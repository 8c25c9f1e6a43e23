package macro

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

// evalQuasiquote strips a top-level `(quasiquote x)` wrapper (already
// substituted with argument fragments) down to the AST it describes,
// resolving nested `unquote`/`unquote-splicing` escapes. Nesting is
// tracked with a level counter so a doubly-nested quasiquote needs two
// unquotes to escape back to ordinary evaluation (4.C: "these forms nest
// and the reader's level counter is preserved").
func evalQuasiquote(node ast.Node) ast.Node {
	if head, ok := ast.HeadSymbol(node); !ok || head != "quasiquote" {
		return node
	}
	list := node.Data.(*ast.List)
	if len(list.Items) != 2 {
		return node
	}
	return qq(list.Items[1], 1)
}

func qq(node ast.Node, level int) ast.Node {
	list, ok := node.Data.(*ast.List)
	if !ok {
		return node
	}

	if head, ok := ast.HeadSymbol(node); ok {
		switch head {
		case "unquote":
			if level == 1 {
				return list.Items[1]
			}
			return wrapOne("unquote", qq(list.Items[1], level-1), node.Loc)
		case "unquote-splicing":
			if level == 1 {
				// A bare `~@x` with no enclosing list has nothing to splice
				// into; return the spliced value's list form as-is.
				return list.Items[1]
			}
			return wrapOne("unquote-splicing", qq(list.Items[1], level-1), node.Loc)
		case "quasiquote":
			return wrapOne("quasiquote", qq(list.Items[1], level+1), node.Loc)
		}
	}

	var items []ast.Node
	for _, item := range list.Items {
		if splice, ok := asSplice(item, level); ok {
			items = append(items, splice...)
			continue
		}
		items = append(items, qq(item, level))
	}
	return ast.ListOf(items, node.Loc)
}

func wrapOne(head string, arg ast.Node, loc logger.Loc) ast.Node {
	return ast.ListOf([]ast.Node{ast.Sym(head, loc), arg}, loc)
}

// asSplice reports whether item is an `(unquote-splicing x)` at the
// current quasiquote level; if so it evaluates x (already substituted, so
// x must itself already be list-valued — typically a rest-parameter
// binding) and returns its elements to be spliced into the enclosing list.
func asSplice(item ast.Node, level int) (elems []ast.Node, ok bool) {
	if level != 1 {
		return nil, false
	}
	head, isHead := ast.HeadSymbol(item)
	if !isHead || head != "unquote-splicing" {
		return nil, false
	}
	list := item.Data.(*ast.List)
	target := list.Items[1]
	if inner, isList := target.Data.(*ast.List); isList {
		return inner.Items, true
	}
	return []ast.Node{target}, true
}
