package lower

import (
	"strings"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

// lowerExpr lowers a node expected to produce a value. Literals and symbols
// convert directly; lists dispatch through the kernel-form factory, falling
// back to the residual classifier (4.D) for everything else.
func (l *Lowerer) lowerExpr(node ast.Node) (ir.Expr, error) {
	switch d := node.Data.(type) {
	case *ast.Literal:
		return l.lowerLiteral(d, node.Loc), nil
	case *ast.Symbol:
		return l.lowerSymbol(d, node.Loc), nil
	case *ast.List:
		return l.lowerList(node, d)
	}
	return ir.Expr{}, &logger.TransformError{Range: logger.Range{Loc: node.Loc}, Cause: "unknown AST node variant"}
}

func (l *Lowerer) lowerLiteral(lit *ast.Literal, loc logger.Loc) ir.Expr {
	switch lit.Kind {
	case ast.LiteralNil:
		return ir.Expr{Loc: loc, Data: &ir.ENull{}}
	case ast.LiteralBool:
		return ir.Expr{Loc: loc, Data: &ir.EBoolean{Value: lit.Bool}}
	case ast.LiteralInt:
		return ir.Expr{Loc: loc, Data: &ir.ENumber{Value: float64(lit.Int)}}
	case ast.LiteralFloat:
		return ir.Expr{Loc: loc, Data: &ir.ENumber{Value: lit.Float}}
	default: // ast.LiteralString
		return ir.Expr{Loc: loc, Data: &ir.EString{Value: lit.Str}}
	}
}

// lowerSymbol implements the symbol-position rules: `_` is the unused-slot
// placeholder, a leading `:` is a keyword literal, a `js/...` path is host
// interop, and a plain `obj.prop` name defers through the interop IIFE
// (4.D, "placeholder _" / "dotted symbols").
func (l *Lowerer) lowerSymbol(sym *ast.Symbol, loc logger.Loc) ir.Expr {
	switch {
	case sym.Name == "_":
		return ir.Expr{Loc: loc, Data: &ir.EString{Value: "_"}}
	case sym.IsKeyword:
		return ir.Expr{Loc: loc, Data: &ir.EString{Value: strings.TrimPrefix(sym.Name, ":")}}
	case sym.JSPath:
		return l.lowerJSPath(sym.Name, loc)
	case sym.SigilMethod:
		return ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: strings.TrimPrefix(sym.Name, ".")}}
	}
	l.scope.AddReference(sym.Name, loc)
	if l.inClassMethod && sym.Name == "self" {
		return ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "this", IsJS: true}}
	}
	if target, prop, ok := splitDotted(sym.Name); ok {
		if l.inClassMethod && target == "self" {
			return ir.Expr{Loc: loc, Data: &ir.EMember{Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "this", IsJS: true}}, Property: prop}}
		}
		return ir.Expr{Loc: loc, Data: &ir.EInteropIIFE{Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: target}}, Property: prop}}
	}
	return ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: sym.Name}}
}

// splitDotted reports whether name has the shape `obj.prop` (exactly one
// dot, non-empty on both sides), returning the two halves.
func splitDotted(name string) (target, prop string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

func (l *Lowerer) lowerJSPath(name string, loc logger.Loc) ir.Expr {
	rest := strings.TrimPrefix(name, "js/")
	parts := strings.Split(rest, ".")
	expr := ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: parts[0], IsJS: true}}
	for _, p := range parts[1:] {
		expr = ir.Expr{Loc: loc, Data: &ir.EMember{Target: expr, Property: p}}
	}
	return expr
}

func (l *Lowerer) lowerArgs(items []ast.Node) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(items))
	for i, item := range items {
		e, err := l.lowerExpr(item)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (l *Lowerer) lowerList(node ast.Node, list *ast.List) (ir.Expr, error) {
	head, hasHead := ast.HeadSymbol(node)
	if hasHead {
		if fn, ok := factory()[head]; ok {
			return fn(l, list, node.Loc)
		}
	}
	return l.lowerResidual(node, list, head, hasHead)
}

func (l *Lowerer) lowerVector(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	items, err := l.lowerArgs(call.Items[1:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EArray{Items: items}}, nil
}

// lowerHashSet lowers `(hash-set a b c)` to a runtime constructor call, the
// target language having no set literal syntax.
func (l *Lowerer) lowerHashSet(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	items, err := l.lowerArgs(call.Items[1:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ENew{
		Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "Set", IsJS: true}},
		Args:   []ir.Expr{{Loc: loc, Data: &ir.EArray{Items: items}}},
	}}, nil
}

func (l *Lowerer) lowerHashMap(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	pairs := call.Items[1:]
	if len(pairs)%2 != 0 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "hash-map", Expected: "an even number of key/value forms", Actual: itoa(len(pairs))}
	}
	var props []ir.ObjectProperty
	for i := 0; i+1 < len(pairs); i += 2 {
		key, value := pairs[i], pairs[i+1]
		valueExpr, err := l.lowerExpr(value)
		if err != nil {
			return ir.Expr{}, err
		}
		if sym, ok := key.Data.(*ast.Symbol); ok && sym.IsKeyword {
			props = append(props, ir.ObjectProperty{Key: strings.TrimPrefix(sym.Name, ":"), Value: valueExpr})
			continue
		}
		if lit, ok := key.Data.(*ast.Literal); ok && lit.Kind == ast.LiteralString {
			props = append(props, ir.ObjectProperty{Key: lit.Str, Value: valueExpr})
			continue
		}
		keyExpr, err := l.lowerExpr(key)
		if err != nil {
			return ir.Expr{}, err
		}
		props = append(props, ir.ObjectProperty{Computed: true, KeyExpr: &keyExpr, Value: valueExpr})
	}
	return ir.Expr{Loc: loc, Data: &ir.EObject{Properties: props}}, nil
}

func (l *Lowerer) lowerNew(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) < 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "new", Expected: "a constructor expression", Actual: "none"}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	args, err := l.lowerArgs(call.Items[2:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ENew{Target: target, Args: args}}, nil
}

// lowerRange lowers `(range a b [step])` to a call on the runtime range
// helper (4.D: "lowers to a runtime call").
func (l *Lowerer) lowerRange(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	args, err := l.lowerArgs(call.Items[1:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ECall{
		Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "__hql_range"}},
		Args:   args,
	}}, nil
}

func (l *Lowerer) lowerAwait(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "await", Expected: "1 argument", Actual: itoa(len(call.Items) - 1)}
	}
	value, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EAwait{Value: value}}, nil
}

// lowerAsync marks its argument async: `(async (fn ...))` / `(async (=> ...))`
// sets the Async flag on the resulting function expression; `(async body...)`
// otherwise wraps body in a zero-arg async IIFE.
func (l *Lowerer) lowerAsync(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	args := call.Items[1:]
	if len(args) == 1 {
		expr, err := l.lowerExpr(args[0])
		if err != nil {
			return ir.Expr{}, err
		}
		if fn, ok := expr.Data.(*ir.EFunction); ok {
			fn.Async = true
			return expr, nil
		}
		return l.wrapIIFE(loc, []ast.Node{args[0]}, true)
	}
	return l.wrapIIFE(loc, args, true)
}

// lowerIf lowers both `if` and `?` to a conditional expression (S4): Lisp's
// `if` yields a value, unlike JavaScript's statement form.
func (l *Lowerer) lowerIf(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) < 3 || len(call.Items) > 4 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "if", Expected: "(if test then [else])", Actual: itoa(len(call.Items) - 1)}
	}
	test, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	yes, err := l.lowerExpr(call.Items[2])
	if err != nil {
		return ir.Expr{}, err
	}
	no := ir.Expr{Loc: loc, Data: &ir.ENull{}}
	if len(call.Items) == 4 {
		no, err = l.lowerExpr(call.Items[3])
		if err != nil {
			return ir.Expr{}, err
		}
	}
	return ir.Expr{Loc: loc, Data: &ir.EConditional{Test: test, Yes: yes, No: no}}, nil
}

// lowerIfStmt lowers `if`/`?` to an ir.SIf statement rather than a ternary,
// for the case (detected by formNeedsStmtIf) where a branch holds a
// statement-shaped form — recur's reassign-and-continue, or a bare
// return/throw — that a JS conditional expression can't carry. Each branch
// lowers through lowerFormTail at the same tail-ness as the `if` itself, so
// a branch that falls through to a plain expression still becomes the
// loop/do's value-returning exit when in tail position.
func (l *Lowerer) lowerIfStmt(call *ast.List, loc logger.Loc, tail bool) ([]ir.Stmt, error) {
	if len(call.Items) < 3 || len(call.Items) > 4 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "if", Expected: "(if test then [else])", Actual: itoa(len(call.Items) - 1)}
	}
	test, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return nil, err
	}
	yes, err := l.lowerFormTail(call.Items[2], tail)
	if err != nil {
		return nil, err
	}
	var no []ir.Stmt
	if len(call.Items) == 4 {
		no, err = l.lowerFormTail(call.Items[3], tail)
		if err != nil {
			return nil, err
		}
	}
	return []ir.Stmt{{Loc: loc, Data: &ir.SIf{Test: test, Yes: yes, No: no}}}, nil
}

func (l *Lowerer) lowerTemplateLiteral(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	items := call.Items[1:]
	var quasis []string
	var exprs []ir.Expr
	for i, item := range items {
		if i%2 == 0 {
			lit, ok := item.Data.(*ast.Literal)
			if !ok || lit.Kind != ast.LiteralString {
				return ir.Expr{}, &logger.TransformError{Range: logger.Range{Loc: loc}, Cause: "template-literal part is not a string"}
			}
			quasis = append(quasis, lit.Str)
			continue
		}
		e, err := l.lowerExpr(item)
		if err != nil {
			return ir.Expr{}, err
		}
		exprs = append(exprs, e)
	}
	if len(quasis) == len(exprs) {
		quasis = append(quasis, "")
	}
	return ir.Expr{Loc: loc, Data: &ir.ETemplate{Quasis: quasis, Exprs: exprs}}, nil
}

func (l *Lowerer) lowerGet(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 3 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "get", Expected: "(get collection key)", Actual: itoa(len(call.Items) - 1)}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	index, err := l.lowerExpr(call.Items[2])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EMember{Target: target, Computed: true, Index: &index}}, nil
}

func (l *Lowerer) lowerJSGet(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	target, prop, err := l.lowerTargetAndName(call, loc, "js-get")
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EMember{Target: target, Property: prop}}, nil
}

func (l *Lowerer) lowerJSSet(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 4 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "js-set", Expected: "(js-set object property value)", Actual: itoa(len(call.Items) - 1)}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	prop, err := propertyName(call.Items[2])
	if err != nil {
		return ir.Expr{}, err
	}
	value, err := l.lowerExpr(call.Items[3])
	if err != nil {
		return ir.Expr{}, err
	}
	member := ir.Expr{Loc: loc, Data: &ir.EMember{Target: target, Property: prop}}
	return ir.Expr{Loc: loc, Data: &ir.EAssign{Target: member, Value: value}}, nil
}

func (l *Lowerer) lowerJSCall(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) < 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "js-call", Expected: "a callee", Actual: "none"}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	args, err := l.lowerArgs(call.Items[2:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: target, Args: args}}, nil
}

func (l *Lowerer) lowerJSGetInvoke(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) < 3 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "js-get-invoke", Expected: "(js-get-invoke object method args...)", Actual: itoa(len(call.Items) - 1)}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	prop, err := propertyName(call.Items[2])
	if err != nil {
		return ir.Expr{}, err
	}
	args, err := l.lowerArgs(call.Items[3:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ECallMember{Target: target, Property: prop, Args: args}}, nil
}

func (l *Lowerer) lowerJSNew(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	return l.lowerNew(call, loc)
}

func (l *Lowerer) lowerJSMethod(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	target, prop, err := l.lowerTargetAndName(call, loc, "js-method")
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EJSMethodAccess{Object: target, Method: prop}}, nil
}

func (l *Lowerer) lowerTargetAndName(call *ast.List, loc logger.Loc, form string) (ir.Expr, string, error) {
	if len(call.Items) != 3 {
		return ir.Expr{}, "", &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: form, Expected: "(" + form + " object name)", Actual: itoa(len(call.Items) - 1)}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, "", err
	}
	name, err := propertyName(call.Items[2])
	if err != nil {
		return ir.Expr{}, "", err
	}
	return target, name, nil
}

// propertyName reads a property/method name supplied as a string literal or
// bare symbol.
func propertyName(node ast.Node) (string, error) {
	switch d := node.Data.(type) {
	case *ast.Literal:
		if d.Kind == ast.LiteralString {
			return d.Str, nil
		}
	case *ast.Symbol:
		return strings.TrimPrefix(d.Name, ":"), nil
	}
	return "", &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "property name", Expected: "string or symbol", Actual: "other"}
}
