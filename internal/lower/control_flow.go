package lower

import (
	"strings"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// binaryOps maps a kernel primitive operator symbol to its emitted JS
// operator. Variadic calls (`(+ a b c)`) left-fold into nested EBinary
// nodes; `not`/unary `-` go through unaryOps instead.
var binaryOps = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
	"<": "<", ">": ">", "<=": "<=", ">=": ">=",
	"=": "===", "==": "===", "!=": "!==",
	"and": "&&", "or": "||",
	"bit-and": "&", "bit-or": "|", "bit-xor": "^",
	"shift-left": "<<", "shift-right": ">>",
}

var unaryOps = map[string]string{
	"not": "!",
	"-":   "-",
}

// lowerResidual classifies a non-kernel call head per 4.D: a `.method` sigil
// lowers to a method call, a dotted head lowers to an interop member call, a
// primitive operator reduces to EBinary/EUnary, a single-literal-argument
// call on an unregistered identifier lowers to the runtime property-access
// helpers (the property-vs-call disambiguation), and everything else is a
// plain function call.
func (l *Lowerer) lowerResidual(node ast.Node, list *ast.List, head string, hasHead bool) (ir.Expr, error) {
	loc := node.Loc

	if hasHead && strings.HasPrefix(head, ".") && len(list.Items) >= 2 {
		target, err := l.lowerExpr(list.Items[1])
		if err != nil {
			return ir.Expr{}, err
		}
		args, err := l.lowerArgs(list.Items[2:])
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.Expr{Loc: loc, Data: &ir.ECallMember{Target: target, Property: head[1:], Args: args}}, nil
	}

	if hasHead {
		if op, ok := unaryOps[head]; ok && len(list.Items) == 2 {
			value, err := l.lowerExpr(list.Items[1])
			if err != nil {
				return ir.Expr{}, err
			}
			return ir.Expr{Loc: loc, Data: &ir.EUnary{Op: op, Value: value}}, nil
		}
		if op, ok := binaryOps[head]; ok && len(list.Items) >= 3 {
			return l.foldBinary(op, list.Items[1:], loc)
		}
		if target, prop, ok := splitDotted(head); ok {
			targetExpr := ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: target}}
			if l.inClassMethod && target == "self" {
				targetExpr = ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "this", IsJS: true}}
			}
			args, err := l.lowerArgs(list.Items[1:])
			if err != nil {
				return ir.Expr{}, err
			}
			return ir.Expr{Loc: loc, Data: &ir.ECallMember{Target: targetExpr, Property: prop, Args: args}}, nil
		}
		if _, found := l.scope.Get(head); !found && len(list.Items) == 2 {
			if helper, key, ok := propertyAccessArg(list.Items[1]); ok {
				keyExpr, err := l.lowerExpr(key)
				if err != nil {
					return ir.Expr{}, err
				}
				target := ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: head}}
				return ir.Expr{Loc: loc, Data: &ir.ECall{
					Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: helper}},
					Args:   []ir.Expr{target, keyExpr},
				}}, nil
			}
		}
	}

	target, err := l.lowerExpr(list.Items[0])
	if err != nil {
		return ir.Expr{}, err
	}
	if access, ok := target.Data.(*ir.EJSMethodAccess); ok {
		args, err := l.lowerArgs(list.Items[1:])
		if err != nil {
			return ir.Expr{}, err
		}
		return ir.Expr{Loc: loc, Data: &ir.ECallMember{Target: access.Object, Property: access.Method, Args: args}}, nil
	}
	args, err := l.lowerArgs(list.Items[1:])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: target, Args: args}}, nil
}

func (l *Lowerer) foldBinary(op string, operands []ast.Node, loc logger.Loc) (ir.Expr, error) {
	acc, err := l.lowerExpr(operands[0])
	if err != nil {
		return ir.Expr{}, err
	}
	for _, next := range operands[1:] {
		right, err := l.lowerExpr(next)
		if err != nil {
			return ir.Expr{}, err
		}
		acc = ir.Expr{Loc: loc, Data: &ir.EBinary{Left: acc, Right: right, Op: op}}
	}
	return acc, nil
}

// propertyAccessArg reports whether arg is a string or numeric literal,
// returning which runtime accessor applies.
func propertyAccessArg(arg ast.Node) (helper string, key ast.Node, ok bool) {
	lit, isLit := arg.Data.(*ast.Literal)
	if !isLit {
		return "", ast.Node{}, false
	}
	switch lit.Kind {
	case ast.LiteralString:
		return "__hql_get", arg, true
	case ast.LiteralInt, ast.LiteralFloat:
		return "__hql_getNumeric", arg, true
	}
	return "", ast.Node{}, false
}

func (l *Lowerer) lowerQuote(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "quote", Expected: "1 argument", Actual: itoa(len(call.Items) - 1)}
	}
	return l.quoteData(call.Items[1], false)
}

func (l *Lowerer) lowerQuasiquote(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "quasiquote", Expected: "1 argument", Actual: itoa(len(call.Items) - 1)}
	}
	return l.quoteData(call.Items[1], true)
}

// lowerBareUnquote rejects `unquote`/`unquote-splicing` appearing outside a
// quasiquote, where quoteList already resolves them structurally.
func (l *Lowerer) lowerBareUnquote(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	sym := call.Items[0].Data.(*ast.Symbol)
	return ir.Expr{}, &logger.TransformError{Range: logger.Range{Loc: loc}, Cause: sym.Name + " used outside quasiquote"}
}

// quoteData converts quoted Lisp data into its JS runtime representation:
// literals pass through, symbols become their printed name, and lists
// become arrays. Within a quasiquote, `(unquote e)` splices a live
// expression in and `(unquote-splicing e)` concatenates a live array in via
// the __hql_concat runtime helper.
func (l *Lowerer) quoteData(node ast.Node, allowUnquote bool) (ir.Expr, error) {
	switch d := node.Data.(type) {
	case *ast.Literal:
		return l.lowerLiteral(d, node.Loc), nil
	case *ast.Symbol:
		return ir.Expr{Loc: node.Loc, Data: &ir.EString{Value: d.Name}}, nil
	case *ast.List:
		if allowUnquote && len(d.Items) == 2 && ast.IsSymbolNamed(d.Items[0], "unquote") {
			return l.lowerExpr(d.Items[1])
		}
		return l.quoteList(d.Items, node.Loc, allowUnquote)
	}
	return ir.Expr{}, &logger.TransformError{Range: logger.Range{Loc: node.Loc}, Cause: "unknown quoted data shape"}
}

func (l *Lowerer) quoteList(items []ast.Node, loc logger.Loc, allowUnquote bool) (ir.Expr, error) {
	var segments []ir.Expr
	var current []ir.Expr
	hasSplice := false

	flush := func() {
		segments = append(segments, ir.Expr{Loc: loc, Data: &ir.EArray{Items: current}})
		current = nil
	}

	for _, item := range items {
		if allowUnquote {
			if spliceList, ok := item.Data.(*ast.List); ok && len(spliceList.Items) == 2 && ast.IsSymbolNamed(spliceList.Items[0], "unquote-splicing") {
				flush()
				spliced, err := l.lowerExpr(spliceList.Items[1])
				if err != nil {
					return ir.Expr{}, err
				}
				segments = append(segments, spliced)
				hasSplice = true
				continue
			}
		}
		el, err := l.quoteData(item, allowUnquote)
		if err != nil {
			return ir.Expr{}, err
		}
		current = append(current, el)
	}
	flush()

	if !hasSplice {
		return segments[0], nil
	}
	return ir.Expr{Loc: loc, Data: &ir.ECall{
		Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "__hql_concat"}},
		Args:   segments,
	}}, nil
}

func (l *Lowerer) lowerAssign(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) != 3 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "=", Expected: "(= target value)", Actual: itoa(len(call.Items) - 1)}
	}
	target, err := l.lowerExpr(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}
	value, err := l.lowerExpr(call.Items[2])
	if err != nil {
		return ir.Expr{}, err
	}
	return ir.Expr{Loc: loc, Data: &ir.EAssign{Target: target, Value: value}}, nil
}

// wrapIIFE lowers forms into a zero-arg (optionally async) IIFE that is
// itself a real function boundary: `return`/`throw` inside resolve against
// this IIFE, not any enclosing do-block, so doDepth is reset for the
// duration (used by `async`; `do` uses lowerDoIIFE instead, which keeps
// doDepth so nested returns target the do-block).
func (l *Lowerer) wrapIIFE(loc logger.Loc, forms []ast.Node, async bool) (ir.Expr, error) {
	prevDepth := l.doDepth
	l.doDepth = 0
	body, err := l.lowerBodyWithTailReturn(forms)
	l.doDepth = prevDepth
	if err != nil {
		return ir.Expr{}, err
	}
	fn := ir.Expr{Loc: loc, Data: &ir.EFunction{Body: body, Async: async}}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: fn, Args: nil}}, nil
}

// hqlReturnSentinelKey is the tag field distinguishing a do-block's
// early-return throw from a genuine user-level exception.
const hqlReturnSentinelKey = "__hql_return"

// sentinelCatchClause builds the catch clause every sentinel-catch boundary
// (do-block, loop, try) shares: unwrap a tagged __hql_return throw back into
// a real return of its carried value, or rethrow anything else untouched.
func (l *Lowerer) sentinelCatchClause(loc logger.Loc) *ir.CatchClause {
	errName := l.freshTemp("e")
	sentinelTest := ir.Expr{Loc: loc, Data: &ir.EMember{Target: identExpr(errName, loc), Property: hqlReturnSentinelKey}}
	sentinelValue := ir.Expr{Loc: loc, Data: &ir.EMember{Target: identExpr(errName, loc), Property: "value"}}
	catchBody := []ir.Stmt{
		{Loc: loc, Data: &ir.SIf{
			Test: sentinelTest,
			Yes:  []ir.Stmt{{Loc: loc, Data: &ir.SReturn{Value: &sentinelValue}}},
			No:   []ir.Stmt{{Loc: loc, Data: &ir.SThrow{Value: identExpr(errName, loc)}}},
		}},
	}
	return &ir.CatchClause{Param: errName, Body: catchBody}
}

// lowerDoIIFE lowers forms into a zero-arg IIFE whose body is wrapped in a
// try/catch: a `return` inside (including inside further-nested forms that
// are not themselves a new function boundary) throws a tagged sentinel,
// which this catch unwraps back into the do-block's own return value,
// matching "return from the do-block to the innermost enclosing do-block,
// not the outer function" (4.D, "do blocks").
func (l *Lowerer) lowerDoIIFE(loc logger.Loc, forms []ast.Node) (ir.Expr, error) {
	l.doDepth++
	body, err := l.lowerBodyWithTailReturn(forms)
	l.doDepth--
	if err != nil {
		return ir.Expr{}, err
	}

	tryStmt := ir.Stmt{Loc: loc, Data: &ir.STry{Body: body, Catch: l.sentinelCatchClause(loc)}}
	fn := ir.Expr{Loc: loc, Data: &ir.EFunction{Body: []ir.Stmt{tryStmt}}}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: fn}}, nil
}

// lowerBodyWithTailReturn lowers forms as a statement body where the final
// form is wrapped in SReturn rather than SExpr, so the enclosing IIFE
// yields the do-block's value (4.D, "do blocks").
func (l *Lowerer) lowerBodyWithTailReturn(forms []ast.Node) ([]ir.Stmt, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	stmts, err := l.lowerBody(forms[:len(forms)-1])
	if err != nil {
		return nil, err
	}
	tail, err := l.lowerFormTail(forms[len(forms)-1], true)
	if err != nil {
		return nil, err
	}
	return append(stmts, tail...), nil
}

// lowerDo lowers `(do a b c)` to an IIFE whose last form's value is
// returned, giving `do` the value semantics an expression position needs
// (4.D, "do blocks").
func (l *Lowerer) lowerDo(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	return l.lowerDoIIFE(loc, call.Items[1:])
}

// lowerTry lowers `(try body... (catch e handler...) [(finally cleanup...)])`
// to an async-if-needed IIFE wrapping a JS try/catch/finally (4.D,
// "try/catch/finally").
func (l *Lowerer) lowerTry(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	body, catchClause, finallyBody, err := splitTryClauses(call.Items[1:])
	if err != nil {
		return ir.Expr{}, err
	}

	async := bodyNeedsAsync(body) || (catchClause != nil && bodyNeedsAsync(catchClause.body)) || bodyNeedsAsync(finallyBody)

	l.doDepth++
	tryBody, err := l.lowerBodyWithTailReturn(body)
	if err != nil {
		l.doDepth--
		return ir.Expr{}, err
	}

	var catch *ir.CatchClause
	if catchClause != nil {
		child := l.scope.CreateChildScope("catch", symbols.ScopeBlock)
		prev := l.scope
		l.scope = child
		symbols.RegisterVariable(child, catchClause.param, "", false, loc)
		catchBody, err := l.lowerBodyWithTailReturn(catchClause.body)
		l.scope = prev
		if err != nil {
			l.doDepth--
			return ir.Expr{}, err
		}
		catch = &ir.CatchClause{Param: catchClause.param, Body: catchBody}
	}

	var finallyStmts []ir.Stmt
	if finallyBody != nil {
		finallyStmts, err = l.lowerBody(finallyBody)
		if err != nil {
			l.doDepth--
			return ir.Expr{}, err
		}
	}
	l.doDepth--

	// A bare `return` inside tryBody, the user's catchClause, or finallyBody
	// throws the __hql_return sentinel (doDepth was open across all three).
	// That must not reach the user's own catch as if it were a thrown
	// value, so it is wrapped one level further out, mirroring
	// lowerDoIIFE's pattern: the user's try/catch/finally fires first for
	// any real exception, and only an escaping sentinel reaches this outer
	// catch.
	tryStmt := ir.Stmt{Loc: loc, Data: &ir.STry{Body: tryBody, Catch: catch, Finally: finallyStmts}}
	sentinelTry := ir.Stmt{Loc: loc, Data: &ir.STry{Body: []ir.Stmt{tryStmt}, Catch: l.sentinelCatchClause(loc)}}
	fn := ir.Expr{Loc: loc, Data: &ir.EFunction{Body: []ir.Stmt{sentinelTry}, Async: async}}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: fn}}, nil
}

type parsedCatch struct {
	param string
	body  []ast.Node
}

func splitTryClauses(forms []ast.Node) (body []ast.Node, catch *parsedCatch, finally []ast.Node, err error) {
	for _, f := range forms {
		list, isList := f.Data.(*ast.List)
		if isList && ast.IsSymbolNamed(safeHead(list), "catch") {
			if len(list.Items) < 2 {
				return nil, nil, nil, &logger.ValidationError{Range: logger.Range{Loc: f.Loc}, Form: "catch", Expected: "a bound parameter", Actual: "none"}
			}
			sym, ok := list.Items[1].Data.(*ast.Symbol)
			if !ok {
				return nil, nil, nil, &logger.ValidationError{Range: logger.Range{Loc: f.Loc}, Form: "catch", Expected: "a symbol parameter", Actual: "other"}
			}
			catch = &parsedCatch{param: sym.Name, body: list.Items[2:]}
			continue
		}
		if isList && ast.IsSymbolNamed(safeHead(list), "finally") {
			finally = list.Items[1:]
			continue
		}
		body = append(body, f)
	}
	return body, catch, finally, nil
}

func safeHead(list *ast.List) ast.Node {
	if len(list.Items) == 0 {
		return ast.Node{}
	}
	return list.Items[0]
}

// bodyNeedsAsync reports whether any form in the body contains a reachable
// `await`, not crossing a nested function-expression boundary (`fn`/`=>`),
// per 4.D's async-detection rule.
func bodyNeedsAsync(forms []ast.Node) bool {
	for _, f := range forms {
		if nodeNeedsAsync(f) {
			return true
		}
	}
	return false
}

func nodeNeedsAsync(n ast.Node) bool {
	list, ok := n.Data.(*ast.List)
	if !ok {
		return false
	}
	if ast.IsSymbolNamed(safeHead(list), "await") {
		return true
	}
	if ast.IsSymbolNamed(safeHead(list), "fn") || ast.IsSymbolNamed(safeHead(list), "=>") {
		return false
	}
	for _, item := range list.Items {
		if nodeNeedsAsync(item) {
			return true
		}
	}
	return false
}

// lowerLoop lowers `(loop [[name init]...] body...)` to an IIFE around a
// `while (true)` block; `recur` inside body reassigns the bindings and
// continues (4.D, "loop/recur").
func (l *Lowerer) lowerLoop(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	if len(call.Items) < 2 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "loop", Expected: "a binding vector", Actual: "none"}
	}
	bindings, err := parseLoopBindings(call.Items[1])
	if err != nil {
		return ir.Expr{}, err
	}

	child := l.scope.CreateChildScope("loop", symbols.ScopeBlock)
	prev := l.scope
	l.scope = child

	var decls []ir.Stmt
	names := make([]string, len(bindings))
	for i, b := range bindings {
		init, err := l.lowerExpr(b.init)
		if err != nil {
			l.scope = prev
			return ir.Expr{}, err
		}
		symbols.RegisterVariable(child, b.name, "", false, loc)
		decls = append(decls, ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: ir.VarLet, Name: b.name, Value: init}})
		names[i] = b.name
	}

	l.loopStack = append(l.loopStack, &loopContext{bindings: names})
	l.doDepth++
	loopBody, err := l.lowerBodyWithTailReturn(call.Items[2:])
	l.doDepth--
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	l.scope = prev
	if err != nil {
		return ir.Expr{}, err
	}

	whileStmt := ir.Stmt{Loc: loc, Data: &ir.SWhile{
		Test: ir.Expr{Loc: loc, Data: &ir.EBoolean{Value: true}},
		Body: loopBody,
	}}
	// A bare `return` inside the loop body throws the __hql_return
	// sentinel (doDepth was open across loopBody's lowering); wrap the
	// while loop in the same sentinel-catching try lowerDoIIFE uses so it
	// unwraps to a real return from this loop's IIFE instead of escaping
	// uncaught. recur's `continue` doesn't throw, so it's unaffected by
	// the surrounding try.
	sentinelTry := ir.Stmt{Loc: loc, Data: &ir.STry{Body: []ir.Stmt{whileStmt}, Catch: l.sentinelCatchClause(loc)}}
	fnBody := append(decls, sentinelTry)
	fn := ir.Expr{Loc: loc, Data: &ir.EFunction{Body: fnBody}}
	return ir.Expr{Loc: loc, Data: &ir.ECall{Target: fn}}, nil
}

type loopBinding struct {
	name string
	init ast.Node
}

// parseLoopBindings reads the `[[name init] [name init] ...]` binding form,
// which the reader desugars to `(vector (vector name init) ...)`.
func parseLoopBindings(node ast.Node) ([]loopBinding, error) {
	list, ok := node.Data.(*ast.List)
	if !ok || !ast.IsSymbolNamed(safeHead(list), "vector") {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "loop", Expected: "a binding vector", Actual: "other"}
	}
	var out []loopBinding
	for _, pair := range list.Items[1:] {
		pairList, ok := pair.Data.(*ast.List)
		if !ok || !ast.IsSymbolNamed(safeHead(pairList), "vector") || len(pairList.Items) != 3 {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: pair.Loc}, Form: "loop binding", Expected: "[name init]", Actual: "other"}
		}
		sym, ok := pairList.Items[1].Data.(*ast.Symbol)
		if !ok {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: pair.Loc}, Form: "loop binding", Expected: "a symbol name", Actual: "other"}
		}
		out = append(out, loopBinding{name: sym.Name, init: pairList.Items[2]})
	}
	return out, nil
}

// lowerRecur validates the call arity against the nearest enclosing loop and
// lowers to a sequence of reassignments followed by `continue` (4.D,
// "loop/recur").
func (l *Lowerer) lowerRecur(call *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	if len(l.loopStack) == 0 {
		return nil, &logger.TransformError{Range: logger.Range{Loc: loc}, Cause: "recur used outside of a loop"}
	}
	ctx := l.loopStack[len(l.loopStack)-1]
	args := call.Items[1:]
	if len(args) != len(ctx.bindings) {
		return nil, &logger.ArityError{Range: logger.Range{Loc: loc}, Form: "recur", Expected: itoa(len(ctx.bindings)), Actual: len(args)}
	}

	temps := make([]string, len(args))
	var stmts []ir.Stmt
	for i, a := range args {
		value, err := l.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		tmp := l.freshTemp("recur")
		temps[i] = tmp
		stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: ir.VarConst, Name: tmp, Value: value}})
	}
	for i, name := range ctx.bindings {
		assign := ir.Expr{Loc: loc, Data: &ir.EAssign{
			Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: name}},
			Value:  ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: temps[i]}},
		}}
		stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SExpr{Value: assign}})
	}
	stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SContinue{}})
	return stmts, nil
}
