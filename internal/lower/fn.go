package lower

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

type paramDestructure struct {
	tempName string
	pattern  *ast.Pattern
}

// parseParamList reads a `[p1 p2 & rest]`-shaped parameter vector (reader
// desugared to `(vector p1 p2 & rest)`). A plain symbol is a simple
// parameter, `(opt name default)` carries a default value, and a compound
// [array]/{object} sub-pattern gets a synthetic temp parameter plus a
// destructuring assignment the caller prepends to the function body.
func (l *Lowerer) parseParamList(node ast.Node) ([]ir.Param, []paramDestructure, error) {
	list, ok := node.Data.(*ast.List)
	if !ok || !ast.IsSymbolNamed(safeHead(list), "vector") {
		return nil, nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "parameter list", Expected: "a [vector]", Actual: "other"}
	}
	items := list.Items[1:]
	var params []ir.Param
	var destructures []paramDestructure
	for i := 0; i < len(items); i++ {
		item := items[i]
		if ast.IsSymbolNamed(item, "&") {
			if i+1 >= len(items) {
				return nil, nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "parameter list", Expected: "a name after '&'", Actual: "none"}
			}
			sym, ok := items[i+1].Data.(*ast.Symbol)
			if !ok {
				return nil, nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "parameter list", Expected: "a symbol after '&'", Actual: "other"}
			}
			params = append(params, ir.Param{Name: sym.Name, Rest: true})
			symbols.RegisterVariable(l.scope, sym.Name, "", false, item.Loc)
			break
		}
		if sym, ok := item.Data.(*ast.Symbol); ok {
			params = append(params, ir.Param{Name: sym.Name})
			symbols.RegisterVariable(l.scope, sym.Name, "", false, item.Loc)
			continue
		}
		if innerList, ok := item.Data.(*ast.List); ok && ast.IsSymbolNamed(safeHead(innerList), "opt") {
			pat, err := nodeToPattern(item)
			if err != nil {
				return nil, nil, err
			}
			ident := pat.Data.(*ast.IdentifierPattern)
			def, err := l.lowerExpr(*ident.Default)
			if err != nil {
				return nil, nil, err
			}
			params = append(params, ir.Param{Name: ident.Name, Default: &def})
			symbols.RegisterVariable(l.scope, ident.Name, "", false, item.Loc)
			continue
		}
		pat, err := nodeToPattern(item)
		if err != nil {
			return nil, nil, err
		}
		tmp := l.freshTemp("param")
		params = append(params, ir.Param{Name: tmp})
		destructures = append(destructures, paramDestructure{tempName: tmp, pattern: pat})
	}
	return params, destructures, nil
}

func (l *Lowerer) prependParamDestructures(destructures []paramDestructure, body []ir.Stmt, loc logger.Loc) ([]ir.Stmt, error) {
	if len(destructures) == 0 {
		return body, nil
	}
	var prefix []ir.Stmt
	for _, d := range destructures {
		stmts, err := l.destructurePattern(ir.VarConst, d.pattern, identExpr(d.tempName, loc), loc)
		if err != nil {
			return nil, err
		}
		prefix = append(prefix, stmts...)
	}
	return append(prefix, body...), nil
}

// lowerFn lowers `(fn [params...] body...)` or the named form
// `(fn name [params...] body...)`, the name existing only so recursive
// calls inside body can resolve it.
func (l *Lowerer) lowerFn(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	items := call.Items[1:]
	if len(items) < 1 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "fn", Expected: "a parameter list", Actual: "none"}
	}
	var name string
	if sym, ok := items[0].Data.(*ast.Symbol); ok {
		name = sym.Name
		items = items[1:]
	}
	if len(items) < 1 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "fn", Expected: "a parameter list", Actual: "none"}
	}

	child := l.scope.CreateChildScope(l.freshTemp("fn-scope"), symbols.ScopeFunction)
	prev := l.scope
	l.scope = child
	if name != "" {
		symbols.RegisterFunction(prev, name, nil, "", loc)
	}

	params, destructures, err := l.parseParamList(items[0])
	if err != nil {
		l.scope = prev
		return ir.Expr{}, err
	}
	prevDepth := l.doDepth
	l.doDepth = 0
	body, err := l.lowerBody(items[1:])
	l.doDepth = prevDepth
	if err != nil {
		l.scope = prev
		return ir.Expr{}, err
	}
	body, err = l.prependParamDestructures(destructures, body, loc)
	l.scope = prev
	if err != nil {
		return ir.Expr{}, err
	}

	return ir.Expr{Loc: loc, Data: &ir.EFunction{Name: name, Params: params, Body: body, Async: bodyNeedsAsync(items[1:])}}, nil
}

// lowerArrow lowers `(=> [params...] body)`, or the sigil form `(=> body)`
// whose implicit positional parameters `$0`, `$1`, … are discovered by
// scanning the body (4.D, "arrow lambda"). Sigil params bind only in this
// arrow's own scope and never propagate to an enclosing one.
func (l *Lowerer) lowerArrow(call *ast.List, loc logger.Loc) (ir.Expr, error) {
	items := call.Items[1:]
	if len(items) < 1 {
		return ir.Expr{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "=>", Expected: "a parameter list or body", Actual: "none"}
	}

	child := l.scope.CreateChildScope(l.freshTemp("arrow-scope"), symbols.ScopeFunction)
	prev := l.scope
	l.scope = child

	var params []ir.Param
	var destructures []paramDestructure
	var bodyForms []ast.Node
	var err error
	if explicit, ok := items[0].Data.(*ast.List); ok && ast.IsSymbolNamed(safeHead(explicit), "vector") {
		params, destructures, err = l.parseParamList(items[0])
		bodyForms = items[1:]
	} else {
		bodyForms = items
		for _, name := range sigilParamNames(bodyForms) {
			symbols.RegisterVariable(child, name, "", false, loc)
			params = append(params, ir.Param{Name: name})
		}
	}
	if err != nil {
		l.scope = prev
		return ir.Expr{}, err
	}

	prevDepth := l.doDepth
	l.doDepth = 0
	body, err := l.lowerBodyWithTailReturn(bodyForms)
	l.doDepth = prevDepth
	if err != nil {
		l.scope = prev
		return ir.Expr{}, err
	}
	body, err = l.prependParamDestructures(destructures, body, loc)
	l.scope = prev
	if err != nil {
		return ir.Expr{}, err
	}

	return ir.Expr{Loc: loc, Data: &ir.EFunction{Params: params, Body: body, Async: bodyNeedsAsync(bodyForms)}}, nil
}

// sigilParamNames scans a sigil arrow's body for `$0`..`$9` references and
// returns the contiguous prefix up to the highest index used, so `(=> (+ $0
// $1))` gets exactly two parameters.
func sigilParamNames(forms []ast.Node) []string {
	highest := -1
	for _, f := range forms {
		scanSigils(f, &highest)
	}
	if highest < 0 {
		return nil
	}
	names := make([]string, highest+1)
	for i := range names {
		names[i] = "$" + itoa(i)
	}
	return names
}

func scanSigils(n ast.Node, highest *int) {
	switch d := n.Data.(type) {
	case *ast.Symbol:
		if len(d.Name) == 2 && d.Name[0] == '$' && d.Name[1] >= '0' && d.Name[1] <= '9' {
			idx := int(d.Name[1] - '0')
			if idx > *highest {
				*highest = idx
			}
		}
	case *ast.List:
		if ast.IsSymbolNamed(safeHead(d), "fn") || ast.IsSymbolNamed(safeHead(d), "=>") {
			return
		}
		for _, item := range d.Items {
			scanSigils(item, highest)
		}
	}
}
