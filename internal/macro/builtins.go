package macro

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

// bootstrap installs the fixed set of system macros (4.C): when, unless,
// cond, ->, ->>, when-let, if-let, doto. These ship as native Go
// expanders rather than templated Macro values because several of them
// restructure variadic argument lists (threading, pairwise clauses) in
// ways a flat positional/rest substitution can't express.
func bootstrap(r *Runtime) {
	r.registerNative("when", expandWhen)
	r.registerNative("unless", expandUnless)
	r.registerNative("cond", expandCond)
	r.registerNative("->", expandThreadFirst)
	r.registerNative("->>", expandThreadLast)
	r.registerNative("when-let", expandWhenLet)
	r.registerNative("if-let", expandIfLet)
	r.registerNative("doto", expandDoto)
}

func sym(name string, loc logger.Loc) ast.Node  { return ast.Sym(name, loc) }
func list(loc logger.Loc, items ...ast.Node) ast.Node { return ast.ListOf(items, loc) }

// expandWhen: (when cond body...) -> (if cond (do body...) nil)
func expandWhen(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "when", Expected: ">=1", Actual: len(args)}
	}
	body := append([]ast.Node{sym("do", call.Loc)}, args[1:]...)
	return list(call.Loc, sym("if", call.Loc), args[0], list(call.Loc, body...), ast.NilLit(call.Loc)), nil
}

// expandUnless: (unless cond body...) -> (if cond nil (do body...))
func expandUnless(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "unless", Expected: ">=1", Actual: len(args)}
	}
	body := append([]ast.Node{sym("do", call.Loc)}, args[1:]...)
	return list(call.Loc, sym("if", call.Loc), args[0], ast.NilLit(call.Loc), list(call.Loc, body...)), nil
}

// expandCond: (cond c1 r1 c2 r2 ... [default]) -> nested ifs; a trailing
// unpaired clause is the default (no implicit `else` keyword, matching the
// "surplus positional arguments" style of the rest of the macro table).
func expandCond(call ast.Node, args []ast.Node) (ast.Node, error) {
	return buildCond(call.Loc, args), nil
}

func buildCond(loc logger.Loc, clauses []ast.Node) ast.Node {
	if len(clauses) == 0 {
		return ast.NilLit(loc)
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	rest := buildCond(loc, clauses[2:])
	return list(loc, sym("if", loc), clauses[0], clauses[1], rest)
}

// expandThreadFirst: (-> x f1 (f2 a)) -> (f2 (f1 x) a), inserting the
// threaded value as the first argument at each step.
func expandThreadFirst(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "->", Expected: ">=1", Actual: len(args)}
	}
	acc := args[0]
	for _, step := range args[1:] {
		acc = threadInto(step, acc, true)
	}
	return acc, nil
}

// expandThreadLast: (->> x f1 (f2 a)) -> (f2 a (f1 x)), inserting the
// threaded value as the last argument at each step.
func expandThreadLast(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "->>", Expected: ">=1", Actual: len(args)}
	}
	acc := args[0]
	for _, step := range args[1:] {
		acc = threadInto(step, acc, false)
	}
	return acc, nil
}

func threadInto(step ast.Node, value ast.Node, first bool) ast.Node {
	if l, ok := step.Data.(*ast.List); ok {
		items := append([]ast.Node{}, l.Items...)
		if first {
			items = append(items[:1:1], append([]ast.Node{value}, items[1:]...)...)
		} else {
			items = append(items, value)
		}
		return ast.ListOf(items, step.Loc)
	}
	return list(step.Loc, step, value)
}

// letBindingName extracts the bound name out of a `[name expr]` binding
// form, which the reader has already desugared to `(vector name expr)`.
func letBindingName(binding ast.Node) (ast.Node, bool) {
	bindingList, ok := binding.Data.(*ast.List)
	if !ok || len(bindingList.Items) != 3 {
		return ast.Node{}, false
	}
	if !ast.IsSymbolNamed(bindingList.Items[0], "vector") {
		return ast.Node{}, false
	}
	return bindingList.Items[1], true
}

// expandWhenLet: (when-let [name expr] body...) -> (let [name expr] (when name body...))
func expandWhenLet(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "when-let", Expected: ">=1", Actual: len(args)}
	}
	binding := args[0]
	name, ok := letBindingName(binding)
	if !ok {
		return ast.Node{}, &logger.ValidationError{Range: logger.Range{Loc: call.Loc}, Form: "when-let", Expected: "[name expr] binding vector", Actual: "malformed binding"}
	}
	body := append([]ast.Node{sym("when", call.Loc), name}, args[1:]...)
	return list(call.Loc, sym("let", call.Loc), binding, list(call.Loc, body...)), nil
}

// expandIfLet: (if-let [name expr] then else) -> (let [name expr] (if name then else))
func expandIfLet(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 2 || len(args) > 3 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "if-let", Expected: "2-3", Actual: len(args)}
	}
	binding := args[0]
	name, ok := letBindingName(binding)
	if !ok {
		return ast.Node{}, &logger.ValidationError{Range: logger.Range{Loc: call.Loc}, Form: "if-let", Expected: "[name expr] binding vector", Actual: "malformed binding"}
	}
	elseBranch := ast.NilLit(call.Loc)
	if len(args) == 3 {
		elseBranch = args[2]
	}
	return list(call.Loc, sym("let", call.Loc), binding, list(call.Loc, sym("if", call.Loc), name, args[1], elseBranch)), nil
}

// expandDoto: (doto x f1 (f2 a)) -> (let [tmp x] (f1 tmp) (f2 tmp a) tmp),
// evaluating each form with the threaded value spliced in as the first
// argument and finally yielding the threaded value itself.
func expandDoto(call ast.Node, args []ast.Node) (ast.Node, error) {
	if len(args) < 1 {
		return ast.Node{}, &logger.ArityError{Range: logger.Range{Loc: call.Loc}, Form: "doto", Expected: ">=1", Actual: len(args)}
	}
	tmp := sym(gensym("doto"), call.Loc)
	binding := list(call.Loc, sym("vector", call.Loc), tmp, args[0])
	letBody := []ast.Node{sym("let", call.Loc), binding}
	for _, step := range args[1:] {
		letBody = append(letBody, threadInto(step, tmp, true))
	}
	letBody = append(letBody, tmp)
	return ast.ListOf(letBody, call.Loc), nil
}
