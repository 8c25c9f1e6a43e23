package macro

import (
	"sync"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

const MaxExpansionIterations = 100

// Macro is a registered expansion rule: params bind positionally to
// argument nodes, restParam (if present) binds to the list of remaining
// arguments (4.C).
type Macro struct {
	Params    []string
	RestParam string
	Body      ast.Node
}

// nativeFn implements a system macro (when, unless, cond, ->, ->>, ...)
// directly in Go rather than as a templated Macro: several of them
// (variadic threading, cond's pairwise clauses) restructure their
// arguments in ways a flat param/rest substitution can't express cleanly.
type nativeFn func(call ast.Node, args []ast.Node) (ast.Node, error)

// Runtime holds the registered macro set. System macros are installed by
// bootstrap when NewRuntime runs and reinstalled by ResetRuntime; user
// macros are added by DefineMacro and cleared by ResetRuntime, per 4.C's
// "system vs user macros" split.
type Runtime struct {
	mu      sync.RWMutex
	macros  map[string]*Macro
	natives map[string]nativeFn
}

func NewRuntime() *Runtime {
	r := &Runtime{macros: map[string]*Macro{}, natives: map[string]nativeFn{}}
	bootstrap(r)
	return r
}

func (r *Runtime) DefineMacro(name string, params []string, restParam string, body ast.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.macros[name] = &Macro{Params: params, RestParam: restParam, Body: body}
}

// ResetRuntime clears user macros and reinstalls the system set.
func (r *Runtime) ResetRuntime() {
	r.mu.Lock()
	r.macros = map[string]*Macro{}
	r.natives = map[string]nativeFn{}
	r.mu.Unlock()
	bootstrap(r)
}

func (r *Runtime) registerNative(name string, fn nativeFn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.natives[name] = fn
}

func (r *Runtime) lookup(name string) (*Macro, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.macros[name]
	return m, ok
}

func (r *Runtime) lookupNative(name string) (nativeFn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.natives[name]
	return fn, ok
}

// Expand implements 4.C's contract: AST → AST, converging at the fixed
// point of single-step expansion, bounded by MaxExpansionIterations.
// Expansion is serial within a single call to preserve gensym-counter
// determinism (4.C's concurrency note); callers may still invoke Expand
// concurrently for different files.
func (r *Runtime) Expand(node ast.Node) (ast.Node, error) {
	current := node
	for i := 0; i < MaxExpansionIterations; i++ {
		next, changed, err := r.expandStep(current)
		if err != nil {
			return ast.Node{}, err
		}
		if !changed {
			return next, nil
		}
		current = next
	}
	return ast.Node{}, &logger.ExpansionError{
		Range: logger.Range{Loc: node.Loc},
		Cause: logger.ExpansionCauseIterationLimit,
		Text:  "macro expansion did not converge within the iteration limit",
	}
}

// ExpandAll expands a sequence of top-level forms independently; a form
// that fails expansion drops from the result (an ExpansionError has
// already propagated to the caller's error slice) while later forms still
// expand — it mirrors the lowerer's "surfaced error, form dropped,
// subsequent forms still compile" propagation model.
func (r *Runtime) ExpandAll(forms []ast.Node) ([]ast.Node, []error) {
	var out []ast.Node
	var errs []error
	for _, f := range forms {
		expanded, err := r.Expand(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, expanded)
	}
	return out, errs
}

// expandStep performs one substitution pass: every list whose head names a
// registered macro is replaced by its expanded body; everything else is
// walked unchanged. `changed` reports whether any macro call was found.
func (r *Runtime) expandStep(node ast.Node) (result ast.Node, changed bool, err error) {
	list, ok := node.Data.(*ast.List)
	if !ok {
		return node, false, nil
	}

	if head, ok := ast.HeadSymbol(node); ok {
		if m, ok := r.lookup(head); ok {
			expanded, err := expandCall(m, node, list)
			if err != nil {
				return ast.Node{}, false, err
			}
			return expanded, true, nil
		}
		if fn, ok := r.lookupNative(head); ok {
			expanded, err := fn(node, list.Items[1:])
			if err != nil {
				return ast.Node{}, false, err
			}
			return expanded, true, nil
		}
	}

	newItems := make([]ast.Node, len(list.Items))
	anyChanged := false
	for i, item := range list.Items {
		next, itemChanged, err := r.expandStep(item)
		if err != nil {
			return ast.Node{}, false, err
		}
		newItems[i] = next
		anyChanged = anyChanged || itemChanged
	}
	if !anyChanged {
		return node, false, nil
	}
	return ast.ListOf(newItems, node.Loc), true, nil
}

// expandCall binds the call's arguments to the macro's parameters, raising
// ArityError on mismatch, substitutes them into the body, then resolves
// any quasiquote/unquote/unquote-splicing wrapper in the substituted body.
func expandCall(m *Macro, call ast.Node, list *ast.List) (ast.Node, error) {
	args := list.Items[1:]

	if m.RestParam == "" && len(args) != len(m.Params) {
		return ast.Node{}, &logger.ArityError{
			Range:    logger.Range{Loc: call.Loc},
			Form:     headName(call),
			Expected: itoa(len(m.Params)),
			Actual:   len(args),
		}
	}
	if m.RestParam != "" && len(args) < len(m.Params) {
		return ast.Node{}, &logger.ArityError{
			Range:    logger.Range{Loc: call.Loc},
			Form:     headName(call),
			Expected: ">=" + itoa(len(m.Params)),
			Actual:   len(args),
		}
	}

	bindings := map[string]ast.Node{}
	for i, p := range m.Params {
		bindings[p] = args[i]
	}
	if m.RestParam != "" {
		rest := append([]ast.Node{}, args[len(m.Params):]...)
		bindings[m.RestParam] = ast.ListOf(rest, call.Loc)
	}

	substituted := substitute(m.Body, bindings)
	return evalQuasiquote(substituted), nil
}

func headName(n ast.Node) string {
	if name, ok := ast.HeadSymbol(n); ok {
		return name
	}
	return "<macro>"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// substitute replaces every bare symbol in body matching a parameter name
// with its bound argument node (4.C: "symbols equal to parameter names are
// substituted by their bound AST fragments"). `gensym` calls are replaced
// by a fresh symbol per call site, consistent within one expansion.
func substitute(node ast.Node, bindings map[string]ast.Node) ast.Node {
	switch d := node.Data.(type) {
	case *ast.Symbol:
		if bound, ok := bindings[d.Name]; ok {
			return bound
		}
		return node
	case *ast.List:
		if head, ok := ast.HeadSymbol(node); ok && head == "gensym" && len(d.Items) <= 2 {
			prefix := ""
			if len(d.Items) == 2 {
				if lit, ok := d.Items[1].Data.(*ast.Literal); ok && lit.Kind == ast.LiteralString {
					prefix = lit.Str
				}
			}
			return ast.Sym(gensym(prefix), node.Loc)
		}
		items := make([]ast.Node, len(d.Items))
		for i, item := range d.Items {
			items[i] = substitute(item, bindings)
		}
		return ast.ListOf(items, node.Loc)
	default:
		return node
	}
}
