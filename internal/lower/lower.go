// Package lower implements 4.D's AST -> IR lowering: a dispatch over kernel
// primitives and a residual classifier for everything else, plus the named
// control-flow rewrites (do-block IIFE, try/catch async detection,
// loop/recur trampoline, property-vs-call disambiguation, method calls,
// dotted-symbol interop, pattern destructuring, enum and class lowering).
package lower

import (
	"sync"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// exprHandler lowers one kernel-form call to an expression. Forms that are
// inherently statement-shaped (def/let/var/class/enum/import/export/
// return/throw/recur) are dispatched separately by lowerForm, since they
// may expand to more than one ir.Stmt (pattern destructuring, the
// loop/recur trampoline) and never need the expression-statement wrapper.
type exprHandler func(l *Lowerer, call *ast.List, loc logger.Loc) (ir.Expr, error)

// exprDispatch maps a kernel head symbol to its handler. It is built once
// on first use (4.D: "a factory, populated once at first use"), mirroring
// the teacher's lazily-initialized per-parser lookup tables.
var (
	exprDispatchOnce sync.Once
	exprDispatch     map[string]exprHandler
)

func factory() map[string]exprHandler {
	exprDispatchOnce.Do(func() {
		exprDispatch = map[string]exprHandler{
			"quote":            (*Lowerer).lowerQuote,
			"quasiquote":       (*Lowerer).lowerQuasiquote,
			"unquote":          (*Lowerer).lowerBareUnquote,
			"unquote-splicing": (*Lowerer).lowerBareUnquote,
			"vector":           (*Lowerer).lowerVector,
			"hash-set":         (*Lowerer).lowerHashSet,
			"hash-map":         (*Lowerer).lowerHashMap,
			"hashmap":          (*Lowerer).lowerHashMap,
			"new":              (*Lowerer).lowerNew,
			"fn":               (*Lowerer).lowerFn,
			"=>":               (*Lowerer).lowerArrow,
			"async":            (*Lowerer).lowerAsync,
			"range":            (*Lowerer).lowerRange,
			"await":            (*Lowerer).lowerAwait,
			"if":               (*Lowerer).lowerIf,
			"?":                (*Lowerer).lowerIf,
			"template-literal": (*Lowerer).lowerTemplateLiteral,
			"do":               (*Lowerer).lowerDo,
			"try":              (*Lowerer).lowerTry,
			"loop":             (*Lowerer).lowerLoop,
			"js-new":           (*Lowerer).lowerJSNew,
			"js-get":           (*Lowerer).lowerJSGet,
			"js-call":          (*Lowerer).lowerJSCall,
			"js-get-invoke":    (*Lowerer).lowerJSGetInvoke,
			"js-set":           (*Lowerer).lowerJSSet,
			"get":              (*Lowerer).lowerGet,
			"js-method":        (*Lowerer).lowerJSMethod,
			"=":                (*Lowerer).lowerAssign,
		}
	})
	return exprDispatch
}

// stmtHeads is the set of kernel heads that are inherently statement-shaped
// and are never wrapped in SExpr; lowerForm checks this set before falling
// back to the expression dispatch.
var stmtHeads = map[string]bool{
	"const": true, "def": true, "let": true, "var": true,
	"class": true, "enum": true, "import": true, "export": true,
	"return": true, "throw": true, "recur": true,
}

// Lowerer carries the mutable state threaded through a single file's
// lowering: the symbol-table scope chain, the do-block IIFE nesting depth
// used by the early-return rewrite, the enclosing loop's recur bindings,
// and a monotonic counter for the temporary names pattern destructuring
// introduces.
type Lowerer struct {
	scope         *symbols.Scope
	currentDir    string
	doDepth       int
	tempSeq       int
	loopStack     []*loopContext
	inClassMethod bool
}

// loopContext records the binding names a `loop` introduces so `recur` can
// validate and lower its reassignment against the nearest enclosing loop.
type loopContext struct {
	bindings []string
}

// Lower implements 4.D's contract: each top-level form lowers independently;
// a form that fails surfaces its error and is dropped, but subsequent forms
// still lower (4.D's failure semantics, mirrored by macro.ExpandAll). The
// module scope is returned alongside the program so callers building a
// project index (4.F) can walk its records without re-deriving them.
func Lower(forms []ast.Node, currentDir string, root *symbols.Scope) (*ir.Program, *symbols.Scope, []error) {
	l := &Lowerer{scope: root.CreateChildScope("module", symbols.ScopeModule), currentDir: currentDir}
	var body []ir.Stmt
	var errs []error
	for _, f := range forms {
		stmts, err := l.lowerForm(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		body = append(body, stmts...)
	}
	return &ir.Program{Body: body}, l.scope, errs
}

// lowerBody lowers a sequence of forms into a flat statement list, used for
// function/do/try/loop bodies alike.
func (l *Lowerer) lowerBody(forms []ast.Node) ([]ir.Stmt, error) {
	var out []ir.Stmt
	for _, f := range forms {
		stmts, err := l.lowerForm(f)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// lowerForm lowers one form in statement/body position (§3's invariant that
// a program body contains only statements): statement-shaped kernel heads
// dispatch directly (possibly to more than one ir.Stmt); everything else
// lowers as an expression and is wrapped in SExpr. The resulting value, if
// any, is discarded (non-tail position); use lowerFormTail for a form whose
// value should be returned.
func (l *Lowerer) lowerForm(node ast.Node) ([]ir.Stmt, error) {
	return l.lowerFormTail(node, false)
}

// lowerFormTail is lowerForm parameterized by tail position: when tail is
// set and the form is a plain expression (not a stmtHeads member, nor an
// `if`/`?` with a statement-shaped branch), its value is wrapped in SReturn
// rather than discarded in SExpr. stmtHeads members ignore tail entirely —
// return/throw/recur already carry their own control flow.
//
// `if`/`?` needs special handling here rather than going through the
// expression dispatch: a branch headed by recur/return/throw (directly, or
// through a nested if) can't be squeezed into an EConditional ternary, since
// a JS ternary branch can't hold a continue or a bare return/throw
// statement. When branchNeedsStmt reports such a branch, the whole `if`
// lowers to an ir.SIf instead, with each branch lowered recursively through
// lowerFormTail so the tail-ness (and thus the value-returning exit of an
// enclosing loop/do) is preserved.
func (l *Lowerer) lowerFormTail(node ast.Node, tail bool) ([]ir.Stmt, error) {
	if head, ok := ast.HeadSymbol(node); ok {
		if (head == "if" || head == "?") && formNeedsStmtIf(node) {
			return l.lowerIfStmt(node.Data.(*ast.List), node.Loc, tail)
		}
		if stmtHeads[head] {
			list := node.Data.(*ast.List)
			switch head {
			case "const", "def":
				return l.lowerDef(list, node.Loc)
			case "let":
				return l.lowerLet(list, node.Loc)
			case "var":
				return l.lowerVar(list, node.Loc)
			case "class":
				return l.lowerClass(list, node.Loc)
			case "enum":
				return l.lowerEnum(list, node.Loc)
			case "import":
				return l.lowerImport(list, node.Loc)
			case "export":
				return l.lowerExport(list, node.Loc)
			case "return":
				return l.lowerReturn(list, node.Loc)
			case "throw":
				return l.lowerThrow(list, node.Loc)
			case "recur":
				return l.lowerRecur(list, node.Loc)
			}
		}
	}

	expr, err := l.lowerExpr(node)
	if err != nil {
		return nil, err
	}
	if tail {
		return []ir.Stmt{{Loc: node.Loc, Data: &ir.SReturn{Value: &expr}}}, nil
	}
	return []ir.Stmt{{Loc: node.Loc, Data: &ir.SExpr{Value: expr}}}, nil
}

// formNeedsStmtIf reports whether an `if`/`?` form has a then- or
// else-branch that is statement-shaped and so cannot lower into an
// EConditional ternary.
func formNeedsStmtIf(node ast.Node) bool {
	head, ok := ast.HeadSymbol(node)
	if !ok || (head != "if" && head != "?") {
		return false
	}
	list := node.Data.(*ast.List)
	if len(list.Items) < 3 {
		return false
	}
	if branchNeedsStmt(list.Items[2]) {
		return true
	}
	return len(list.Items) == 4 && branchNeedsStmt(list.Items[3])
}

// branchNeedsStmt reports whether an if-branch is itself statement-shaped:
// a direct stmtHeads call (recur/return/throw and friends), or a nested
// if/? whose own branch is.
func branchNeedsStmt(node ast.Node) bool {
	head, ok := ast.HeadSymbol(node)
	if !ok {
		return false
	}
	if stmtHeads[head] {
		return true
	}
	if head == "if" || head == "?" {
		return formNeedsStmtIf(node)
	}
	return false
}

func (l *Lowerer) freshTemp(prefix string) string {
	l.tempSeq++
	return "__hql_" + prefix + "_" + itoa(l.tempSeq)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
