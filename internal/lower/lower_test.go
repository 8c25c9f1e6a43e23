package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

var zeroLoc logger.Loc

func list(items ...ast.Node) ast.Node {
	return ast.ListOf(items, zeroLoc)
}

func sym(name string) ast.Node {
	return ast.Sym(name, zeroLoc)
}

func newLowerer() *Lowerer {
	root := symbols.NewGlobalScope()
	return &Lowerer{scope: root.CreateChildScope("module", symbols.ScopeModule)}
}

// S4: `(if (> x 0) 1 -1)` at top level lowers to an EConditional wrapped in
// a single SExpr, since a program body may only contain statements (§3).
func TestLowerForm_IfWrapsInExprStatement(t *testing.T) {
	l := newLowerer()
	node := list(sym("if"), list(sym(">"), sym("x"), ast.IntLit(0, zeroLoc)), ast.IntLit(1, zeroLoc), ast.IntLit(-1, zeroLoc))

	stmts, err := l.lowerForm(node)
	require.NoError(t, err)
	require.Len(t, stmts, 1)

	exprStmt, ok := stmts[0].Data.(*ir.SExpr)
	require.True(t, ok)
	cond, ok := exprStmt.Value.Data.(*ir.EConditional)
	require.True(t, ok)

	test, ok := cond.Test.Data.(*ir.EBinary)
	require.True(t, ok)
	assert.Equal(t, ">", test.Op)

	yes, ok := cond.Yes.Data.(*ir.ENumber)
	require.True(t, ok)
	assert.Equal(t, float64(1), yes.Value)
}

// Do-blocks with no early return lower to a plain IIFE wrapping a try/catch
// whose body tail-returns the last form's value.
func TestLowerDo_WrapsBodyInTryCatchIIFE(t *testing.T) {
	l := newLowerer()
	node := list(sym("do"), ast.IntLit(1, zeroLoc), ast.IntLit(2, zeroLoc))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call, ok := expr.Data.(*ir.ECall)
	require.True(t, ok)
	fn, ok := call.Target.Data.(*ir.EFunction)
	require.True(t, ok)
	require.Len(t, fn.Body, 1)

	tryStmt, ok := fn.Body[0].Data.(*ir.STry)
	require.True(t, ok)
	require.NotNil(t, tryStmt.Catch)
	require.Len(t, tryStmt.Body, 2)

	ret, ok := tryStmt.Body[1].Data.(*ir.SReturn)
	require.True(t, ok)
	num, ok := ret.Value.Data.(*ir.ENumber)
	require.True(t, ok)
	assert.Equal(t, float64(2), num.Value)
}

// 4.D: "return from the do-block to the innermost enclosing do-block, not
// the outer function" — a `return` inside a do-block throws a tagged
// sentinel object rather than emitting a bare JS `return`, and the
// do-block's own catch clause tests for that tag.
func TestLowerDo_ReturnThrowsSentinelAndCatchUnwraps(t *testing.T) {
	l := newLowerer()
	node := list(sym("do"), list(sym("return"), ast.IntLit(7, zeroLoc)), ast.IntLit(99, zeroLoc))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	tryStmt := fn.Body[0].Data.(*ir.STry)

	thr, ok := tryStmt.Body[0].Data.(*ir.SThrow)
	require.True(t, ok)
	obj, ok := thr.Value.Data.(*ir.EObject)
	require.True(t, ok)
	require.Len(t, obj.Properties, 2)
	assert.Equal(t, hqlReturnSentinelKey, obj.Properties[0].Key)
	flag, ok := obj.Properties[0].Value.Data.(*ir.EBoolean)
	require.True(t, ok)
	assert.True(t, flag.Value)
	val, ok := obj.Properties[1].Value.Data.(*ir.ENumber)
	require.True(t, ok)
	assert.Equal(t, float64(7), val.Value)

	require.NotNil(t, tryStmt.Catch)
	sif, ok := tryStmt.Catch.Body[0].Data.(*ir.SIf)
	require.True(t, ok)
	test, ok := sif.Test.Data.(*ir.EMember)
	require.True(t, ok)
	assert.Equal(t, hqlReturnSentinelKey, test.Property)
	_, ok = sif.Yes[0].Data.(*ir.SReturn)
	assert.True(t, ok)
	_, ok = sif.No[0].Data.(*ir.SThrow)
	assert.True(t, ok)
}

// A `return` inside a `fn` nested within a `do` targets the `fn`, not the
// enclosing do-block: doDepth resets to 0 for the function's own body, so
// the inner return lowers to a bare SReturn, not a sentinel throw.
func TestLowerFn_NestedInsideDo_ReturnIsBareNotSentinel(t *testing.T) {
	l := newLowerer()
	innerFn := list(sym("fn"), list(sym("vector")), list(sym("return"), ast.IntLit(1, zeroLoc)))
	node := list(sym("do"), innerFn)

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	outerFn := call.Target.Data.(*ir.EFunction)
	tryStmt := outerFn.Body[0].Data.(*ir.STry)

	ret, ok := tryStmt.Body[0].Data.(*ir.SReturn)
	require.True(t, ok)
	innerFnExpr, ok := ret.Value.Data.(*ir.EFunction)
	require.True(t, ok)
	innerReturn, ok := innerFnExpr.Body[0].Data.(*ir.SReturn)
	require.True(t, ok)
	num, ok := innerReturn.Value.Data.(*ir.ENumber)
	require.True(t, ok)
	assert.Equal(t, float64(1), num.Value)
}

// 4.D "try/catch/finally": an `await` reachable in the try or catch body
// (not crossing a nested fn/=> boundary) marks the wrapping IIFE async.
func TestLowerTry_AwaitMarksIIFEAsync(t *testing.T) {
	l := newLowerer()
	node := list(sym("try"),
		list(sym("await"), sym("p")),
		list(sym("catch"), sym("e"), ast.IntLit(0, zeroLoc)),
	)

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	assert.True(t, fn.Async)

	outerTry := fn.Body[0].Data.(*ir.STry)
	tryStmt := outerTry.Body[0].Data.(*ir.STry)
	require.NotNil(t, tryStmt.Catch)
	assert.Equal(t, "e", tryStmt.Catch.Param)
}

// 4.D "loop/recur": `loop` lowers to an IIFE declaring the bindings as
// `let` ahead of a `while (true)` loop; `recur` reassigns through fresh
// temporaries (so each binding reads the others' pre-recur values) and
// ends in `continue`.
func TestLowerLoop_RecurReassignsAndContinues(t *testing.T) {
	l := newLowerer()
	bindings := list(sym("vector"), list(sym("vector"), sym("i"), ast.IntLit(0, zeroLoc)))
	node := list(sym("loop"), bindings, list(sym("recur"), list(sym("+"), sym("i"), ast.IntLit(1, zeroLoc))))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	require.Len(t, fn.Body, 2)

	decl, ok := fn.Body[0].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "i", decl.Name)
	assert.Equal(t, ir.VarLet, decl.Kind)

	// The while is wrapped in a sentinel-catching try so a bare `return`
	// inside the loop body unwraps rather than escaping uncaught.
	sentinelTry, ok := fn.Body[1].Data.(*ir.STry)
	require.True(t, ok)
	require.NotNil(t, sentinelTry.Catch)
	require.Len(t, sentinelTry.Body, 1)

	whileStmt, ok := sentinelTry.Body[0].Data.(*ir.SWhile)
	require.True(t, ok)
	require.Len(t, whileStmt.Body, 3)

	tempDecl, ok := whileStmt.Body[0].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, ir.VarConst, tempDecl.Kind)

	assign, ok := whileStmt.Body[1].Data.(*ir.SExpr)
	require.True(t, ok)
	assignExpr, ok := assign.Value.Data.(*ir.EAssign)
	require.True(t, ok)
	target, ok := assignExpr.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "i", target.Name)

	_, ok = whileStmt.Body[2].Data.(*ir.SContinue)
	assert.True(t, ok)
}

// The canonical loop-termination idiom: an `if` in loop-body tail position
// whose then-branch is `recur` and else-branch is a plain value lowers to
// an ir.SIf, not an EConditional ternary — a ternary branch can't hold
// recur's reassign-and-continue.
func TestLowerLoop_IfBranchWithRecurLowersAsStatement(t *testing.T) {
	l := newLowerer()
	bindings := list(sym("vector"), list(sym("vector"), sym("i"), ast.IntLit(0, zeroLoc)))
	cond := list(sym("<"), sym("i"), ast.IntLit(10, zeroLoc))
	recurCall := list(sym("recur"), list(sym("+"), sym("i"), ast.IntLit(1, zeroLoc)))
	node := list(sym("loop"), bindings, list(sym("if"), cond, recurCall, sym("i")))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	sentinelTry := fn.Body[1].Data.(*ir.STry)
	whileStmt := sentinelTry.Body[0].Data.(*ir.SWhile)
	require.Len(t, whileStmt.Body, 1)

	sif, ok := whileStmt.Body[0].Data.(*ir.SIf)
	require.True(t, ok)

	// then-branch: recur's temp decl, reassignment, and continue — never a
	// call to an undefined "recur" function.
	require.Len(t, sif.Yes, 3)
	_, ok = sif.Yes[0].Data.(*ir.SVarDecl)
	assert.True(t, ok)
	_, ok = sif.Yes[1].Data.(*ir.SExpr)
	assert.True(t, ok)
	_, ok = sif.Yes[2].Data.(*ir.SContinue)
	assert.True(t, ok)

	// else-branch: the loop's tail value, returned to exit the IIFE.
	require.Len(t, sif.No, 1)
	ret, ok := sif.No[0].Data.(*ir.SReturn)
	require.True(t, ok)
	ident, ok := ret.Value.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "i", ident.Name)
}

// A bare `return` inside a loop body throws the __hql_return sentinel
// (doDepth is open for the duration of the loop body), which must be caught
// by the loop's own wrapping try rather than escape uncaught.
func TestLowerLoop_ReturnInsideBodyIsCaughtBySentinelTry(t *testing.T) {
	l := newLowerer()
	bindings := list(sym("vector"), list(sym("vector"), sym("i"), ast.IntLit(0, zeroLoc)))
	node := list(sym("loop"), bindings, list(sym("return"), ast.IntLit(5, zeroLoc)))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	sentinelTry := fn.Body[1].Data.(*ir.STry)
	require.NotNil(t, sentinelTry.Catch)

	whileStmt := sentinelTry.Body[0].Data.(*ir.SWhile)
	thr, ok := whileStmt.Body[0].Data.(*ir.SThrow)
	require.True(t, ok)
	_, ok = thr.Value.Data.(*ir.EObject)
	assert.True(t, ok)

	sif, ok := sentinelTry.Catch.Body[0].Data.(*ir.SIf)
	require.True(t, ok)
	_, ok = sif.Yes[0].Data.(*ir.SReturn)
	assert.True(t, ok)
}

// A bare `return` inside a try's body must not be caught by the try's own
// user-supplied `catch` clause — the sentinel escapes the user's try/catch
// entirely and is only unwrapped by an outer sentinel-catching try.
func TestLowerTry_ReturnInsideBodyBypassesUserCatch(t *testing.T) {
	l := newLowerer()
	node := list(sym("try"),
		list(sym("return"), ast.IntLit(1, zeroLoc)),
		list(sym("catch"), sym("e"), ast.IntLit(0, zeroLoc)),
	)

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)

	call := expr.Data.(*ir.ECall)
	fn := call.Target.Data.(*ir.EFunction)
	require.Len(t, fn.Body, 1)

	outerTry, ok := fn.Body[0].Data.(*ir.STry)
	require.True(t, ok)
	require.NotNil(t, outerTry.Catch)
	sif, ok := outerTry.Catch.Body[0].Data.(*ir.SIf)
	require.True(t, ok)
	_, ok = sif.Yes[0].Data.(*ir.SReturn)
	assert.True(t, ok)

	innerTry, ok := outerTry.Body[0].Data.(*ir.STry)
	require.True(t, ok)
	require.NotNil(t, innerTry.Catch)
	assert.Equal(t, "e", innerTry.Catch.Param)

	thr, ok := innerTry.Body[0].Data.(*ir.SThrow)
	require.True(t, ok)
	_, ok = thr.Value.Data.(*ir.EObject)
	assert.True(t, ok)
}

func TestLowerRecur_ArityMismatchIsArityError(t *testing.T) {
	l := newLowerer()
	bindings := list(sym("vector"), list(sym("vector"), sym("i"), ast.IntLit(0, zeroLoc)))
	node := list(sym("loop"), bindings, list(sym("recur"), ast.IntLit(1, zeroLoc), ast.IntLit(2, zeroLoc)))

	_, err := l.lowerExpr(node)
	require.Error(t, err)
	arityErr, ok := err.(*logger.ArityError)
	require.True(t, ok)
	assert.Equal(t, "recur", arityErr.Form)
	assert.Equal(t, "1", arityErr.Expected)
	assert.Equal(t, 2, arityErr.Actual)
}

func TestLowerRecur_OutsideLoopIsTransformError(t *testing.T) {
	l := newLowerer()
	_, err := l.lowerForm(list(sym("recur"), ast.IntLit(1, zeroLoc)))
	require.Error(t, err)
	_, ok := err.(*logger.TransformError)
	assert.True(t, ok)
}

// 4.D "pattern destructuring": `[a b & rest]` desugars to
// `(vector a b & rest)`, a compound sub-pattern or rest tail reads the
// source through an index/slice, and a default value uses `(opt name
// default)` rather than overloading the 2-element vector shape.
func TestDestructurePattern_ArrayWithRestAndDefault(t *testing.T) {
	l := newLowerer()
	binding := list(sym("vector"), sym("a"), list(sym("opt"), sym("b"), ast.IntLit(9, zeroLoc)), sym("&"), sym("rest"))
	node := list(sym("let"), binding, sym("xs"))

	stmts, err := l.lowerForm(node)
	require.NoError(t, err)
	// temp = xs, a = temp[0], b = temp[1] (with default), rest = temp.slice(2)
	require.Len(t, stmts, 4)

	tempDecl, ok := stmts[0].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, ir.VarConst, tempDecl.Kind)

	declA, ok := stmts[1].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "a", declA.Name)
	assert.Equal(t, ir.VarLet, declA.Kind)
	_, ok = declA.Value.Data.(*ir.EMember)
	assert.True(t, ok)

	declB, ok := stmts[2].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "b", declB.Name)
	_, ok = declB.Value.Data.(*ir.EConditional) // undefined check against the default
	assert.True(t, ok)

	declRest, ok := stmts[3].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "rest", declRest.Name)
	sliceCall, ok := declRest.Value.Data.(*ir.ECallMember)
	require.True(t, ok)
	assert.Equal(t, "slice", sliceCall.Property)
}

// Object patterns `{:key local & rest}` desugar to
// `(hash-map :key local & rest)`.
func TestDestructurePattern_ObjectWithRest(t *testing.T) {
	l := newLowerer()
	binding := list(sym("hash-map"), sym(":x"), sym("x"), sym("&"), sym("rest"))
	node := list(sym("const"), binding, sym("obj"))

	stmts, err := l.lowerForm(node)
	require.NoError(t, err)
	// temp = obj, x = temp.x, rest = __hql_omit(temp, ["x"])
	require.Len(t, stmts, 3)

	tempDecl, ok := stmts[0].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, ir.VarConst, tempDecl.Kind)

	declX, ok := stmts[1].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", declX.Name)
	member, ok := declX.Value.Data.(*ir.EMember)
	require.True(t, ok)
	assert.Equal(t, "x", member.Property)

	declRest, ok := stmts[2].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "rest", declRest.Name)
	omitCall, ok := declRest.Value.Data.(*ir.ECall)
	require.True(t, ok)
	ident, ok := omitCall.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "__hql_omit", ident.Name)
}

// 4.D "property-vs-call disambiguation": a call whose head is an
// unregistered identifier and whose single argument is a literal lowers to
// the runtime property-access helper rather than a plain function call.
func TestLowerResidual_PropertyVsCallDisambiguation(t *testing.T) {
	l := newLowerer()
	node := list(sym("foo"), ast.StringLit("bar", zeroLoc))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	call, ok := expr.Data.(*ir.ECall)
	require.True(t, ok)
	ident, ok := call.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "__hql_get", ident.Name)
	require.Len(t, call.Args, 2)
}

// A registered identifier used as a call head is an ordinary function call
// even with a single literal argument, since it's a known binding rather
// than a presumed collection.
func TestLowerResidual_RegisteredIdentifierIsPlainCall(t *testing.T) {
	l := newLowerer()
	symbols.RegisterFunction(l.scope, "foo", nil, "", zeroLoc)
	node := list(sym("foo"), ast.StringLit("bar", zeroLoc))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	call, ok := expr.Data.(*ir.ECall)
	require.True(t, ok)
	ident, ok := call.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "foo", ident.Name)
}

// 4.D "method call": a `.method` sigil head lowers to ECallMember.
func TestLowerResidual_MethodCallSigil(t *testing.T) {
	l := newLowerer()
	node := list(sym(".toUpperCase"), sym("s"))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	call, ok := expr.Data.(*ir.ECallMember)
	require.True(t, ok)
	assert.Equal(t, "toUpperCase", call.Property)
}

// 4.D "dotted symbols": a bare dotted symbol in value position defers to
// EInteropIIFE; the same symbol in call-head position resolves directly to
// a method call without the IIFE indirection.
func TestLowerSymbol_DottedValuePosition(t *testing.T) {
	l := newLowerer()
	expr, err := l.lowerExpr(sym("obj.prop"))
	require.NoError(t, err)
	_, ok := expr.Data.(*ir.EInteropIIFE)
	assert.True(t, ok)
}

func TestLowerResidual_DottedCallHead(t *testing.T) {
	l := newLowerer()
	node := list(sym("obj.method"), ast.IntLit(1, zeroLoc))
	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	call, ok := expr.Data.(*ir.ECallMember)
	require.True(t, ok)
	assert.Equal(t, "method", call.Property)
}

// Enum case-shape disambiguation: zero extra args is a bare label, a
// single literal extra arg is a raw value, and one-or-more symbol args are
// associated parameters.
func TestLowerEnum_CaseShapeDisambiguation(t *testing.T) {
	l := newLowerer()
	node := list(sym("enum"), sym("Direction"),
		list(sym("case"), sym("North")),
		list(sym("case"), sym("South"), ast.StringLit("S", zeroLoc)),
		list(sym("case"), sym("Point"), sym("x"), sym("y")),
	)

	stmts, err := l.lowerForm(node)
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	decl, ok := stmts[0].Data.(*ir.SEnumDecl)
	require.True(t, ok)
	require.Len(t, decl.Cases, 3)

	assert.Equal(t, "North", decl.Cases[0].Name)
	assert.Nil(t, decl.Cases[0].RawValue)
	assert.Nil(t, decl.Cases[0].AssocParams)

	assert.Equal(t, "South", decl.Cases[1].Name)
	require.NotNil(t, decl.Cases[1].RawValue)
	str, ok := decl.Cases[1].RawValue.Data.(*ir.EString)
	require.True(t, ok)
	assert.Equal(t, "S", str.Value)

	assert.Equal(t, "Point", decl.Cases[2].Name)
	assert.Equal(t, []string{"x", "y"}, decl.Cases[2].AssocParams)
}

// 4.D "class lowering": `self` inside a method body resolves to `this`,
// both bare and as a call-head receiver; static methods do not get that
// rewrite.
func TestLowerClass_SelfResolvesToThisInMethodsOnly(t *testing.T) {
	l := newLowerer()
	method := list(sym("method"), sym("greet"), list(sym("vector")), list(sym("self.hello")))
	staticMethod := list(sym("static-method"), sym("make"), list(sym("vector")), sym("self"))
	node := list(sym("class"), sym("Greeter"), method, staticMethod)

	stmts, err := l.lowerForm(node)
	require.NoError(t, err)
	decl := stmts[0].Data.(*ir.SClassDecl)
	require.Len(t, decl.Methods, 2)

	instanceBody := decl.Methods[0].Fn.Body
	exprStmt := instanceBody[0].Data.(*ir.SExpr)
	callMember, ok := exprStmt.Value.Data.(*ir.ECallMember)
	require.True(t, ok)
	thisIdent, ok := callMember.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "this", thisIdent.Name)

	staticBody := decl.Methods[1].Fn.Body
	staticExpr := staticBody[0].Data.(*ir.SExpr)
	selfIdent, ok := staticExpr.Value.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "self", selfIdent.Name) // unresolved: static methods have no receiver
}

// Arrow sigil params: `(=> (+ $0 $1))` discovers exactly two implicit
// params from the highest sigil index referenced in the body.
func TestLowerArrow_SigilParamsDiscoveredFromBody(t *testing.T) {
	l := newLowerer()
	node := list(sym("=>"), list(sym("+"), sym("$0"), sym("$1")))

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	fn, ok := expr.Data.(*ir.EFunction)
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "$0", fn.Params[0].Name)
	assert.Equal(t, "$1", fn.Params[1].Name)
}

// Sigils inside a nested fn/=> do not propagate outward to the enclosing
// sigil arrow's own parameter list.
func TestLowerArrow_SigilsDoNotCrossNestedLambdaBoundary(t *testing.T) {
	l := newLowerer()
	inner := list(sym("=>"), sym("$0"))
	node := list(sym("=>"), inner)

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	fn, ok := expr.Data.(*ir.EFunction)
	require.True(t, ok)
	assert.Len(t, fn.Params, 0)
}

// Quote/quasiquote: a quoted list lowers to a plain array of its quoted
// elements; unquote splices a live expression in and unquote-splicing
// concatenates a live array via __hql_concat.
func TestLowerQuasiquote_UnquoteSplicingUsesConcatHelper(t *testing.T) {
	l := newLowerer()
	node := list(sym("quasiquote"),
		list(ast.IntLit(1, zeroLoc), list(sym("unquote-splicing"), sym("xs")), ast.IntLit(2, zeroLoc)),
	)

	expr, err := l.lowerExpr(node)
	require.NoError(t, err)
	call, ok := expr.Data.(*ir.ECall)
	require.True(t, ok)
	ident, ok := call.Target.Data.(*ir.EIdentifier)
	require.True(t, ok)
	assert.Equal(t, "__hql_concat", ident.Name)
	require.Len(t, call.Args, 3) // [1], xs, [2]
}

func TestLowerBareUnquote_OutsideQuasiquoteIsTransformError(t *testing.T) {
	l := newLowerer()
	_, err := l.lowerExpr(list(sym("unquote"), sym("x")))
	require.Error(t, err)
	_, ok := err.(*logger.TransformError)
	assert.True(t, ok)
}

// A failing top-level form is dropped but does not stop subsequent forms
// from lowering (4.D's failure semantics).
func TestLower_OneFormFailingDoesNotStopOthers(t *testing.T) {
	root := symbols.NewGlobalScope()
	bad := list(sym("recur"), ast.IntLit(1, zeroLoc)) // recur outside any loop
	good := list(sym("const"), sym("x"), ast.IntLit(1, zeroLoc))

	program, _, errs := Lower([]ast.Node{bad, good}, "", root)
	require.Len(t, errs, 1)
	require.Len(t, program.Body, 1)
	decl, ok := program.Body[0].Data.(*ir.SVarDecl)
	require.True(t, ok)
	assert.Equal(t, "x", decl.Name)
}
