package macro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/macro"
	"github.com/hlvm-dev/hqlc/internal/reader"
)

func readOne(t *testing.T, src string) ast.Node {
	t.Helper()
	forms, errs := reader.ReadResult(src, "t.hql")
	require.Empty(t, errs)
	require.Len(t, forms, 1)
	return forms[0]
}

func printList(t *testing.T, n ast.Node) string {
	t.Helper()
	list, ok := n.Data.(*ast.List)
	require.True(t, ok, "expected list, got %T", n.Data)
	out := "("
	for i, item := range list.Items {
		if i > 0 {
			out += " "
		}
		switch d := item.Data.(type) {
		case *ast.Symbol:
			out += d.Name
		case *ast.Literal:
			switch d.Kind {
			case ast.LiteralInt:
				out += itoaHelper(d.Int)
			case ast.LiteralString:
				out += d.Str
			case ast.LiteralBool:
				if d.Bool {
					out += "true"
				} else {
					out += "false"
				}
			case ast.LiteralNil:
				out += "nil"
			}
		case *ast.List:
			out += printList(t, item)
		}
	}
	return out + ")"
}

func itoaHelper(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [32]byte
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

// S2. defineMacro("(macro add-one [x] `(+ 1 ~x))"); expand(add-one 5) -> (+ 1 5).
func TestExpandUserMacroAddOne(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(+ 1 ~x)")
	r.DefineMacro("add-one", []string{"x"}, "", body)

	call := readOne(t, "(add-one 5)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(+ 1 5)", printList(t, expanded))
}

func TestExpandIsIdempotentAtFixedPoint(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(+ 1 ~x)")
	r.DefineMacro("add-one", []string{"x"}, "", body)

	call := readOne(t, "(add-one 5)")
	once, err := r.Expand(call)
	require.NoError(t, err)
	twice, err := r.Expand(once)
	require.NoError(t, err)
	assert.Equal(t, printList(t, once), printList(t, twice))
}

func TestExpandRestParamSplicesRemainingArgs(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(list ~@rest)")
	r.DefineMacro("wrap", nil, "rest", body)

	call := readOne(t, "(wrap 1 2 3)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(list 1 2 3)", printList(t, expanded))
}

func TestExpandTooFewArgsRaisesArityError(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(+ 1 ~x)")
	r.DefineMacro("add-one", []string{"x"}, "", body)

	call := readOne(t, "(add-one)")
	_, err := r.Expand(call)
	require.Error(t, err)
	var arityErr *logger.ArityError
	require.ErrorAs(t, err, &arityErr)
}

func TestExpandTooManyArgsRaisesArityError(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(+ 1 ~x)")
	r.DefineMacro("add-one", []string{"x"}, "", body)

	call := readOne(t, "(add-one 1 2)")
	_, err := r.Expand(call)
	require.Error(t, err)
	var arityErr *logger.ArityError
	require.ErrorAs(t, err, &arityErr)
}

// A macro whose body re-invokes itself never reaches a fixed point and
// must surface as an ExpansionError bounded by MaxExpansionIterations.
func TestExpandNonConvergingRaisesExpansionError(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(loopy ~x)")
	r.DefineMacro("loopy", []string{"x"}, "", body)

	call := readOne(t, "(loopy 1)")
	_, err := r.Expand(call)
	require.Error(t, err)
	var expansionErr *logger.ExpansionError
	require.ErrorAs(t, err, &expansionErr)
	assert.Equal(t, logger.ExpansionCauseIterationLimit, expansionErr.Cause)
}

func TestGensymProducesFreshNamesPerExpansionSite(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(let [~(gensym \"tmp\") ~x] ~x)")
	r.DefineMacro("once", []string{"x"}, "", body)

	first, err := r.Expand(readOne(t, "(once 1)"))
	require.NoError(t, err)
	second, err := r.Expand(readOne(t, "(once 2)"))
	require.NoError(t, err)
	assert.NotEqual(t, printList(t, first), printList(t, second))
}

func TestBootstrapWhenExpandsToIfDo(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(when true 1 2)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(if true (do 1 2) nil)", printList(t, expanded))
}

func TestBootstrapUnlessExpandsToIfDo(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(unless true 1)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(if true nil (do 1))", printList(t, expanded))
}

func TestBootstrapCondBuildsNestedIf(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(cond a 1 b 2 3)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(if a 1 (if b 2 3))", printList(t, expanded))
}

func TestBootstrapThreadFirstInsertsAsFirstArg(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(-> x (f a) g)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(g (f x a))", printList(t, expanded))
}

func TestBootstrapThreadLastInsertsAsLastArg(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(->> x (f a) g)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(g (f a x))", printList(t, expanded))
}

func TestBootstrapWhenLetBindsAndTests(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(when-let [y x] y)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(let (vector y x) (if y (do y) nil))", printList(t, expanded))
}

func TestBootstrapDotoThreadsAndReturnsOriginal(t *testing.T) {
	r := macro.NewRuntime()
	call := readOne(t, "(doto x (f 1))")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	list, ok := expanded.Data.(*ast.List)
	require.True(t, ok)
	assert.Equal(t, "let", headSymbol(t, list.Items[0]))
}

func headSymbol(t *testing.T, n ast.Node) string {
	t.Helper()
	sym, ok := n.Data.(*ast.Symbol)
	require.True(t, ok)
	return sym.Name
}

func TestResetRuntimeClearsUserMacrosButKeepsBuiltins(t *testing.T) {
	r := macro.NewRuntime()
	body := readOne(t, "`(+ 1 ~x)")
	r.DefineMacro("add-one", []string{"x"}, "", body)
	r.ResetRuntime()

	_, err := r.Expand(readOne(t, "(add-one 5)"))
	require.NoError(t, err, "add-one is no longer a macro, so it should pass through unexpanded")

	call := readOne(t, "(when true 1)")
	expanded, err := r.Expand(call)
	require.NoError(t, err)
	assert.Equal(t, "(if true (do 1) nil)", printList(t, expanded))
}
