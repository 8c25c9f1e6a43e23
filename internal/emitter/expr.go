package emitter

import (
	"strconv"

	"github.com/hlvm-dev/hqlc/internal/helpers"
	"github.com/hlvm-dev/hqlc/internal/ir"
)

// printExpr dispatches on every ir.E variant (4.E). Parenthesization is
// conservative rather than precedence-climbing like the teacher's
// js_printer binaryExprStack: HQL's operator set is small and fixed (only
// what control_flow.go's binaryOps/unaryOps and foldBinary ever produce),
// spec.md holds the emitter to correctness and source-map fidelity rather
// than minimal output (§4.E, §8), and an extra pair of parens is always
// valid JavaScript. Wrapping every operand of a binary/conditional/await/
// unary expression keeps this dispatch a flat switch instead of a
// threaded precedence table.
func (p *printer) printExpr(e ir.Expr) {
	p.addSourceMapping(e.Loc)
	switch d := e.Data.(type) {
	case *ir.EString:
		p.print(string(helpers.QuoteSingle(d.Value, p.asciiOnly)))
	case *ir.ENumber:
		p.print(formatNumber(d.Value))
	case *ir.EBoolean:
		if d.Value {
			p.print("true")
		} else {
			p.print("false")
		}
	case *ir.ENull:
		p.print("null")
	case *ir.EIdentifier:
		p.print(d.Name)
	case *ir.EMember:
		p.printOperand(d.Target)
		if d.Computed {
			p.print("[")
			p.printExpr(*d.Index)
			p.print("]")
		} else {
			p.print(".")
			p.print(d.Property)
		}
	case *ir.ECall:
		p.printOperand(d.Target)
		p.printArgs(d.Args)
	case *ir.ECallMember:
		p.printOperand(d.Target)
		p.print(".")
		p.print(d.Property)
		p.printArgs(d.Args)
	case *ir.ENew:
		p.print("new ")
		p.printOperand(d.Target)
		p.printArgs(d.Args)
	case *ir.EBinary:
		p.print("(")
		p.printExpr(d.Left)
		p.print(" ")
		p.print(d.Op)
		p.print(" ")
		p.printExpr(d.Right)
		p.print(")")
	case *ir.EUnary:
		p.print("(")
		p.print(d.Op)
		if isWordOperator(d.Op) {
			p.print(" ")
		}
		p.printExpr(d.Value)
		p.print(")")
	case *ir.EConditional:
		p.print("(")
		p.printExpr(d.Test)
		p.print(" ? ")
		p.printExpr(d.Yes)
		p.print(" : ")
		p.printExpr(d.No)
		p.print(")")
	case *ir.EArray:
		p.print("[")
		for i, item := range d.Items {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(item)
		}
		p.print("]")
	case *ir.EObject:
		p.printObject(d.Properties)
	case *ir.EFunction:
		p.printFunctionExpr(d)
	case *ir.EAssign:
		p.print("(")
		p.printExpr(d.Target)
		p.print(" = ")
		p.printExpr(d.Value)
		p.print(")")
	case *ir.EAwait:
		p.print("(await ")
		p.printExpr(d.Value)
		p.print(")")
	case *ir.ETemplate:
		p.printTemplate(d)
	case *ir.EInteropIIFE:
		// Never applied as a call head (lowering would have rewritten it into
		// an ECallMember), so it is always read as a deferred value: just the
		// member access it wraps.
		p.printOperand(d.Target)
		p.print(".")
		p.print(d.Property)
	case *ir.EJSMethodAccess:
		// Likewise only survives to printing when read as a value rather than
		// called; bind the method so it can still be passed around.
		p.printOperand(d.Object)
		p.print(".")
		p.print(d.Method)
		p.print(".bind(")
		p.printExpr(d.Object)
		p.print(")")
	}
}

// printOperand prints an expression used as a call/member target. Member
// and call expressions already parenthesize their own sub-operands where
// needed (binary/conditional/assign/await/unary always self-parenthesize
// above), so this is just printExpr; it exists as a named seam for the one
// place future precedence-sensitive targets would need special handling.
func (p *printer) printOperand(e ir.Expr) { p.printExpr(e) }

func (p *printer) printArgs(args []ir.Expr) {
	p.print("(")
	for i, a := range args {
		if i > 0 {
			p.print(", ")
		}
		p.printExpr(a)
	}
	p.print(")")
}

func (p *printer) printObject(props []ir.ObjectProperty) {
	p.print("{")
	for i, prop := range props {
		if i > 0 {
			p.print(", ")
		}
		if prop.Computed {
			p.print("[")
			p.printExpr(*prop.KeyExpr)
			p.print("]")
		} else {
			p.print(propertyKey(prop.Key))
		}
		p.print(": ")
		p.printExpr(prop.Value)
	}
	p.print("}")
}

func (p *printer) printTemplate(t *ir.ETemplate) {
	p.print("`")
	for i, q := range t.Quasis {
		p.print(escapeTemplateChunk(q))
		if i < len(t.Exprs) {
			p.print("${")
			p.printExpr(t.Exprs[i])
			p.print("}")
		}
	}
	p.print("`")
}

func (p *printer) printFunctionExpr(fn *ir.EFunction) {
	if fn.Async {
		p.print("async ")
	}
	p.print("function")
	if fn.Name != "" {
		p.print(" ")
		p.print(fn.Name)
	}
	p.print("(")
	p.printParams(fn.Params)
	p.print(") ")
	p.printBlock(fn.Body, p.stmtDepth)
}

func (p *printer) printParams(params []ir.Param) {
	for i, param := range params {
		if i > 0 {
			p.print(", ")
		}
		if param.Rest {
			p.print("...")
		}
		p.print(param.Name)
		if param.Default != nil {
			p.print(" = ")
			p.printExpr(*param.Default)
		}
	}
}

func isWordOperator(op string) bool {
	switch op {
	case "typeof", "void", "delete":
		return true
	}
	return false
}

// propertyKey prints an object key as a bare identifier when it looks like
// one, quoting it otherwise (e.g. a keyword-derived name with a leading
// colon already stripped by the lowerer, or one containing characters JS
// identifiers can't start with).
func propertyKey(key string) string {
	if isValidIdentifier(key) {
		return key
	}
	return string(helpers.QuoteSingle(key, false))
}

func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		if i == 0 {
			if !(c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')) {
				return false
			}
			continue
		}
		if !(c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')) {
			return false
		}
	}
	return true
}

func escapeTemplateChunk(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '`', '\\', '$':
			out = append(out, '\\', s[i])
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
