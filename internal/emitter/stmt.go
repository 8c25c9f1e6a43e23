package emitter

import (
	"github.com/hlvm-dev/hqlc/internal/helpers"
	"github.com/hlvm-dev/hqlc/internal/ir"
)

// printStmt dispatches on every ir.S variant (4.E). depth is the current
// indentation level in two-space units, matching the block nesting the
// lowerer's control-flow rewrites (do/try/loop) produce.
func (p *printer) printStmt(s ir.Stmt, depth int) {
	p.stmtDepth = depth
	p.printIndent(depth)
	p.addSourceMapping(s.Loc)
	switch d := s.Data.(type) {
	case *ir.SVarDecl:
		p.printVarDecl(*d)
		p.print(";\n")
	case *ir.SFunctionDecl:
		p.printFunctionDecl(d, depth)
	case *ir.SClassDecl:
		p.printClassDecl(d, depth)
	case *ir.SEnumDecl:
		p.printEnumDecl(d, depth)
	case *ir.SReturn:
		p.print("return")
		if d.Value != nil {
			p.print(" ")
			p.printExpr(*d.Value)
		}
		p.print(";\n")
	case *ir.SThrow:
		p.print("throw ")
		p.printExpr(d.Value)
		p.print(";\n")
	case *ir.SBlock:
		p.print("{\n")
		for _, inner := range d.Body {
			p.printStmt(inner, depth+1)
		}
		p.printIndent(depth)
		p.print("}\n")
	case *ir.SExpr:
		p.printExpr(d.Value)
		p.print(";\n")
	case *ir.SIf:
		p.printIf(d, depth)
	case *ir.STry:
		p.printTry(d, depth)
	case *ir.SWhile:
		p.print("while (")
		p.printExpr(d.Test)
		p.print(") ")
		p.printBlock(d.Body, depth)
		p.print("\n")
	case *ir.SBreak:
		p.print("break;\n")
	case *ir.SContinue:
		p.print("continue;\n")
	case *ir.SImport:
		p.printImport(d)
	case *ir.SExportNamed:
		p.printExportNamed(d)
	case *ir.SExportVar:
		p.print("export ")
		p.printVarDecl(d.Decl)
		p.print(";\n")
	case *ir.SExportDefault:
		p.print("export default ")
		p.printExpr(d.Value)
		p.print(";\n")
	}
}

func (p *printer) printVarDecl(decl ir.SVarDecl) {
	switch decl.Kind {
	case ir.VarConst:
		p.print("const ")
	case ir.VarLet:
		p.print("let ")
	default:
		p.print("var ")
	}
	p.print(decl.Name)
	p.print(" = ")
	p.printExpr(decl.Value)
}

// printBlock prints a `{ ... }` body with no trailing newline after the
// closing brace, so callers can decide what follows: a statement-position
// block adds its own "\n", while a function expression used as a value
// leaves the brace for whatever punctuation (a trailing ";") the
// enclosing statement prints next.
func (p *printer) printBlock(body []ir.Stmt, depth int) {
	p.print("{\n")
	for _, s := range body {
		p.printStmt(s, depth+1)
	}
	p.printIndent(depth)
	p.print("}")
}

func (p *printer) printFunctionDecl(d *ir.SFunctionDecl, depth int) {
	if d.Async {
		p.print("async ")
	}
	p.print("function ")
	p.print(d.Name)
	p.print("(")
	p.printParams(d.Params)
	p.print(") ")
	p.printBlock(d.Body, depth)
	p.print("\n")
}

func (p *printer) printIf(d *ir.SIf, depth int) {
	p.print("if (")
	p.printExpr(d.Test)
	p.print(") ")
	p.print("{\n")
	for _, s := range d.Yes {
		p.printStmt(s, depth+1)
	}
	p.printIndent(depth)
	p.print("}")
	if len(d.No) > 0 {
		p.print(" else {\n")
		for _, s := range d.No {
			p.printStmt(s, depth+1)
		}
		p.printIndent(depth)
		p.print("}")
	}
	p.print("\n")
}

func (p *printer) printTry(d *ir.STry, depth int) {
	p.print("try ")
	p.print("{\n")
	for _, s := range d.Body {
		p.printStmt(s, depth+1)
	}
	p.printIndent(depth)
	p.print("}")
	if d.Catch != nil {
		p.print(" catch (")
		p.print(d.Catch.Param)
		p.print(") {\n")
		for _, s := range d.Catch.Body {
			p.printStmt(s, depth+1)
		}
		p.printIndent(depth)
		p.print("}")
	}
	if d.Finally != nil {
		p.print(" finally {\n")
		for _, s := range d.Finally {
			p.printStmt(s, depth+1)
		}
		p.printIndent(depth)
		p.print("}")
	}
	p.print("\n")
}

// printClassDecl renders fields as constructor-body assignments, since
// HQL's class form carries no separate "class field declaration" IR node
// distinct from plain assignment (ClassField.Value is always known at
// construction time, never a deferred accessor).
func (p *printer) printClassDecl(d *ir.SClassDecl, depth int) {
	p.print("class ")
	p.print(d.Name)
	if d.SuperClass != nil {
		p.print(" extends ")
		p.printExpr(*d.SuperClass)
	}
	p.print(" {\n")
	if len(d.Fields) > 0 {
		p.printIndent(depth + 1)
		p.print("constructor() {\n")
		if d.SuperClass != nil {
			p.printIndent(depth + 2)
			p.print("super();\n")
		}
		for _, f := range d.Fields {
			p.printIndent(depth + 2)
			p.print("this.")
			p.print(f.Name)
			p.print(" = ")
			if f.Value != nil {
				p.printExpr(*f.Value)
			} else {
				p.print("undefined")
			}
			p.print(";\n")
		}
		p.printIndent(depth + 1)
		p.print("}\n")
	}
	for _, m := range d.Methods {
		p.printIndent(depth + 1)
		if m.Static {
			p.print("static ")
		}
		if m.Fn.Async {
			p.print("async ")
		}
		p.print(m.Name)
		p.print("(")
		p.printParams(m.Fn.Params)
		p.print(") {\n")
		for _, s := range m.Fn.Body {
			p.printStmt(s, depth+2)
		}
		p.printIndent(depth + 1)
		p.print("}\n")
	}
	p.printIndent(depth)
	p.print("}\n")
}

// printEnumDecl follows spec.md §4.D's enum lowering: a bare enum (no case
// carries associated values) becomes a frozen label/value map; an enum
// with at least one case carrying associated values becomes a class whose
// instances carry a `type` tag, a `values` map, and an `is(tag)`
// predicate, with a static factory method per case.
func (p *printer) printEnumDecl(d *ir.SEnumDecl, depth int) {
	hasAssoc := false
	for _, c := range d.Cases {
		if len(c.AssocParams) > 0 {
			hasAssoc = true
			break
		}
	}
	if !hasAssoc {
		p.print("const ")
		p.print(d.Name)
		p.print(" = Object.freeze({")
		for i, c := range d.Cases {
			if i > 0 {
				p.print(", ")
			}
			p.print(propertyKey(c.Name))
			p.print(": ")
			if c.RawValue != nil {
				p.printExpr(*c.RawValue)
			} else {
				p.print(string(helpers.QuoteSingle(c.Name, p.asciiOnly)))
			}
		}
		p.print("});\n")
		return
	}

	p.print("class ")
	p.print(d.Name)
	p.print(" {\n")
	p.printIndent(depth + 1)
	p.print("constructor(type, values) {\n")
	p.printIndent(depth + 2)
	p.print("this.type = type;\n")
	p.printIndent(depth + 2)
	p.print("this.values = values;\n")
	p.printIndent(depth + 1)
	p.print("}\n")
	p.printIndent(depth + 1)
	p.print("is(tag) { return this.type === tag; }\n")
	for _, c := range d.Cases {
		p.printIndent(depth + 1)
		p.print("static ")
		p.print(c.Name)
		p.print("(")
		for i, param := range c.AssocParams {
			if i > 0 {
				p.print(", ")
			}
			p.print(param)
		}
		p.print(") { return new ")
		p.print(d.Name)
		p.print("(")
		p.print(string(helpers.QuoteSingle(c.Name, p.asciiOnly)))
		p.print(", {")
		for i, param := range c.AssocParams {
			if i > 0 {
				p.print(", ")
			}
			p.print(param)
		}
		p.print("}); }\n")
	}
	p.printIndent(depth)
	p.print("}\n")
}

func (p *printer) printImport(d *ir.SImport) {
	if !d.IsNamespace && !d.HasDefault && len(d.Specifiers) == 0 {
		p.print("import ")
		p.print(string(helpers.QuoteSingle(d.ModulePath, p.asciiOnly)))
		p.print(";\n")
		return
	}
	p.print("import ")
	switch {
	case d.IsNamespace:
		p.print("* as ")
		p.print(d.NamespaceName)
	case len(d.Specifiers) == 0 && d.HasDefault:
		p.print(d.DefaultLocal)
	default:
		if d.HasDefault {
			p.print(d.DefaultLocal)
			p.print(", ")
		}
		p.print("{ ")
		for i, spec := range d.Specifiers {
			if i > 0 {
				p.print(", ")
			}
			p.print(spec.Name)
			if spec.LocalName != "" && spec.LocalName != spec.Name {
				p.print(" as ")
				p.print(spec.LocalName)
			}
		}
		p.print(" }")
	}
	p.print(" from ")
	p.print(string(helpers.QuoteSingle(d.ModulePath, p.asciiOnly)))
	p.print(";\n")
}

func (p *printer) printExportNamed(d *ir.SExportNamed) {
	p.print("export { ")
	for i, spec := range d.Specifiers {
		if i > 0 {
			p.print(", ")
		}
		p.print(spec.LocalName)
		if spec.Name != "" && spec.Name != spec.LocalName {
			p.print(" as ")
			p.print(spec.Name)
		}
	}
	p.print(" }")
	if d.FromModule != "" {
		p.print(" from ")
		p.print(string(helpers.QuoteSingle(d.FromModule, p.asciiOnly)))
	}
	p.print(";\n")
}
