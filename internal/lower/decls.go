package lower

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

func (l *Lowerer) lowerDef(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	return l.lowerVarForm(ir.VarConst, list.Items[1:], loc)
}

func (l *Lowerer) lowerLet(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	return l.lowerVarForm(ir.VarLet, list.Items[1:], loc)
}

func (l *Lowerer) lowerVar(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	return l.lowerVarForm(ir.VarVar, list.Items[1:], loc)
}

// lowerVarForm lowers `(const|let|var binding value)`, where binding is
// either a plain symbol or a destructuring pattern (4.D, "pattern
// destructuring").
func (l *Lowerer) lowerVarForm(kind ir.VarKind, items []ast.Node, loc logger.Loc) ([]ir.Stmt, error) {
	if len(items) != 2 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "binding", Expected: "(binding target value)", Actual: itoa(len(items))}
	}
	value, err := l.lowerExpr(items[1])
	if err != nil {
		return nil, err
	}
	pat, err := nodeToPattern(items[0])
	if err != nil {
		return nil, err
	}
	return l.destructureViaTemp(kind, pat, value, loc)
}

func varKindFor(head string) ir.VarKind {
	if head == "var" {
		return ir.VarVar
	}
	if head == "let" {
		return ir.VarLet
	}
	return ir.VarConst
}

func (l *Lowerer) lowerReturn(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	var valuePtr *ir.Expr
	if len(list.Items) >= 2 {
		v, err := l.lowerExpr(list.Items[1])
		if err != nil {
			return nil, err
		}
		valuePtr = &v
	}
	if l.doDepth == 0 {
		return []ir.Stmt{{Loc: loc, Data: &ir.SReturn{Value: valuePtr}}}, nil
	}
	value := ir.Expr{Loc: loc, Data: &ir.ENull{}}
	if valuePtr != nil {
		value = *valuePtr
	}
	sentinel := ir.Expr{Loc: loc, Data: &ir.EObject{Properties: []ir.ObjectProperty{
		{Key: hqlReturnSentinelKey, Value: ir.Expr{Loc: loc, Data: &ir.EBoolean{Value: true}}},
		{Key: "value", Value: value},
	}}}
	return []ir.Stmt{{Loc: loc, Data: &ir.SThrow{Value: sentinel}}}, nil
}

func (l *Lowerer) lowerThrow(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	if len(list.Items) != 2 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "throw", Expected: "1 argument", Actual: itoa(len(list.Items) - 1)}
	}
	value, err := l.lowerExpr(list.Items[1])
	if err != nil {
		return nil, err
	}
	return []ir.Stmt{{Loc: loc, Data: &ir.SThrow{Value: value}}}, nil
}

// lowerClass lowers `(class Name (extends Super) (field f [default]) (method
// m [params] body...) (static-method m [params] body...) …)`. Inside method
// bodies `self` resolves to the receiver (4.D, "class lowering").
func (l *Lowerer) lowerClass(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	items := list.Items[1:]
	if len(items) < 1 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "class", Expected: "a name", Actual: "none"}
	}
	nameSym, ok := items[0].Data.(*ast.Symbol)
	if !ok {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "class", Expected: "a symbol name", Actual: "other"}
	}

	decl := &ir.SClassDecl{Name: nameSym.Name}
	var fieldNames, methodNames []string

	child := l.scope.CreateChildScope(nameSym.Name, symbols.ScopeClass)
	prev := l.scope
	l.scope = child
	prevSelf := l.inClassMethod

	for _, member := range items[1:] {
		memberList, ok := member.Data.(*ast.List)
		if !ok || len(memberList.Items) < 1 {
			l.scope = prev
			l.inClassMethod = prevSelf
			return nil, &logger.ValidationError{Range: logger.Range{Loc: member.Loc}, Form: "class member", Expected: "a list form", Actual: "other"}
		}
		head, _ := ast.HeadSymbol(member)
		switch head {
		case "extends":
			super, err := l.lowerExpr(memberList.Items[1])
			if err != nil {
				l.scope = prev
				l.inClassMethod = prevSelf
				return nil, err
			}
			decl.SuperClass = &super
		case "field":
			fieldSym, ok := memberList.Items[1].Data.(*ast.Symbol)
			if !ok {
				l.scope = prev
				l.inClassMethod = prevSelf
				return nil, &logger.ValidationError{Range: logger.Range{Loc: member.Loc}, Form: "field", Expected: "a symbol name", Actual: "other"}
			}
			field := ir.ClassField{Name: fieldSym.Name}
			if len(memberList.Items) >= 3 {
				v, err := l.lowerExpr(memberList.Items[2])
				if err != nil {
					l.scope = prev
					l.inClassMethod = prevSelf
					return nil, err
				}
				field.Value = &v
			}
			decl.Fields = append(decl.Fields, field)
			fieldNames = append(fieldNames, fieldSym.Name)
		case "method", "static-method":
			m, err := l.lowerClassMethod(memberList, member.Loc, head == "static-method")
			if err != nil {
				l.scope = prev
				l.inClassMethod = prevSelf
				return nil, err
			}
			decl.Methods = append(decl.Methods, m)
			methodNames = append(methodNames, m.Name)
		default:
			l.scope = prev
			l.inClassMethod = prevSelf
			return nil, &logger.ValidationError{Range: logger.Range{Loc: member.Loc}, Form: "class member", Expected: "extends, field, method, or static-method", Actual: head}
		}
	}

	l.scope = prev
	l.inClassMethod = prevSelf
	symbols.RegisterClass(l.scope, nameSym.Name, fieldNames, methodNames, loc)
	return []ir.Stmt{{Loc: loc, Data: decl}}, nil
}

func (l *Lowerer) lowerClassMethod(list *ast.List, loc logger.Loc, static bool) (ir.ClassMethod, error) {
	if len(list.Items) < 3 {
		return ir.ClassMethod{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "method", Expected: "(method name [params] body...)", Actual: "too few forms"}
	}
	nameSym, ok := list.Items[1].Data.(*ast.Symbol)
	if !ok {
		return ir.ClassMethod{}, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "method", Expected: "a symbol name", Actual: "other"}
	}

	methodScope := l.scope.CreateChildScope(l.freshTemp("method-scope"), symbols.ScopeFunction)
	prev := l.scope
	l.scope = methodScope
	prevSelf := l.inClassMethod
	l.inClassMethod = !static

	params, destructures, err := l.parseParamList(list.Items[2])
	if err != nil {
		l.scope = prev
		l.inClassMethod = prevSelf
		return ir.ClassMethod{}, err
	}
	prevDepth := l.doDepth
	l.doDepth = 0
	body, err := l.lowerBody(list.Items[3:])
	l.doDepth = prevDepth
	if err != nil {
		l.scope = prev
		l.inClassMethod = prevSelf
		return ir.ClassMethod{}, err
	}
	body, err = l.prependParamDestructures(destructures, body, loc)
	l.scope = prev
	l.inClassMethod = prevSelf
	if err != nil {
		return ir.ClassMethod{}, err
	}

	return ir.ClassMethod{
		Name:   nameSym.Name,
		Fn:     ir.EFunction{Params: params, Body: body, Async: bodyNeedsAsync(list.Items[3:])},
		Static: static,
	}, nil
}

// lowerEnum lowers `(enum Name (case A) (case B "raw") …)` to a bare enum,
// or `(enum Name (case Point x y) …)` (associated values) to a
// constructor-shaped declaration (4.D, "enum lowering"). A case is
// associated-value when its extra forms are bare symbols (parameter names)
// rather than a single literal.
func (l *Lowerer) lowerEnum(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	items := list.Items[1:]
	if len(items) < 1 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "enum", Expected: "a name", Actual: "none"}
	}
	nameSym, ok := items[0].Data.(*ast.Symbol)
	if !ok {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "enum", Expected: "a symbol name", Actual: "other"}
	}

	var cases []ir.EnumCase
	var caseNames []string
	for _, c := range items[1:] {
		cl, ok := c.Data.(*ast.List)
		if !ok || !ast.IsSymbolNamed(safeHead(cl), "case") || len(cl.Items) < 2 {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: c.Loc}, Form: "enum case", Expected: "(case Name …)", Actual: "other"}
		}
		caseSym, ok := cl.Items[1].Data.(*ast.Symbol)
		if !ok {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: c.Loc}, Form: "enum case", Expected: "a symbol name", Actual: "other"}
		}
		extra := cl.Items[2:]
		ec := ir.EnumCase{Name: caseSym.Name}
		switch {
		case len(extra) == 0:
			// bare label case
		case len(extra) == 1:
			if _, isLit := extra[0].Data.(*ast.Literal); isLit {
				v, err := l.lowerExpr(extra[0])
				if err != nil {
					return nil, err
				}
				ec.RawValue = &v
				break
			}
			fallthrough
		default:
			for _, e := range extra {
				sym, ok := e.Data.(*ast.Symbol)
				if !ok {
					return nil, &logger.ValidationError{Range: logger.Range{Loc: e.Loc}, Form: "enum case", Expected: "associated parameter names", Actual: "other"}
				}
				ec.AssocParams = append(ec.AssocParams, sym.Name)
			}
		}
		cases = append(cases, ec)
		caseNames = append(caseNames, caseSym.Name)
	}

	symbols.RegisterEnum(l.scope, nameSym.Name, caseNames, loc)
	return []ir.Stmt{{Loc: loc, Data: &ir.SEnumDecl{Name: nameSym.Name, Cases: cases}}}, nil
}

// lowerImport lowers three shapes: `(import [a b] "mod")` named, `(import *
// ns "mod")` namespace, and `(import default d "mod")` default import.
func (l *Lowerer) lowerImport(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	items := list.Items[1:]
	if len(items) < 2 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "import", Expected: "a binding form and a module path", Actual: "too few forms"}
	}

	if ast.IsSymbolNamed(items[0], "*") {
		ns, ok := items[1].Data.(*ast.Symbol)
		if !ok || len(items) != 3 {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "import *", Expected: "(import * name \"module\")", Actual: "other"}
		}
		path, err := stringArg(items[2])
		if err != nil {
			return nil, err
		}
		symbols.RegisterImport(l.scope, ns.Name, path, loc)
		return []ir.Stmt{{Loc: loc, Data: &ir.SImport{ModulePath: path, IsNamespace: true, NamespaceName: ns.Name}}}, nil
	}

	if ast.IsSymbolNamed(items[0], "default") {
		local, ok := items[1].Data.(*ast.Symbol)
		if !ok || len(items) != 3 {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "import default", Expected: "(import default name \"module\")", Actual: "other"}
		}
		path, err := stringArg(items[2])
		if err != nil {
			return nil, err
		}
		symbols.RegisterImport(l.scope, local.Name, path, loc)
		return []ir.Stmt{{Loc: loc, Data: &ir.SImport{ModulePath: path, HasDefault: true, DefaultLocal: local.Name}}}, nil
	}

	specList, ok := items[0].Data.(*ast.List)
	if !ok || !ast.IsSymbolNamed(safeHead(specList), "vector") {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "import", Expected: "a [vector] of names", Actual: "other"}
	}
	path, err := stringArg(items[1])
	if err != nil {
		return nil, err
	}
	var specs []ir.ImportSpecifier
	for _, it := range specList.Items[1:] {
		sym, ok := it.Data.(*ast.Symbol)
		if !ok {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: it.Loc}, Form: "import", Expected: "a symbol", Actual: "other"}
		}
		specs = append(specs, ir.ImportSpecifier{Name: sym.Name, LocalName: sym.Name})
		symbols.RegisterImport(l.scope, sym.Name, path, loc)
	}
	return []ir.Stmt{{Loc: loc, Data: &ir.SImport{ModulePath: path, Specifiers: specs}}}, nil
}

// lowerExport lowers `(export default expr)`, `(export def|const|let|var
// binding value)` (wrapping the declaration), and `(export [a b] ["mod"])`
// (named, or a re-export when a module path follows).
func (l *Lowerer) lowerExport(list *ast.List, loc logger.Loc) ([]ir.Stmt, error) {
	items := list.Items[1:]
	if len(items) == 0 {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "export", Expected: "a binding form", Actual: "none"}
	}

	if ast.IsSymbolNamed(items[0], "default") {
		if len(items) != 2 {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "export default", Expected: "1 value", Actual: itoa(len(items) - 1)}
		}
		v, err := l.lowerExpr(items[1])
		if err != nil {
			return nil, err
		}
		return []ir.Stmt{{Loc: loc, Data: &ir.SExportDefault{Value: v}}}, nil
	}

	if sym, ok := items[0].Data.(*ast.Symbol); ok {
		switch sym.Name {
		case "def", "const", "let", "var":
			stmts, err := l.lowerVarForm(varKindFor(sym.Name), items[1:], loc)
			if err != nil {
				return nil, err
			}
			var out []ir.Stmt
			for _, st := range stmts {
				if vd, ok := st.Data.(*ir.SVarDecl); ok {
					symbols.RegisterExport(l.scope, vd.Name, loc)
					out = append(out, ir.Stmt{Loc: loc, Data: &ir.SExportVar{Decl: *vd}})
					continue
				}
				out = append(out, st)
			}
			return out, nil
		}
	}

	specList, ok := items[0].Data.(*ast.List)
	if !ok || !ast.IsSymbolNamed(safeHead(specList), "vector") {
		return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "export", Expected: "a [vector] of names", Actual: "other"}
	}
	var specs []ir.ExportSpecifier
	for _, it := range specList.Items[1:] {
		sym, ok := it.Data.(*ast.Symbol)
		if !ok {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: it.Loc}, Form: "export", Expected: "a symbol", Actual: "other"}
		}
		specs = append(specs, ir.ExportSpecifier{Name: sym.Name, LocalName: sym.Name})
		symbols.RegisterExport(l.scope, sym.Name, loc)
	}
	fromModule := ""
	if len(items) >= 2 {
		path, err := stringArg(items[1])
		if err == nil {
			fromModule = path
		}
	}
	return []ir.Stmt{{Loc: loc, Data: &ir.SExportNamed{Specifiers: specs, FromModule: fromModule}}}, nil
}

func stringArg(node ast.Node) (string, error) {
	lit, ok := node.Data.(*ast.Literal)
	if !ok || lit.Kind != ast.LiteralString {
		return "", &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "module path", Expected: "a string literal", Actual: "other"}
	}
	return lit.Str, nil
}
