package lower

import (
	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/ir"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// nodeToPattern converts a reader-produced binding form into ast.Pattern.
// Array patterns are written `[a b & rest]`, which the reader desugars to
// `(vector a b & rest)`; object patterns are written `{:key local & rest}`,
// desugared to `(hash-map :key local & rest)`. A bare `_` element is a skip
// hole. A default value is written `(opt name default)` rather than
// overloading the 2-element vector shape, which would otherwise be
// ambiguous with a nested 2-element array sub-pattern (documented as an
// Open Question decision).
func nodeToPattern(node ast.Node) (*ast.Pattern, error) {
	switch d := node.Data.(type) {
	case *ast.Symbol:
		return &ast.Pattern{Loc: node.Loc, Data: &ast.IdentifierPattern{Name: d.Name}}, nil
	case *ast.List:
		head, _ := ast.HeadSymbol(node)
		switch head {
		case "vector":
			return arrayPatternFrom(d.Items[1:], node.Loc)
		case "hash-map", "hashmap":
			return objectPatternFrom(d.Items[1:], node.Loc)
		case "opt":
			if len(d.Items) != 3 {
				return nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "opt", Expected: "(opt name default)", Actual: itoa(len(d.Items) - 1)}
			}
			sym, ok := d.Items[1].Data.(*ast.Symbol)
			if !ok {
				return nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "opt", Expected: "a symbol name", Actual: "other"}
			}
			def := d.Items[2]
			return &ast.Pattern{Loc: node.Loc, Data: &ast.IdentifierPattern{Name: sym.Name, Default: &def}}, nil
		}
	}
	return nil, &logger.ValidationError{Range: logger.Range{Loc: node.Loc}, Form: "binding pattern", Expected: "a symbol, [array], {object}, or (opt name default)", Actual: "other"}
}

func arrayPatternFrom(items []ast.Node, loc logger.Loc) (*ast.Pattern, error) {
	var elements []ast.ArrayElement
	var rest *ast.Pattern
	for i := 0; i < len(items); i++ {
		if ast.IsSymbolNamed(items[i], "&") {
			if i+1 >= len(items) {
				return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "array pattern", Expected: "a name after '&'", Actual: "none"}
			}
			sym, ok := items[i+1].Data.(*ast.Symbol)
			if !ok {
				return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "array pattern", Expected: "a symbol after '&'", Actual: "other"}
			}
			rest = &ast.Pattern{Loc: items[i+1].Loc, Data: &ast.RestPattern{Name: sym.Name}}
			break
		}
		if ast.IsSymbolNamed(items[i], "_") {
			elements = append(elements, ast.ArrayElement{IsSkip: true})
			continue
		}
		sub, err := nodeToPattern(items[i])
		if err != nil {
			return nil, err
		}
		elements = append(elements, ast.ArrayElement{Pattern: sub})
	}
	return &ast.Pattern{Loc: loc, Data: &ast.ArrayPattern{Elements: elements, Rest: rest}}, nil
}

func objectPatternFrom(items []ast.Node, loc logger.Loc) (*ast.Pattern, error) {
	var fields []ast.ObjectField
	var rest *ast.Pattern
	for i := 0; i+1 < len(items); i += 2 {
		if ast.IsSymbolNamed(items[i], "&") {
			sym, ok := items[i+1].Data.(*ast.Symbol)
			if !ok {
				return nil, &logger.ValidationError{Range: logger.Range{Loc: loc}, Form: "object pattern", Expected: "a symbol after '&'", Actual: "other"}
			}
			rest = &ast.Pattern{Loc: items[i+1].Loc, Data: &ast.RestPattern{Name: sym.Name}}
			continue
		}
		keySym, ok := items[i].Data.(*ast.Symbol)
		if !ok || !keySym.IsKeyword {
			return nil, &logger.ValidationError{Range: logger.Range{Loc: items[i].Loc}, Form: "object pattern", Expected: "a :keyword key", Actual: "other"}
		}
		key := keySym.Name[1:]
		switch v := items[i+1].Data.(type) {
		case *ast.Symbol:
			fields = append(fields, ast.ObjectField{Key: key, LocalName: v.Name})
		case *ast.List:
			if head, _ := ast.HeadSymbol(items[i+1]); head == "opt" {
				pat, err := nodeToPattern(items[i+1])
				if err != nil {
					return nil, err
				}
				ident := pat.Data.(*ast.IdentifierPattern)
				fields = append(fields, ast.ObjectField{Key: key, LocalName: ident.Name, Default: ident.Default})
				continue
			}
			sub, err := nodeToPattern(items[i+1])
			if err != nil {
				return nil, err
			}
			fields = append(fields, ast.ObjectField{Key: key, Pattern: sub})
		default:
			return nil, &logger.ValidationError{Range: logger.Range{Loc: items[i+1].Loc}, Form: "object pattern", Expected: "a local name or nested pattern", Actual: "other"}
		}
	}
	return &ast.Pattern{Loc: loc, Data: &ast.ObjectPattern{Fields: fields, Rest: rest}}, nil
}

func identExpr(name string, loc logger.Loc) ir.Expr {
	return ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: name}}
}

func numberExpr(n int, loc logger.Loc) ir.Expr {
	return ir.Expr{Loc: loc, Data: &ir.ENumber{Value: float64(n)}}
}

// destructurePattern lowers a binding pattern against an already-lowered
// source expression into a sequence of declarations (4.D, "pattern
// destructuring"), introducing a fresh temporary for each compound
// sub-pattern so it is only evaluated out of `source` once.
func (l *Lowerer) destructurePattern(kind ir.VarKind, pat *ast.Pattern, source ir.Expr, loc logger.Loc) ([]ir.Stmt, error) {
	switch d := pat.Data.(type) {
	case *ast.IdentifierPattern:
		value := source
		if d.Default != nil {
			def, err := l.lowerExpr(*d.Default)
			if err != nil {
				return nil, err
			}
			value = withDefault(source, def, loc)
		}
		symbols.RegisterVariable(l.scope, d.Name, d.Type, kind == ir.VarConst, loc)
		return []ir.Stmt{{Loc: loc, Data: &ir.SVarDecl{Kind: kind, Name: d.Name, Value: value}}}, nil

	case *ast.ArrayPattern:
		var stmts []ir.Stmt
		for i, el := range d.Elements {
			elemSource := ir.Expr{Loc: loc, Data: &ir.EMember{Target: source, Computed: true, Index: ptr(numberExpr(i, loc))}}
			if el.IsSkip {
				continue
			}
			sub, err := l.destructureViaTemp(kind, el.Pattern, elemSource, loc)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, sub...)
		}
		if d.Rest != nil {
			name := d.Rest.Data.(*ast.RestPattern).Name
			sliceCall := ir.Expr{Loc: loc, Data: &ir.ECallMember{Target: source, Property: "slice", Args: []ir.Expr{numberExpr(len(d.Elements), loc)}}}
			symbols.RegisterVariable(l.scope, name, "", kind == ir.VarConst, loc)
			stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: kind, Name: name, Value: sliceCall}})
		}
		return stmts, nil

	case *ast.ObjectPattern:
		var stmts []ir.Stmt
		var takenKeys []ir.Expr
		for _, f := range d.Fields {
			takenKeys = append(takenKeys, ir.Expr{Loc: loc, Data: &ir.EString{Value: f.Key}})
			fieldSource := ir.Expr{Loc: loc, Data: &ir.EMember{Target: source, Property: f.Key}}
			if f.Pattern != nil {
				sub, err := l.destructureViaTemp(kind, f.Pattern, fieldSource, loc)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, sub...)
				continue
			}
			value := fieldSource
			if f.Default != nil {
				def, err := l.lowerExpr(*f.Default)
				if err != nil {
					return nil, err
				}
				value = withDefault(fieldSource, def, loc)
			}
			symbols.RegisterVariable(l.scope, f.LocalName, "", kind == ir.VarConst, loc)
			stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: kind, Name: f.LocalName, Value: value}})
		}
		if d.Rest != nil {
			name := d.Rest.Data.(*ast.RestPattern).Name
			omitCall := ir.Expr{Loc: loc, Data: &ir.ECall{
				Target: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "__hql_omit"}},
				Args:   []ir.Expr{source, {Loc: loc, Data: &ir.EArray{Items: takenKeys}}},
			}}
			symbols.RegisterVariable(l.scope, name, "", kind == ir.VarConst, loc)
			stmts = append(stmts, ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: kind, Name: name, Value: omitCall}})
		}
		return stmts, nil

	case *ast.RestPattern:
		symbols.RegisterVariable(l.scope, d.Name, "", kind == ir.VarConst, loc)
		return []ir.Stmt{{Loc: loc, Data: &ir.SVarDecl{Kind: kind, Name: d.Name, Value: source}}}, nil
	}
	return nil, &logger.TransformError{Range: logger.Range{Loc: loc}, Cause: "unknown pattern variant"}
}

// destructureViaTemp introduces a temporary for compound sub-patterns so
// `source` is only read once, per the temp-naming rule in 4.D.
func (l *Lowerer) destructureViaTemp(kind ir.VarKind, pat *ast.Pattern, source ir.Expr, loc logger.Loc) ([]ir.Stmt, error) {
	if !pat.IsCompound() {
		return l.destructurePattern(kind, pat, source, loc)
	}
	tmp := l.freshTemp("destr")
	decl := ir.Stmt{Loc: loc, Data: &ir.SVarDecl{Kind: ir.VarConst, Name: tmp, Value: source}}
	rest, err := l.destructurePattern(kind, pat, identExpr(tmp, loc), loc)
	if err != nil {
		return nil, err
	}
	return append([]ir.Stmt{decl}, rest...), nil
}

func withDefault(value, def ir.Expr, loc logger.Loc) ir.Expr {
	test := ir.Expr{Loc: loc, Data: &ir.EBinary{Left: value, Right: ir.Expr{Loc: loc, Data: &ir.EIdentifier{Name: "undefined", IsJS: true}}, Op: "==="}}
	return ir.Expr{Loc: loc, Data: &ir.EConditional{Test: test, Yes: def, No: value}}
}

func ptr(e ir.Expr) *ir.Expr { return &e }
