package symbols

import "github.com/hlvm-dev/hqlc/internal/logger"

// The functions below are the canonical registration shapes 4.B requires:
// every producer (macro expander, lowerer, workspace scanner) calls one of
// these instead of constructing a Record literal by hand, so the field set
// a consumer sees never drifts between producers.

func RegisterBuiltin(s *Scope, name string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindBuiltin, Scope: s.kind, Location: &loc}
	s.Set(r)
	return r
}

func RegisterSpecialForm(s *Scope, name string) *Record {
	r := &Record{Name: name, Kind: KindSpecialForm, Scope: s.kind}
	s.Set(r)
	return r
}

func RegisterMacro(s *Scope, name string, params []string, restParam string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindMacro, Scope: s.kind, Params: params, Location: &loc}
	if restParam != "" {
		r.Params = append(append([]string{}, params...), "&"+restParam)
	}
	s.Set(r)
	return r
}

func RegisterVariable(s *Scope, name string, typ string, isConst bool, loc logger.Loc) *Record {
	kind := KindVariable
	if isConst {
		kind = KindConstant
	}
	r := &Record{Name: name, Kind: kind, Scope: s.kind, Type: typ, Location: &loc}
	s.Set(r)
	return r
}

func RegisterFunction(s *Scope, name string, params []string, returnType string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindFunction, Scope: s.kind, Params: params, ReturnType: returnType, Location: &loc}
	s.Set(r)
	return r
}

func RegisterClass(s *Scope, name string, fields, methods []string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindClass, Scope: s.kind, Fields: fields, Methods: methods, Location: &loc}
	s.Set(r)
	return r
}

func RegisterEnum(s *Scope, name string, cases []string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindEnum, Scope: s.kind, Cases: cases, Location: &loc}
	s.Set(r)
	return r
}

func RegisterEnumCase(s *Scope, enumName, caseName string, loc logger.Loc) *Record {
	r := &Record{Name: caseName, Kind: KindEnumCase, Scope: s.kind, Parent: enumName, Location: &loc}
	s.Set(r)
	return r
}

func RegisterTypeAlias(s *Scope, name string, aliasOf string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindAlias, Scope: s.kind, AliasOf: aliasOf, Location: &loc}
	s.Set(r)
	return r
}

func RegisterModule(s *Scope, name string, loc logger.Loc) *Record {
	r := &Record{Name: name, Kind: KindModule, Scope: s.kind, Location: &loc}
	s.Set(r)
	return r
}

func RegisterImport(s *Scope, localName, sourceModule string, loc logger.Loc) *Record {
	r := &Record{Name: localName, Kind: KindImport, Scope: s.kind, SourceModule: sourceModule, IsImported: true, Location: &loc}
	s.Set(r)
	return r
}

// RegisterExport marks an existing record exported in place (export
// doesn't introduce a new binding, it flags one) and also returns it so
// callers that export a not-yet-registered name can fall back to creating
// one.
func RegisterExport(s *Scope, name string, loc logger.Loc) *Record {
	if r, ok := s.Get(name); ok {
		r.IsExported = true
		return r
	}
	r := &Record{Name: name, Kind: KindExport, Scope: s.kind, IsExported: true, Location: &loc}
	s.Set(r)
	return r
}
