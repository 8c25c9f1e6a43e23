// Package ir defines the tagged tree the lowerer produces (4.D) and the
// emitter consumes (4.E). The node set mirrors JavaScript's expression and
// statement shapes plus two HQL-specific synthetic nodes (EInteropIIFE,
// EJSMethodAccess), using the same {Data, Loc} wrapper and marker-method
// variant discipline as js_ast.Expr/js_ast.Stmt.
package ir

import "github.com/hlvm-dev/hqlc/internal/logger"

// Expr wraps any expression variant with its source position. A zero Loc
// means synthetic (introduced by a lowering rewrite, not present in source).
type Expr struct {
	Data E
	Loc  logger.Loc
}

// E is never invoked; its purpose is a closed expression variant set.
type E interface{ isExpr() }

func (*EString) isExpr()           {}
func (*ENumber) isExpr()           {}
func (*EBoolean) isExpr()          {}
func (*ENull) isExpr()             {}
func (*EIdentifier) isExpr()       {}
func (*EMember) isExpr()           {}
func (*ECall) isExpr()             {}
func (*ECallMember) isExpr()       {}
func (*ENew) isExpr()              {}
func (*EBinary) isExpr()           {}
func (*EUnary) isExpr()            {}
func (*EConditional) isExpr()      {}
func (*EArray) isExpr()            {}
func (*EObject) isExpr()           {}
func (*EFunction) isExpr()         {}
func (*EAssign) isExpr()           {}
func (*EAwait) isExpr()            {}
func (*ETemplate) isExpr()         {}
func (*EInteropIIFE) isExpr()      {}
func (*EJSMethodAccess) isExpr()   {}

type EString struct{ Value string }

type ENumber struct{ Value float64 }

type EBoolean struct{ Value bool }

type ENull struct{}

// EIdentifier is a bare name reference. IsJS suppresses any target-language
// name mangling the emitter would otherwise apply (4.E).
type EIdentifier struct {
	Name string
	IsJS bool
}

// EMember is `target.property` (non-computed) or `target[property]`
// (computed, property is an arbitrary Expr rather than a bare name).
type EMember struct {
	Target   Expr
	Property string
	Computed bool
	Index    *Expr // set when Computed is true; Property is unused then
}

// ECall is a plain function call `target(args...)`.
type ECall struct {
	Target Expr
	Args   []Expr
}

// ECallMember fuses a member access with an immediate call,
// `target.property(args...)`, the shape method-call lowering produces.
type ECallMember struct {
	Target   Expr
	Property string
	Args     []Expr
}

type ENew struct {
	Target Expr
	Args   []Expr
}

type EBinary struct {
	Left  Expr
	Right Expr
	Op    string
}

type EUnary struct {
	Op    string
	Value Expr
}

type EConditional struct {
	Test Expr
	Yes  Expr
	No   Expr
}

type EArray struct {
	Items []Expr
}

// ObjectProperty is one `key: value` pair of an object literal. Computed
// means Key itself is an expression rather than a bare identifier/string.
type ObjectProperty struct {
	Key      string
	KeyExpr  *Expr
	Computed bool
	Value    Expr
}

type EObject struct {
	Properties []ObjectProperty
}

// Param is one function parameter. Rest marks a trailing `...name` spread.
type Param struct {
	Name    string
	Rest    bool
	Default *Expr
}

// EFunction is a function expression. Async is honored by the emitter (4.E);
// the lowerer sets it when async detection (4.D) finds an `await` reachable
// without crossing a nested function boundary.
type EFunction struct {
	Name   string // empty for an anonymous function expression
	Params []Param
	Body   []Stmt
	Async  bool
}

type EAssign struct {
	Target Expr
	Value  Expr
}

type EAwait struct {
	Value Expr
}

// ETemplate is a template-literal expression: len(Quasis) == len(Exprs)+1,
// interleaving literal text with embedded expressions.
type ETemplate struct {
	Quasis []string
	Exprs  []Expr
}

// EInteropIIFE defers a dotted property access (`obj.prop` in symbol
// position) until the surrounding form decides whether it is a plain value
// read or the callee of a call, letting call-site lowering still rewrite it
// (4.D, "dotted symbols").
type EInteropIIFE struct {
	Target   Expr
	Property string
}

// EJSMethodAccess pairs an object with a method name without yet committing
// to a call; method-call lowering later rewrites the pair into ECallMember
// when it is applied to arguments.
type EJSMethodAccess struct {
	Object Expr
	Method string
}

// Stmt wraps any statement variant with its source position.
type Stmt struct {
	Data S
	Loc  logger.Loc
}

// S is never invoked; its purpose is a closed statement variant set.
type S interface{ isStmt() }

func (*SVarDecl) isStmt()       {}
func (*SFunctionDecl) isStmt()  {}
func (*SClassDecl) isStmt()     {}
func (*SEnumDecl) isStmt()      {}
func (*SReturn) isStmt()        {}
func (*SThrow) isStmt()         {}
func (*SBlock) isStmt()         {}
func (*SExpr) isStmt()          {}
func (*SIf) isStmt()            {}
func (*STry) isStmt()           {}
func (*SWhile) isStmt()         {}
func (*SBreak) isStmt()         {}
func (*SContinue) isStmt()      {}
func (*SImport) isStmt()        {}
func (*SExportNamed) isStmt()   {}
func (*SExportVar) isStmt()     {}
func (*SExportDefault) isStmt() {}

type VarKind uint8

const (
	VarConst VarKind = iota
	VarLet
	VarVar
)

// SVarDecl is one declarator; the lowerer emits one per temporary binding a
// compound pattern introduces (4.D, "pattern destructuring").
type SVarDecl struct {
	Kind  VarKind
	Name  string
	Value Expr
}

// SFunctionDecl covers both the regular function form and HQL's "fn"
// variant (IsFn distinguishes them for emitters that render them
// differently; both carry the same shape otherwise).
type SFunctionDecl struct {
	Name   string
	Params []Param
	Body   []Stmt
	Async  bool
	IsFn   bool
}

type ClassField struct {
	Name  string
	Value *Expr
}

type ClassMethod struct {
	Name   string
	Fn     EFunction
	Static bool
}

type SClassDecl struct {
	Name       string
	SuperClass *Expr
	Fields     []ClassField
	Methods    []ClassMethod
}

// EnumCase is one case of an enum declaration. RawValue is set for a bare
// enum whose case carries an explicit literal value; AssocParams is set
// for an enum whose case carries associated values (4.D, "enum lowering").
type EnumCase struct {
	Name        string
	RawValue    *Expr
	AssocParams []string
}

type SEnumDecl struct {
	Name  string
	Cases []EnumCase
}

type SReturn struct {
	Value *Expr
}

type SThrow struct {
	Value Expr
}

type SBlock struct {
	Body []Stmt
}

// SExpr wraps an expression at statement position (§3's invariant that a
// program body contains only statements).
type SExpr struct {
	Value Expr
}

type SIf struct {
	Test Expr
	Yes  []Stmt
	No   []Stmt
}

// CatchClause holds a typed param and a finalizer lives alongside it on
// STry (4.D, "try/catch/finally").
type CatchClause struct {
	Param     string
	ParamType string
	Body      []Stmt
}

type STry struct {
	Body    []Stmt
	Catch   *CatchClause
	Finally []Stmt
}

// SWhile is the target of loop/recur lowering: `loop` compiles to
// `while (true) { ... }` over a block whose `recur` sites reassign the
// loop bindings and `continue` (4.D, "loop/recur").
type SWhile struct {
	Test Expr
	Body []Stmt
}

type SBreak struct{}

type SContinue struct{}

type ImportSpecifier struct {
	Name      string
	LocalName string
}

type SImport struct {
	ModulePath      string
	Specifiers      []ImportSpecifier
	IsNamespace     bool
	NamespaceName   string
	DefaultLocal    string
	HasDefault      bool
}

type ExportSpecifier struct {
	Name      string
	LocalName string
}

type SExportNamed struct {
	Specifiers []ExportSpecifier
	FromModule string // empty unless this is a re-export
}

type SExportVar struct {
	Decl SVarDecl
}

type SExportDefault struct {
	Value Expr
}

// Program is the top-level result of lowering (4.D's `IRProgram`).
type Program struct {
	Body []Stmt
}
