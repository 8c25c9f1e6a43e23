package reader

import (
	"strings"

	"github.com/hlvm-dev/hqlc/internal/ast"
	"github.com/hlvm-dev/hqlc/internal/logger"
)

// ReadResult implements 4.A's contract: a successful read produces a
// sequence of top-level forms with position metadata, or fails with one or
// more ParseErrors. On an unrecoverable error the reader records one error
// and stops reading further top-level forms from that point; it never
// aborts the whole document for an error recoverable at the token level.
// This is the typed-error convenience entry point used by the compiler
// pipeline, which wants a []*logger.ParseError rather than raw log
// messages.
func ReadResult(contents string, filePath string) ([]ast.Node, []*logger.ParseError) {
	var errs []*logger.ParseError
	forms := readInto(contents, filePath, logger.NewDeferLog(), &errs)
	return forms, errs
}

// Read is the log-sharing entry point: a caller that already owns a
// logger.Log for the whole compilation can use this instead of ReadResult
// so parse diagnostics land in that log. Nothing in the module calls it;
// the compiler and the LSP server go through ReadResult.
func Read(contents string, filePath string, log logger.Log) []ast.Node {
	var errs []*logger.ParseError
	return readInto(contents, filePath, log, &errs)
}

func readInto(contents string, filePath string, log logger.Log, errs *[]*logger.ParseError) []ast.Node {
	source := logger.Source{Contents: contents, PrettyPath: filePath}
	tokens := lex(source, log, errs)
	p := &parser{tokens: tokens, source: source, log: log, errs: errs}

	var forms []ast.Node
	for !p.atEOF() {
		form, ok := p.readForm()
		if !ok {
			break
		}
		forms = append(forms, form)
	}
	return forms
}

type parser struct {
	tokens []token
	pos    int
	source logger.Source
	log    logger.Log
	failed bool
	errs   *[]*logger.ParseError
}

func (p *parser) atEOF() bool {
	return p.failed || p.tokens[p.pos].kind == tEOF
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	t := p.tokens[p.pos]
	if t.kind != tEOF {
		p.pos++
	}
	return t
}

func (p *parser) fail(loc logger.Loc, msg string) {
	p.failed = true
	p.log.AddError(&p.source, loc, msg)
	*p.errs = append(*p.errs, &logger.ParseError{Range: logger.Range{Loc: loc}, Message: msg})
}

// readForm reads exactly one top-level (or nested) form.
func (p *parser) readForm() (ast.Node, bool) {
	t := p.peek()
	switch t.kind {
	case tEOF:
		p.fail(t.loc, "unexpected end of input")
		return ast.Node{}, false

	case tLParen:
		return p.readList(tRParen, ')')
	case tLBracket:
		return p.readBracketed("vector", tRBracket, ']')
	case tLBrace:
		return p.readBracketed("hash-map", tRBrace, '}')

	case tRParen, tRBracket, tRBrace:
		p.fail(t.loc, "unexpected closing delimiter")
		return ast.Node{}, false

	case tQuote:
		p.advance()
		inner, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		return wrap("quote", inner, t.loc), true

	case tQuasiquoteList:
		p.advance()
		inner, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		return wrap("quasiquote", inner, t.loc), true

	case tUnquote:
		p.advance()
		inner, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		return wrap("unquote", inner, t.loc), true

	case tUnquoteSplicing:
		p.advance()
		inner, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		return wrap("unquote-splicing", inner, t.loc), true

	case tDeref:
		p.advance()
		inner, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		return wrap("deref", inner, t.loc), true

	case tString:
		p.advance()
		return ast.StringLit(t.text, t.loc), true

	case tTemplateString:
		p.advance()
		return p.readTemplateLiteral(t)

	case tNumber:
		p.advance()
		if t.isInt {
			return ast.IntLit(t.intVal, t.loc), true
		}
		return ast.FloatLit(t.number, t.loc), true

	case tSymbol:
		p.advance()
		switch t.text {
		case "nil":
			return ast.NilLit(t.loc), true
		case "true":
			return ast.BoolLit(true, t.loc), true
		case "false":
			return ast.BoolLit(false, t.loc), true
		default:
			return ast.Sym(t.text, t.loc), true
		}
	}

	p.fail(t.loc, "unexpected token")
	return ast.Node{}, false
}

func wrap(head string, arg ast.Node, loc logger.Loc) ast.Node {
	return ast.ListOf([]ast.Node{ast.Sym(head, loc), arg}, loc)
}

func (p *parser) readList(closeKind tokenKind, closeChar byte) (ast.Node, bool) {
	start := p.advance().loc // consume '('
	var items []ast.Node
	for {
		if p.atEOF() {
			p.fail(start, "unterminated list, expected '"+string(closeChar)+"'")
			return ast.Node{}, false
		}
		if p.peek().kind == closeKind {
			p.advance()
			break
		}
		item, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		items = append(items, item)
	}
	return ast.ListOf(items, start), true
}

// readBracketed desugars `[a b c]` to `(vector a b c)` and `{k1 v1 ...}` to
// `(hash-map k1 v1 ...)` per 4.A's reader-macro table.
func (p *parser) readBracketed(head string, closeKind tokenKind, closeChar byte) (ast.Node, bool) {
	start := p.advance().loc
	items := []ast.Node{ast.Sym(head, start)}
	for {
		if p.atEOF() {
			p.fail(start, "unterminated literal, expected '"+string(closeChar)+"'")
			return ast.Node{}, false
		}
		if p.peek().kind == closeKind {
			p.advance()
			break
		}
		item, ok := p.readForm()
		if !ok {
			return ast.Node{}, false
		}
		items = append(items, item)
	}
	return ast.ListOf(items, start), true
}

// readTemplateLiteral splits the raw backtick-delimited text into literal
// parts and `${...}` expressions, then desugars to
// `(template-literal p0 e0 p1 e1 … pn)` per 4.A.
func (p *parser) readTemplateLiteral(t token) (ast.Node, bool) {
	items := []ast.Node{ast.Sym("template-literal", t.loc)}
	raw := t.text
	i := 0
	for i < len(raw) {
		j := strings.Index(raw[i:], "${")
		if j < 0 {
			items = append(items, ast.StringLit(raw[i:], t.loc))
			break
		}
		items = append(items, ast.StringLit(raw[i:i+j], t.loc))
		i += j + 2
		depth := 1
		start := i
		for i < len(raw) && depth > 0 {
			switch raw[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth > 0 {
				i++
			}
		}
		exprSrc := raw[start:i]
		if i < len(raw) {
			i++ // consume '}'
		}
		exprForms := readInto(exprSrc, p.source.PrettyPath, p.log, p.errs)
		if len(exprForms) != 1 {
			p.fail(t.loc, "template interpolation must contain exactly one expression")
			return ast.Node{}, false
		}
		items = append(items, exprForms[0])
	}
	return ast.ListOf(items, t.loc), true
}
