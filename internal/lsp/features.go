package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/hlvm-dev/hqlc/internal/helpers"
	"github.com/hlvm-dev/hqlc/internal/logger"
	"github.com/hlvm-dev/hqlc/internal/symbols"
)

func (s *Server) textFor(path string) (string, bool) {
	if text, ok := s.docs.get(path); ok {
		return text, true
	}
	contents, err := s.fsys.ReadFile(path)
	if err != nil {
		return "", false
	}
	return contents, true
}

func (s *Server) wordAt(path string, pos protocol.Position) (text string, word string, offset int, ok bool) {
	text, ok = s.textFor(path)
	if !ok {
		return "", "", 0, false
	}
	offset = offsetFromPosition(text, pos)
	word = identifierAt(text, offset)
	return text, word, offset, word != ""
}

func (s *Server) onHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	_, word, _, ok := s.wordAt(path, params.Position)
	if !ok {
		return reply(ctx, nil, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, nil, nil)
	}
	record, ok := fi.Symbols[word]
	if !ok {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.PlainText, Value: hoverText(record)},
	}, nil)
}

func hoverText(record *symbols.Record) string {
	switch record.Kind {
	case symbols.KindFunction, symbols.KindMethod:
		return fmt.Sprintf("function %s(%s)", record.Name, strings.Join(record.Params, ", "))
	case symbols.KindClass:
		return fmt.Sprintf("class %s", record.Name)
	case symbols.KindEnum:
		return fmt.Sprintf("enum %s {%s}", record.Name, strings.Join(record.Cases, ", "))
	case symbols.KindConstant:
		return fmt.Sprintf("const %s", record.Name)
	default:
		return record.Name
	}
}

func (s *Server) onCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, ok := s.textFor(path)
	if !ok {
		return reply(ctx, protocol.CompletionList{}, nil)
	}
	offset := offsetFromPosition(text, params.Position)
	prefix := identifierAt(text, offset)

	seen := make(map[string]bool)
	var items []protocol.CompletionItem

	if fi, ok := s.index.GetFileIndex(path); ok {
		for name, record := range fi.Symbols {
			if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
				continue
			}
			seen[name] = true
			items = append(items, protocol.CompletionItem{Label: name, Kind: completionKindFor(record.Kind)})
		}
	}
	for _, record := range s.workspaceSymbols(prefix, 50) {
		if seen[record.Name] {
			continue
		}
		seen[record.Name] = true
		items = append(items, protocol.CompletionItem{Label: record.Name, Kind: completionKindFor(record.Kind)})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return reply(ctx, protocol.CompletionList{Items: items}, nil)
}

func (s *Server) onSignatureHelp(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SignatureHelpParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, ok := s.textFor(path)
	if !ok {
		return reply(ctx, nil, nil)
	}
	offset := offsetFromPosition(text, params.Position)
	word := enclosingCallHead(text, offset)
	if word == "" {
		return reply(ctx, nil, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, nil, nil)
	}
	record, ok := fi.Symbols[word]
	if !ok || (record.Kind != symbols.KindFunction && record.Kind != symbols.KindMethod) {
		return reply(ctx, nil, nil)
	}
	params2 := make([]protocol.ParameterInformation, 0, len(record.Params))
	for _, p := range record.Params {
		params2 = append(params2, protocol.ParameterInformation{Label: p})
	}
	sig := protocol.SignatureInformation{
		Label:      fmt.Sprintf("%s(%s)", record.Name, strings.Join(record.Params, ", ")),
		Parameters: params2,
	}
	return reply(ctx, protocol.SignatureHelp{Signatures: []protocol.SignatureInformation{sig}}, nil)
}

// enclosingCallHead walks back from offset to the nearest unmatched "(",
// then reads the identifier that immediately follows it — the head
// symbol of the call form the cursor is inside, per §6's `(` / space
// trigger pair.
func enclosingCallHead(text string, offset int) string {
	depth := 0
	for i := offset - 1; i >= 0; i-- {
		switch text[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				return identifierAt(text, i+1)
			}
			depth--
		}
	}
	return ""
}

func (s *Server) onDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	_, word, _, ok := s.wordAt(path, params.Position)
	if !ok {
		return reply(ctx, nil, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, nil, nil)
	}

	if record, ok := fi.Symbols[word]; ok && record.Location != nil {
		return reply(ctx, []protocol.Location{s.locationFor(path, *record.Location, len(word))}, nil)
	}

	for _, imp := range fi.Imports {
		if imp.ResolvedPath == "" {
			continue
		}
		for _, sym := range imp.ImportedSymbols {
			if sym.LocalName != word {
				continue
			}
			if record, ok := s.index.GetExportedSymbol(sym.Name, imp.ResolvedPath); ok && record.Location != nil {
				return reply(ctx, []protocol.Location{s.locationFor(imp.ResolvedPath, *record.Location, len(word))}, nil)
			}
		}
	}
	return reply(ctx, nil, nil)
}

func (s *Server) locationFor(path string, loc logger.Loc, length int) protocol.Location {
	text, _ := s.textFor(path)
	return protocol.Location{URI: pathToURI(path), Range: locToRange(text, loc, length)}
}

func (s *Server) onDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, ok := s.textFor(path)
	if !ok {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}

	names := make([]string, 0, len(fi.Symbols))
	for name := range fi.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]protocol.DocumentSymbol, 0, len(names))
	for _, name := range names {
		record := fi.Symbols[name]
		r := protocol.Range{}
		if record.Location != nil {
			r = locToRange(text, *record.Location, len(name))
		}
		out = append(out, protocol.DocumentSymbol{
			Name:           name,
			Kind:           symbolKindFor(record.Kind),
			Range:          r,
			SelectionRange: r,
		})
	}
	return reply(ctx, out, nil)
}

func (s *Server) onWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	var out []protocol.SymbolInformation
	for _, path := range s.index.GetAllFiles() {
		fi, ok := s.index.GetFileIndex(path)
		if !ok {
			continue
		}
		text, _ := s.textFor(path)
		lowerQuery := strings.ToLower(params.Query)
		for name, record := range fi.Symbols {
			if !strings.Contains(strings.ToLower(name), lowerQuery) {
				continue
			}
			r := protocol.Range{}
			if record.Location != nil {
				r = locToRange(text, *record.Location, len(name))
			}
			out = append(out, protocol.SymbolInformation{
				Name:     name,
				Kind:     symbolKindFor(record.Kind),
				Location: protocol.Location{URI: pathToURI(path), Range: r},
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > 100 {
		out = out[:100]
	}
	return reply(ctx, out, nil)
}

// workspaceSymbols is completion's workspace-wide fallback: every file's
// local FileIndex.Symbols filtered by a case-insensitive prefix match.
// project.ProjectIndex.SearchSymbols is not used here: it matches
// substrings rather than prefixes and returns its own ranked slice, while
// completion needs symbols.Record values.
func (s *Server) workspaceSymbols(prefix string, max int) []*symbols.Record {
	lowerPrefix := strings.ToLower(prefix)
	var out []*symbols.Record
	for _, path := range s.index.GetAllFiles() {
		fi, ok := s.index.GetFileIndex(path)
		if !ok {
			continue
		}
		for name, record := range fi.Symbols {
			if strings.HasPrefix(strings.ToLower(name), lowerPrefix) {
				out = append(out, record)
			}
		}
		if len(out) >= max {
			break
		}
	}
	return out
}

func (s *Server) onReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, word, _, ok := s.wordAt(path, params.Position)
	if !ok {
		return reply(ctx, []protocol.Location{}, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, []protocol.Location{}, nil)
	}
	record, ok := fi.Symbols[word]
	if !ok {
		return reply(ctx, []protocol.Location{}, nil)
	}

	var out []protocol.Location
	if params.Context.IncludeDeclaration && record.Location != nil {
		out = append(out, protocol.Location{URI: pathToURI(path), Range: locToRange(text, *record.Location, len(word))})
	}
	for _, loc := range record.References() {
		out = append(out, protocol.Location{URI: pathToURI(path), Range: locToRange(text, loc, len(word))})
	}

	// Cross-file references: a dependent's import line naming this export
	// is the only cross-file use-site position the index tracks (4.F has
	// no per-call-site reference graph across files, only the import
	// specifier's own location).
	for _, dependent := range s.index.GetDependents(path) {
		depFi, ok := s.index.GetFileIndex(dependent)
		if !ok {
			continue
		}
		for _, imp := range depFi.Imports {
			if imp.ResolvedPath != path {
				continue
			}
			for _, sym := range imp.ImportedSymbols {
				if sym.Name == word {
					out = append(out, protocol.Location{
						URI:   pathToURI(dependent),
						Range: protocol.Range{Start: protocol.Position{Line: uint32(sym.Line - 1), Character: uint32(sym.Column)}, End: protocol.Position{Line: uint32(sym.Line - 1), Character: uint32(sym.Column) + uint32(len(word))}},
					})
				}
			}
		}
	}
	return reply(ctx, out, nil)
}

func (s *Server) onPrepareRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.PrepareRenameParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, word, offset, ok := s.wordAt(path, params.Position)
	if !ok {
		return reply(ctx, nil, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, nil, nil)
	}
	if _, ok := fi.Symbols[word]; !ok {
		return reply(ctx, nil, nil)
	}
	start := offset - len(word)
	return reply(ctx, locToRange(text, logger.Loc{Start: int32(start)}, len(word)), nil)
}

func (s *Server) onRename(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.RenameParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, word, _, ok := s.wordAt(path, params.Position)
	if !ok {
		return reply(ctx, nil, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, nil, nil)
	}
	record, ok := fi.Symbols[word]
	if !ok {
		return reply(ctx, nil, nil)
	}

	// Renaming is scoped to this file's own declaration and references;
	// project-wide propagation would need cross-file call-site positions
	// this index does not track (see onReferences' cross-file note).
	var edits []protocol.TextEdit
	if record.Location != nil {
		edits = append(edits, protocol.TextEdit{Range: locToRange(text, *record.Location, len(word)), NewText: params.NewName})
	}
	for _, loc := range record.References() {
		edits = append(edits, protocol.TextEdit{Range: locToRange(text, loc, len(word)), NewText: params.NewName})
	}
	return reply(ctx, protocol.WorkspaceEdit{Changes: map[protocol.DocumentURI][]protocol.TextEdit{params.TextDocument.URI: edits}}, nil)
}

func (s *Server) onCodeAction(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CodeActionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, ok := s.textFor(path)
	if !ok {
		return reply(ctx, []protocol.CodeAction{}, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, []protocol.CodeAction{}, nil)
	}

	offset := offsetFromPosition(text, params.Range.Start)
	word := identifierAt(text, offset)
	if word == "" {
		return reply(ctx, []protocol.CodeAction{}, nil)
	}
	if _, known := fi.Symbols[word]; known {
		return reply(ctx, []protocol.CodeAction{}, nil)
	}

	candidates := make([]string, 0, len(fi.Symbols))
	for name := range fi.Symbols {
		candidates = append(candidates, name)
	}
	suggestion, ok := nearestByEditDistance(word, candidates)
	if !ok {
		return reply(ctx, []protocol.CodeAction{}, nil)
	}

	action := protocol.CodeAction{
		Title: fmt.Sprintf("Did you mean '%s'?", suggestion),
		Kind:  protocol.QuickFix,
		Edit: &protocol.WorkspaceEdit{
			Changes: map[protocol.DocumentURI][]protocol.TextEdit{
				params.TextDocument.URI: {{Range: protocol.Range{Start: params.Range.Start, End: protocol.Position{Line: params.Range.Start.Line, Character: params.Range.Start.Character + uint32(len(word))}}, NewText: suggestion}},
			},
		},
	}
	return reply(ctx, []protocol.CodeAction{action}, nil)
}

// nearestByEditDistance implements §7/SPEC_FULL's "Did you mean X?"
// suggestion for an unresolved identifier. It tries helpers.TypoDetector
// first — a one-character-deletion lookup, cheap because it's a map hit
// rather than an O(n*m) comparison against every candidate — and falls
// back to a Levenshtein-nearest search within a small distance budget so
// an unrelated short word never produces a misleading match. The two
// catch different shapes of typo: the detector recognizes a dropped
// character, a substituted character, or two swapped adjacent characters,
// and only against candidates longer than three characters, while
// Levenshtein also catches an inserted extra character and short
// candidates.
func nearestByEditDistance(word string, candidates []string) (string, bool) {
	if corrected, ok := helpers.MakeTypoDetector(candidates).MaybeCorrectTypo(word); ok {
		return corrected, true
	}

	best := ""
	bestDist := -1
	budget := len(word)/2 + 1
	for _, c := range candidates {
		d := levenshtein(word, c)
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	if bestDist < 0 || bestDist > budget {
		return "", false
	}
	return best, true
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func (s *Server) onSemanticTokensFull(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.SemanticTokensParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	path := uriToPath(params.TextDocument.URI)
	text, ok := s.textFor(path)
	if !ok {
		return reply(ctx, protocol.SemanticTokens{}, nil)
	}
	fi, ok := s.index.GetFileIndex(path)
	if !ok {
		return reply(ctx, protocol.SemanticTokens{}, nil)
	}

	type tok struct {
		line, char, length int
		tokenType           int
		modifiers           int
	}
	var toks []tok
	for name, record := range fi.Symbols {
		if record.Location == nil {
			continue
		}
		pos := offsetToPosition(text, int(record.Location.Start))
		mod := 0
		if record.IsExported {
			mod |= 1 << 0 // declaration
		}
		toks = append(toks, tok{
			line: int(pos.Line), char: int(pos.Character), length: len(name),
			tokenType: semanticTypeIndex(record.Kind), modifiers: mod,
		})
	}
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].line != toks[j].line {
			return toks[i].line < toks[j].line
		}
		return toks[i].char < toks[j].char
	})

	data := make([]uint32, 0, len(toks)*5)
	prevLine, prevChar := 0, 0
	for _, t := range toks {
		deltaLine := t.line - prevLine
		deltaChar := t.char
		if deltaLine == 0 {
			deltaChar = t.char - prevChar
		}
		data = append(data, uint32(deltaLine), uint32(deltaChar), uint32(t.length), uint32(t.tokenType), uint32(t.modifiers))
		prevLine, prevChar = t.line, t.char
	}
	return reply(ctx, protocol.SemanticTokens{Data: data}, nil)
}

func semanticTypeIndex(kind symbols.Kind) int {
	for i, name := range semanticTokenTypes {
		if semanticKindName(kind) == name {
			return i
		}
	}
	return 0
}

func semanticKindName(kind symbols.Kind) string {
	switch kind {
	case symbols.KindNamespace, symbols.KindModule:
		return "namespace"
	case symbols.KindType, symbols.KindAlias:
		return "type"
	case symbols.KindClass, symbols.KindInterface:
		return "class"
	case symbols.KindEnum:
		return "enum"
	case symbols.KindEnumCase:
		return "enumMember"
	case symbols.KindFunction, symbols.KindMethod:
		return "function"
	case symbols.KindMacro:
		return "macro"
	case symbols.KindSpecialForm:
		return "keyword"
	case symbols.KindField, symbols.KindProperty:
		return "property"
	default:
		return "variable"
	}
}
