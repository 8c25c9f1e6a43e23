package lsp

import "go.lsp.dev/protocol"

// semanticTokenTypes and semanticTokenModifiers are §6's fixed legend,
// advertised once at initialize and never renegotiated per request.
var semanticTokenTypes = []string{
	"namespace", "type", "class", "enum", "parameter", "variable",
	"property", "enumMember", "function", "macro", "keyword", "comment",
	"string", "number", "operator",
}

var semanticTokenModifiers = []string{
	"declaration", "definition", "readonly", "defaultLibrary",
}

// codeActionKinds is §6's "supported kinds {QuickFix, RefactorExtract}".
var codeActionKinds = []protocol.CodeActionKind{
	protocol.QuickFix,
	protocol.RefactorExtract,
}

// serverCapabilities builds the ServerCapabilities half of an
// InitializeResult per §6's advertised surface: full-sync documents,
// hover, completion with its trigger set, signature help with its
// trigger set, go-to-definition, document/workspace symbols, references,
// rename with prepare, code actions, and full-document semantic tokens.
func serverCapabilities() protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncKindFull,
		HoverProvider:     true,
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"(", " ", ".", ":"},
		},
		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters: []string{"(", " "},
		},
		DefinitionProvider:     true,
		DocumentSymbolProvider: true,
		WorkspaceSymbolProvider: true,
		ReferencesProvider:      true,
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: true,
		},
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: codeActionKinds,
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     semanticTokenTypes,
				TokenModifiers: semanticTokenModifiers,
			},
			Full: true,
		},
	}
}
