package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/hlvm-dev/hqlc/internal/symbols"
)

// completionKindFor and symbolKindFor map the core's symbols.Kind (4.B) to
// the two LSP enumerations that need it; the two numberings diverge (LSP
// defines CompletionItemKind and SymbolKind separately) so one table each.
func completionKindFor(kind symbols.Kind) protocol.CompletionItemKind {
	switch kind {
	case symbols.KindFunction, symbols.KindMethod:
		return protocol.CompletionItemKindFunction
	case symbols.KindMacro, symbols.KindSpecialForm:
		return protocol.CompletionItemKindKeyword
	case symbols.KindClass, symbols.KindInterface:
		return protocol.CompletionItemKindClass
	case symbols.KindEnum:
		return protocol.CompletionItemKindEnum
	case symbols.KindEnumCase:
		return protocol.CompletionItemKindEnumMember
	case symbols.KindConstant:
		return protocol.CompletionItemKindConstant
	case symbols.KindModule, symbols.KindNamespace:
		return protocol.CompletionItemKindModule
	case symbols.KindField, symbols.KindProperty:
		return protocol.CompletionItemKindField
	case symbols.KindType, symbols.KindAlias:
		return protocol.CompletionItemKindStruct
	default:
		return protocol.CompletionItemKindVariable
	}
}

func symbolKindFor(kind symbols.Kind) protocol.SymbolKind {
	switch kind {
	case symbols.KindFunction, symbols.KindMethod:
		return protocol.SymbolKindFunction
	case symbols.KindClass, symbols.KindInterface:
		return protocol.SymbolKindClass
	case symbols.KindEnum:
		return protocol.SymbolKindEnum
	case symbols.KindEnumCase:
		return protocol.SymbolKindEnumMember
	case symbols.KindConstant:
		return protocol.SymbolKindConstant
	case symbols.KindModule, symbols.KindNamespace:
		return protocol.SymbolKindNamespace
	case symbols.KindField, symbols.KindProperty:
		return protocol.SymbolKindField
	default:
		return protocol.SymbolKindVariable
	}
}
