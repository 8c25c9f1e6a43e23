package lsp

import (
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func uriToPath(u protocol.DocumentURI) string {
	return uri.URI(u).Filename()
}

func pathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI(uri.File(path))
}
