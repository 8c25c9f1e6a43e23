package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlvm-dev/hqlc/internal/cache"
	"github.com/hlvm-dev/hqlc/internal/config"
	"github.com/hlvm-dev/hqlc/internal/fs"
	"github.com/hlvm-dev/hqlc/internal/lsp"
)

var (
	lspStdio      bool
	lspWorkspace  []string
	lspDebounceMs int
	lspTrace      bool
)

// lspCmd implements §6's "lsp --stdio": a stdio-only transport, matching
// how every editor integration in the example pack spawns a language
// server (a child process talking Content-Length-framed JSON-RPC over
// its own stdin/stdout, never a socket).
var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the HQL language server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !lspStdio {
			fail("hqlc: lsp currently only supports --stdio")
			return nil
		}
		opts := config.ServerOptions{
			WorkspaceRoots: lspWorkspace,
			DebounceMs:     lspDebounceMs,
			TraceLog:       lspTrace,
		}
		if err := opts.Validate(); err != nil {
			fail("hqlc: %v", err)
			return nil
		}

		server := lsp.NewServer(fs.NewRealFS(), opts, unimplementedModuleProbe)
		if err := server.Serve(context.Background(), stdio{os.Stdin, os.Stdout}); err != nil && err != io.EOF {
			fail("hqlc: lsp session ended: %v", err)
		}
		return nil
	},
}

func init() {
	lspCmd.Flags().BoolVar(&lspStdio, "stdio", false, "speak LSP over stdin/stdout")
	lspCmd.Flags().StringSliceVar(&lspWorkspace, "workspace", nil, "workspace root (repeatable)")
	lspCmd.Flags().IntVar(&lspDebounceMs, "debounce-ms", 0, "file watcher debounce override")
	lspCmd.Flags().BoolVar(&lspTrace, "trace", false, "enable operational trace logging")
}

// unimplementedModuleProbe is §9's open external-module-analyzer
// question, decided in DESIGN.md: a probe returns "unknown" rather than
// suspending forever, so the LSP boundary never blocks on a registry
// call this build does not make.
func unimplementedModuleProbe(ctx context.Context, specifier string) (cache.Probe, error) {
	return cache.Probe{Specifier: specifier, ResolvedKind: "unknown"}, nil
}

// stdio adapts the process's own stdin/stdout into the io.ReadWriteCloser
// jsonrpc2.NewStream expects; Close is a no-op since the process owns
// these descriptors for its entire lifetime.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }
