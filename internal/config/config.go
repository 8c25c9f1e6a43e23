// Package config holds the grouped, validated-once option structs consumed
// by internal/compiler and internal/lsp, in the shape of the teacher's
// internal/config.Options: plain structs constructed directly by the CLI
// layer (cmd/hqlc) rather than parsed ad hoc at each call site.
package config

import "fmt"

// CompileOptions configures one internal/compiler.Compile call (§6
// "Project layout" + 4.E's emitter options).
type CompileOptions struct {
	// WorkspaceRoots backs §6 relative-import fallback resolution: "failing
	// that, against workspace roots."
	WorkspaceRoots []string

	// AddSourceMappings and ASCIIOnly are passed straight through to
	// internal/emitter.Options.
	AddSourceMappings bool
	ASCIIOnly         bool
}

func (o CompileOptions) Validate() error {
	for _, root := range o.WorkspaceRoots {
		if root == "" {
			return fmt.Errorf("config: workspace root must not be empty")
		}
	}
	return nil
}

// ServerOptions configures internal/lsp.Server (§5, §6 LSP capabilities).
type ServerOptions struct {
	WorkspaceRoots []string

	// DebounceMs overrides internal/project.WatchOptions.DebounceMs; zero
	// means "use the project package's own default."
	DebounceMs int

	// TraceLog gates the JSONL operational trace described in SPEC_FULL's
	// ambient stack section (never required, off by default).
	TraceLog bool
}

func (o ServerOptions) Validate() error {
	if o.DebounceMs < 0 {
		return fmt.Errorf("config: debounce interval must not be negative, got %d", o.DebounceMs)
	}
	for _, root := range o.WorkspaceRoots {
		if root == "" {
			return fmt.Errorf("config: workspace root must not be empty")
		}
	}
	return nil
}
