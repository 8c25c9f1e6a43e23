// Command hqlc is the CLI front-end the core does not implement itself
// (spec.md §1: "The CLI front-end ... are treated as callers of the
// core"). It wires internal/compiler and internal/lsp behind the four
// subcommands §6 names: run, repl, publish, lsp.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return exitCode
}
