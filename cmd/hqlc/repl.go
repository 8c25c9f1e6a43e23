package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// replCmd is a thin stub: the interactive shell's terminal rendering, key
// dispatch, and session history are out of scope (spec.md §1, "the REPL
// UI ... are treated as callers of the core"). This command only prints a
// message pointing at `hqlc run`; it does not call internal/compiler, and
// the UI loop itself is an external collaborator's job.
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Open an interactive HQL shell (UI not implemented here)",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("hqlc repl: interactive shell UI is provided by a separate front-end; this build only compiles and runs files (see `hqlc run`).")
		return nil
	},
}
