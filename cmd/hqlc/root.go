package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlvm-dev/hqlc/internal/logger"
)

// exitCode is set by a subcommand's RunE before returning nil, so §6's
// "0 success, 1 user-facing failure" distinction survives even when the
// failure is expected (a parse error, a failing test run) rather than a
// cobra-level usage mistake.
var exitCode int

var rootCmd = &cobra.Command{
	Use:           "hqlc",
	Short:         "Compiler and language server for HQL",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd, replCmd, publishCmd, lspCmd)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	exitCode = 1
}

// reportCompileError prints one compiler error through the logger's
// clang-style renderer when the error is one of the closed kinds in
// internal/logger/errors.go; their Msg carries no location, so only the
// "error: message" line is printed, with no source line or caret. Anything
// else falls back to plain %v.
func reportCompileError(err error) {
	if m, ok := err.(logger.MsgSource); ok {
		logger.PrintMessageToStderr(os.Args, m.Msg())
		exitCode = 1
		return
	}
	fail("hqlc: %v", err)
}
