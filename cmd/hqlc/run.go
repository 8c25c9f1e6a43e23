package main

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hlvm-dev/hqlc/internal/compiler"
	"github.com/hlvm-dev/hqlc/internal/config"
)

// runCmd implements §6's "run <file>": compile then execute. Emitted
// output is plain JavaScript (4.E), so execution is delegated to a node
// subprocess rather than an embedded runtime — the same boundary
// spec.md §1 draws around "the CLI front-end ... build/publish tooling":
// the core's job ends at emitted source text.
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and execute an HQL file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runRun(args[0])
		return nil
	},
}

func runRun(path string) {
	source, err := os.ReadFile(path)
	if err != nil {
		fail("hqlc: cannot read %s: %v", path, err)
		return
	}

	result := compiler.Compile(string(source), path, filepath.Dir(path), config.CompileOptions{
		AddSourceMappings: true,
	})
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			reportCompileError(e)
		}
		return
	}

	tmp, err := os.CreateTemp("", "hqlc-*.mjs")
	if err != nil {
		fail("hqlc: cannot create temp file: %v", err)
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(result.Source); err != nil {
		fail("hqlc: cannot write compiled output: %v", err)
		return
	}
	tmp.Close()

	node := exec.Command("node", tmp.Name())
	node.Stdin = os.Stdin
	node.Stdout = os.Stdout
	node.Stderr = os.Stderr
	if err := node.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
			return
		}
		fail("hqlc: %v", err)
	}
}
