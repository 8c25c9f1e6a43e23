package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	publishDryRun  bool
	publishVerbose bool
)

// publishCmd parses §6's documented publish surface
// (`publish <entry> [jsr|npm|all] [version] [--dry-run] [--verbose]`) but
// does not perform registry upload — that belongs to the build/publish
// tooling spec.md §1 scopes out as an external collaborator. A full
// implementation would pack the entry module's exports (4.F) and push to
// the requested registries; this stub validates arguments, echoes them
// back only under --verbose, and prints that upload is not implemented.
var publishCmd = &cobra.Command{
	Use:   "publish <entry> [jsr|npm|all] [version]",
	Short: "Package a module for jsr/npm (upload not implemented)",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry := args[0]
		registry := "all"
		if len(args) > 1 {
			registry = args[1]
		}
		switch registry {
		case "jsr", "npm", "all":
		default:
			fail("hqlc: unknown registry %q, expected jsr, npm, or all", registry)
			return nil
		}
		version := ""
		if len(args) > 2 {
			version = args[2]
		}

		if publishVerbose {
			fmt.Printf("hqlc publish: entry=%s registry=%s version=%q dry-run=%v\n", entry, registry, version, publishDryRun)
		}
		fmt.Println("hqlc publish: registry upload is not implemented in this build.")
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "validate without uploading")
	publishCmd.Flags().BoolVar(&publishVerbose, "verbose", false, "print packaging details")
}
