// Command fln is the facetline debug & maintenance CLI.
//
// Usage:
//
//	fln                     Show help
//	fln seed                Populate the catalog with demo records
//	fln lookup <rel> <q>    Run a name lookup directly
//	fln fields              Print the searchable-field registry
//	fln stats               Catalog statistics and recent searches
package main

import (
	"fmt"
	"os"
)

const usage = `fln — facetline debug & maintenance CLI

Usage:
  fln <command> [flags]

Commands:
  seed        Populate the catalog with demo records (idempotent)
  lookup      Run a name lookup against a relation
  fields      Print the declared searchable fields
  stats       Catalog statistics and recent searches

Run 'fln <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "seed":
		runSeed()
	case "lookup":
		runLookup()
	case "fields":
		runFields()
	case "stats":
		runStats()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "fln: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
