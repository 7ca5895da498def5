// Command zeitgeist queries the aggregation engine from the terminal.
//
// Usage:
//
//	zeitgeist search <topic>      Full zeitgeist snapshot
//	zeitgeist opinions <topic>    Role-biased opinions
//	zeitgeist tools <topic>       Trending tools
//	zeitgeist experts <topic>     Expert perspectives
package main

import (
	"fmt"
	"os"
)

const usage = `zeitgeist: topic zeitgeist aggregation CLI

Usage:
  zeitgeist <command> [flags] <topic>

Commands:
  search      Full snapshot: summary, results, opinions
  opinions    Opinions through the configured role's query lens
  tools       Trending tools ranked by mention frequency
  experts     Expert perspectives

Flags (all commands):
  --config    Config file path (default ~/.zeitgeist/config.json)
  --context   Extra free-text context appended to queries (search only)
  --strict    Surface rate-limit and provider failures as errors

Environment:
  ZEITGEIST_* variables mirror every config field; explicit config
  file values win when both are present.

Run 'zeitgeist <command> -h' for command-specific help.
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
	case "search":
		runSearch()
	case "opinions":
		runOpinions()
	case "tools":
		runTools()
	case "experts":
		runExperts()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "zeitgeist: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
