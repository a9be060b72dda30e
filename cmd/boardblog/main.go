package main

import (
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code. With no
// arguments it performs a blog run.
func run(args []string, stdout, stderr io.Writer) int {
	subcommand := "run"
	if len(args) > 0 {
		subcommand, args = args[0], args[1:]
	}

	var err error
	switch subcommand {
	case "run":
		err = handleRun(args, stdout)
	case "list":
		err = handleList(args, stdout)
	case "init":
		err = handleInit(args, stdout)
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "boardblog - Bulletin board to static blog generator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  boardblog [command] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Crawl the board and regenerate the blog (default)")
	fmt.Fprintln(w, "  list       Show articles recorded in the ledger")
	fmt.Fprintln(w, "  init       Write a default config file")
	fmt.Fprintln(w, "  help       Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  BOARDBLOG_LIST_URL      Listing page URL")
	fmt.Fprintln(w, "  BOARDBLOG_BASE_URL      Base URL article refs resolve against")
	fmt.Fprintln(w, "  BOARDBLOG_BLOG_DIR      Output directory (default: blog)")
	fmt.Fprintln(w, "  BOARDBLOG_LEDGER_DSN    Path to ledger database (default: boardblog.db)")
	fmt.Fprintln(w, "  BOARDBLOG_LOG_LEVEL     debug, info, warn, or error (default: info)")
	fmt.Fprintln(w, "  BOARDBLOG_MAX_ARTICLES  Articles processed per run, 0 for all (default: 10)")
}
