// Command docsection extracts document text and finds titled sections.
//
// Usage:
//
//	docsection extract [-backend Plain|Rows|Stream|all] FILE
//	docsection search  [-backend NAME] FILE QUERY
//	docsection compare FILE
//	docsection mcp                        # serve MCP tools on stdio
//
// Every subcommand accepts -config PATH (YAML or JSON); DOCSECTION_*
// environment variables override the file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/brunobiangulo/docsection"
	"github.com/brunobiangulo/docsection/internal/logging"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: docsection <extract|search|compare|mcp> [flags] [args]")
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	cmd, args := args[0], args[1:]

	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (YAML or JSON)")
	backend := fs.String("backend", "", "Backend name, or \"all\" to compare every backend (default from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := docsection.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = docsection.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(stderr, "error:", err)
			return 1
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	// MCP owns stdout, and the other commands print results there, so logs
	// always go to stderr unless a file is configured.
	logger, closeLog, err := logging.Setup(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	defer closeLog()
	cfg.Logger = logger

	ex, err := docsection.New(cfg, nil)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	switch cmd {
	case "extract":
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "usage: docsection extract [-backend NAME] FILE")
			return 2
		}
		text, err := ex.Extract(ctx, fs.Arg(0), *backend)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, text)

	case "search":
		if fs.NArg() != 2 {
			fmt.Fprintln(stderr, "usage: docsection search [-backend NAME] FILE QUERY")
			return 2
		}
		sess := docsection.NewSession(ex)
		if _, err := sess.Load(ctx, fs.Arg(0), *backend); err != nil {
			return fail(stderr, err)
		}
		results, err := sess.Search(fs.Arg(1))
		if err != nil {
			return fail(stderr, err)
		}
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintln(stdout, r)
		}

	case "compare":
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "usage: docsection compare FILE")
			return 2
		}
		results, err := ex.Compare(ctx, fs.Arg(0))
		if err != nil {
			return fail(stderr, err)
		}
		printComparison(stdout, results)

	case "mcp":
		srv := mcp.NewServer(&mcp.Implementation{Name: "docsection", Version: version}, nil)
		docsection.NewSession(ex).RegisterMCP(srv)
		logger.Info("starting docsection MCP server on stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server error", "error", err)
			return 1
		}

	default:
		usage(stderr)
		return 2
	}
	return 0
}

func printComparison(w io.Writer, results []docsection.BackendResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BACKEND\tCHARS\tLINES\tHEADINGS\tPRINTABLE\tTIME\tERROR")
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f\t%s\t%s\n",
			r.Backend, r.Quality.Chars, r.Quality.Lines, r.Quality.Headings,
			r.Quality.PrintableRatio, r.Elapsed.Round(time.Millisecond), errText)
	}
	tw.Flush()
}

func fail(w io.Writer, err error) int {
	fmt.Fprintln(w, "error:", err)
	return 1
}
