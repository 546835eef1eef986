package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// errUsage marks errors caused by bad command line input.
var errUsage = errors.New("usage error")

type env struct {
	ledger *services.LedgerService
	logger *log.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"add", "Record a transaction", runAdd},
	{"update", "Change fields of a transaction", runUpdate},
	{"delete", "Delete a transaction", runDelete},
	{"get", "Show one transaction", runGet},
	{"list", "List transactions matching a filter", runList},
	{"categories", "List, add or remove categories", runCategories},
	{"report", "Totals by category or by month", runReport},
	{"summary", "Income, expense and net totals", runSummary},
	{"export", "Write transactions as CSV", runExport},
	{"import", "Read transactions from CSV", runImport},
	{"chart", "Render category and monthly charts", runChart},
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(stdout)
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
		printUsage(stderr)
		return 2
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := cli.SetupLogger(stderr, cfg.LogLevel)

	ledger, err := cli.InitLedger(logger, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			logger.Error("Failed to close ledger", log.FieldOperation, log.OpShutdown, log.FieldError, err)
		}
	}()

	e := &env{ledger: ledger, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}
	if err := cmd.run(ctx, e, args[1:]); err != nil {
		return reportError(stderr, err)
	}
	return 0
}

func reportError(w io.Writer, err error) int {
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(w, "Error:", err)
		return 2
	default:
		fmt.Fprintln(w, "Error:", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "fintrack - personal income and expense ledger")
	fmt.Fprintln(w, "\nUsage:")
	fmt.Fprintln(w, "  fintrack <command> [options]")
	fmt.Fprintln(w, "\nCommands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-11s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "  help        Show this help message")
	fmt.Fprintln(w, "\nRun 'fintrack <command> -h' for more information on a command.")
	fmt.Fprintln(w, "Configuration is read from FINTRACK_* environment variables or a .env file.")
}
