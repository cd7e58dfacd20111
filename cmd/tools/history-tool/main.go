// cmd/tools/history-tool/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"alternator-reqgen/internal/reconcile"
)

var validationMarkers = []string{"ValidationException", "SerializationException"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	statsCmd := flag.NewFlagSet("stats", flag.ContinueOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ContinueOnError)
	mergeCmd := flag.NewFlagSet("merge", flag.ContinueOnError)

	statsPath := statsCmd.String("path", "generator/AWS_history.yaml", "Path to history file")
	validatePath := validateCmd.String("path", "generator/AWS_history.yaml", "Path to history file")
	mergePath := mergeCmd.String("path", "generator/AWS_history.yaml", "Path to the history file merged into")
	mergeFrom := mergeCmd.String("from", "", "Path to the history file merged from")

	if len(args) < 1 {
		help(out)
		return 1
	}

	ctx := context.Background()
	var err error
	switch args[0] {
	case "stats":
		if err = statsCmd.Parse(args[1:]); err != nil {
			return 1
		}
		err = stats(ctx, *statsPath, out)

	case "validate":
		if err = validateCmd.Parse(args[1:]); err != nil {
			return 1
		}
		err = validateHistory(ctx, *validatePath, out)

	case "merge":
		if err = mergeCmd.Parse(args[1:]); err != nil {
			return 1
		}
		if *mergeFrom == "" {
			fmt.Fprintln(out, "Error: from is required for merge.")
			mergeCmd.Usage()
			return 1
		}
		err = merge(ctx, *mergePath, *mergeFrom, out)

	case "help":
		help(out)
		return 0

	default:
		help(out)
		return 1
	}

	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return 1
	}
	return 0
}

func stats(ctx context.Context, path string, out io.Writer) error {
	h, err := reconcile.NewFileStore(path).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	for _, op := range h.Operations() {
		fmt.Fprintf(out, "%-32s %d\n", op, len(h.Bodies(op)))
	}
	fmt.Fprintf(out, "%d operations, %d responses\n", len(h.Operations()), h.Len())
	return nil
}

// validateHistory checks that every stored response is usable by the
// classifier: non-empty, and either a validation error or JSON.
func validateHistory(ctx context.Context, path string, out io.Writer) error {
	h, err := reconcile.NewFileStore(path).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var problems []string
	for _, op := range h.Operations() {
		for _, body := range h.Bodies(op) {
			resp, _ := h.Lookup(op, body)
			if problem := checkResponse(resp); problem != "" {
				problems = append(problems, fmt.Sprintf("%s %s: %s", op, body, problem))
			}
		}
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(out, p)
		}
		return fmt.Errorf("%d invalid responses", len(problems))
	}

	fmt.Fprintf(out, "History validation passed. Found %d responses.\n", h.Len())
	return nil
}

func checkResponse(resp string) string {
	if strings.TrimSpace(resp) == "" {
		return "empty response"
	}
	for _, m := range validationMarkers {
		if strings.Contains(resp, m) {
			return ""
		}
	}
	if !json.Valid([]byte(resp)) {
		return "response is not JSON"
	}
	return ""
}

// merge folds the from history into path; entries from the source win.
func merge(ctx context.Context, path, from string, out io.Writer) error {
	target := reconcile.NewFileStore(path)
	dst, err := target.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	src, err := reconcile.NewFileStore(from).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load source history: %w", err)
	}
	n := dst.MergeHistory(src)
	if err := target.Persist(ctx, dst); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	fmt.Fprintf(out, "Merged %d responses into %s (%d total).\n", n, path, dst.Len())
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: history-tool <command> [flags]

Commands:
  stats     Show recorded responses per operation
  validate  Check every stored response can be classified
  merge     Merge another history file into the target
  help      Show this help message

Examples:
  history-tool stats -path generator/AWS_history.yaml
  history-tool validate -path generator/AWS_history.yaml
  history-tool merge -path generator/AWS_history.yaml -from other/AWS_history.yaml

Use 'history-tool <command> -h' for more information about a command.`)
}
