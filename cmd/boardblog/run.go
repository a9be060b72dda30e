package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pevans/boardblog"
	"github.com/pevans/boardblog/config"
	"github.com/pevans/boardblog/ledger"
)

func handleRun(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "", "Path to config file (default: ~/.boardblog/config.yaml)")
	maxArticles := fs.Int("max", -1, "Articles to process, 0 for all (default: from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *maxArticles >= 0 {
		cfg.Board.MaxArticles = *maxArticles
	}

	logger := newLogger(cfg.Log.Level, stdout)

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	pipeline, err := boardblog.NewFromConfig(cfg, store, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := pipeline.Run(ctx)
	if result != nil {
		printRunSummary(stdout, result)
	}
	return err
}

func printRunSummary(w io.Writer, result *boardblog.RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run completed:")
	fmt.Fprintf(w, "  Articles discovered: %d\n", result.Discovered)
	fmt.Fprintf(w, "  Articles written:    %d\n", result.Written)
	fmt.Fprintf(w, "  Articles skipped:    %d\n", result.Skipped)
	fmt.Fprintf(w, "  Articles failed:     %d\n", result.Failed)
	fmt.Fprintf(w, "  Collisions:          %d\n", result.Collisions)

	if len(result.Errors) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %v\n", e)
		}
	}
}
