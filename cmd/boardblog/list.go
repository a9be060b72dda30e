package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pevans/boardblog/config"
	"github.com/pevans/boardblog/ledger"
)

func handleList(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configPath := fs.String("config", "", "Path to config file (default: ~/.boardblog/config.yaml)")
	limit := fs.Int("limit", 20, "Maximum number of articles to show, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	store, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer store.Close()

	records, err := store.List(*limit)
	if err != nil {
		return err
	}

	printRecordTable(stdout, records)
	return nil
}
