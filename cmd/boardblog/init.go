package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/pevans/boardblog/config"
)

func handleInit(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(stdout)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	configPath, err := config.ConfigFilePath()
	if err != nil {
		return err
	}

	created, err := config.WriteDefaultConfigFile(*force)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if created {
		fmt.Fprintf(stdout, "✓ Config file: %s\n", configPath)
	} else {
		fmt.Fprintf(stdout, "Config file: %s (already exists, use -force to overwrite)\n", configPath)
	}
	return nil
}
