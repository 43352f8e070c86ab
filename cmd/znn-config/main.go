// ZNN front end: configuration loading and progress display for ZNNv4
// Copyright (C) 2026  Guillermo Perry
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"znn/internal/config"
	"znn/internal/logging"
)

// Options holds the command line settings.
type Options struct {
	ConfigPath string
	LogLevel   string
	WriteTo    string
	JSON       bool
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34D399")).
			Bold(true).
			MarginTop(1)
)

func main() {
	env, envErr := config.LoadEnv()

	opts, err := parseFlags(os.Args[1:], env)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.NewLogger(&logging.LoggingConfig{
		Level:  opts.LogLevel,
		Output: env.LogOutput,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if envErr != nil {
		logger.Warn("Ignoring .env: %v", envErr)
	}
	if err := run(opts, logger, os.Stdout); err != nil {
		logger.Fatal("%v", err)
	}
}

// parseFlags reads args on top of the .env and environment settings. The
// configuration path may also be given as the first positional argument.
func parseFlags(args []string, env *config.Env) (*Options, error) {
	opts := &Options{}
	fs := flag.NewFlagSet("znn-config", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", env.ConfigPath, "Path to the training configuration (default $"+config.EnvConfigPath+")")
	fs.StringVar(&opts.LogLevel, "log-level", env.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&opts.WriteTo, "write", "", "Write the resolved configuration to this path")
	fs.BoolVar(&opts.JSON, "json", false, "Print the parameters as JSON")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.ConfigPath == "" && fs.NArg() > 0 {
		opts.ConfigPath = fs.Arg(0)
	}
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("no configuration file given: pass -config or set %s", config.EnvConfigPath)
	}
	return opts, nil
}

// run loads and checks the configuration, prints it to out and optionally
// saves the resolved document.
func run(opts *Options, logger *logging.Logger, out io.Writer) error {
	logger.Debug("Loading configuration from %s", opts.ConfigPath)
	file, params, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %s: out_type=%s cost_fn=%s threads=%d",
		opts.ConfigPath, params.OutputKind(), params.CostFn, params.Threads())

	if cpus := config.LogicalCPUs(); params.NumThreads > cpus {
		logger.Warn("num_threads=%d exceeds the %d logical CPUs of this host", params.NumThreads, cpus)
	}
	if params.TrainRange.Len() == 0 {
		logger.Warn("train_range selects no samples")
	}
	if params.TestRange.Len() == 0 {
		logger.Warn("test_range selects no samples")
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(params); err != nil {
			return fmt.Errorf("failed to encode parameters: %w", err)
		}
	} else {
		printSummary(out, opts.ConfigPath, params.Entries(), config.LabelEntries(file))
	}

	if opts.WriteTo != "" {
		if err := config.Save(file, opts.WriteTo); err != nil {
			return err
		}
		logger.Info("Wrote resolved configuration to %s", opts.WriteTo)
	}
	return nil
}

func printSummary(w io.Writer, path string, params, labels []config.Entry) {
	key := func(k string) string { return keyStyle.Render(k) }
	fmt.Fprintln(w, titleStyle.Render("ZNN configuration: "+path))
	fmt.Fprintln(w, sectionStyle.Render("[parameters]"))
	fmt.Fprint(w, config.Render(params, key))
	if len(labels) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("label sections"))
		fmt.Fprint(w, config.Render(labels, key))
	}
}
