// comet is a terminal browser for the Gemini protocol. One page at a
// time: type a URL, follow links with tab and enter, go back with b.
// Server input requests (status 10/11) open an inline prompt; binary
// bodies are saved to a path the user supplies.
package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/knowfox/comet/browser"
	"github.com/knowfox/comet/gemini"
	"github.com/knowfox/comet/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var logOutput string
	var insecure bool

	flagSet := pflag.NewFlagSet("comet", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", defaultConfigPath(), "path to config.toml")
	flagSet.StringVar(&logOutput, "log-output", "", "write log records to this file (stderr is owned by the TUI)")
	flagSet.BoolVar(&insecure, "insecure", true, "accept self-signed server certificates")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("insecure") {
		cfg.Insecure = insecure
	}
	if flagSet.Changed("log-output") {
		cfg.LogFile = logOutput
	}

	start := cfg.Home
	if args := flagSet.Args(); len(args) > 0 {
		start = args[0]
	}

	logger, closeLog, err := newLogger(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	client := &gemini.Client{
		InsecureSkipVerify: cfg.Insecure,
		Timeout:            cfg.ConnectTimeout,
	}
	sink := &ui.ProgramSink{}
	session := browser.NewSession(client, sink, logger, browser.Config{
		MaxRedirects: cfg.MaxRedirects,
	})
	defer session.Shutdown()

	model := ui.New(session, start)
	program := tea.NewProgram(model, tea.WithAltScreen())
	sink.SetProgram(program)

	_, err = program.Run()
	return err
}

// newLogger writes to the given file, or discards everything. It
// never writes to stderr: that would corrupt the alt-screen display.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `comet — a terminal Gemini browser.

Usage:
  comet [flags] [url]

Keys:
  g / ctrl+l   edit the address
  tab          focus the next link, enter follows it
  b            go back
  q            quit

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
