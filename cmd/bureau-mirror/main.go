// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-mirror is a read-only client of a tmate-style terminal sharing
// session. It reads the controller's message stream from a socket (or
// from a recording of one), keeps a mirror of the session's windows and
// panes, and can print that mirror when the stream ends.
//
// The stream can be captured with --record and fed back later with
// --replay, which runs it through the same decoder and reconciliation
// path as a live connection.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/termmirror/lib/config"
	"github.com/bureau-foundation/termmirror/lib/process"
	"github.com/bureau-foundation/termmirror/lib/recording"
	"github.com/bureau-foundation/termmirror/lib/version"
	"github.com/bureau-foundation/termmirror/mirror"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}

// protocolExit marks a session abandoned because of a protocol
// violation, so scripts can tell it apart from setup failures.
type protocolExit struct {
	err error
}

func (e *protocolExit) Error() string { return e.err.Error() }
func (e *protocolExit) Unwrap() error { return e.err }
func (e *protocolExit) ExitCode() int { return 2 }

// options holds the parsed command line.
type options struct {
	configPath  string
	network     string
	address     string
	replayPath  string
	recordPath  string
	compression string
	scrollback  int
	logLevel    string
	logFormat   string
	dump        bool
	showVersion bool
	help        bool
}

func parseFlags(args []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("bureau-mirror", pflag.ContinueOnError)
	flagSet.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default: $"+config.EnvironmentVariable+" if set)")
	flagSet.StringVar(&opts.network, "network", "", "controller socket network: unix or tcp")
	flagSet.StringVar(&opts.address, "connect", "", "controller socket path or host:port")
	flagSet.StringVar(&opts.replayPath, "replay", "", "read the stream from a recording instead of a socket")
	flagSet.StringVar(&opts.recordPath, "record", "", "capture the inbound stream to this file")
	flagSet.StringVar(&opts.compression, "compression", "", "recording compression: none, lz4, or zstd")
	flagSet.IntVar(&opts.scrollback, "scrollback", 0, "raw output history kept per pane, in bytes")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, or error")
	flagSet.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flagSet.BoolVar(&opts.dump, "dump", false, "print the mirrored session when the stream ends")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information")
	flagSet.BoolVarP(&opts.help, "help", "h", false, "show help")
	flagSet.SetOutput(io.Discard)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.help = true
			return &opts, flagSet, nil
		}
		return nil, flagSet, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return &opts, flagSet, nil
}

// loadConfig resolves the config file, then lets explicitly set flags
// override it.
func loadConfig(opts *options, flagSet *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagSet.Changed("network") {
		cfg.Connection.Network = opts.network
	}
	if flagSet.Changed("connect") {
		cfg.Connection.Address = opts.address
	}
	if flagSet.Changed("record") {
		cfg.Recording.Path = opts.recordPath
	}
	if flagSet.Changed("compression") {
		cfg.Recording.Compression = opts.compression
	}
	if flagSet.Changed("scrollback") {
		cfg.Mirror.ScrollbackBytes = opts.scrollback
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flagSet.Changed("log-format") {
		cfg.Log.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(args []string) error {
	opts, flagSet, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.help {
		printHelp(flagSet)
		return nil
	}
	if opts.showVersion {
		version.Fprint(os.Stdout, "bureau-mirror")
		return nil
	}

	cfg, err := loadConfig(opts, flagSet)
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := openStream(ctx, cfg, opts.replayPath, logger)
	if err != nil {
		return err
	}

	client := mirror.NewClient(mirror.Options{
		ScrollbackSize: cfg.Mirror.ScrollbackBytes,
		Logger:         logger,
		Redraw:         newLayoutLog(logger).redraw,
	})

	runErr := client.Run(ctx, stream)
	if closeErr := stream.Finish(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	if opts.dump {
		if err := writeDump(os.Stdout, client.Session(), outputWidth(os.Stdout)); err != nil {
			logger.Error("dumping session failed", "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Info("interrupted")
			return nil
		}
		var protocolErr *mirror.ProtocolError
		if errors.As(runErr, &protocolErr) {
			return &protocolExit{err: runErr}
		}
		return runErr
	}
	return nil
}

func newLogger(writer io.Writer, logConfig config.LogConfig) (*slog.Logger, error) {
	level, err := logConfig.SlogLevel()
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if logConfig.Format == "json" {
		handler = slog.NewJSONHandler(writer, options)
	} else {
		handler = slog.NewTextHandler(writer, options)
	}
	return slog.New(handler).With("component", "mirror"), nil
}

// parseCompression is recording.ParseCompression for a validated config.
func parseCompression(name string) recording.Compression {
	compression, err := recording.ParseCompression(name)
	if err != nil {
		return recording.CompressionZstd
	}
	return compression
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `bureau-mirror: read-only mirror of a terminal sharing session.

Connects to the controller's socket, applies its window layout and pane
output to a local mirror, and exits when the controller closes the
stream. Protocol violations abandon the session with exit status 2.

Usage:
  bureau-mirror [flags]

Examples:
  # Mirror a local session and print it when it ends
  bureau-mirror --connect /run/tmate/session.sock --dump

  # Capture a session for later analysis
  bureau-mirror --network tcp --connect 127.0.0.1:7000 --record session.bmrc

  # Replay a capture through the mirror
  bureau-mirror --replay session.bmrc --dump

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
