// Package main is the entry point for the fmtbridge formatting host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/fmtbridge/internal/config"
	"github.com/dshills/fmtbridge/internal/dispatch"
	"github.com/dshills/fmtbridge/internal/engine"
	"github.com/dshills/fmtbridge/internal/server"
	"github.com/dshills/fmtbridge/internal/textedit"
	"github.com/dshills/fmtbridge/internal/workspace"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	Serve      bool
	Write      bool
	Debug      bool
	EnginePath string
	Files      []string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	var loaderOpts []engine.LoaderOption
	if opts.EnginePath != "" {
		loaderOpts = append(loaderOpts, engine.WithDefaultScript(opts.EnginePath))
	}
	loader := engine.NewLoader(loaderOpts...)
	registry := workspace.NewRegistry(loader)
	dispatcher := dispatch.New(registry, loader)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	if opts.Serve {
		return serve(ctx, opts, registry, dispatcher)
	}
	return formatFiles(ctx, opts, registry, dispatcher)
}

// serve runs the JSON-RPC server over stdio.
func serve(ctx context.Context, opts options, registry *workspace.Registry, dispatcher *dispatch.Dispatcher) int {
	var serverOpts []server.Option
	if opts.Debug {
		serverOpts = append(serverOpts, server.WithTrace(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	}

	srv := server.New(os.Stdin, os.Stdout, registry, dispatcher, serverOpts...)
	if err := srv.Serve(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// formatFiles formats the named files directly, printing results to
// stdout or rewriting in place with -w.
func formatFiles(ctx context.Context, opts options, registry *workspace.Registry, dispatcher *dispatch.Dispatcher) int {
	if len(opts.Files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no files to format (use -serve for server mode)")
		return 2
	}

	exit := 0
	for _, file := range opts.Files {
		if err := formatFile(ctx, opts, registry, dispatcher, file); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", file, err)
			exit = 1
		}
	}
	return exit
}

func formatFile(ctx context.Context, opts options, registry *workspace.Registry, dispatcher *dispatch.Dispatcher, file string) error {
	parser, ok := config.ParserForPath(file)
	if !ok {
		return fmt.Errorf("no parser for %q", filepath.Ext(file))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	root := filepath.Dir(absPath)

	resolved, err := config.Resolve(root)
	if err != nil {
		return err
	}

	ignorePatterns := resolved.IgnorePatterns
	if filePatterns, err := config.LoadIgnoreFile(root); err == nil {
		ignorePatterns = append(ignorePatterns, filePatterns...)
	}
	if config.NewIgnore(ignorePatterns).Match(filepath.Base(absPath)) {
		if opts.Debug {
			fmt.Fprintf(os.Stderr, "%s: ignored\n", file)
		}
		return nil
	}

	id, err := registry.Create(ctx, root)
	if err != nil {
		return err
	}
	defer registry.Delete(id)

	formatted, err := dispatcher.FormatFile(ctx, dispatch.FileRequest{
		Code:        string(data),
		Parser:      parser,
		Filename:    absPath,
		WorkspaceID: id,
		Options:     resolved.Options,
	})
	if err != nil {
		return err
	}
	if v := resolved.Options.Get("insertFinalNewline"); v.IsBool() {
		formatted = textedit.EnsureFinalNewline(formatted, v.Bool())
	}

	if opts.Write {
		if _, changed := textedit.Minimal(string(data), formatted); !changed {
			return nil
		}
		return os.WriteFile(file, []byte(formatted), 0644)
	}

	_, err = os.Stdout.WriteString(formatted)
	return err
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.BoolVar(&opts.Serve, "serve", false, "Serve format requests over stdio (JSON-RPC)")
	flag.BoolVar(&opts.Write, "w", false, "Write results back to files instead of stdout")
	flag.BoolVar(&opts.Debug, "debug", false, "Enable debug tracing to stderr")
	flag.BoolVar(&opts.Debug, "d", false, "Enable debug tracing to stderr (shorthand)")
	flag.StringVar(&opts.EnginePath, "engine", "", "Path to a formatting engine script")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fmtbridge - workspace-aware formatting host\n\n")
		fmt.Fprintf(os.Stderr, "Usage: fmtbridge [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fmtbridge style.css           Print formatted file to stdout\n")
		fmt.Fprintf(os.Stderr, "  fmtbridge -w style.css        Rewrite the file in place\n")
		fmt.Fprintf(os.Stderr, "  fmtbridge -serve              Serve format requests over stdio\n")
		fmt.Fprintf(os.Stderr, "  fmtbridge -engine fmt.lua a.css  Format with a specific engine\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("fmtbridge %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.Files = flag.Args()
	return opts
}
