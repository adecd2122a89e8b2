package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	coreapp "monodeps/internal/core/app"
	"monodeps/internal/core/config"
	domainErrors "monodeps/internal/core/errors"
	"monodeps/internal/shared/observability"
)

type globalOptions struct {
	root       string
	configPath string
	format     string
	output     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "monodeps",
		Short:         "Package dependency analysis for monorepos",
		Long:          "monodeps discovers workspace packages, builds their dependency graph and reports cycles, layer violations and other structural anomalies.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := setupLogging(opts.verbose, false, cmd.ErrOrStderr())
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.root, "root", ".", "monorepo root directory")
	flags.StringVar(&opts.configPath, "config", "", "config file (default <root>/monodeps.toml)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: text, json, markdown, dot, mermaid, tsv")
	flags.StringVarP(&opts.output, "output", "o", "", "write output to this file instead of stdout")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newAnalyzeCmd(opts),
		newOrderCmd(opts),
		newTraceCmd(opts),
		newImpactCmd(opts),
		newWatchCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadApp resolves config for the root: .env first, then the TOML file if
// present, then MONODEPS_* overrides, then flags.
func loadApp(cmd *cobra.Command, opts *globalOptions) (*coreapp.App, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", opts.root, err)
	}

	if err := config.LoadDotEnv("."); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}

	configFile := config.FindConfigFile(root, opts.configPath)
	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.Load(configFile)
	} else {
		var found bool
		cfg, found, err = config.LoadOptional(configFile)
		if !found {
			configFile = ""
		}
	}
	if err != nil {
		return nil, err
	}

	config.ApplyEnvOverrides(cfg)
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = opts.output
	}
	if errs := config.Validate(cfg); len(errs) > 0 {
		return nil, domainErrors.Wrap(errors.Join(errs...), domainErrors.CodeValidationError, "invalid configuration")
	}

	paths := config.ResolvePaths(cfg, root, configFile)
	if cmd.Flags().Changed("output") && opts.output != "" {
		// flag paths are relative to the working directory, not the root
		if abs, err := filepath.Abs(opts.output); err == nil {
			paths.OutputPath = abs
		}
	}
	slog.Debug("configuration loaded", "root", paths.Root, "config", paths.ConfigFile, "format", cfg.Output.Format)
	return coreapp.New(cfg, paths)
}

// startTracing exports spans when an OTLP endpoint is configured. The
// returned func flushes them.
func startTracing(cmd *cobra.Command, app *coreapp.App) func() {
	shutdown, err := observability.SetupTracing(cmd.Context(), app.Config.Observability.OTLPEndpoint)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
		return func() {}
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("flush traces", "error", err)
		}
	}
}

// setupLogging installs the default slog logger. Logs go to stderr so
// stdout stays clean for reports; the TUI logs to a file instead.
func setupLogging(verbose, toFile bool, stderr io.Writer) (func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	out := stderr
	closer := func() {}
	if toFile {
		f, err := openLogFile(config.DefaultLogPath())
		if err != nil {
			return closer, err
		}
		out = f
		closer = func() { _ = f.Close() }
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
	return closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir for %s: %w", path, err)
	}
	if fi, err := os.Lstat(path); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return nil, fmt.Errorf("refusing to write logs to symlink path %s", path)
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
}
