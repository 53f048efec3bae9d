// Package commands implements the CLI commands for docsearch.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/docsearch/cmd"
	"github.com/thoreinstein/docsearch/internal/config"
	"github.com/thoreinstein/docsearch/internal/errors"
	"github.com/thoreinstein/docsearch/internal/logging"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// colorMode holds the value of the --color flag.
var colorMode string

// cfg is the loaded configuration. It holds defaults until initConfig runs.
var cfg = config.Default()

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv, -vvv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or ~/.config/docsearch/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", string(logging.ColorAuto),
		"colorize output: auto, always, never")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("docsearch version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loaded, err := config.Load(configFile)
	if err != nil {
		configLoadErr = err
		return
	}
	cfg = loaded
}

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Search documentation package indexes",
	Long: `docsearch loads the search index generated for a documentation site and
answers queries against it.

Labels are matched case-insensitively, best first: exact matches, then
prefix matches, matches at the start of a dotted segment, substring matches
and finally fuzzy in-order character matches.

Indexes may be the generated JavaScript file (package-search-index.js) or
JSON, YAML or TOML renditions of the same records, optionally gzip (.gz) or
zstd (.zst) compressed.`,
	Example: `  # Search an index
  docsearch query docs/package-search-index.js util

  # Pick an entry interactively
  docsearch browse docs/package-search-index.js

  # Show the package hierarchy below a group
  docsearch tree docs/package-search-index.js mgui.interfaces

  # Serve queries over stdin/stdout
  docsearch serve docs/package-search-index.js --watch

  See Also: docsearch config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("DOCSEARCH_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText, "":
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("invalid log format %q", logFormat), "Use --log-format text or --log-format json")
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports config load and validation errors.
func checkConfig(cmd *cobra.Command) error {
	// doctor reports config problems itself
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return errors.NewConfigError(errors.Wrap(errors.ErrInvalidConfig, strings.Join(msgs, "; ")))
	}

	switch logging.ColorMode(colorMode) {
	case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
	default:
		return errors.NewUserError(errors.Newf("invalid color mode %q", colorMode), "Use --color auto, always or never")
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
