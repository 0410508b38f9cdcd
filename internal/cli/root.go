// Package cli wires configuration, logging and the browsing session into the
// charbrowser command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/glabrego/charbrowser/internal/config"
	"github.com/glabrego/charbrowser/internal/logging"
	"github.com/glabrego/charbrowser/internal/tui"
)

type rootOptions struct {
	apiBaseURL string
	timeout    time.Duration
	cacheDB    string
	logLevel   string
	logPath    string

	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

// NewRootCommand builds the command tree. out and errOut receive all command
// output; logs only ever go to the log file.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "charbrowser",
		Short: "Browse the Rick and Morty character catalogue from the terminal",
		Long: `charbrowser pages through the Rick and Morty API one page at a time,
caching every page, portrait and episode name it has already fetched.

Run without a subcommand to open the interactive browser.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return opts.teardown()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), opts.cfg, opts.logger)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	defaults := config.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiBaseURL, "api", defaults.APIBaseURL, "API base URL")
	flags.DurationVar(&opts.timeout, "timeout", defaults.RequestTimeout, "per-request timeout")
	flags.StringVar(&opts.cacheDB, "cache-db", "", "sqlite file for the persistent image and episode cache")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logPath, "log-path", defaults.LogPath, "log file path")

	rootCmd.AddCommand(
		newTUICommand(opts),
		newListCommand(opts),
		newShowCommand(opts),
	)
	return rootCmd
}

func newTUICommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return tui.Run(cmd.Context(), opts.cfg, opts.logger)
		},
	}
}

// setup resolves the config from the environment, then applies the flags the
// user actually passed on top of it.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("api") {
		cfg.APIBaseURL = o.apiBaseURL
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}
	if flags.Changed("cache-db") {
		cfg.CacheDBPath = o.cacheDB
	}
	if flags.Changed("log-path") {
		cfg.LogPath = o.logPath
	}
	if flags.Changed("log-level") {
		level, err := config.ParseLogLevel(o.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger, closer, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger.With("command", cmd.Name())
	o.closer = closer
	return nil
}

func (o *rootOptions) teardown() error {
	if o.closer == nil {
		return nil
	}
	err := o.closer.Close()
	o.closer = nil
	return err
}

// Execute runs the command tree against the process streams and exits
// non-zero on failure.
func Execute(ctx context.Context) {
	rootCmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
