// Package cli implements the briefing command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jimdaga/first-sip/internal/config"
	"github.com/jimdaga/first-sip/internal/logging"
)

var (
	version = "dev"
	commit  = "unknown"
)

type rootOptions struct {
	configPath string
	verbose    bool
	plain      bool
}

// NewRootCommand builds the briefing command tree. Running it without a
// subcommand starts the chat loop.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "briefing",
		Short: "Chat with your daily briefing",
		Long: `Gathers your goals and tasks from Notion and today's events from Google
Calendar, asks Gemini for a daily briefing, then lets you follow up.

Quick Start:
  briefing              # Generate a briefing and chat about it
  briefing once         # Print a single briefing and exit
  briefing watch        # Print scheduled briefings as they are generated`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&opts.plain, "plain", false, "print replies without markdown rendering")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	chat := newChatCommand(opts)
	root.RunE = chat.RunE
	root.AddCommand(chat, newOnceCommand(opts), newWatchCommand(opts))

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

// setup loads configuration and installs the CLI logger. Logs go to
// stderr so stdout stays readable.
func (o *rootOptions) setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger := logging.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
