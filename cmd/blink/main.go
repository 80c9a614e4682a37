package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexwlchan/blink/internal/config"
	"github.com/alexwlchan/blink/internal/log"
	"github.com/alexwlchan/blink/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// setup loads configuration and the logger, applying command-line overrides
func setup(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("library"); path != "" {
		cfg.Library.Path = path
	}

	logger, closer, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	return &app{cfg: cfg, logger: logger, closer: closer}, nil
}

// openStore opens the configured photo library
func (a *app) openStore() (*store.PhotoStore, error) {
	s, err := store.Open(a.cfg.Library.Path, store.Options{
		MaxIncrementalChanges: a.cfg.Library.MaxIncrementalChanges,
		PreviewLatency:        a.cfg.Library.PreviewLatency,
		Logger:                a.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return s, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blink",
		Short:         "Review a photo library from the terminal",
		Long:          "blink shows one photo at a time so you can approve, reject or flag it for follow-up.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}

	root.PersistentFlags().String("config", "", "config file (default: ~/.config/blink/config.yaml)")
	root.PersistentFlags().String("library", "", "photo library database (overrides library.path)")

	root.AddCommand(
		newSeedCmd(),
		newStatsCmd(),
		newReviewCmd(),
		newFavoriteCmd(),
		newRemoveCmd(),
		newFindCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blink %s\n", Version)
		},
	}
}
