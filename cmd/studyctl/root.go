package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"studycapture/infrastructure/config"
	"studycapture/infrastructure/di"
	"studycapture/infrastructure/persistence/sqlite"

	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	configFile string
	dbPath     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "studyctl",
		Short: "Inspect and feed the study-note store",
		Long: `studyctl reads the local SQLite store written by the capture API and can
capture new notes through the same classify → store → mirror pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (overrides CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite file (overrides DB_PATH)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newStatsCmd(opts),
		newTopicsCmd(opts),
		newNotesCmd(opts),
		newNoteCmd(opts),
		newCaptureCmd(opts),
	)
	return root
}

// config loads the process configuration and applies the shared flags.
// The CLI never serves metrics or exports traces.
func (o *options) config() (*config.Config, error) {
	path := o.configFile
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadFrom(path, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	cfg.Observability.LogLevel = "warn"
	if o.verbose {
		cfg.Observability.LogLevel = "debug"
	}
	cfg.Features.EnableMetrics = false
	cfg.Features.EnableTracing = false
	return cfg, cfg.Validate()
}

// openStore opens an existing store. Unlike the server it refuses to create
// a new file, so a mistyped path is reported rather than silently empty.
func (o *options) openStore(ctx context.Context) (*sqlite.Store, func(), error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	if _, err := os.Stat(cfg.Store.Path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("database not found: %s (run the server first to create it)", cfg.Store.Path)
	}

	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, cleanup, err := di.ProvideStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		cleanup()
		_ = logger.Sync()
	}, nil
}
