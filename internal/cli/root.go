// Package cli wires the catalog, schema, preview and render packages into
// cobra commands.
package cli

import (
	"errors"
	"io/fs"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hdx-stable-schema/internal/catalog"
	"github.com/hdx-stable-schema/internal/common/config"
	"github.com/hdx-stable-schema/internal/common/logger"
	"github.com/hdx-stable-schema/internal/preview"
	"github.com/hdx-stable-schema/internal/render"
)

const Version = "0.1.0"

// app holds what every command needs. It is filled in by the root
// command's pre-run hook, after flags are parsed.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	loader catalog.Loader
	runID  string
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.New(cmd.OutOrStdout())
}

func (a *app) fetcher(rows int) *preview.Fetcher {
	cfg := a.cfg.Preview
	if rows > 0 {
		cfg.Rows = rows
	}
	downloader := preview.NewHTTPDownloader(cfg.Timeout, a.cfg.HDX.UserAgent, a.log)
	return preview.NewFetcher(cfg, downloader, a.log)
}

// NewRootCmd builds the hdx-schema command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var (
		envFile  string
		logLevel string
		site     string
	)

	rootCmd := &cobra.Command{
		Use:     "hdx-schema",
		Short:   "Tools for exploring schema in HDX",
		Version: Version,
		Long: `hdx-schema reads dataset metadata from the Humanitarian Data Exchange
(or a saved package_show response) and reports resource check history,
schemas shared between resources, data dictionaries and data previews.

A SOURCE is either a path to a saved metadata JSON file or an HDX dataset
id or name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}
			if site != "" {
				cfg.HDX.Site = site
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			loggerConfig := logger.DefaultLoggerConfig()
			loggerConfig.Level = logger.ParseLogLevel(cfg.Logging.Level)
			loggerConfig.File = cfg.Logging.FilePath != ""
			loggerConfig.FilePath = cfg.Logging.FilePath
			loggerConfig.TimeFieldFormat = time.RFC3339

			a.runID = uuid.NewString()
			a.cfg = cfg
			a.log = logger.NewFromConfig(loggerConfig).With("run_id", a.runID)
			a.loader = catalog.NewSourceLoader(catalog.NewHTTPMetadataFetcher(cfg.HDX, a.log), a.log)

			a.log.Info("hdx-schema starting",
				"version", Version,
				"command", cmd.Name(),
				"site", cfg.HDX.Site,
				"log_level", cfg.Logging.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load if present")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().StringVar(&site, "site", "", "HDX site URL; overrides HDX_SITE")

	rootCmd.AddCommand(resourcesCmd(a))
	rootCmd.AddCommand(schemasCmd(a))
	rootCmd.AddCommand(previewCmd(a))
	rootCmd.AddCommand(showCmd(a))
	rootCmd.AddCommand(cleanCmd(a))

	return rootCmd
}
