package main

import (
	"log/slog"

	"github.com/JonMunkholm/salesboard/internal/catalog"
	"github.com/JonMunkholm/salesboard/internal/config"
	"github.com/JonMunkholm/salesboard/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	catalogFile string
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Check and import branch sales spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is fine; real environment variables win.
			_ = godotenv.Load()
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "YAML catalog file (default: $CATALOG_FILE or the built-in catalog)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(
		newCheckCmd(&opts),
		newImportCmd(&opts),
		newRollbackCmd(&opts),
		newCatalogCmd(&opts),
	)
	return cmd
}

// loadIngest reads the ingest settings and the catalog they point at. The
// --catalog flag overrides CATALOG_FILE.
func (o *rootOptions) loadIngest() (config.IngestConfig, catalog.Catalog, error) {
	var cfg config.IngestConfig
	if err := config.LoadInto(&cfg); err != nil {
		return cfg, catalog.Catalog{}, err
	}
	if o.catalogFile != "" {
		cfg.CatalogFile = o.catalogFile
	}
	cat, err := catalog.Load(cfg.CatalogFile)
	return cfg, cat, err
}
