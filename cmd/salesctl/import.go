package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/salesboard/internal/catalog"
	"github.com/JonMunkholm/salesboard/internal/config"
	"github.com/JonMunkholm/salesboard/internal/core"
	"github.com/JonMunkholm/salesboard/internal/store"
	"github.com/spf13/cobra"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Store the records of one or more spreadsheets, one upload per file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), root, func(svc *core.Service) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, path := range args {
					res, err := importFile(cmd.Context(), svc, path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					if err := enc.Encode(res); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func importFile(ctx context.Context, svc *core.Service, path string) (*core.UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return svc.Upload(ctx, filepath.Base(path), f)
}

func newRollbackCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rollback <upload-id>",
		Short: "Delete the records stored by one upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), root, func(svc *core.Service) error {
				res, err := svc.RollbackUpload(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rolled back %s: %d records deleted\n", res.UploadID, res.RowsDeleted)
				return nil
			})
		},
	}
}

// withService loads the full configuration, connects to the database and
// runs fn with a Service over it.
func withService(ctx context.Context, root *rootOptions, fn func(*core.Service) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if root.catalogFile != "" {
		cfg.Ingest.CatalogFile = root.catalogFile
	}
	cat, err := catalog.Load(cfg.Ingest.CatalogFile)
	if err != nil {
		return err
	}

	pool, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(core.NewService(st, cat, cfg))
}
