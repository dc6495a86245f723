package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/store"
)

// indexCommand builds the results index and writes it out.
func indexCommand(opts *rootOptions) *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the results index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Index.Output = output
			}
			if format != "" {
				cfg.Index.Format = config.IndexFormat(format)
			}

			builder, err := index.NewBuilder(cfg)
			if err != nil {
				return err
			}

			summary, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}

			out, err := index.Render(builder.Registry().List(), cfg.Index.Format)
			if err != nil {
				return err
			}

			if cfg.Index.Output == "-" {
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			} else {
				if err := os.WriteFile(cfg.Index.Output, out, 0o644); err != nil {
					return fmt.Errorf("failed to write index: %w", err)
				}
				slog.Info("Index written", "path", cfg.Index.Output, "cards", summary.Cards, "rows", summary.Rows)
			}

			if cfg.Index.Database != "" {
				if err := persistIndex(cfg.Index.Database, builder.Registry()); err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Index output path (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Index format (markdown or json)")

	return cmd
}

// persistIndex writes the registry contents to the SQLite index database.
func persistIndex(path string, registry *index.Registry) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ReplaceIndex(registry.List()); err != nil {
		return err
	}

	slog.Info("Index persisted", "database", path, "cards", registry.Len())
	return nil
}
