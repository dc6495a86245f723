package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/index"
	"github.com/atelier-vision/zoocard/internal/linkcheck"
	"github.com/atelier-vision/zoocard/internal/metrics"
	httpserver "github.com/atelier-vision/zoocard/internal/server/http"
	"github.com/atelier-vision/zoocard/internal/store"
)

// serveCommand runs the index server: initial build, watchers for config
// and docs-tree changes, HTTP API with metrics.
func serveCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the results index over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := opts.load()
			if err != nil {
				return err
			}

			m, err := metrics.New(prometheus.NewRegistry())
			if err != nil {
				return err
			}

			builder, err := index.NewBuilder(cfg)
			if err != nil {
				return err
			}

			rebuild := func(reason string) error {
				summary, err := builder.Build(ctx)
				if err != nil {
					slog.Error("Index rebuild failed", "reason", reason, "error", err)
					return err
				}
				m.ObserveBuild(summary)

				active := builder.Config()
				if db := active.Index.Database; db != "" {
					if err := persistIndex(db, builder.Registry()); err != nil {
						slog.Error("Failed to persist index", "error", err)
					}
				}
				if active.LinkCheck.Enabled {
					checkArtifactLinks(ctx, active.LinkCheck, builder.Registry(), m)
				}
				return nil
			}

			if err := rebuild("startup"); err != nil {
				// a cold start with the zoo unavailable can still serve
				// the last persisted index
				if db := cfg.Index.Database; db != "" {
					if err := seedFromStore(db, builder.Registry()); err != nil {
						slog.Error("Failed to load stored index", "database", db, "error", err)
					}
				}
			}

			watcher, err := config.NewWatcher(opts.configPath, opts.schemaPath, func(reloaded *config.Config, err error) {
				if err != nil {
					slog.Error("Failed to reload config", "error", err)
					return
				}
				if err := builder.Reconfigure(reloaded); err != nil {
					slog.Error("Failed to apply reloaded config", "error", err)
					return
				}
				rebuild("config reload")
			})
			if err != nil {
				return err
			}
			defer func() {
				slog.Info("Shutting down", "config_reloads", watcher.ReloadCount())
			}()

			treeWatcher, err := index.NewTreeWatcher(docRoots(cfg, builder.ZooRoot()), func() {
				rebuild("docs change")
			})
			if err != nil {
				return err
			}
			defer treeWatcher.Close()

			server := httpserver.New(cfg.ListenAddr(), builder, m)
			slog.Info("Serving index", "addr", cfg.ListenAddr(), "zoo_root", builder.ZooRoot())
			return server.Start(ctx)
		},
	}

	return cmd
}

// checkArtifactLinks verifies every indexed card's artifact links and
// records the outcomes.
func checkArtifactLinks(ctx context.Context, cfg config.LinkCheckConfig, registry *index.Registry, m *metrics.Metrics) {
	var refs []linkcheck.Ref
	for _, entry := range registry.List() {
		refs = append(refs, linkcheck.Collect(entry.Card)...)
	}

	results, err := linkcheck.New(cfg).CheckAll(ctx, refs)
	if err != nil {
		slog.Error("Link check aborted", "error", err)
		return
	}
	m.ObserveLinkChecks(results)

	bad := 0
	for _, r := range results {
		if r.Status != linkcheck.StatusOK {
			bad++
			slog.Warn("Bad artifact link", "card_id", r.CardID, "kind", r.Kind, "url", r.URL, "status", r.Status)
		}
	}
	slog.Info("Link check finished", "links", len(results), "bad", bad)
}

// seedFromStore fills the registry with the last persisted index.
func seedFromStore(path string, registry *index.Registry) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.Entries()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		registry.Set(entry)
	}

	slog.Info("Serving stored index", "database", path, "cards", len(entries))
	return nil
}

// docRoots resolves the configured docs subtrees to absolute paths.
func docRoots(cfg *config.Config, zooRoot string) []string {
	docs := cfg.Zoo.Docs
	if len(docs) == 0 {
		return []string{zooRoot}
	}

	roots := make([]string, 0, len(docs))
	for _, sub := range docs {
		roots = append(roots, filepath.Join(zooRoot, filepath.FromSlash(sub)))
	}
	return roots
}
