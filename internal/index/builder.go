package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/atelier-vision/zoocard/internal/card"
	"github.com/atelier-vision/zoocard/internal/config"
	"github.com/atelier-vision/zoocard/internal/lint"
	"github.com/atelier-vision/zoocard/internal/xfs"
)

// Builder walks the zoo's documentation subtrees, parses and lints every
// model card, and reconciles the registry against what is on disk.
type Builder struct {
	registry *Registry
	runner   *lint.Runner
	zooRoot  string
	cfg      *config.Config
	mu       sync.RWMutex
}

// NewBuilder creates a builder for the given config.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	zooRoot, err := cfg.ZooRoot()
	if err != nil {
		return nil, err
	}

	return &Builder{
		registry: NewRegistry(),
		runner:   lint.NewRunner(zooRoot, cfg.Lint, nil),
		zooRoot:  zooRoot,
		cfg:      cfg,
	}, nil
}

// Registry returns the card registry.
func (b *Builder) Registry() *Registry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.registry
}

// ZooRoot returns the resolved zoo root directory.
func (b *Builder) ZooRoot() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.zooRoot
}

// Config returns the builder's active config.
func (b *Builder) Config() *config.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cfg
}

// Reconfigure swaps the builder's config, used on hot reload. The next
// Build picks up the new docs subtrees and lint options.
func (b *Builder) Reconfigure(cfg *config.Config) error {
	zooRoot, err := cfg.ZooRoot()
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.cfg = cfg
	b.zooRoot = zooRoot
	b.runner = lint.NewRunner(zooRoot, cfg.Lint, nil)
	return nil
}

// Build scans the docs subtrees and rebuilds the index. Card-level
// problems never abort the build; they surface as findings on the entry.
func (b *Builder) Build(ctx context.Context) (*Summary, error) {
	b.mu.RLock()
	cfg, runner, zooRoot := b.cfg, b.runner, b.zooRoot
	b.mu.RUnlock()

	start := time.Now()

	ids, err := b.collect(cfg, zooRoot)
	if err != nil {
		return nil, err
	}

	workers := cfg.Index.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		loadedMu sync.Mutex
		loaded   = make(map[string]bool)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			source, err := os.ReadFile(filepath.Join(zooRoot, filepath.FromSlash(id)))
			if err != nil {
				// a vanished or unreadable card must not sink the whole
				// build; it surfaces as a finding on the entry
				b.registry.Set(failedEntry(id, err))
				loadedMu.Lock()
				loaded[id] = true
				loadedMu.Unlock()

				slog.Warn("Failed to read card", "card_id", id, "error", err)
				return nil
			}

			c := card.Parse(id, source)
			if !c.IsModelCard() {
				// plain documentation, not a card
				return nil
			}

			entry := &Entry{
				Card:      c,
				Findings:  runner.Lint(c),
				IndexedAt: time.Now(),
			}
			b.registry.Set(entry)

			loadedMu.Lock()
			loaded[id] = true
			loadedMu.Unlock()

			slog.Debug("Card indexed", "card_id", id, "tables", len(c.Tables), "findings", len(entry.Findings))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Drop entries whose files disappeared since the last build.
	for _, entry := range b.registry.List() {
		if !loaded[entry.Card.ID] {
			b.registry.Delete(entry.Card.ID)
			slog.Info("Card removed from index", "card_id", entry.Card.ID)
		}
	}

	summary := summarize(b.registry.List(), time.Since(start))
	slog.Info("Index built",
		"cards", summary.Cards,
		"tables", summary.Tables,
		"rows", summary.Rows,
		"duration", summary.Duration,
	)

	return summary, nil
}

// failedEntry records a card that could not be read.
func failedEntry(id string, err error) *Entry {
	return &Entry{
		Card: &card.Card{ID: id},
		Findings: []lint.Finding{{
			Rule:     "parse",
			Severity: lint.SeverityError,
			CardID:   id,
			Message:  fmt.Sprintf("failed to read card: %v", err),
		}},
		IndexedAt: time.Now(),
	}
}

// collect gathers the candidate markdown paths (relative to the zoo root)
// across the configured docs subtrees.
func (b *Builder) collect(cfg *config.Config, zooRoot string) ([]string, error) {
	docs := cfg.Zoo.Docs
	if len(docs) == 0 {
		docs = []string{"."}
	}

	var ids []string
	for _, sub := range docs {
		dir := filepath.Join(zooRoot, filepath.FromSlash(sub))
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("docs subtree %s: %w", sub, err)
		}

		rels, err := xfs.FindMarkdown(dir, cfg.Zoo.Exclude)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", sub, err)
		}

		for _, rel := range rels {
			if sub == "." {
				ids = append(ids, rel)
			} else {
				ids = append(ids, filepath.ToSlash(filepath.Join(sub, rel)))
			}
		}
	}

	return ids, nil
}
