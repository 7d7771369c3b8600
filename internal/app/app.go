// Package app wires the configured components together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abdulachik/axitome/internal/card"
	"github.com/abdulachik/axitome/internal/config"
	"github.com/abdulachik/axitome/internal/db"
	"github.com/abdulachik/axitome/internal/fontmetrics"
	"github.com/abdulachik/axitome/internal/publish"
	"github.com/abdulachik/axitome/internal/quote"
	"github.com/abdulachik/axitome/internal/scheduler"
	"github.com/abdulachik/axitome/internal/selector"
)

// App is the main application container holding all dependencies.
type App struct {
	Config    *config.Config
	Corpus    *quote.Corpus
	Measurer  *fontmetrics.Measurer
	Builder   *card.Builder
	Publisher *publish.Outbox
	Store     *db.Store // nil until OpenStore
}

// New loads the corpus and builds the card pipeline. It does not touch
// the database.
func New(cfg *config.Config) (*App, error) {
	corpus, err := quote.Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	cardCfg := cfg.CardConfig()
	m := fontmetrics.New()
	if _, err := m.Measure("Aa", cardCfg.TextFont.WithSize(cardCfg.Sizes.LargePx)); err != nil {
		return nil, fmt.Errorf("font family %q: %w", cfg.FontFamily, err)
	}

	sel := selector.New(cfg.Epoch, cfg.Location)
	slog.Debug("corpus loaded", "path", cfg.CorpusPath, "quotes", corpus.Len())

	return &App{
		Config:    cfg,
		Corpus:    corpus,
		Measurer:  m,
		Builder:   card.NewBuilder(corpus, sel, m, cardCfg),
		Publisher: publish.NewOutbox(cfg.OutboxDir),
	}, nil
}

// OpenStore opens and migrates the run ledger.
func (a *App) OpenStore(ctx context.Context) (*db.Store, error) {
	if a.Store != nil {
		return a.Store, nil
	}

	store, err := db.NewStore(ctx, a.Config.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	a.Store = store
	return store, nil
}

// Scheduler returns a daily scheduler over the app's components.
// OpenStore must have been called.
func (a *App) Scheduler() *scheduler.Scheduler {
	return scheduler.New(scheduler.Config{
		Builder:   a.Builder,
		Store:     a.Store,
		Publisher: a.Publisher,
		Platform:  a.Config.Platform.Name,
	})
}

// Close closes all resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
