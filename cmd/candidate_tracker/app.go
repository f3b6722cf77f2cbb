package main

import (
	"context"
	"fmt"

	"github.com/jonathan/candidate-tracker/internal/bulk"
	"github.com/jonathan/candidate-tracker/internal/config"
	"github.com/jonathan/candidate-tracker/internal/db"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/llm"
	"github.com/jonathan/candidate-tracker/internal/memstore"
	"github.com/jonathan/candidate-tracker/internal/notify"
	"github.com/jonathan/candidate-tracker/internal/scoring"
	"github.com/jonathan/candidate-tracker/internal/screening"
	"go.uber.org/zap"
)

// store is what the app needs from a backend.
type store interface {
	lifecycle.Repository
	Ping(ctx context.Context) error
}

// app holds the wired services for one command invocation.
type app struct {
	store     store
	lifecycle *lifecycle.Service
	screening *screening.Service
	bulk      *bulk.Coordinator
	closers   []func()
}

// buildApp connects the configured store, scorer and notifier and wires the services.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.store = st
	if pg, ok := st.(*db.DB); ok {
		a.closers = append(a.closers, pg.Close)
	}

	scorer, err := buildScorer(ctx, cfg, logger, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	dispatcher := notify.NewWebhookDispatcher(cfg.Notifications, logger.Named("notify"))
	a.lifecycle = lifecycle.NewService(st, dispatcher, cfg.Lifecycle, logger.Named("lifecycle"))
	a.screening = screening.NewService(scorer, st, a.lifecycle, cfg.Classification, logger.Named("screening"))
	a.bulk = bulk.NewCoordinator(a.lifecycle, cfg.Bulk.Concurrency, logger.Named("bulk"))
	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory store; candidates are lost on exit")
		return memstore.New(), nil
	default:
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		return database, nil
	}
}

// buildScorer returns nil when scoring is disabled; Screen then reports
// screening.ErrScoringDisabled and only recording precomputed results works.
func buildScorer(ctx context.Context, cfg *config.Config, logger *zap.Logger, a *app) (scoring.Scorer, error) {
	switch cfg.Scoring.Provider {
	case config.ScoringWebhook:
		s, err := scoring.NewWebhookScorer(cfg.Scoring.Webhook, logger.Named("scoring"))
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook scorer: %w", err)
		}
		return s, nil
	case config.ScoringGemini:
		client, err := llm.NewGeminiClient(ctx, &cfg.Scoring.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return scoring.NewGeminiScorer(client, cfg.Scoring.Gemini.Tier, logger.Named("scoring")), nil
	default:
		return nil, nil
	}
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
