// Package app wires configuration to the briefing service and its
// optional background infrastructure.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/calendar"
	"github.com/jimdaga/first-sip/internal/config"
	"github.com/jimdaga/first-sip/internal/database"
	"github.com/jimdaga/first-sip/internal/gemini"
	"github.com/jimdaga/first-sip/internal/notion"
	"github.com/jimdaga/first-sip/internal/streams"
	"github.com/jimdaga/first-sip/internal/worker"
)

// NewBriefingService builds the briefing service from configuration.
func NewBriefingService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*briefing.Service, error) {
	loc := cfg.Location()

	goals := notion.NewCollector(
		notion.NewClient(cfg.NotionAPIKey),
		notion.Databases{
			AnnualGoals:    cfg.NotionAnnualGoalsDBID,
			QuarterlyGoals: cfg.NotionQuarterlyGoalsDBID,
			WeeklyGoals:    cfg.NotionWeeklyGoalsDBID,
			DailyPlanner:   cfg.NotionDailyPlannerDBID,
		},
		loc,
	)

	calendarService, err := calendar.NewService(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	events := calendar.NewCollector(calendarService, cfg.GoogleCalendarID, loc)

	chat, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return briefing.NewService(goals, events, chat, briefing.Options{
		ContextDir:      cfg.ContextDir,
		Location:        loc,
		MaxHistoryTurns: cfg.MaxHistoryTurns,
		Logger:          logger,
	}), nil
}

// Background holds the archive and queue infrastructure used for
// scheduled briefings.
type Background struct {
	Store     *database.BriefingStore
	Enqueuer  *worker.Enqueuer
	Publisher *streams.Publisher

	closers []func() error
}

// StartBackground connects to Postgres and Redis, migrates the archive
// schema and starts the worker and scheduler. Stop releases everything.
func StartBackground(ctx context.Context, cfg *config.Config, svc *briefing.Service, logger *slog.Logger) (*Background, error) {
	bg := &Background{}
	ok := false
	defer func() {
		if !ok {
			bg.Stop()
		}
	}()

	db, err := database.Init(ctx, cfg.DatabaseURL, database.DefaultPoolConfig)
	if err != nil {
		return nil, err
	}
	bg.closers = append(bg.closers, func() error { return database.Close(db) })

	if err := database.RunMigrations(db, logger); err != nil {
		return nil, err
	}
	bg.Store = database.NewBriefingStore(db)

	if cfg.Env == "development" {
		if err := database.SeedDevData(ctx, bg.Store, logger); err != nil {
			logger.Warn("Failed to seed dev data", "error", err)
		}
	}

	bg.Enqueuer, err = worker.NewEnqueuer(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	bg.closers = append(bg.closers, bg.Enqueuer.Close)

	bg.Publisher, err = streams.NewPublisher(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	bg.closers = append(bg.closers, bg.Publisher.Close)

	processor := worker.NewProcessor(bg.Store, svc, bg.Enqueuer, bg.Publisher, logger)
	stopWorker, err := worker.Start(cfg, processor, logger)
	if err != nil {
		return nil, err
	}
	bg.closers = append(bg.closers, func() error { stopWorker(); return nil })

	stopScheduler, err := worker.StartScheduler(cfg, logger)
	if err != nil {
		return nil, err
	}
	bg.closers = append(bg.closers, func() error { stopScheduler(); return nil })

	ok = true
	return bg, nil
}

// Stop shuts the background components down in reverse start order.
func (b *Background) Stop() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
