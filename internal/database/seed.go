package database

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jimdaga/first-sip/internal/models"
)

// SeedDevData archives one sample briefing so the archive endpoints have
// something to show in development. Idempotent: skips if any completed
// briefing exists.
func SeedDevData(ctx context.Context, store *BriefingStore, logger *slog.Logger) error {
	if _, err := store.Latest(ctx); err == nil {
		logger.Info("Seed data already exists, skipping")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	briefing, err := store.Create(ctx, models.BriefingSourceManual)
	if err != nil {
		return err
	}

	content := models.BriefingContent{
		Prompt: "\n## My Personal Context & Directives\n\n\n## Daily Briefing Data\n" +
			"Annual Goals: Ship v2\nQuarterly Goals: Hire two engineers\nWeekly Goals: Inbox zero\n" +
			"Daily Tasks: Review PRs\nCalendar Events Today: Standup (Start: 8/1/2025, 9:00:00 AM)\n",
		Briefing: "Good morning! Standup is at 9:00. Today's focus: review the open PRs to keep v2 on track.",
	}
	if err := store.Complete(ctx, briefing.ID, content, time.Now()); err != nil {
		return err
	}

	logger.Info("Seeded dev data: 1 completed briefing", "briefing_id", briefing.ID)
	return nil
}
