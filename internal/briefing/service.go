package briefing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jimdaga/first-sip/internal/calendar"
	"github.com/jimdaga/first-sip/internal/notion"
)

// GoalSource fetches the four goal and task categories.
type GoalSource interface {
	AnnualGoals(ctx context.Context) ([]notion.Record, error)
	QuarterlyGoals(ctx context.Context) ([]notion.Record, error)
	WeeklyGoals(ctx context.Context) ([]notion.Record, error)
	DailyTasks(ctx context.Context) ([]notion.Record, error)
}

// EventSource fetches today's calendar events.
type EventSource interface {
	TodayEvents(ctx context.Context) ([]*calendar.Event, error)
}

// ChatService opens a chat session with history and sends prompt as the
// live message. History must open with a user turn.
type ChatService interface {
	Send(ctx context.Context, history []Turn, prompt string) (string, error)
}

// Exchange is the outcome of one conversational request.
type Exchange struct {
	// Reply is the AI's answer to the live message.
	Reply string
	// Transcript is the history that was sent followed by the live message
	// and the reply. It opens with a user turn and can be sent back as
	// history on the next request.
	Transcript []Turn
}

// Options configures a Service.
type Options struct {
	ContextDir      string
	Location        *time.Location
	MaxHistoryTurns int
	Logger          *slog.Logger
}

// Service gathers briefing data and talks to the AI service.
type Service struct {
	goals  GoalSource
	events EventSource
	chat   ChatService
	opts   Options
	logger *slog.Logger
}

// NewService creates a briefing service from its collaborators.
func NewService(goals GoalSource, events EventSource, chat ChatService, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		goals:  goals,
		events: events,
		chat:   chat,
		opts:   opts,
		logger: logger,
	}
}

// Prompt fetches every source concurrently and assembles the briefing
// prompt. Any failing source fails the whole prompt.
func (s *Service) Prompt(ctx context.Context) (string, error) {
	s.logger.Info("Gathering your data...")
	started := time.Now()

	var (
		contextBlob string
		in          Sources
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contextBlob, err = LoadContext(s.opts.ContextDir)
		return err
	})
	g.Go(func() error {
		var err error
		in.AnnualGoals, err = s.goals.AnnualGoals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.QuarterlyGoals, err = s.goals.QuarterlyGoals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.WeeklyGoals, err = s.goals.WeeklyGoals(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.DailyTasks, err = s.goals.DailyTasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		in.Events, err = s.events.TodayEvents(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("Error gathering data for briefing prompt", "error", err)
		return "", fmt.Errorf("%w: failed to gather data for the briefing prompt: %w", ErrUpstream, err)
	}

	s.logger.Debug(
		"Briefing data gathered",
		"annual_goals", len(in.AnnualGoals),
		"quarterly_goals", len(in.QuarterlyGoals),
		"weekly_goals", len(in.WeeklyGoals),
		"daily_tasks", len(in.DailyTasks),
		"events", len(in.Events),
		"duration", time.Since(started),
	)

	return Assemble(contextBlob, in, s.opts.Location), nil
}

// Respond continues (or starts, when history is empty) a conversation.
func (s *Service) Respond(ctx context.Context, history []Turn, message string) (Exchange, error) {
	plan, err := Reconcile(ctx, history, message, s.Prompt)
	if err != nil {
		return Exchange{}, err
	}

	sent := TrimHistory(plan.History, s.opts.MaxHistoryTurns)
	if len(sent) < len(plan.History) {
		s.logger.Info("History trimmed", "from", len(plan.History), "to", len(sent))
	}

	reply, err := s.chat.Send(ctx, sent, plan.Prompt)
	if err != nil {
		s.logger.Error("AI chat request failed", "history_turns", len(sent), "error", err)
		return Exchange{}, fmt.Errorf("%w: chat request failed: %w", ErrUpstream, err)
	}

	transcript := make([]Turn, 0, len(sent)+2)
	transcript = append(transcript, sent...)
	transcript = append(transcript, UserTurn(plan.Prompt), ModelTurn(reply))

	return Exchange{Reply: reply, Transcript: transcript}, nil
}

// Generate produces a single-shot briefing with no prior history.
func (s *Service) Generate(ctx context.Context) (Exchange, error) {
	return s.Respond(ctx, nil, "")
}
