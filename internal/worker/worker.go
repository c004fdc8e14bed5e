package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jimdaga/first-sip/internal/briefing"
	"github.com/jimdaga/first-sip/internal/config"
	"github.com/jimdaga/first-sip/internal/database"
	"github.com/jimdaga/first-sip/internal/models"
	"github.com/jimdaga/first-sip/internal/streams"
)

// Store is the part of the briefing archive the worker writes to.
type Store interface {
	Create(ctx context.Context, source string) (*models.Briefing, error)
	Get(ctx context.Context, id uint) (*models.Briefing, error)
	MarkProcessing(ctx context.Context, id uint) error
	Complete(ctx context.Context, id uint, content models.BriefingContent, generatedAt time.Time) error
	Fail(ctx context.Context, id uint, message string) error
}

// Generator produces a single-shot briefing.
type Generator interface {
	Generate(ctx context.Context) (briefing.Exchange, error)
}

// Enqueue schedules generation of an archived briefing.
type Enqueue interface {
	EnqueueGenerateBriefing(ctx context.Context, briefingID uint) error
}

// Publisher announces completed briefings.
type Publisher interface {
	PublishBriefing(ctx context.Context, event streams.BriefingEvent) (string, error)
}

// Processor holds the task handlers and their dependencies.
type Processor struct {
	store     Store
	generator Generator
	enqueue   Enqueue
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewProcessor wires the task handlers. publisher may be nil, in which case
// completed briefings are only archived.
func NewProcessor(store Store, generator Generator, enqueue Enqueue, publisher Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		store:     store,
		generator: generator,
		enqueue:   enqueue,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// asynqLoggerAdapter wraps slog.Logger to implement asynq.Logger interface
type asynqLoggerAdapter struct {
	logger *slog.Logger
}

// Implement asynq.Logger interface methods
func (a *asynqLoggerAdapter) Debug(args ...interface{}) {
	a.logger.Debug(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Info(args ...interface{}) {
	a.logger.Info(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Warn(args ...interface{}) {
	a.logger.Warn(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Error(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
}

func (a *asynqLoggerAdapter) Fatal(args ...interface{}) {
	a.logger.Error(fmt.Sprint(args...))
	panic(fmt.Sprint(args...))
}

// Start starts the Asynq worker in non-blocking mode and returns a stop function
// so the caller can coordinate shutdown with the HTTP server.
func Start(cfg *config.Config, processor *Processor, logger *slog.Logger) (stop func(), err error) {
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:     2,
			ShutdownTimeout: 30 * time.Second,
			ErrorHandler:    asynq.ErrorHandlerFunc(makeErrorHandler(logger)),
			Logger:          &asynqLoggerAdapter{logger: logger},
		},
	)

	if err := srv.Start(processor.Mux()); err != nil {
		return nil, fmt.Errorf("failed to start worker: %w", err)
	}

	logger.Info("Worker started", "concurrency", 2)
	return func() { srv.Shutdown() }, nil
}

// Mux routes each task type to its handler.
func (p *Processor) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskGenerateBriefing, p.HandleGenerateBriefing)
	mux.HandleFunc(TaskScheduledBriefing, p.HandleScheduledBriefing)
	return mux
}

// HandleScheduledBriefing archives a pending scheduled briefing and queues
// its generation, so retries of the generation reuse the same row.
func (p *Processor) HandleScheduledBriefing(ctx context.Context, task *asynq.Task) error {
	b, err := p.store.Create(ctx, models.BriefingSourceScheduled)
	if err != nil {
		return fmt.Errorf("failed to create scheduled briefing: %w", err)
	}

	if err := p.enqueue.EnqueueGenerateBriefing(ctx, b.ID); err != nil {
		if failErr := p.store.Fail(ctx, b.ID, "Failed to enqueue generation task"); failErr != nil {
			p.logger.Error("Failed to mark briefing failed", "briefing_id", b.ID, "error", failErr)
		}
		return fmt.Errorf("failed to enqueue scheduled briefing: %w", err)
	}

	p.logger.Info("Scheduled briefing queued", "briefing_id", b.ID)
	return nil
}

// HandleGenerateBriefing generates the briefing named in the task payload
// and stores the result.
func (p *Processor) HandleGenerateBriefing(ctx context.Context, task *asynq.Task) error {
	var payload generatePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Invalid payload - don't retry
		return fmt.Errorf("invalid payload: %w", asynq.SkipRetry)
	}

	b, err := p.store.Get(ctx, payload.BriefingID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			p.logger.Error("Briefing not found", "briefing_id", payload.BriefingID)
			return fmt.Errorf("briefing not found: %w", asynq.SkipRetry)
		}
		// Database error - retryable
		return fmt.Errorf("failed to fetch briefing: %w", err)
	}

	if b.Status == models.BriefingStatusCompleted {
		p.logger.Info("Briefing already completed, skipping", "briefing_id", b.ID)
		return nil
	}

	p.logger.Info("Processing briefing:generate task", "briefing_id", b.ID, "source", b.Source)

	if err := p.store.MarkProcessing(ctx, b.ID); err != nil {
		return err
	}

	exchange, err := p.generator.Generate(ctx)
	if err != nil {
		if failErr := p.store.Fail(ctx, b.ID, "Failed to generate briefing."); failErr != nil {
			p.logger.Error("Failed to mark briefing failed", "briefing_id", b.ID, "error", failErr)
		}
		p.logger.Error("Briefing generation failed", "briefing_id", b.ID, "error", err)
		return fmt.Errorf("briefing generation failed: %w", err)
	}

	content := models.BriefingContent{Briefing: exchange.Reply}
	if len(exchange.Transcript) > 0 {
		content.Prompt = exchange.Transcript[0].Text()
	}

	generatedAt := p.now()
	if err := p.store.Complete(ctx, b.ID, content, generatedAt); err != nil {
		return fmt.Errorf("failed to update briefing: %w", err)
	}

	p.logger.Info("Briefing generation completed", "briefing_id", b.ID)
	p.publish(ctx, streams.BriefingEvent{
		BriefingID:  b.ID,
		Source:      b.Source,
		Briefing:    exchange.Reply,
		GeneratedAt: generatedAt,
	})
	return nil
}

// publish announces a completed briefing. The archive is the source of
// truth, so a publish failure is logged and not retried.
func (p *Processor) publish(ctx context.Context, event streams.BriefingEvent) {
	if p.publisher == nil {
		return
	}
	msgID, err := p.publisher.PublishBriefing(ctx, event)
	if err != nil {
		p.logger.Error("Failed to publish briefing event", "briefing_id", event.BriefingID, "error", err)
		return
	}
	p.logger.Debug("Briefing event published", "briefing_id", event.BriefingID, "stream_msg_id", msgID)
}

// makeErrorHandler creates an error handler function with logger closure.
func makeErrorHandler(logger *slog.Logger) func(context.Context, *asynq.Task, error) {
	return func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)

		logger.Error(
			"Task execution failed",
			"task_type", task.Type(),
			"error", err.Error(),
			"retry_count", retried,
			"max_retry", maxRetry,
		)

		// Check if this is the final failure (task will move to dead letter queue)
		if retried >= maxRetry {
			logger.Error(
				"Task moved to dead letter queue (all retries exhausted)",
				"task_type", task.Type(),
				"payload", string(task.Payload()),
			)
		}
	}
}
