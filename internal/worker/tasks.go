package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TaskGenerateBriefing  = "briefing:generate"
	TaskScheduledBriefing = "briefing:scheduled"
)

// generatePayload is the body of a briefing:generate task.
type generatePayload struct {
	BriefingID uint `json:"briefing_id"`
}

// Enqueuer puts briefing tasks on the asynq queue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer connects an asynq client to the Redis server at redisURL.
func NewEnqueuer(redisURL string) (*Enqueuer, error) {
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(opt)}, nil
}

// Close closes the asynq client connection gracefully.
func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// EnqueueGenerateBriefing enqueues a briefing generation task for the given briefing ID.
// The task will be processed by the worker with a 5-minute timeout, retry up to 3 times,
// and retain for 24 hours after completion.
func (e *Enqueuer) EnqueueGenerateBriefing(ctx context.Context, briefingID uint) error {
	task, err := NewGenerateBriefingTask(briefingID)
	if err != nil {
		return err
	}
	if _, err := e.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", TaskGenerateBriefing, err)
	}
	return nil
}

// NewGenerateBriefingTask builds the briefing:generate task for briefingID.
func NewGenerateBriefingTask(briefingID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(generatePayload{BriefingID: briefingID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskGenerateBriefing,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(24*time.Hour),
	), nil
}

// NewScheduledBriefingTask builds the periodic task registered with the scheduler.
func NewScheduledBriefingTask() *asynq.Task {
	return asynq.NewTask(
		TaskScheduledBriefing,
		nil,
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Retention(24*time.Hour),
		asynq.Unique(time.Hour), // Prevent duplicate if scheduler runs twice
	)
}
