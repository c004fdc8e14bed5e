package streams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Consumer reads briefing events from the stream as part of a consumer group
type Consumer struct {
	rdb          *redis.Client
	groupName    string
	consumerName string
	logger       *slog.Logger
}

// NewConsumer joins (creating if needed) groupName on the briefing stream.
// A new group starts at the end of the stream so only fresh briefings are
// delivered.
func NewConsumer(ctx context.Context, redisURL, groupName, consumerName string, logger *slog.Logger) (*Consumer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	// Read timeout must exceed the XReadGroup Block duration (5s)
	// to avoid spurious i/o timeout errors on idle streams.
	opts.ReadTimeout = 10 * time.Second

	client := redis.NewClient(opts)

	err = client.XGroupCreateMkStream(ctx, StreamBriefingEvents, groupName, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		client.Close()
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{
		rdb:          client,
		groupName:    groupName,
		consumerName: consumerName,
		logger:       logger,
	}, nil
}

// Consume blocks, passing every event to handler until ctx is cancelled.
// Messages are acknowledged only after handler succeeds.
func (c *Consumer) Consume(ctx context.Context, handler func(BriefingEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.groupName,
			Consumer: c.consumerName,
			Streams:  []string{StreamBriefingEvents, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Blocking reads time out on idle streams; that is normal.
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			c.logger.Error("Failed to read from stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				event, err := decodeMessage(message)
				if err != nil {
					c.logger.Error("Invalid stream message", "message_id", message.ID, "error", err)
					// Poison messages are acknowledged so they are not redelivered.
					c.ack(ctx, message.ID)
					continue
				}

				if err := handler(event); err != nil {
					c.logger.Error("Handler failed", "error", err, "briefing_id", event.BriefingID)
					continue
				}
				c.ack(ctx, message.ID)
			}
		}
	}
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.rdb.XAck(ctx, StreamBriefingEvents, c.groupName, id).Err(); err != nil {
		c.logger.Error("Failed to ACK message", "error", err, "message_id", id)
	}
}

// Close closes the Redis client connection
func (c *Consumer) Close() error {
	return c.rdb.Close()
}

func decodeMessage(message redis.XMessage) (BriefingEvent, error) {
	payload, ok := message.Values["payload"].(string)
	if !ok {
		return BriefingEvent{}, fmt.Errorf("payload field missing")
	}
	var event BriefingEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return BriefingEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return event, nil
}
