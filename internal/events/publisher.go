package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event
type EventType string

const (
	// EventTypeScrapeCompleted is published after a raw batch is persisted.
	EventTypeScrapeCompleted EventType = "SCRAPE_COMPLETED"
	// EventTypeCleanCompleted is published after the clean table is rewritten.
	EventTypeCleanCompleted EventType = "CLEAN_COMPLETED"
)

// ScrapeCompletedPayload summarizes one scrape run.
type ScrapeCompletedPayload struct {
	RunID      string `json:"run_id"`
	SourceURL  string `json:"source_url"`
	Timestamp  string `json:"timestamp"`
	Products   int    `json:"products"`
	Skipped    int    `json:"skipped"`
	Scrolls    int    `json:"scrolls"`
	Stabilized bool   `json:"stabilized"`
	TotalRows  int    `json:"total_rows"`
	RawPath    string `json:"raw_path"`
}

// CleanCompletedPayload summarizes one cleaning pass.
type CleanCompletedPayload struct {
	RunID        string   `json:"run_id"`
	RowsIn       int      `json:"rows_in"`
	RowsOut      int      `json:"rows_out"`
	Dropped      int      `json:"dropped"`
	MeanDiscount *float64 `json:"mean_discount,omitempty"`
	CleanPath    string   `json:"clean_path"`
}

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// Publisher appends run events to a Redis stream.
type Publisher struct {
	redis  RedisClient
	stream string
	source string
	logger *slog.Logger
	now    func() time.Time
}

func NewPublisher(client RedisClient, stream, source string, logger *slog.Logger) *Publisher {
	return &Publisher{
		redis:  client,
		stream: stream,
		source: source,
		logger: logger.With("component", "event_publisher"),
		now:    time.Now,
	}
}

func (p *Publisher) PublishScrapeCompleted(ctx context.Context, payload *ScrapeCompletedPayload) (string, error) {
	return p.publish(ctx, EventTypeScrapeCompleted, payload.RunID, payload)
}

func (p *Publisher) PublishCleanCompleted(ctx context.Context, payload *CleanCompletedPayload) (string, error) {
	return p.publish(ctx, EventTypeCleanCompleted, payload.RunID, payload)
}

// publish adds one entry to the stream and returns the stream entry ID.
func (p *Publisher) publish(ctx context.Context, eventType EventType, runID string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	eventID := uuid.New().String()
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"id":        eventID,
			"type":      string(eventType),
			"run_id":    runID,
			"source":    p.source,
			"timestamp": p.now().UTC().Format(time.RFC3339),
			"data":      string(data),
		},
	}

	entryID, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("event published",
		"type", eventType,
		"event_id", eventID,
		"run_id", runID,
		"stream", p.stream,
		"entry_id", entryID,
	)

	return entryID, nil
}
