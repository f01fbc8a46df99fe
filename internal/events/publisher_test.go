package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRedisClient is a mock for Redis stream writes
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if err := mockArgs.Error(1); err != nil {
		cmd.SetErr(err)
	} else {
		cmd.SetVal(mockArgs.String(0))
	}
	return cmd
}

func newTestPublisher(client RedisClient) *Publisher {
	p := NewPublisher(client, "stream:deal_runs", "deal-scraper", slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestPublishScrapeCompleted(t *testing.T) {
	client := new(MockRedisClient)
	client.On("XAdd", mock.Anything, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		values := args.Values.(map[string]interface{})
		var payload ScrapeCompletedPayload
		if err := json.Unmarshal([]byte(values["data"].(string)), &payload); err != nil {
			return false
		}
		return args.Stream == "stream:deal_runs" &&
			values["type"] == "SCRAPE_COMPLETED" &&
			values["run_id"] == "run-1" &&
			values["source"] == "deal-scraper" &&
			values["timestamp"] == "2024-01-01T12:00:00Z" &&
			payload.Products == 12 &&
			payload.Skipped == 1
	})).Return("1704110400000-0", nil)

	entryID, err := newTestPublisher(client).PublishScrapeCompleted(context.Background(), &ScrapeCompletedPayload{
		RunID:    "run-1",
		Products: 12,
		Skipped:  1,
	})

	require.NoError(t, err)
	assert.Equal(t, "1704110400000-0", entryID)
	client.AssertExpectations(t)
}

func TestPublishCleanCompleted(t *testing.T) {
	client := new(MockRedisClient)
	client.On("XAdd", mock.Anything, mock.MatchedBy(func(args *redis.XAddArgs) bool {
		values := args.Values.(map[string]interface{})
		return values["type"] == "CLEAN_COMPLETED"
	})).Return("1-0", nil)

	_, err := newTestPublisher(client).PublishCleanCompleted(context.Background(), &CleanCompletedPayload{
		RunID:   "run-2",
		RowsIn:  10,
		RowsOut: 8,
		Dropped: 2,
	})

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestPublishRedisError(t *testing.T) {
	client := new(MockRedisClient)
	client.On("XAdd", mock.Anything, mock.Anything).Return("", errors.New("connection refused"))

	_, err := newTestPublisher(client).PublishScrapeCompleted(context.Background(), &ScrapeCompletedPayload{RunID: "run-3"})

	assert.ErrorContains(t, err, "failed to publish to redis")
	client.AssertExpectations(t)
}
