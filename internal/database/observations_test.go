package database

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/deal-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "deals", Password: "p@ss word", Database: "deals"}
	assert.Equal(t, "postgres://deals:p%40ss%20word@db:5433/deals?sslmode=disable", cfg.DSN())
}

func TestObservationArgs(t *testing.T) {
	runID := uuid.New()
	id := uuid.New()
	p := &models.CleanProduct{
		Timestamp:     "2024-01-01 10:30:00",
		Title:         "Wireless Mouse",
		Price:         models.Float(19.99),
		OriginalPrice: models.Float(39.99),
		Shipping:      models.ShippingUnavailable,
		ItemURL:       "http://x",
	}

	args := observationArgs(runID, id, 3, p)
	require.Len(t, args, 10)

	assert.Equal(t, id, args[0])
	assert.Equal(t, runID, args[1])
	assert.Equal(t, 3, args[2])

	observedAt, ok := args[3].(*time.Time)
	require.True(t, ok)
	require.NotNil(t, observedAt)
	assert.Equal(t, 10, observedAt.Hour())

	assert.Equal(t, 19.99, args[5])
	assert.Equal(t, 39.99, args[6])
	assert.Nil(t, args[7].(*float64))
}

func TestObservationArgsBadTimestamp(t *testing.T) {
	p := &models.CleanProduct{
		Timestamp:     "yesterday",
		Price:         models.Float(1),
		OriginalPrice: models.Float(1),
	}

	args := observationArgs(uuid.New(), uuid.New(), 1, p)
	assert.Nil(t, args[3].(*time.Time))
}
