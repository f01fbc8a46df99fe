package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/maltedev/deal-scraper/internal/models"
)

const createObservationsTable = `
	CREATE TABLE IF NOT EXISTS deal_observations (
		id                  UUID PRIMARY KEY,
		run_id              UUID NOT NULL,
		row_number          INTEGER NOT NULL,
		observed_at         TIMESTAMP,
		title               TEXT NOT NULL,
		price               DOUBLE PRECISION NOT NULL,
		original_price      DOUBLE PRECISION NOT NULL,
		discount_percentage DOUBLE PRECISION,
		shipping            TEXT NOT NULL,
		item_url            TEXT NOT NULL,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

const insertObservation = `
	INSERT INTO deal_observations (
		id, run_id, row_number, observed_at, title,
		price, original_price, discount_percentage, shipping, item_url
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	)`

// ObservationRepository mirrors the clean table into Postgres.
type ObservationRepository struct {
	db *DB
}

func NewObservationRepository(db *DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.pool.Exec(ctx, createObservationsTable); err != nil {
		return fmt.Errorf("failed to create deal_observations: %w", err)
	}
	return nil
}

// ReplaceAll swaps the stored rows for rows in one transaction, matching the
// full rewrite of the clean table file.
func (r *ObservationRepository) ReplaceAll(ctx context.Context, runID uuid.UUID, rows []models.CleanProduct) error {
	return r.db.Transaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM deal_observations`); err != nil {
			return fmt.Errorf("failed to clear deal_observations: %w", err)
		}

		batch := &pgx.Batch{}
		for i := range rows {
			batch.Queue(insertObservation, observationArgs(runID, uuid.New(), i+1, &rows[i])...)
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert observations: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored observations.
func (r *ObservationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM deal_observations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}

func observationArgs(runID, id uuid.UUID, rowNumber int, p *models.CleanProduct) []any {
	var observedAt *time.Time
	if t := p.ObservedAt(); !t.IsZero() {
		observedAt = &t
	}

	return []any{
		id,
		runID,
		rowNumber,
		observedAt,
		p.Title,
		*p.Price,
		*p.OriginalPrice,
		p.DiscountPercentage,
		p.Shipping,
		p.ItemURL,
	}
}
