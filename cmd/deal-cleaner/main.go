package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/maltedev/deal-scraper/internal/cleaning"
	"github.com/maltedev/deal-scraper/internal/config"
	"github.com/maltedev/deal-scraper/internal/database"
	"github.com/maltedev/deal-scraper/internal/events"
	"github.com/maltedev/deal-scraper/internal/models"
	"github.com/maltedev/deal-scraper/internal/storage"
	"github.com/maltedev/deal-scraper/pkg/logger"
)

func main() {
	var (
		rawPath   = flag.String("raw", "", "raw table path (overrides STORAGE_RAW_PATH)")
		cleanPath = flag.String("clean", "", "clean table path (overrides STORAGE_CLEAN_PATH)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *rawPath != "" {
		cfg.Storage.RawPath = *rawPath
	}
	if *cleanPath != "" {
		cfg.Storage.CleanPath = *cleanPath
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("cleaning failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store := storage.NewStore(cfg.Storage.RawPath, cfg.Storage.CleanPath)

	raw, err := store.LoadRaw()
	if err != nil {
		return err
	}

	rows := cleaning.Normalize(raw)
	if err := store.WriteClean(rows); err != nil {
		return err
	}

	runID := uuid.New()
	summary := cleaning.Summarize(len(raw), rows)
	log.Info("clean table written",
		"run_id", runID,
		"path", cfg.Storage.CleanPath,
		"rows_in", summary.RowsIn,
		"rows_out", summary.RowsOut,
		"dropped", summary.Dropped,
		"with_discount", summary.WithDiscount,
	)

	if cfg.Database.Enabled {
		if err := mirrorToDatabase(ctx, cfg, runID, rows, log); err != nil {
			log.Warn("failed to mirror clean table to database", "error", err)
		}
	}

	if cfg.Redis.Enabled {
		publishCleanCompleted(ctx, cfg, runID, summary, log)
	}
	return nil
}

func mirrorToDatabase(ctx context.Context, cfg *config.Config, runID uuid.UUID, rows []models.CleanProduct, log *slog.Logger) error {
	db, err := database.New(ctx, database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Name,
		MaxConns: cfg.Database.MaxConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	repo := database.NewObservationRepository(db)
	if err := repo.EnsureTable(ctx); err != nil {
		return err
	}
	if err := repo.ReplaceAll(ctx, runID, rows); err != nil {
		return err
	}

	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	log.Info("database mirror updated", "run_id", runID, "rows", count)
	return nil
}

// publishCleanCompleted is best effort; the clean table is already written.
func publishCleanCompleted(ctx context.Context, cfg *config.Config, runID uuid.UUID, summary cleaning.Summary, log *slog.Logger) {
	client, err := events.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("skipping run event", "error", err)
		return
	}
	defer client.Close()

	publisher := events.NewPublisher(client, cfg.Redis.Stream, "deal-cleaner", log)
	_, err = publisher.PublishCleanCompleted(ctx, &events.CleanCompletedPayload{
		RunID:        runID.String(),
		RowsIn:       summary.RowsIn,
		RowsOut:      summary.RowsOut,
		Dropped:      summary.Dropped,
		MeanDiscount: summary.MeanDiscount,
		CleanPath:    cfg.Storage.CleanPath,
	})
	if err != nil {
		log.Warn("failed to publish run event", "error", err)
	}
}
