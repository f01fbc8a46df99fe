package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maltedev/deal-scraper/internal/browser"
	"github.com/maltedev/deal-scraper/internal/config"
	"github.com/maltedev/deal-scraper/internal/dom"
	"github.com/maltedev/deal-scraper/internal/events"
	"github.com/maltedev/deal-scraper/internal/scraper"
	"github.com/maltedev/deal-scraper/internal/snapshot"
	"github.com/maltedev/deal-scraper/internal/storage"
	"github.com/maltedev/deal-scraper/pkg/logger"
)

func main() {
	var (
		htmlPath = flag.String("html", "", "replay a saved page instead of launching a browser")
		rawPath  = flag.String("raw", "", "raw table path (overrides STORAGE_RAW_PATH)")
		url      = flag.String("url", "", "deals page URL (overrides SCRAPER_URL)")
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
	if *url != "" {
		cfg.Scraper.URL = *url
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *htmlPath, log); err != nil {
		log.Error("scrape failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, htmlPath string, log *slog.Logger) error {
	sessionCfg := scraper.SessionConfig{
		URL:               cfg.Scraper.URL,
		InitialDelay:      cfg.Scraper.InitialDelay,
		SettleDelay:       cfg.Scraper.SettleDelay,
		PresenceTimeout:   cfg.Scraper.PresenceTimeout,
		MaxScrolls:        cfg.Scraper.MaxScrolls,
		MaxScrollDuration: cfg.Scraper.MaxScrollDuration,
	}

	var page dom.Page
	if htmlPath != "" {
		snap, err := snapshot.Open(htmlPath, cfg.Scraper.URL)
		if err != nil {
			return err
		}
		// A saved page never grows.
		sessionCfg.SettleDelay = 0
		page = snap
		log.Info("replaying saved page", "path", htmlPath)
	} else {
		b, err := browser.New(&browser.Options{
			Headless:       cfg.Browser.Headless,
			Timeout:        cfg.Browser.Timeout,
			UserAgent:      cfg.Browser.UserAgent,
			ViewportWidth:  cfg.Browser.ViewportWidth,
			ViewportHeight: cfg.Browser.ViewportHeight,
			AcceptLanguage: cfg.Browser.AcceptLanguage,
			TimezoneID:     cfg.Browser.TimezoneID,
			Locale:         cfg.Browser.Locale,
			ProxyServer:    cfg.Browser.ProxyServer,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize browser: %w", err)
		}
		defer func() {
			if err := b.Close(); err != nil {
				log.Warn("failed to close browser", "error", err)
			}
		}()

		p, err := b.NewPage()
		if err != nil {
			return err
		}
		defer p.Close()
		page = p
	}

	session := scraper.NewSession(page, scraper.DefaultLocators(), sessionCfg, log)
	batch, err := session.Run(ctx)
	if err != nil {
		return err
	}

	if len(batch.Products) == 0 {
		log.Info("no products found, nothing written", "run_id", batch.RunID)
		return nil
	}

	store := storage.NewStore(cfg.Storage.RawPath, cfg.Storage.CleanPath)
	total, err := store.AppendRaw(batch.Products)
	if err != nil {
		return err
	}

	log.Info("raw table updated",
		"run_id", batch.RunID,
		"path", cfg.Storage.RawPath,
		"appended", len(batch.Products),
		"total_rows", total,
	)

	if cfg.Redis.Enabled {
		publishScrapeCompleted(ctx, cfg, batch, total, log)
	}
	return nil
}

// publishScrapeCompleted is best effort; the raw table is already written.
func publishScrapeCompleted(ctx context.Context, cfg *config.Config, batch *scraper.Batch, total int, log *slog.Logger) {
	client, err := events.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("skipping run event", "error", err)
		return
	}
	defer client.Close()

	publisher := events.NewPublisher(client, cfg.Redis.Stream, "deal-scraper", log)
	_, err = publisher.PublishScrapeCompleted(ctx, &events.ScrapeCompletedPayload{
		RunID:      batch.RunID.String(),
		SourceURL:  cfg.Scraper.URL,
		Timestamp:  batch.Timestamp,
		Products:   len(batch.Products),
		Skipped:    batch.Skipped,
		Scrolls:    batch.Scroll.Scrolls,
		Stabilized: batch.Scroll.Stable,
		TotalRows:  total,
		RawPath:    cfg.Storage.RawPath,
	})
	if err != nil {
		log.Warn("failed to publish run event", "error", err)
	}
}
