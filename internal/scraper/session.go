package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maltedev/deal-scraper/internal/dom"
	"github.com/maltedev/deal-scraper/internal/models"
)

// Navigator is implemented by pages that load a URL before scraping. Saved
// snapshots do not need it.
type Navigator interface {
	Goto(ctx context.Context, url string) error
}

type SessionConfig struct {
	URL               string
	InitialDelay      time.Duration
	SettleDelay       time.Duration
	PresenceTimeout   time.Duration
	MaxScrolls        int
	MaxScrollDuration time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		URL:               "https://www.ebay.com/globaldeals/tech",
		InitialDelay:      5 * time.Second,
		SettleDelay:       2 * time.Second,
		PresenceTimeout:   15 * time.Second,
		MaxScrolls:        50,
		MaxScrollDuration: 3 * time.Minute,
	}
}

// Batch is the outcome of one scrape run.
type Batch struct {
	RunID     uuid.UUID
	Timestamp string
	Products  []models.RawProduct
	Skipped   int
	Scroll    StabilizeResult
}

// StabilizeResult describes how the scroll loop ended.
type StabilizeResult struct {
	Scrolls int
	Height  int
	Stable  bool
}

// Session drives one page to a fully loaded state and extracts every tile.
type Session struct {
	page      dom.Page
	extractor *ProductExtractor
	locators  Locators
	cfg       SessionConfig
	logger    *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSession(page dom.Page, locators Locators, cfg SessionConfig, logger *slog.Logger) *Session {
	return &Session{
		page:      page,
		extractor: NewProductExtractor(locators, logger),
		locators:  locators,
		cfg:       cfg,
		logger:    logger.With("component", "scrape_session"),
		now:       time.Now,
		sleep:     sleepContext,
	}
}

// Run loads the page, stabilizes it and extracts every item. An empty batch
// is not an error.
func (s *Session) Run(ctx context.Context) (*Batch, error) {
	batch := &Batch{RunID: uuid.New()}
	logger := s.logger.With("run_id", batch.RunID)

	if nav, ok := s.page.(Navigator); ok && s.cfg.URL != "" {
		if err := nav.Goto(ctx, s.cfg.URL); err != nil {
			return nil, err
		}
		if err := s.sleep(ctx, s.cfg.InitialDelay); err != nil {
			return nil, err
		}
	}

	scroll, err := s.Stabilize(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stabilize page: %w", err)
	}
	batch.Scroll = scroll

	batch.Timestamp = models.FormatTimestamp(s.now())

	if err := s.page.WaitForItems(ctx, s.locators.Item, s.cfg.PresenceTimeout); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, dom.ErrNotFound) {
			logger.Info("no products found", "selector", s.locators.Item, "timeout", s.cfg.PresenceTimeout)
		} else {
			logger.Warn("waiting for products failed", "error", err)
		}
		return batch, nil
	}

	items, err := s.page.Items(ctx, s.locators.Item)
	if err != nil {
		return nil, err
	}

	batch.Products = make([]models.RawProduct, 0, len(items))
	for i, item := range items {
		product, err := s.extractor.Extract(item, batch.Timestamp)
		if err != nil {
			batch.Skipped++
			logger.Warn("skipping item", "item_index", i, "error", err)
			continue
		}
		batch.Products = append(batch.Products, product)
	}

	logger.Info("scrape finished",
		"items", len(items),
		"products", len(batch.Products),
		"skipped", batch.Skipped,
		"scrolls", scroll.Scrolls,
	)

	return batch, nil
}

// Stabilize scrolls to the bottom until two consecutive height measurements
// agree, or until MaxScrolls / MaxScrollDuration is reached.
func (s *Session) Stabilize(ctx context.Context) (StabilizeResult, error) {
	last, err := s.page.Height(ctx)
	if err != nil {
		return StabilizeResult{}, err
	}

	start := s.now()
	res := StabilizeResult{Height: last}

	for {
		if s.cfg.MaxScrolls > 0 && res.Scrolls >= s.cfg.MaxScrolls {
			s.logger.Warn("scroll limit reached before page stabilized", "scrolls", res.Scrolls, "height", last)
			return res, nil
		}
		if s.cfg.MaxScrollDuration > 0 && s.now().Sub(start) >= s.cfg.MaxScrollDuration {
			s.logger.Warn("scroll time limit reached before page stabilized", "scrolls", res.Scrolls, "height", last)
			return res, nil
		}

		if err := s.page.ScrollToBottom(ctx); err != nil {
			return res, err
		}
		res.Scrolls++

		if err := s.sleep(ctx, s.cfg.SettleDelay); err != nil {
			return res, err
		}

		height, err := s.page.Height(ctx)
		if err != nil {
			return res, err
		}
		res.Height = height

		if height == last {
			res.Stable = true
			s.logger.Debug("page stabilized", "scrolls", res.Scrolls, "height", height)
			return res, nil
		}
		last = height
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
