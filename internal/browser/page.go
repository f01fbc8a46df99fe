package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maltedev/deal-scraper/internal/dom"
	"github.com/playwright-community/playwright-go"
)

// Page adapts a playwright page to dom.Page.
type Page struct {
	page    playwright.Page
	timeout time.Duration
	logger  *slog.Logger
}

var _ dom.Page = (*Page)(nil)

// Goto loads url once and waits for the DOM to be ready. No retries.
func (p *Page) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.logger.Info("navigating", "url", url)
	resp, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if resp != nil && resp.Status() >= 400 {
		p.logger.Warn("page returned error status", "url", url, "status", resp.Status())
	}
	return nil
}

func (p *Page) Height(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	v, err := p.page.Evaluate(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, fmt.Errorf("failed to measure page height: %w", err)
	}
	return toInt(v)
}

func (p *Page) ScrollToBottom(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := p.page.Evaluate(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return fmt.Errorf("failed to scroll: %w", err)
	}
	return nil
}

func (p *Page) WaitForItems(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %s after %s", dom.ErrNotFound, selector, timeout)
	}
	if err != nil {
		return fmt.Errorf("failed to wait for %s: %w", selector, err)
	}
	return nil
}

func (p *Page) Items(ctx context.Context, selector string) ([]dom.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("failed to collect %s: %w", selector, err)
	}

	base := p.page.URL()
	items := make([]dom.Item, 0, len(handles))
	for _, h := range handles {
		items = append(items, &item{handle: h, base: base})
	}
	return items, nil
}

func (p *Page) Close() error {
	return p.page.Close()
}

type item struct {
	handle playwright.ElementHandle
	base   string
}

func (i *item) Find(selector string) (dom.Element, error) {
	el, err := i.handle.QuerySelector(selector)
	if err != nil {
		return nil, classify(err)
	}
	if el == nil {
		return nil, fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return &element{handle: el, base: i.base}, nil
}

type element struct {
	handle playwright.ElementHandle
	base   string
}

// Text returns the rendered text, matching what a user sees in the tile.
func (e *element) Text() (string, error) {
	text, err := e.handle.InnerText()
	if err != nil {
		return "", classify(err)
	}
	return text, nil
}

func (e *element) Attribute(name string) (string, error) {
	v, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", classify(err)
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", dom.ErrNoAttribute, name)
	}
	if name == "href" || name == "src" {
		v = dom.ResolveURL(e.base, v)
	}
	return v, nil
}

// classify maps driver errors that mean the handle is gone to
// dom.ErrHandleUnusable.
func classify(err error) error {
	if errors.Is(err, playwright.ErrTargetClosed) {
		return fmt.Errorf("%w: %v", dom.ErrHandleUnusable, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "not attached") || strings.Contains(msg, "has been closed") {
		return fmt.Errorf("%w: %v", dom.ErrHandleUnusable, err)
	}
	return err
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected height value %T", v)
	}
}
