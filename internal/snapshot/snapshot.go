// Package snapshot serves a saved, already-rendered listing page through the
// dom interfaces so a scrape can be replayed without a browser.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/maltedev/deal-scraper/internal/dom"
)

type Page struct {
	doc  *goquery.Document
	base string
}

var _ dom.Page = (*Page)(nil)

// Load parses an HTML document. baseURL resolves relative hrefs.
func Load(r io.Reader, baseURL string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{doc: doc, base: baseURL}, nil
}

// Open loads the HTML document stored at path.
func Open(path, baseURL string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Load(f, baseURL)
}

// Height is the node count of the document; a snapshot never grows.
func (p *Page) Height(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.doc.Find("*").Length(), nil
}

func (p *Page) ScrollToBottom(ctx context.Context) error {
	return ctx.Err()
}

func (p *Page) WaitForItems(ctx context.Context, selector string, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return nil
}

func (p *Page) Items(ctx context.Context, selector string) ([]dom.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var items []dom.Item
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		items = append(items, &item{sel: s, base: p.base})
	})
	return items, nil
}

type item struct {
	sel  *goquery.Selection
	base string
}

func (i *item) Find(selector string) (dom.Element, error) {
	if i.sel == nil || i.sel.Length() == 0 {
		return nil, dom.ErrHandleUnusable
	}
	s := i.sel.Find(selector).First()
	if s.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", dom.ErrNotFound, selector)
	}
	return &element{sel: s, base: i.base}, nil
}

type element struct {
	sel  *goquery.Selection
	base string
}

// Text collapses whitespace runs the way rendered text does.
func (e *element) Text() (string, error) {
	return strings.Join(strings.Fields(e.sel.Text()), " "), nil
}

func (e *element) Attribute(name string) (string, error) {
	v, ok := e.sel.Attr(name)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", dom.ErrNoAttribute, name)
	}
	if name == "href" || name == "src" {
		v = dom.ResolveURL(e.base, v)
	}
	return v, nil
}
