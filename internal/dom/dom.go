// Package dom describes the small slice of a rendered page the scraper needs:
// a scrollable page that yields item handles, and item handles that can look
// up one child element by selector.
package dom

import (
	"context"
	"errors"
	"net/url"
	"time"
)

var (
	// ErrNotFound is returned when a selector matches nothing under a handle.
	ErrNotFound = errors.New("element not found")
	// ErrHandleUnusable is returned when the handle itself can no longer be
	// queried (detached from the page, page closed).
	ErrHandleUnusable = errors.New("item handle unusable")
	// ErrNoAttribute is returned when an element lacks the requested attribute.
	ErrNoAttribute = errors.New("attribute not present")
)

// Locator addresses one field under an item. When Attr is set the attribute
// value is read instead of the element text.
type Locator struct {
	Selector string
	Attr     string
}

// Element is a resolved child element.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
}

// Item is an opaque handle to one listing tile.
type Item interface {
	Find(selector string) (Element, error)
}

// Page is a rendered, scrollable listing page.
type Page interface {
	// Height returns the current content height.
	Height(ctx context.Context) (int, error)
	// ScrollToBottom scrolls the viewport to the end of the content.
	ScrollToBottom(ctx context.Context) error
	// WaitForItems blocks until at least one element matches selector or the
	// timeout elapses. A timeout is reported as ErrNotFound.
	WaitForItems(ctx context.Context, selector string, timeout time.Duration) error
	// Items returns a handle for every element matching selector.
	Items(ctx context.Context, selector string) ([]Item, error)
}

// ResolveURL resolves ref against base the way a browser resolves an href
// property. ref is returned unchanged when either side fails to parse.
func ResolveURL(base, ref string) string {
	if base == "" || ref == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
