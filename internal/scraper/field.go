package scraper

import (
	"strings"

	"github.com/maltedev/deal-scraper/internal/dom"
	"github.com/maltedev/deal-scraper/internal/models"
)

// FieldResult is the outcome of one field lookup.
type FieldResult struct {
	Value string
	Err   error
}

func (r FieldResult) OK() bool {
	return r.Err == nil
}

// Text returns the value, or models.Sentinel when the lookup failed.
func (r FieldResult) Text() string {
	if r.Err != nil {
		return models.Sentinel
	}
	return r.Value
}

// ReadField looks up exactly one element under item and reads its trimmed
// text, or the attribute named by loc.Attr. Failures are returned in the
// result, never propagated.
func ReadField(item dom.Item, loc dom.Locator) FieldResult {
	if item == nil {
		return FieldResult{Err: dom.ErrHandleUnusable}
	}

	el, err := item.Find(loc.Selector)
	if err != nil {
		return FieldResult{Err: err}
	}

	var v string
	if loc.Attr != "" {
		v, err = el.Attribute(loc.Attr)
	} else {
		v, err = el.Text()
	}
	if err != nil {
		return FieldResult{Err: err}
	}

	return FieldResult{Value: strings.TrimSpace(v)}
}
