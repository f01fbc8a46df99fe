package scraper

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/deal-scraper/internal/dom"
	"github.com/maltedev/deal-scraper/internal/models"
)

// Locators holds the selectors for one storefront layout.
type Locators struct {
	Item          string
	Title         dom.Locator
	Price         dom.Locator
	OriginalPrice dom.Locator
	Shipping      dom.Locator
	ItemURL       dom.Locator
}

// DefaultLocators matches the eBay global deals tile layout.
func DefaultLocators() Locators {
	return Locators{
		Item:          ".dne-itemtile",
		Title:         dom.Locator{Selector: "h3.dne-itemtile-title span[itemprop='name']"},
		Price:         dom.Locator{Selector: ".dne-itemtile-price"},
		OriginalPrice: dom.Locator{Selector: "div.dne-itemtile-original-price span.itemtile-price-strikethrough"},
		Shipping:      dom.Locator{Selector: "span.dne-itemtile-delivery"},
		ItemURL:       dom.Locator{Selector: "div.dne-itemtile-detail > a", Attr: "href"},
	}
}

// ProductExtractor turns one item handle into a RawProduct.
type ProductExtractor struct {
	locators Locators
	logger   *slog.Logger
}

func NewProductExtractor(locators Locators, logger *slog.Logger) *ProductExtractor {
	return &ProductExtractor{
		locators: locators,
		logger:   logger.With("component", "product_extractor"),
	}
}

// Extract reads every field independently. A missing field becomes
// models.Sentinel. An error is returned only when the handle itself is
// unusable, i.e. every lookup failed with dom.ErrHandleUnusable.
func (pe *ProductExtractor) Extract(item dom.Item, timestamp string) (models.RawProduct, error) {
	product := models.RawProduct{Timestamp: timestamp}

	fields := []struct {
		name string
		loc  dom.Locator
		dst  *string
	}{
		{"title", pe.locators.Title, &product.Title},
		{"price", pe.locators.Price, &product.Price},
		{"original_price", pe.locators.OriginalPrice, &product.OriginalPrice},
		{"shipping", pe.locators.Shipping, &product.Shipping},
		{"item_url", pe.locators.ItemURL, &product.ItemURL},
	}

	unusable := 0
	for _, f := range fields {
		res := ReadField(item, f.loc)
		if !res.OK() {
			if errors.Is(res.Err, dom.ErrHandleUnusable) {
				unusable++
			}
			pe.logger.Debug("field not extracted", "field", f.name, "error", res.Err)
		}
		*f.dst = res.Text()
	}

	if unusable == len(fields) {
		return models.RawProduct{}, fmt.Errorf("%w: all %d field lookups failed", dom.ErrHandleUnusable, len(fields))
	}

	return product, nil
}
