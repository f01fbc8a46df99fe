// Package cleaning turns raw scraped deal rows into typed, validated rows.
package cleaning

import (
	"math"
	"strings"

	"github.com/maltedev/deal-scraper/internal/models"
)

// Normalize runs the cleaning pipeline over a raw batch. The steps run in a
// fixed order: currency parsing, original price backfill, shipping, discount,
// row filter. Input order is preserved and the input is not modified.
func Normalize(raw []models.RawProduct) []models.CleanProduct {
	rows := make([]models.CleanProduct, len(raw))

	for i, r := range raw {
		rows[i] = models.CleanProduct{
			Timestamp:     r.Timestamp,
			Title:         normalizeTitle(r.Title),
			Price:         NormalizeCurrency(&r.Price),
			OriginalPrice: NormalizeCurrency(&r.OriginalPrice),
			Shipping:      r.Shipping,
			ItemURL:       r.ItemURL,
		}
	}

	backfillOriginalPrice(rows)

	for i := range rows {
		rows[i].Shipping = NormalizeShipping(rows[i].Shipping)
		rows[i].DiscountPercentage = Discount(rows[i].Price, rows[i].OriginalPrice)
	}

	return filterValid(rows)
}

// normalizeTitle treats the extraction sentinel and blank text as missing.
func normalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == models.Sentinel {
		return ""
	}
	return title
}

// backfillOriginalPrice copies price into a missing original price. It must
// run before Discount so that such rows report 0% instead of no discount.
func backfillOriginalPrice(rows []models.CleanProduct) {
	for i := range rows {
		if rows[i].OriginalPrice == nil && rows[i].Price != nil {
			v := *rows[i].Price
			rows[i].OriginalPrice = &v
		}
	}
}

// NormalizeShipping trims shipping text and substitutes
// models.ShippingUnavailable for blank or sentinel values.
func NormalizeShipping(shipping string) string {
	shipping = strings.TrimSpace(shipping)
	if shipping == "" || shipping == models.Sentinel {
		return models.ShippingUnavailable
	}
	return shipping
}

// Discount returns round((1 - price/original)*100, 2). It is nil unless both
// prices are known and original is non-zero. Values above 100 or below zero
// are returned as computed.
func Discount(price, original *float64) *float64 {
	if price == nil || original == nil || *original == 0 {
		return nil
	}
	d := Round2((1 - *price / *original) * 100)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	return &d
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func filterValid(rows []models.CleanProduct) []models.CleanProduct {
	out := make([]models.CleanProduct, 0, len(rows))
	for _, r := range rows {
		if r.IsValid() {
			out = append(out, r)
		}
	}
	return out
}
