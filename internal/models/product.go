package models

import (
	"time"
)

const (
	// Sentinel stands in for a field that could not be extracted.
	Sentinel = "N/A"

	// ShippingUnavailable replaces empty or unknown shipping text after cleaning.
	ShippingUnavailable = "Shipping info unavailable"

	// TimestampLayout is the batch timestamp format (YYYY-MM-DD HH:MM:SS).
	TimestampLayout = "2006-01-02 15:04:05"
)

// RawColumns is the canonical column order of the raw table.
var RawColumns = []string{"timestamp", "title", "price", "original_price", "shipping", "item_url"}

// CleanColumns is the column order of the clean table.
var CleanColumns = []string{"timestamp", "title", "price", "original_price", "shipping", "item_url", "discount_percentage"}

// RawProduct is one scraped deal tile. Every field is always set; failed
// extractions carry Sentinel.
type RawProduct struct {
	Timestamp     string `json:"timestamp"`
	Title         string `json:"title"`
	Price         string `json:"price"`
	OriginalPrice string `json:"original_price"`
	Shipping      string `json:"shipping"`
	ItemURL       string `json:"item_url"`
}

// Values returns the fields in RawColumns order.
func (p RawProduct) Values() []string {
	return []string{p.Timestamp, p.Title, p.Price, p.OriginalPrice, p.Shipping, p.ItemURL}
}

// CleanProduct is a normalized deal row. Nil numbers are missing values.
type CleanProduct struct {
	Timestamp          string   `json:"timestamp"`
	Title              string   `json:"title"`
	Price              *float64 `json:"price"`
	OriginalPrice      *float64 `json:"original_price"`
	Shipping           string   `json:"shipping"`
	ItemURL            string   `json:"item_url"`
	DiscountPercentage *float64 `json:"discount_percentage"`
}

// IsValid reports whether the row carries every required field.
func (p *CleanProduct) IsValid() bool {
	return p.Title != "" && p.Price != nil && p.OriginalPrice != nil
}

// ObservedAt parses the batch timestamp. The zero time is returned when the
// stored text does not follow TimestampLayout.
func (p *CleanProduct) ObservedAt() time.Time {
	t, err := time.ParseInLocation(TimestampLayout, p.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatTimestamp renders t in the batch timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
