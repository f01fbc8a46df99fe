package cleaning

import (
	"strings"

	"github.com/maltedev/deal-scraper/internal/models"
)

// Summary describes one cleaning pass.
type Summary struct {
	RowsIn          int      `json:"rows_in"`
	RowsOut         int      `json:"rows_out"`
	Dropped         int      `json:"dropped"`
	WithDiscount    int      `json:"with_discount"`
	MeanDiscount    *float64 `json:"mean_discount,omitempty"`
	MaxDiscount     *float64 `json:"max_discount,omitempty"`
	FreeShipping    int      `json:"free_shipping"`
	ShippingUnknown int      `json:"shipping_unknown"`
}

// Summarize computes pass statistics. rowsIn is the raw row count.
func Summarize(rowsIn int, rows []models.CleanProduct) Summary {
	s := Summary{
		RowsIn:  rowsIn,
		RowsOut: len(rows),
		Dropped: rowsIn - len(rows),
	}

	var sum float64
	for _, r := range rows {
		if r.Shipping == models.ShippingUnavailable {
			s.ShippingUnknown++
		} else if strings.HasPrefix(strings.ToLower(r.Shipping), "free") {
			s.FreeShipping++
		}

		if r.DiscountPercentage == nil {
			continue
		}
		d := *r.DiscountPercentage
		s.WithDiscount++
		sum += d
		if s.MaxDiscount == nil || d > *s.MaxDiscount {
			s.MaxDiscount = models.Float(d)
		}
	}

	if s.WithDiscount > 0 {
		s.MeanDiscount = models.Float(Round2(sum / float64(s.WithDiscount)))
	}
	return s
}
