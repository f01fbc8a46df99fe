package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maltedev/deal-scraper/internal/cleaning"
	"github.com/maltedev/deal-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	rows []models.CleanProduct
	err  error
}

func (s *stubSource) LoadClean() ([]models.CleanProduct, error) {
	return s.rows, s.err
}

func testRows() []models.CleanProduct {
	return []models.CleanProduct{
		{Title: "Hub", Price: models.Float(10), OriginalPrice: models.Float(10), Shipping: "Free", DiscountPercentage: models.Float(0)},
		{Title: "Mouse", Price: models.Float(19.99), OriginalPrice: models.Float(39.99), Shipping: models.ShippingUnavailable, DiscountPercentage: models.Float(50.01)},
		{Title: "Cable", Price: models.Float(5), OriginalPrice: models.Float(0), Shipping: "Free shipping"},
		{Title: "Laptop", Price: models.Float(800), OriginalPrice: models.Float(1000), Shipping: "$5.00 shipping", DiscountPercentage: models.Float(20)},
	}
}

func serve(t *testing.T, source DealSource, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(NewHandlers(source, slog.New(slog.NewTextHandler(io.Discard, nil))))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeDeals(t *testing.T, rec *httptest.ResponseRecorder) DealsResponse {
	t.Helper()
	var resp DealsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func titles(rows []models.CleanProduct) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := serve(t, &stubSource{}, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListDeals(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantTitle []string
		wantTotal int
	}{
		{
			name:      "sorted by discount with missing last",
			target:    "/api/v1/deals",
			wantCode:  http.StatusOK,
			wantTitle: []string{"Mouse", "Laptop", "Hub", "Cable"},
			wantTotal: 4,
		},
		{
			name:      "min discount filter",
			target:    "/api/v1/deals?min_discount=20",
			wantCode:  http.StatusOK,
			wantTitle: []string{"Mouse", "Laptop"},
			wantTotal: 2,
		},
		{
			name:      "limit",
			target:    "/api/v1/deals?limit=1",
			wantCode:  http.StatusOK,
			wantTitle: []string{"Mouse"},
			wantTotal: 4,
		},
		{
			name:     "invalid limit",
			target:   "/api/v1/deals?limit=0",
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid min discount",
			target:   "/api/v1/deals?min_discount=lots",
			wantCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, &stubSource{rows: testRows()}, tt.target)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusOK {
				return
			}
			resp := decodeDeals(t, rec)
			assert.Equal(t, tt.wantTitle, titles(resp.Deals))
			assert.Equal(t, len(tt.wantTitle), resp.Count)
			assert.Equal(t, tt.wantTotal, resp.Total)
		})
	}
}

func TestListDealsEmptyTable(t *testing.T) {
	rec := serve(t, &stubSource{}, "/api/v1/deals")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeDeals(t, rec)
	assert.NotNil(t, resp.Deals)
	assert.Empty(t, resp.Deals)
}

func TestListDealsLoadError(t *testing.T) {
	rec := serve(t, &stubSource{err: errors.New("disk gone")}, "/api/v1/deals")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to load deals"}`, rec.Body.String())
}

func TestGetStats(t *testing.T) {
	rec := serve(t, &stubSource{rows: testRows()}, "/api/v1/stats")

	require.Equal(t, http.StatusOK, rec.Code)

	var summary cleaning.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 4, summary.RowsOut)
	assert.Equal(t, 0, summary.Dropped)
	assert.Equal(t, 3, summary.WithDiscount)
	assert.Equal(t, 2, summary.FreeShipping)
	assert.Equal(t, 1, summary.ShippingUnknown)
	require.NotNil(t, summary.MaxDiscount)
	assert.Equal(t, 50.01, *summary.MaxDiscount)
	require.NotNil(t, summary.MeanDiscount)
	assert.Equal(t, 23.34, *summary.MeanDiscount)
}
