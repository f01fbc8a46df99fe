package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/maltedev/deal-scraper/internal/cleaning"
	"github.com/maltedev/deal-scraper/internal/models"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// DealSource loads the current clean table.
type DealSource interface {
	LoadClean() ([]models.CleanProduct, error)
}

type Handlers struct {
	deals  DealSource
	logger *slog.Logger
}

func NewHandlers(deals DealSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		deals:  deals,
		logger: logger.With("component", "api"),
	}
}

// DealsResponse is the payload of the deals listing.
type DealsResponse struct {
	Deals []models.CleanProduct `json:"deals"`
	Count int                   `json:"count"`
	Total int                   `json:"total"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListDeals returns clean rows ordered by discount, largest first. Rows
// without a discount sort last. min_discount excludes them entirely.
func (h *Handlers) ListDeals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultLimit
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	var minDiscount *float64
	if v := query.Get("min_discount"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "min_discount must be a number")
			return
		}
		minDiscount = &d
	}

	rows, err := h.deals.LoadClean()
	if err != nil {
		h.logger.Error("failed to load deals", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to load deals")
		return
	}

	filtered := make([]models.CleanProduct, 0, len(rows))
	for _, row := range rows {
		if minDiscount != nil && (row.DiscountPercentage == nil || *row.DiscountPercentage < *minDiscount) {
			continue
		}
		filtered = append(filtered, row)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := filtered[i].DiscountPercentage, filtered[j].DiscountPercentage
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})

	total := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	h.respondJSON(w, http.StatusOK, DealsResponse{
		Deals: filtered,
		Count: len(filtered),
		Total: total,
	})
}

// GetStats summarizes the clean table.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deals.LoadClean()
	if err != nil {
		h.logger.Error("failed to load deals", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	h.respondJSON(w, http.StatusOK, cleaning.Summarize(len(rows), rows))
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
