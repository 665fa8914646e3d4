package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prodsight/amazon-review-scraper/internal/cache"
	"github.com/prodsight/amazon-review-scraper/internal/models"
	"github.com/prodsight/amazon-review-scraper/internal/scraper"
)

// ProductScraper is the pipeline surface the API consumes.
type ProductScraper interface {
	Scrape(ctx context.Context, query string) (*models.ProductRecord, error)
}

// ReviewGenerator synthesizes a review without scraping.
type ReviewGenerator interface {
	GenerateReview(ctx context.Context, productName string) (map[string]any, error)
}

type Handlers struct {
	scraper   ProductScraper
	generator ReviewGenerator
	cache     *cache.Cache
	logger    *slog.Logger
}

// NewHandlers wires the API endpoints. generator and cache may be nil when
// the corresponding feature is not configured.
func NewHandlers(s ProductScraper, generator ReviewGenerator, c *cache.Cache, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:   s,
		generator: generator,
		cache:     c,
		logger:    logger,
	}
}

// GetReviews resolves a free-text product query into one scraped
// ProductRecord wrapped in the result envelope.
func (h *Handlers) GetReviews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		h.respondError(w, http.StatusBadRequest, "Search query is required")
		return
	}

	if h.cache != nil {
		if result, ok := h.cache.Get(r.Context(), query); ok {
			h.logger.Info("serving cached result", "query", query)
			h.respondJSON(w, http.StatusOK, result)
			return
		}
	}

	record, err := h.scraper.Scrape(r.Context(), query)
	if err != nil {
		h.logger.Error("scrape failed", "query", query, "error", err)

		// Internal failure kinds stay internal; the caller gets one
		// generic message per outcome class.
		if errors.Is(err, scraper.ErrNoProductFound) || errors.Is(err, scraper.ErrBudgetExhausted) {
			h.respondError(w, http.StatusNotFound, "No products found. Try a different search term.")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to fetch reviews. Please try again later.")
		return
	}

	result := &models.Result{
		Query:   query,
		Results: []*models.ProductRecord{record},
	}

	if h.cache != nil {
		h.cache.Set(r.Context(), query, result)
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GenerateReviewResponse wraps a generated review with the product it covers.
type GenerateReviewResponse struct {
	Product string         `json:"product"`
	Review  map[string]any `json:"review"`
}

// GenerateReview returns a model-written structured review for a product
// name, without touching the target site.
func (h *Handlers) GenerateReview(w http.ResponseWriter, r *http.Request) {
	productName := r.URL.Query().Get("product_name")
	if productName == "" {
		h.respondError(w, http.StatusBadRequest, "Product name is required")
		return
	}

	if h.generator == nil {
		h.respondError(w, http.StatusServiceUnavailable, "Review generation is not configured")
		return
	}

	review, err := h.generator.GenerateReview(r.Context(), productName)
	if err != nil {
		h.logger.Error("review generation failed", "product", productName, "error", err)
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, GenerateReviewResponse{
		Product: productName,
		Review:  review,
	})
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

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
