package scraper

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prodsight/amazon-review-scraper/internal/models"
	"github.com/prodsight/amazon-review-scraper/internal/parser"
)

const (
	titleSelector  = "#productTitle"
	reviewSelector = ".review"
)

// Extractor turns a confirmed product page into a ProductRecord. Title and
// reviews are two independent readiness gates; specs and images may
// legitimately be absent.
type Extractor struct {
	parser        parser.Parser
	logger        *slog.Logger
	titleTimeout  time.Duration
	reviewTimeout time.Duration
}

type ExtractorOptions struct {
	TitleTimeout  time.Duration
	ReviewTimeout time.Duration
}

func NewExtractor(p parser.Parser, opts ExtractorOptions, logger *slog.Logger) *Extractor {
	return &Extractor{
		parser:        p,
		logger:        logger.With("component", "extractor"),
		titleTimeout:  opts.TitleTimeout,
		reviewTimeout: opts.ReviewTimeout,
	}
}

// Extract waits for the readiness gates, then parses a snapshot of the page.
// Missing required signals surface as ErrExtractionIncomplete so the
// orchestrator can retry the whole attempt.
func (e *Extractor) Extract(session Session) (*models.ProductRecord, error) {
	if err := session.WaitForSelector(titleSelector, e.titleTimeout); err != nil {
		return nil, fmt.Errorf("%w: title never appeared: %v", ErrExtractionIncomplete, err)
	}
	if err := session.WaitForSelector(reviewSelector, e.reviewTimeout); err != nil {
		return nil, fmt.Errorf("%w: reviews never appeared: %v", ErrExtractionIncomplete, err)
	}

	html, err := session.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read product page: %w", err)
	}

	record, err := e.parser.ParseProductPage(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}

	if !record.HasTitle() {
		return nil, fmt.Errorf("%w: no title in page snapshot", ErrExtractionIncomplete)
	}

	e.logger.Info("extracted product",
		"title", record.Title,
		"specs", len(record.Specifications),
		"images", len(record.Images),
		"reviews", len(record.Reviews),
	)

	return record, nil
}
