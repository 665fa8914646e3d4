package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prodsight/amazon-review-scraper/internal/models"
	"github.com/prodsight/amazon-review-scraper/internal/ratelimit"
)

// URLResolver resolves a query to a canonical product URL, leaving the
// session on the product page.
type URLResolver interface {
	ResolveProductURL(ctx context.Context, session Session, query string) (string, error)
}

// PageExtractor extracts a ProductRecord from the page a session sits on.
type PageExtractor interface {
	Extract(session Session) (*models.ProductRecord, error)
}

// Service resolves one query into one ProductRecord through a bounded-retry
// loop. Each attempt gets a fresh session that is released on every exit
// path; a soft redirect substitutes the query without consuming an attempt.
type Service struct {
	sessions   SessionFactory
	navigator  URLResolver
	extractor  PageExtractor
	retryDelay *ratelimit.Jitter
	logger     *slog.Logger

	maxAttempts int
	slots       chan struct{}
}

type ServiceOptions struct {
	MaxAttempts     int
	RetryDelayMin   time.Duration
	RetryDelayMax   time.Duration
	ConcurrentLimit int
}

func NewService(sessions SessionFactory, navigator URLResolver, extractor PageExtractor, opts ServiceOptions, logger *slog.Logger) *Service {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.ConcurrentLimit < 1 {
		opts.ConcurrentLimit = 1
	}

	return &Service{
		sessions:    sessions,
		navigator:   navigator,
		extractor:   extractor,
		retryDelay:  ratelimit.NewJitter(opts.RetryDelayMin, opts.RetryDelayMax),
		logger:      logger.With("component", "orchestrator"),
		maxAttempts: opts.MaxAttempts,
		slots:       make(chan struct{}, opts.ConcurrentLimit),
	}
}

// Scrape runs the full pipeline for one query. The result is all-or-nothing:
// either a complete ProductRecord or a terminal error. Transient failures are
// absorbed here and never leak to the caller individually.
func (s *Service) Scrape(ctx context.Context, query string) (*models.ProductRecord, error) {
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.slots }()

	log := s.logger.With("run_id", uuid.New().String(), "query", query)

	var (
		attempts      = s.maxAttempts
		substitutions = 0
		current       = query
		lastErr       error
	)

	for attempts > 0 {
		record, err := s.attempt(ctx, log, current)
		if err == nil {
			log.Info("scrape succeeded", "url", record.CanonicalURL, "attempts_left", attempts)
			return record, nil
		}

		var soft *SoftRedirect
		if errors.As(err, &soft) {
			// A usable correction restarts resolution within the same
			// attempt. An unusable one (empty, repeated, or too many in a
			// row) is treated as a transient failure instead.
			if soft.CorrectedQuery != "" && soft.CorrectedQuery != current && substitutions < s.maxAttempts {
				substitutions++
				log.Info("substituting corrected query", "corrected", soft.CorrectedQuery)
				current = soft.CorrectedQuery
				continue
			}
		}

		if errors.Is(err, ErrSessionAcquisition) {
			log.Error("session acquisition failed", "error", err)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		attempts--
		if attempts == 0 {
			break
		}

		log.Warn("attempt failed, retrying", "error", err, "attempts_left", attempts)
		if err := s.retryDelay.Wait(ctx); err != nil {
			return nil, err
		}
	}

	log.Error("retry budget exhausted", "error", lastErr)
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrBudgetExhausted, s.maxAttempts, lastErr)
}

// attempt runs one Searching -> Resolving -> Extracting pass on a fresh
// session. The deferred close guarantees teardown on every exit path.
func (s *Service) attempt(ctx context.Context, log *slog.Logger, query string) (*models.ProductRecord, error) {
	session, err := s.sessions.NewSession()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionAcquisition, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("failed to close session", "error", err)
		}
	}()

	productURL, err := s.navigator.ResolveProductURL(ctx, session, query)
	if err != nil {
		return nil, err
	}

	record, err := s.extractor.Extract(session)
	if err != nil {
		return nil, err
	}

	record.CanonicalURL = productURL
	return record, nil
}
