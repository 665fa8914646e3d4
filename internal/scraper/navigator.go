package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/prodsight/amazon-review-scraper/internal/parser"
	"github.com/prodsight/amazon-review-scraper/internal/ratelimit"
)

const (
	searchPathMarker  = "/s?"
	errorPathMarker   = "/errors/"
	productPathMarker = "/dp/"
)

// Navigator drives a session from a free-text query to a confirmed product
// detail page, classifying redirects on the way.
type Navigator struct {
	parser     parser.Parser
	pause      *ratelimit.Jitter
	logger     *slog.Logger
	baseURL    string
	category   string
	navTimeout time.Duration
}

type NavigatorOptions struct {
	BaseURL    string
	Category   string
	NavTimeout time.Duration
	PauseMin   time.Duration
	PauseMax   time.Duration
}

func NewNavigator(p parser.Parser, opts NavigatorOptions, logger *slog.Logger) *Navigator {
	return &Navigator{
		parser:     p,
		pause:      ratelimit.NewJitter(opts.PauseMin, opts.PauseMax),
		logger:     logger.With("component", "navigator"),
		baseURL:    opts.BaseURL,
		category:   opts.Category,
		navTimeout: opts.NavTimeout,
	}
}

// ResolveProductURL runs the search step and the product-detail step on the
// given session. On success the session sits on the product page and the
// canonical (query-string-stripped) product URL is returned.
//
// A spelling-correction page yields a *SoftRedirect; landing back on search
// results or an error page after the detail navigation yields ErrHardRedirect.
func (n *Navigator) ResolveProductURL(ctx context.Context, session Session, query string) (string, error) {
	searchURL := n.buildSearchURL(query)
	n.logger.Info("navigating to search", "url", searchURL)

	if err := session.Navigate(searchURL, n.navTimeout); err != nil {
		return "", fmt.Errorf("search navigation failed: %w", err)
	}

	if !strings.Contains(session.CurrentURL(), searchPathMarker) {
		n.logger.Info("landed off the search page, checking for correction", "url", session.CurrentURL())

		html, err := session.Content()
		if err != nil {
			return "", fmt.Errorf("failed to read redirected page: %w", err)
		}
		if corrected := n.parser.ParseCorrectedQuery(html); corrected != "" {
			return "", &SoftRedirect{CorrectedQuery: corrected}
		}
		// No correction offered; fall through and let the result scan
		// decide whether anything usable is on this page.
	}

	// Pause before touching the DOM to soften the automated-traffic
	// signature.
	if err := n.pause.Wait(ctx); err != nil {
		return "", err
	}

	html, err := session.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read search results: %w", err)
	}

	productURL, err := n.selectProduct(html)
	if err != nil {
		return "", err
	}

	n.logger.Info("navigating to product", "url", productURL)
	if err := session.Navigate(productURL, n.navTimeout); err != nil {
		return "", fmt.Errorf("product navigation failed: %w", err)
	}

	landed := session.CurrentURL()
	if strings.Contains(landed, searchPathMarker) || strings.Contains(landed, errorPathMarker) {
		return "", fmt.Errorf("%w: landed on %s", ErrHardRedirect, landed)
	}

	return productURL, nil
}

// selectProduct picks the first non-sponsored listing with a product detail
// link, in document order, and strips its query string.
func (n *Navigator) selectProduct(html string) (string, error) {
	listings, err := n.parser.ParseSearchResults(html)
	if err != nil {
		return "", fmt.Errorf("failed to parse search results: %w", err)
	}

	for _, listing := range listings {
		if listing.Sponsored {
			continue
		}
		if !strings.Contains(listing.Href, productPathMarker) {
			continue
		}
		return n.canonicalize(listing.Href), nil
	}

	return "", ErrNoProductFound
}

func (n *Navigator) canonicalize(href string) string {
	if strings.HasPrefix(href, "/") {
		href = n.baseURL + href
	}
	if idx := strings.Index(href, "?"); idx >= 0 {
		href = href[:idx]
	}
	return href
}

func (n *Navigator) buildSearchURL(query string) string {
	return fmt.Sprintf("%s/s?k=%s&i=%s", n.baseURL, url.QueryEscape(query), n.category)
}
