package scraper

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionAcquisition means the browser engine could not hand out a
	// session. Fatal for the whole query, never retried.
	ErrSessionAcquisition = errors.New("failed to acquire browser session")

	// ErrNoProductFound means the search results held no non-sponsored
	// listing with a product detail link.
	ErrNoProductFound = errors.New("no non-sponsored product found")

	// ErrHardRedirect means navigation to the product page landed back on
	// search results or on an error/CAPTCHA page.
	ErrHardRedirect = errors.New("redirected to search results or error page")

	// ErrExtractionIncomplete means the product page never produced the
	// required title/review signals within the readiness timeouts.
	ErrExtractionIncomplete = errors.New("product page yielded no usable data")

	// ErrBudgetExhausted is the terminal failure after all attempts failed.
	ErrBudgetExhausted = errors.New("retry budget exhausted")
)

// SoftRedirect signals that the site answered the search with a spelling
// correction page. It is resolved by substituting the corrected query, not by
// retrying, and does not consume an attempt.
type SoftRedirect struct {
	CorrectedQuery string
}

func (e *SoftRedirect) Error() string {
	return fmt.Sprintf("soft redirect with corrected query %q", e.CorrectedQuery)
}

// Session is the capability surface the pipeline needs from an automated
// browser engine. Any engine satisfying it is substitutable; tests use an
// in-memory fake.
type Session interface {
	Navigate(url string, timeout time.Duration) error
	CurrentURL() string
	WaitForSelector(selector string, timeout time.Duration) error
	Content() (string, error)
	Close() error
}

// SessionFactory hands out isolated sessions, one per pipeline attempt.
type SessionFactory interface {
	NewSession() (Session, error)
}
