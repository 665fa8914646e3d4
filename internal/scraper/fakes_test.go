package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prodsight/amazon-review-scraper/internal/models"
)

// fakePage is what a fakeSession serves for one navigated URL.
type fakePage struct {
	// landedURL overrides the post-navigation URL, simulating a redirect.
	// Empty means the navigation lands where it was pointed.
	landedURL string
	html      string
	selectors map[string]bool
}

// fakeSession is an in-memory stand-in for the browser engine, scripted with
// a page per URL.
type fakeSession struct {
	pages     map[string]fakePage
	current   fakePage
	currentAt string
	navErr    error
	closed    bool
	navigated []string
}

func (s *fakeSession) Navigate(url string, _ time.Duration) error {
	s.navigated = append(s.navigated, url)
	if s.navErr != nil {
		return s.navErr
	}

	page, ok := s.pages[url]
	if !ok {
		return errors.New("no scripted page for " + url)
	}

	s.current = page
	s.currentAt = url
	if page.landedURL != "" {
		s.currentAt = page.landedURL
	}
	return nil
}

func (s *fakeSession) CurrentURL() string {
	return s.currentAt
}

func (s *fakeSession) WaitForSelector(selector string, _ time.Duration) error {
	if s.current.selectors[selector] {
		return nil
	}
	return errors.New("timeout waiting for " + selector)
}

func (s *fakeSession) Content() (string, error) {
	return s.current.html, nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

// fakeFactory hands out one scripted session per call and remembers them so
// tests can assert teardown.
type fakeFactory struct {
	mu       sync.Mutex
	build    func() *fakeSession
	err      error
	sessions []*fakeSession
}

func (f *fakeFactory) NewSession() (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	s := f.build()
	f.sessions = append(f.sessions, s)
	return s, nil
}

// scriptedResolver fault-injects the navigator seam of the orchestrator. Each
// call consumes the next scripted outcome; the last one repeats.
type scriptedResolver struct {
	outcomes []resolveOutcome
	calls    int
	queries  []string
}

type resolveOutcome struct {
	url string
	err error
}

func (r *scriptedResolver) ResolveProductURL(_ context.Context, _ Session, query string) (string, error) {
	r.queries = append(r.queries, query)

	idx := r.calls
	if idx >= len(r.outcomes) {
		idx = len(r.outcomes) - 1
	}
	r.calls++

	out := r.outcomes[idx]
	return out.url, out.err
}

type scriptedExtractor struct {
	record *models.ProductRecord
	err    error
	calls  int
}

func (e *scriptedExtractor) Extract(_ Session) (*models.ProductRecord, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.record, nil
}
