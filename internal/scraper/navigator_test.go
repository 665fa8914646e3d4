package scraper

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prodsight/amazon-review-scraper/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBaseURL   = "https://www.amazon.in"
	testSearchURL = "https://www.amazon.in/s?k=wireless+mouse&i=electronics"
)

func newTestNavigator(t *testing.T) *Navigator {
	t.Helper()
	return NewNavigator(parser.NewAmazonParser(), NavigatorOptions{
		BaseURL:    testBaseURL,
		Category:   "electronics",
		NavTimeout: time.Second,
		PauseMin:   0,
		PauseMax:   0,
	}, slog.Default())
}

const searchResultsHTML = `
<div class="s-main-slot">
  <div class="s-result-item">
    <span class="s-sponsored-label">Sponsored</span>
    <a class="a-link-normal" href="/Paid-Mouse/dp/B0SPONSOR1/ref=sr_1_1?tag=ads"></a>
  </div>
  <div class="s-result-item">
    <a class="a-link-normal" href="/Logitech-Mouse/dp/B09HM94VDS/ref=sr_1_2?keywords=wireless+mouse&qid=17"></a>
  </div>
</div>`

func TestResolveProductURLSkipsSponsored(t *testing.T) {
	nav := newTestNavigator(t)

	productURL := testBaseURL + "/Logitech-Mouse/dp/B09HM94VDS/ref=sr_1_2"
	session := &fakeSession{pages: map[string]fakePage{
		testSearchURL: {html: searchResultsHTML},
		productURL:    {html: "<div id='productTitle'>Mouse</div>"},
	}}

	got, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
	require.NoError(t, err)

	assert.Equal(t, productURL, got)
	assert.NotContains(t, got, "?")
	assert.Equal(t, []string{testSearchURL, productURL}, session.navigated)
}

func TestResolveProductURLSoftRedirect(t *testing.T) {
	nav := newTestNavigator(t)

	session := &fakeSession{pages: map[string]fakePage{
		testSearchURL: {
			landedURL: testBaseURL + "/something-else",
			html:      `<div class="a-spacing-small"><span class="a-color-state">wireless mouse</span></div>`,
		},
	}}

	_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")

	var soft *SoftRedirect
	require.ErrorAs(t, err, &soft)
	assert.Equal(t, "wireless mouse", soft.CorrectedQuery)
}

func TestResolveProductURLOffSearchWithoutCorrection(t *testing.T) {
	nav := newTestNavigator(t)

	// No "did you mean" element and no result entries: the scan decides.
	session := &fakeSession{pages: map[string]fakePage{
		testSearchURL: {
			landedURL: testBaseURL + "/something-else",
			html:      `<div>nothing useful</div>`,
		},
	}}

	_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
	assert.ErrorIs(t, err, ErrNoProductFound)
}

func TestResolveProductURLHardRedirect(t *testing.T) {
	nav := newTestNavigator(t)

	productURL := testBaseURL + "/Logitech-Mouse/dp/B09HM94VDS/ref=sr_1_2"
	session := &fakeSession{pages: map[string]fakePage{
		testSearchURL: {html: searchResultsHTML},
		productURL: {
			landedURL: testBaseURL + "/errors/validateCaptcha",
			html:      "captcha",
		},
	}}

	_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
	assert.ErrorIs(t, err, ErrHardRedirect)
}

func TestResolveProductURLHardRedirectBackToSearch(t *testing.T) {
	nav := newTestNavigator(t)

	productURL := testBaseURL + "/Logitech-Mouse/dp/B09HM94VDS/ref=sr_1_2"
	session := &fakeSession{pages: map[string]fakePage{
		testSearchURL: {html: searchResultsHTML},
		productURL: {
			landedURL: testBaseURL + "/s?k=wireless+mouse",
			html:      searchResultsHTML,
		},
	}}

	_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
	assert.ErrorIs(t, err, ErrHardRedirect)
}

func TestResolveProductURLNoProduct(t *testing.T) {
	nav := newTestNavigator(t)

	tests := []struct {
		name string
		html string
	}{
		{
			name: "only sponsored entries",
			html: `<div class="s-main-slot">
				<div class="s-result-item"><span class="s-sponsored-label">Sponsored</span>
				<a class="a-link-normal" href="/x/dp/B000000001?a=b"></a></div>
			</div>`,
		},
		{
			name: "entries without detail links",
			html: `<div class="s-main-slot">
				<div class="s-result-item"><a class="a-link-normal" href="/gp/help/whatever"></a></div>
			</div>`,
		},
		{
			name: "empty results",
			html: `<div class="s-main-slot"></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{pages: map[string]fakePage{
				testSearchURL: {html: tt.html},
			}}

			_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
			assert.ErrorIs(t, err, ErrNoProductFound)
		})
	}
}

func TestResolveProductURLNavigationError(t *testing.T) {
	nav := newTestNavigator(t)

	session := &fakeSession{navErr: errors.New("net::ERR_TIMED_OUT")}

	_, err := nav.ResolveProductURL(context.Background(), session, "wireless mouse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search navigation failed")
}
