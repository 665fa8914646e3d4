package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/prodsight/amazon-review-scraper/internal/models"
)

const (
	highResMarker = "_SL1500"
	// Rendition suffix between the last underscore segment and the file
	// extension, e.g. "_AC_UY218_." in ".../41abc123._AC_UY218_.jpg".
	renditionPattern = `_.*?\.`
)

var (
	renditionRe  = regexp.MustCompile(renditionPattern)
	excludedURLs = []string{"sprite", "icon", "badge", "logo"}
)

type AmazonParser struct{}

func NewAmazonParser() *AmazonParser {
	return &AmazonParser{}
}

// ParseProductPage extracts a ProductRecord from a product detail page.
// Every optional field gets an explicit sentinel when absent; only a broken
// document yields an error.
func (p *AmazonParser) ParseProductPage(html string) (*models.ProductRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	record := models.NewProductRecord()

	if title := textOf(doc.Find("#productTitle").First()); title != "" {
		record.Title = title
	}
	if price := textOf(doc.Find(".a-price .a-offscreen").First()); price != "" {
		record.Price = price
	}
	if rating := textOf(doc.Find(".a-icon-alt").First()); rating != "" {
		record.Rating = rating
	}

	record.Specifications = p.extractSpecifications(doc)
	record.Images = p.extractImages(doc)
	record.Reviews = selectReviews(p.extractReviews(doc))

	return record, nil
}

// extractSpecifications scans the product overview label/value rows. A row is
// kept only when both label and value are non-empty after trimming; a later
// duplicate label overwrites an earlier one.
func (p *AmazonParser) extractSpecifications(doc *goquery.Document) map[string]string {
	specs := make(map[string]string)

	doc.Find("#productOverview_feature_div .a-spacing-small").Each(func(_ int, row *goquery.Selection) {
		label := textOf(row.Find(".a-text-bold").First())
		label = strings.TrimSpace(strings.ReplaceAll(label, ":", ""))
		value := textOf(row.Find(".po-break-word").First())

		if label != "" && value != "" {
			specs[label] = value
		}
	})

	return specs
}

// extractImages collects image URL candidates from the dynamic-image JSON
// attributes and the inline gallery tags, deduplicates them in scan order,
// normalizes each to the largest rendition, and keeps the last MaxImages
// high-resolution candidates. Zero images is a valid result.
func (p *AmazonParser) extractImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	ordered := make([]string, 0)

	add := func(src string) {
		if !strings.Contains(src, "https") {
			return
		}
		for _, marker := range excludedURLs {
			if strings.Contains(src, marker) {
				return
			}
		}
		src = normalizeRendition(src)
		if !seen[src] {
			seen[src] = true
			ordered = append(ordered, src)
		}
	}

	doc.Find("[data-a-dynamic-image]").Each(func(_ int, el *goquery.Selection) {
		raw, ok := el.Attr("data-a-dynamic-image")
		if !ok {
			return
		}
		var sizes map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
			return
		}
		// JSON object keys carry no order; sort for a stable scan order.
		urls := make([]string, 0, len(sizes))
		for u := range sizes {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		for _, u := range urls {
			add(u)
		}
	})

	doc.Find(".a-row img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			add(src)
		}
	})

	doc.Find("#imgTagWrapperId img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			add(src)
		}
	})

	highRes := make([]string, 0, len(ordered))
	for _, u := range ordered {
		if strings.Contains(u, highResMarker) {
			highRes = append(highRes, u)
		}
	}

	// Later gallery images tend to be the more specific ones, so keep the
	// tail rather than the head.
	if len(highRes) > models.MaxImages {
		highRes = highRes[len(highRes)-models.MaxImages:]
	}

	return highRes
}

// extractReviews returns all review blocks that have both a non-empty body
// and a parsable numeric star rating, in document order.
func (p *AmazonParser) extractReviews(doc *goquery.Document) []models.Review {
	reviews := make([]models.Review, 0)

	doc.Find(".review").Each(func(_ int, el *goquery.Selection) {
		text := textOf(el.Find(".review-text-content").First())
		ratingText := textOf(el.Find(".a-icon-alt").First())

		rating, ok := parseStarRating(ratingText)
		if text == "" || !ok {
			return
		}

		reviews = append(reviews, models.Review{Text: text, Rating: rating})
	})

	return reviews
}

// ParseSearchResults lists the result entries of a search page in document
// order, flagging sponsored placements by label element or text heuristic.
func (p *AmazonParser) ParseSearchResults(html string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	listings := make([]Listing, 0)

	doc.Find(".s-main-slot .s-result-item").Each(func(_ int, el *goquery.Selection) {
		sponsored := el.Find(".s-sponsored-label").Length() > 0 ||
			strings.Contains(el.Text(), "Sponsored")

		href, _ := el.Find("a.a-link-normal").First().Attr("href")

		listings = append(listings, Listing{
			Href:      href,
			Sponsored: sponsored,
		})
	})

	return listings, nil
}

// ParseCorrectedQuery returns the site's "did you mean" spelling correction,
// or the empty string when the page offers none.
func (p *AmazonParser) ParseCorrectedQuery(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	return textOf(doc.Find(".a-spacing-small .a-color-state").First())
}

// selectReviews caps the review list at MaxReviews, preferring a mix of two
// low-rated, two high-rated and one mid-rated review when enough of each
// exist. Otherwise the first MaxReviews valid reviews are kept.
func selectReviews(reviews []models.Review) []models.Review {
	var low, high, mid []models.Review
	for _, r := range reviews {
		switch {
		case r.Rating <= 2:
			low = append(low, r)
		case r.Rating >= 4:
			high = append(high, r)
		case r.Rating == 3:
			mid = append(mid, r)
		}
	}

	if len(low) >= 2 && len(high) >= 2 {
		selected := make([]models.Review, 0, models.MaxReviews)
		selected = append(selected, low[:2]...)
		selected = append(selected, high[:2]...)
		if len(mid) > 0 {
			selected = append(selected, mid[0])
		}
		return selected
	}

	if len(reviews) > models.MaxReviews {
		reviews = reviews[:models.MaxReviews]
	}
	return reviews
}

// normalizeRendition rewrites the rendition suffix so the URL requests the
// largest available image, e.g. "41abc._AC_UY218_.jpg" -> "41abc._SL1500.jpg".
func normalizeRendition(src string) string {
	loc := renditionRe.FindStringIndex(src)
	if loc == nil {
		return src
	}
	return src[:loc[0]] + highResMarker + "." + src[loc[1]:]
}

func parseStarRating(text string) (float64, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, false
	}
	rating, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return rating, true
}

func textOf(sel *goquery.Selection) string {
	return strings.TrimSpace(sel.Text())
}
