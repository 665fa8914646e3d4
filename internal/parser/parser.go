package parser

import (
	"github.com/prodsight/amazon-review-scraper/internal/models"
)

// Listing is one entry on a search results page, in document order.
type Listing struct {
	Href      string
	Sponsored bool
}

type Parser interface {
	ParseProductPage(html string) (*models.ProductRecord, error)
	ParseSearchResults(html string) ([]Listing, error)
	ParseCorrectedQuery(html string) string
}
