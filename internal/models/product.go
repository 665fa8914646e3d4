package models

const (
	// Sentinel values for optional product fields. Callers always see a
	// string here, never a missing key.
	NoTitle  = "No title found"
	NoPrice  = "No price found"
	NoRating = "No rating found"

	MaxImages  = 4
	MaxReviews = 5
)

// ProductRecord is the structured result of one successful extraction.
// It is immutable after construction and never persisted.
type ProductRecord struct {
	Title          string            `json:"title"`
	Price          string            `json:"price"`
	Rating         string            `json:"rating"`
	Specifications map[string]string `json:"specifications"`
	Images         []string          `json:"images"`
	Reviews        []Review          `json:"reviews"`
	CanonicalURL   string            `json:"canonical_url"`
}

// Review is a single customer review with a parsed numeric rating.
type Review struct {
	Text   string  `json:"text"`
	Rating float64 `json:"rating"`
}

func NewProductRecord() *ProductRecord {
	return &ProductRecord{
		Title:          NoTitle,
		Price:          NoPrice,
		Rating:         NoRating,
		Specifications: make(map[string]string),
		Images:         make([]string, 0),
		Reviews:        make([]Review, 0),
	}
}

// HasTitle reports whether a real title was extracted. A record without a
// title is treated as an incomplete extraction by the pipeline.
func (p *ProductRecord) HasTitle() bool {
	return p.Title != "" && p.Title != NoTitle
}

// Result is the response envelope consumed by the API layer.
type Result struct {
	Query   string           `json:"query"`
	Results []*ProductRecord `json:"results"`
}
