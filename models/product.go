package models

import "time"

// RawProduct holds unprocessed extracted data straight from the markup.
// This is written to CSV before any cleaning or transformation.
type RawProduct struct {
	Name        string
	RawPrice    string
	Brand       string
	Category    string
	Description string
	URL         string
	ImageURL    string
	Source      string
	SourceID    string
	ScrapedAt   time.Time
}

// RawReview is a review as found on the page, before rating parsing.
type RawReview struct {
	ReviewerName string
	RawRating    string
	ReviewText   string
	ReviewDate   string
}

// ProductRecord is the cleaned product ready for storage and analysis.
// A nil Price means the price could not be parsed.
type ProductRecord struct {
	ID          int64    `json:"id,omitempty"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url"`
	ImageURL    string   `json:"image_url"`
	Source      string   `json:"source"`
	SourceID    string   `json:"source_id"`
}

// ReviewRecord is one customer review. Empty strings and a nil Rating mean
// the field was not found on the page.
type ReviewRecord struct {
	ReviewerName string `json:"reviewer_name,omitempty"`
	Rating       *int   `json:"rating,omitempty"`
	ReviewText   string `json:"review_text"`
	ReviewDate   string `json:"review_date,omitempty"`
}

// ScoredReview pairs a review with the sentiment computed from its text.
type ScoredReview struct {
	ReviewRecord
	Sentiment SentimentResult `json:"sentiment"`
}

// PricePoint is one observation in a product's price history.
type PricePoint struct {
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Float returns a pointer to f, handy for optional numeric fields.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
