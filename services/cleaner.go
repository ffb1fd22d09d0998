package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"product-intel/models"
	"product-intel/utils"
)

// Text limits applied by CleanText and CleanTextN.
const (
	MaxTextLen        = 200
	MaxDescriptionLen = 500
)

var (
	// priceRegexp captures the first decimal number once separators are gone
	priceRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)
	// ratingRegexp captures the first integer in a rating label like "4 stars"
	ratingRegexp = regexp.MustCompile(`\d+`)
	spaceRegexp  = regexp.MustCompile(`\s+`)
)

// CleanText normalises free text and caps it at MaxTextLen characters.
func CleanText(raw string) string {
	return CleanTextN(raw, MaxTextLen)
}

// CleanTextN collapses whitespace runs (newlines included) to single spaces,
// trims, escapes double quotes and truncates to max characters.
func CleanTextN(raw string, max int) string {
	if raw == "" {
		return ""
	}
	s := strings.ReplaceAll(collapseSpace(raw), `"`, `\"`)
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = string([]rune(s)[:max])
	}
	return s
}

// ParsePrice extracts a numeric price from loosely formatted text such as
// "Rs. 1,299.00". ok is false when the text holds no number.
func ParsePrice(raw string) (price float64, ok bool) {
	if raw == "" {
		return 0, false
	}
	match := priceRegexp.FindString(strings.ReplaceAll(raw, ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseRating returns the first integer in raw when it is a valid 1–5 star
// rating, nil otherwise.
func ParseRating(raw string) *int {
	match := ratingRegexp.FindString(raw)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(match)
	if err != nil || n < 1 || n > 5 {
		return nil
	}
	return &n
}

// Cleaner turns raw extracted records into validated products and reviews.
// It is the caller that rejects unusable products; the extractor never does.
type Cleaner struct {
	logger   *utils.Logger
	prefixes map[string]string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCleaner creates a Cleaner. prefixes maps a source name to the prefix
// used when a product arrives without a source id.
func NewCleaner(logger *utils.Logger, prefixes map[string]string) *Cleaner {
	return &Cleaner{
		logger:   logger.Named("cleaner"),
		prefixes: prefixes,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CleanProduct validates one raw product. ok is false when the name is empty
// or the price cannot be parsed.
func (c *Cleaner) CleanProduct(r models.RawProduct) (models.ProductRecord, bool) {
	name := CleanText(r.Name)
	price, hasPrice := ParsePrice(r.RawPrice)
	if name == "" || !hasPrice {
		c.logger.Debug("dropping product %q (price %q)", r.Name, r.RawPrice)
		return models.ProductRecord{}, false
	}

	brand := CleanText(r.Brand)
	if brand == "" {
		brand = "Unknown"
	}
	category := CleanText(r.Category)
	if category == "" {
		category = "General"
	}

	sourceID := strings.TrimSpace(r.SourceID)
	if sourceID == "" {
		sourceID = c.newSourceID(r.Source, strings.TrimSpace(r.URL))
	}

	return models.ProductRecord{
		Name:        name,
		Brand:       brand,
		Category:    category,
		Price:       models.Float(price),
		Description: CleanTextN(r.Description, MaxDescriptionLen),
		URL:         strings.TrimSpace(r.URL),
		ImageURL:    strings.TrimSpace(r.ImageURL),
		Source:      r.Source,
		SourceID:    sourceID,
	}, true
}

// Clean processes a batch of raw products, dropping invalid ones and
// duplicate URLs.
func (c *Cleaner) Clean(raw []models.RawProduct) []models.ProductRecord {
	seen := utils.NewURLSet()
	result := make([]models.ProductRecord, 0, len(raw))

	for _, r := range raw {
		p, ok := c.CleanProduct(r)
		if !ok {
			continue
		}
		if p.URL != "" && !seen.Add(p.URL) {
			c.logger.Debug("duplicate URL skipped: %s", p.URL)
			continue
		}
		result = append(result, p)
	}

	c.logger.Info("cleaned %d → %d products (dropped %d)", len(raw), len(result), len(raw)-len(result))
	return result
}

// CleanReviews parses ratings and collapses whitespace in review fields.
// Review text is kept verbatim otherwise since it feeds sentiment scoring.
// Reviews whose text is empty are discarded.
func (c *Cleaner) CleanReviews(raw []models.RawReview) []models.ReviewRecord {
	out := make([]models.ReviewRecord, 0, len(raw))
	for _, r := range raw {
		text := collapseSpace(r.ReviewText)
		if text == "" {
			continue
		}
		out = append(out, models.ReviewRecord{
			ReviewerName: collapseSpace(r.ReviewerName),
			Rating:       ParseRating(r.RawRating),
			ReviewText:   text,
			ReviewDate:   collapseSpace(r.ReviewDate),
		})
	}
	return out
}

func collapseSpace(s string) string {
	return spaceRegexp.ReplaceAllString(strings.TrimSpace(s), " ")
}

// newSourceID builds PREFIX_nnnnnn. The digits come from a hash of the
// product URL so re-scraping a page maps to the same record; products without
// a URL get random digits.
func (c *Cleaner) newSourceID(source, url string) string {
	prefix, ok := c.prefixes[source]
	if !ok || prefix == "" {
		prefix = "PROD"
	}

	var n int
	if url != "" {
		h := fnv.New32a()
		_, _ = h.Write([]byte(url))
		n = 100000 + int(h.Sum32()%900000)
	} else {
		c.mu.Lock()
		n = 100000 + c.rng.Intn(900000)
		c.mu.Unlock()
	}
	return fmt.Sprintf("%s_%d", prefix, n)
}
