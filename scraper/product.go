package scraper

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"product-intel/models"
)

// Page is everything extracted from one product detail page.
type Page struct {
	Product models.RawProduct
	Reviews []models.RawReview
}

// ExtractProduct reads the product fields from doc. Missing fields are left
// empty; deciding whether the record is usable is the caller's job.
func ExtractProduct(doc Document, sel ProductSelectors) models.RawProduct {
	var p models.RawProduct
	p.Name, _ = Extract(doc, sel.Title)
	p.RawPrice, _ = Extract(doc, sel.Price)
	p.Brand, _ = Extract(doc, sel.Brand)
	p.Description, _ = Extract(doc, sel.Description)
	p.ImageURL, _ = Extract(doc, sel.Image)
	return p
}

// ExtractReviews collects reviews from the first container selector that
// yields any. Reviews without text are discarded.
func ExtractReviews(doc Document, sel ReviewSelectors) []models.RawReview {
	max := sel.MaxReviews
	if max <= 0 {
		max = DefaultMaxReviews
	}

	for _, container := range sel.Containers {
		nodes := findAll(doc, container)
		if len(nodes) > max {
			nodes = nodes[:max]
		}

		var reviews []models.RawReview
		for _, n := range nodes {
			text, ok := Extract(n, sel.Text)
			if !ok {
				continue
			}
			r := models.RawReview{ReviewText: text}
			r.ReviewerName, _ = Extract(n, sel.Name)
			r.RawRating, _ = Extract(n, sel.Rating)
			r.ReviewDate, _ = Extract(n, sel.Date)
			reviews = append(reviews, r)
		}
		if len(reviews) > 0 {
			return reviews
		}
	}
	return nil
}

// ParsePage parses raw markup and extracts the product and its reviews.
// Only a markup that cannot be parsed at all is reported as an error.
func ParsePage(markup []byte, pageURL, source string, sel Selectors) (*Page, error) {
	doc, err := FromBytes(markup)
	if err != nil {
		return nil, &UpstreamError{URL: pageURL, Err: err}
	}

	p := ExtractProduct(doc, sel.Product)
	p.URL = pageURL
	p.Source = source
	p.ScrapedAt = time.Now()
	p.ImageURL = Resolve(pageURL, p.ImageURL)
	if p.Description == "" {
		p.Description = ReadableExcerpt(markup, pageURL)
	}

	return &Page{Product: p, Reviews: ExtractReviews(doc, sel.Reviews)}, nil
}

// ReadableExcerpt falls back to a readability pass when no description
// selector matched. It returns "" when nothing readable is found.
func ReadableExcerpt(markup []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(markup), u)
	if err != nil {
		return ""
	}
	if ex := strings.TrimSpace(article.Excerpt); ex != "" {
		return ex
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// Resolve turns ref into an absolute URL against base. Unparsable input is
// returned unchanged.
func Resolve(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
