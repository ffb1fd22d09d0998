package scraper

import (
	"time"

	"product-intel/models"
)

// ExtractListing pulls product cards out of a category listing page. Cards
// without a name or price text are skipped.
func ExtractListing(doc Document, spec ListingSpec, category string) []models.RawProduct {
	cards := findAll(doc, spec.Container)
	if spec.Limit > 0 && len(cards) > spec.Limit {
		cards = cards[:spec.Limit]
	}

	now := time.Now()
	products := make([]models.RawProduct, 0, len(cards))
	for _, card := range cards {
		name, ok := Extract(card, spec.Name)
		if !ok {
			continue
		}
		price, ok := Extract(card, spec.Price)
		if !ok {
			continue
		}
		link, _ := Extract(card, spec.Link)
		img, _ := Extract(card, spec.Image)

		products = append(products, models.RawProduct{
			Name:      name,
			RawPrice:  price,
			Category:  category,
			URL:       Resolve(spec.BaseURL, link),
			ImageURL:  Resolve(spec.BaseURL, img),
			Source:    spec.Source,
			ScrapedAt: now,
		})
	}
	return products
}

// ParseListing parses markup and runs ExtractListing over it.
func ParseListing(markup []byte, pageURL string, spec ListingSpec, category string) ([]models.RawProduct, error) {
	doc, err := FromBytes(markup)
	if err != nil {
		return nil, &UpstreamError{URL: pageURL, Err: err}
	}
	return ExtractListing(doc, spec, category), nil
}
