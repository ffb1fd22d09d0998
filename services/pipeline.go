package services

import (
	"context"
	"errors"
	"fmt"

	"product-intel/models"
	"product-intel/scraper"
	"product-intel/utils"
)

// MarkupSource supplies raw page markup. Fetchers in the fetch package
// satisfy it; tests use in-memory maps.
type MarkupSource interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Target is a product detail page to analyse.
type Target struct {
	URL      string `yaml:"url"`
	Source   string `yaml:"source"`
	Category string `yaml:"category"`
}

// ListingTarget is a category listing page read with a named ListingSpec.
type ListingTarget struct {
	URL      string `yaml:"url"`
	Spec     string `yaml:"spec"`
	Category string `yaml:"category"`
}

// PageAnalysis is the outcome of one product page. Product is only
// meaningful when Valid is true; Raw is always populated.
type PageAnalysis struct {
	Raw     models.RawProduct
	Product models.ProductRecord
	Reviews []models.ScoredReview
	Valid   bool
}

// BatchResult pairs a target with its analysis or the error that stopped it.
type BatchResult struct {
	Target   Target
	Analysis *PageAnalysis
	Err      error
}

// Analyzer runs extraction, cleaning and sentiment scoring for pages.
type Analyzer struct {
	logger    *utils.Logger
	selectors scraper.Selectors
	cleaner   *Cleaner
	scorer    *SentimentScorer
}

func NewAnalyzer(logger *utils.Logger, selectors scraper.Selectors, cleaner *Cleaner) *Analyzer {
	return &Analyzer{
		logger:    logger.Named("analyzer"),
		selectors: selectors,
		cleaner:   cleaner,
		scorer:    NewSentimentScorer(),
	}
}

// AnalyzePage extracts and scores one already fetched product page. Only
// markup that cannot be parsed at all is an error.
func (a *Analyzer) AnalyzePage(markup []byte, t Target) (*PageAnalysis, error) {
	page, err := scraper.ParsePage(markup, t.URL, t.Source, a.selectors)
	if err != nil {
		return nil, err
	}
	if page.Product.Category == "" {
		page.Product.Category = t.Category
	}

	res := &PageAnalysis{Raw: page.Product}
	res.Product, res.Valid = a.cleaner.CleanProduct(page.Product)
	res.Reviews = a.scorer.ScoreReviews(a.cleaner.CleanReviews(page.Reviews))
	return res, nil
}

// AnalyzeAll fetches and analyses targets on the pool. A failing target is
// reported in its own BatchResult and never stops its siblings. Results
// keep the order of targets.
func (a *Analyzer) AnalyzeAll(ctx context.Context, src MarkupSource, pool *utils.WorkerPool, targets []Target) []BatchResult {
	results := utils.Map(pool, targets, func(_ int, t Target) BatchResult {
		res := BatchResult{Target: t}
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		markup, err := src.Fetch(ctx, t.URL)
		if err != nil {
			res.Err = upstream(t.URL, err)
			return res
		}
		res.Analysis, res.Err = a.AnalyzePage(markup, t)
		return res
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			a.logger.Warn("%s: %v", r.Target.URL, r.Err)
		}
	}
	a.logger.Info("analysed %d pages (%d failed)", len(targets), failed)
	return results
}

// CollectListings reads listing pages and returns the raw product cards of
// every page that could be fetched and parsed, with the number of pages that
// failed. Unknown spec names count as failures.
func (a *Analyzer) CollectListings(ctx context.Context, src MarkupSource, pool *utils.WorkerPool, targets []ListingTarget) ([]models.RawProduct, int) {
	pages := utils.Map(pool, targets, func(_ int, t ListingTarget) []models.RawProduct {
		spec, ok := a.selectors.Listings[t.Spec]
		if !ok {
			a.logger.Warn("no listing spec %q for %s", t.Spec, t.URL)
			return nil
		}
		markup, err := src.Fetch(ctx, t.URL)
		if err != nil {
			a.logger.Warn("%v", upstream(t.URL, err))
			return nil
		}
		products, err := scraper.ParseListing(markup, t.URL, spec, t.Category)
		if err != nil {
			a.logger.Warn("%v", err)
			return nil
		}
		a.logger.Debug("%s: %d cards", t.URL, len(products))
		return products
	})

	var all []models.RawProduct
	failed := 0
	for _, p := range pages {
		if p == nil {
			failed++
		}
		all = append(all, p...)
	}
	return all, failed
}

func upstream(url string, err error) error {
	if errors.Is(err, scraper.ErrUpstream) {
		return err
	}
	return &scraper.UpstreamError{URL: url, Err: fmt.Errorf("fetch: %w", err)}
}
