package services

import (
	"context"
	"fmt"
	"time"

	"product-intel/models"
	"product-intel/storage"
	"product-intel/utils"
)

// SummaryCache stores computed summaries and clusters between runs.
// *storage.InsightCache satisfies it.
type SummaryCache interface {
	Summary(ctx context.Context, productID int64) (models.ProductSummary, bool, error)
	PutSummary(ctx context.Context, productID int64, s models.ProductSummary) error
	Clusters(ctx context.Context, category string) (models.ClusterAssignment, bool, error)
	PutClusters(ctx context.Context, category string, a models.ClusterAssignment) error
	Invalidate(ctx context.Context, productID int64, category string) error
}

var _ SummaryCache = (*storage.InsightCache)(nil)

// RunOptions bounds the history fed to the analytics.
type RunOptions struct {
	HistoryDays   int
	RecentReviews int
}

// Runner drives one pipeline run: fetch and analyse targets, persist what
// was found, then build summaries and category clusters from the store.
type Runner struct {
	logger   *utils.Logger
	analyzer *Analyzer
	insights *InsightService
	store    storage.ProductStore
	raw      storage.RawProductWriter
	cache    SummaryCache
	opts     RunOptions
	now      func() time.Time
}

// NewRunner wires a runner. raw and cache may be nil.
func NewRunner(logger *utils.Logger, analyzer *Analyzer, insights *InsightService,
	store storage.ProductStore, raw storage.RawProductWriter, cache SummaryCache, opts RunOptions) *Runner {

	if opts.RecentReviews <= 0 {
		opts.RecentReviews = 50
	}
	return &Runner{
		logger:   logger.Named("runner"),
		analyzer: analyzer,
		insights: insights,
		store:    store,
		raw:      raw,
		cache:    cache,
		opts:     opts,
		now:      time.Now,
	}
}

// stored is a product persisted during this run.
type stored struct {
	product models.ProductRecord
	texts   []string
	changed bool
}

// Run processes product pages and listing pages, then clusters every stored
// category. Per-target failures are counted in the report; only storage
// errors and cancellation abort the run.
func (r *Runner) Run(ctx context.Context, src MarkupSource, pool *utils.WorkerPool,
	products []Target, listings []ListingTarget) (*models.RunReport, error) {

	report := &models.RunReport{Clusters: map[string]models.ClusterAssignment{}}

	listingRaw, failedListings := r.analyzer.CollectListings(ctx, src, pool, listings)
	results := r.analyzer.AnalyzeAll(ctx, src, pool, products)
	report.Failed = failedListings
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []models.RawProduct
	type candidate struct {
		product models.ProductRecord
		reviews []models.ScoredReview
	}
	var candidates []candidate
	seen := utils.NewURLSet()

	for _, res := range results {
		if res.Err != nil {
			report.Failed++
			continue
		}
		raw = append(raw, res.Analysis.Raw)
		if !res.Analysis.Valid {
			continue
		}
		if res.Analysis.Product.URL != "" && !seen.Add(res.Analysis.Product.URL) {
			continue
		}
		candidates = append(candidates, candidate{res.Analysis.Product, res.Analysis.Reviews})
	}
	raw = append(raw, listingRaw...)
	for _, p := range r.analyzer.cleaner.Clean(listingRaw) {
		if p.URL != "" && !seen.Add(p.URL) {
			continue
		}
		candidates = append(candidates, candidate{product: p})
	}

	if r.raw != nil && len(raw) > 0 {
		if err := r.raw.WriteRaw(raw); err != nil {
			r.logger.Error("raw export failed: %v", err)
		} else {
			r.logger.Info("exported %d raw products", len(raw))
		}
	}

	saved := make([]stored, 0, len(candidates))
	for _, c := range candidates {
		s, err := r.persist(ctx, c.product, c.reviews)
		if err != nil {
			return nil, err
		}
		saved = append(saved, s)
	}

	// every stored category is reported; changed ones are re-clustered
	known, err := r.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("categories: %w", err)
	}
	categories := make(map[string]bool, len(known))
	for _, c := range known {
		categories[c] = false
	}
	for _, s := range saved {
		summary, err := r.summary(ctx, s)
		if err != nil {
			return nil, err
		}
		report.Products = append(report.Products, summary)
		if s.changed {
			categories[s.product.Category] = true
		}
	}

	for category, changed := range categories {
		assignment, err := r.clusters(ctx, category, changed)
		if err != nil {
			return nil, err
		}
		if len(assignment) > 0 {
			report.Clusters[category] = assignment
		}
	}

	r.logger.Info("run complete: %d products, %d categories clustered, %d failed",
		len(report.Products), len(report.Clusters), report.Failed)
	return report, nil
}

// persist upserts the product with its reviews and current price. changed
// reports whether anything new was recorded, in which case cached results
// for the product and its category are dropped.
func (r *Runner) persist(ctx context.Context, p models.ProductRecord, reviews []models.ScoredReview) (stored, error) {
	id, err := r.store.SaveProduct(ctx, p)
	if err != nil {
		return stored{}, fmt.Errorf("save %s: %w", p.SourceID, err)
	}
	p.ID = id

	added, err := r.store.SaveReviews(ctx, id, reviews)
	if err != nil {
		return stored{}, fmt.Errorf("save reviews for %s: %w", p.SourceID, err)
	}

	changed := added > 0
	if p.Price != nil {
		history, err := r.store.PriceHistory(ctx, id)
		if err != nil {
			return stored{}, fmt.Errorf("price history for %s: %w", p.SourceID, err)
		}
		if len(history) == 0 || history[len(history)-1].Price != *p.Price {
			if err := r.store.RecordPrice(ctx, id, *p.Price, r.now()); err != nil {
				return stored{}, fmt.Errorf("record price for %s: %w", p.SourceID, err)
			}
			changed = true
		}
	}

	if changed && r.cache != nil {
		if err := r.cache.Invalidate(ctx, id, p.Category); err != nil {
			r.logger.Warn("cache invalidate %d: %v", id, err)
		}
	}

	texts := make([]string, len(reviews))
	for i, rv := range reviews {
		texts[i] = rv.ReviewText
	}
	r.logger.Debug("stored %s as %d (%d new reviews, changed=%t)", p.SourceID, id, added, changed)
	return stored{product: p, texts: texts, changed: changed}, nil
}

func (r *Runner) summary(ctx context.Context, s stored) (models.ProductSummary, error) {
	if r.cache != nil && !s.changed {
		cached, ok, err := r.cache.Summary(ctx, s.product.ID)
		if err != nil {
			r.logger.Warn("cache read %d: %v", s.product.ID, err)
		} else if ok {
			return cached, nil
		}
	}

	agg, err := r.store.ProductStats(ctx, s.product.ID)
	if err != nil {
		return models.ProductSummary{}, fmt.Errorf("stats for %d: %w", s.product.ID, err)
	}
	labels, err := r.store.RecentReviewLabels(ctx, s.product.ID, r.opts.RecentReviews)
	if err != nil {
		return models.ProductSummary{}, fmt.Errorf("review labels for %d: %w", s.product.ID, err)
	}
	history, err := r.store.PriceHistory(ctx, s.product.ID)
	if err != nil {
		return models.ProductSummary{}, fmt.Errorf("price history for %d: %w", s.product.ID, err)
	}
	if r.opts.HistoryDays > 0 {
		history = PricePointsSince(history, r.now().AddDate(0, 0, -r.opts.HistoryDays))
	}

	summary := r.insights.Summarize(s.product, agg, s.texts, history, labels)
	if r.cache != nil {
		if err := r.cache.PutSummary(ctx, s.product.ID, summary); err != nil {
			r.logger.Warn("cache write %d: %v", s.product.ID, err)
		}
	}
	return summary, nil
}

func (r *Runner) clusters(ctx context.Context, category string, changed bool) (models.ClusterAssignment, error) {
	if r.cache != nil && !changed {
		cached, ok, err := r.cache.Clusters(ctx, category)
		if err != nil {
			r.logger.Warn("cache read %s: %v", category, err)
		} else if ok {
			return cached, nil
		}
	}

	items, err := r.store.CategoryItems(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("items for %s: %w", category, err)
	}
	assignment := Cluster(models.ClusterRequest{Category: category, Items: items}).Clusters
	if r.cache != nil {
		if err := r.cache.PutClusters(ctx, category, assignment); err != nil {
			r.logger.Warn("cache write %s: %v", category, err)
		}
	}
	return assignment, nil
}
