package services

import (
	"context"
	"errors"
	"testing"

	"product-intel/models"
	"product-intel/scraper"
	"product-intel/utils"
)

type pageMap map[string]string

func (m pageMap) Fetch(_ context.Context, url string) ([]byte, error) {
	body, ok := m[url]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return []byte(body), nil
}

const phonePage = `<html><body>
<h1 class="product-title">Samsung Galaxy M32</h1>
<span class="price">₹16,999</span>
<span class="brand">Samsung</span>
<div class="product-description">6000mAh battery, 90Hz display.</div>
<div class="review"><span class="name">Asha</span><span class="rating">5</span><p class="review-text">Excellent battery, great display!</p></div>
<div class="review"><span class="name">Ravi</span><span class="rating">2</span><p class="review-text">Terrible camera, very disappointed.</p></div>
</body></html>`

func newTestAnalyzer() *Analyzer {
	log := newTestLogger()
	return NewAnalyzer(log, scraper.DefaultSelectors(), NewCleaner(log, nil))
}

func TestAnalyzePage(t *testing.T) {
	a := newTestAnalyzer()
	res, err := a.AnalyzePage([]byte(phonePage), Target{URL: "https://shop.test/m32", Source: "Samsung", Category: "Electronics"})
	if err != nil {
		t.Fatalf("AnalyzePage: %v", err)
	}
	if !res.Valid {
		t.Fatalf("product dropped: %+v", res.Raw)
	}
	if res.Product.Name != "Samsung Galaxy M32" || *res.Product.Price != 16999 || res.Product.Category != "Electronics" {
		t.Errorf("product: %+v", res.Product)
	}
	if len(res.Reviews) != 2 {
		t.Fatalf("got %d reviews, want 2", len(res.Reviews))
	}
	if res.Reviews[0].Sentiment.Label != models.SentimentPositive {
		t.Errorf("first review: %+v", res.Reviews[0].Sentiment)
	}
	if res.Reviews[1].Sentiment.Label != models.SentimentNegative {
		t.Errorf("second review: %+v", res.Reviews[1].Sentiment)
	}
}

func TestAnalyzePageWithoutPriceIsInvalid(t *testing.T) {
	res, err := newTestAnalyzer().AnalyzePage([]byte(`<h1>Only a name</h1>`), Target{URL: "https://shop.test/x"})
	if err != nil {
		t.Fatalf("AnalyzePage: %v", err)
	}
	if res.Valid || res.Raw.Name != "Only a name" {
		t.Errorf("got %+v", res)
	}
}

func TestAnalyzeAllIsolatesFailures(t *testing.T) {
	src := pageMap{
		"https://shop.test/a":     phonePage,
		"https://shop.test/c":     phonePage,
		"https://shop.test/empty": "",
	}
	targets := []Target{
		{URL: "https://shop.test/a"},
		{URL: "https://shop.test/missing"},
		{URL: "https://shop.test/c"},
		{URL: "https://shop.test/empty"},
	}

	results := newTestAnalyzer().AnalyzeAll(context.Background(), src, utils.NewWorkerPool(3, 0), targets)
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	for i, r := range results {
		if r.Target != targets[i] {
			t.Errorf("result %d out of order: %v", i, r.Target)
		}
	}
	if results[0].Err != nil || results[2].Err != nil || !results[0].Analysis.Valid {
		t.Errorf("healthy pages failed: %v / %v", results[0].Err, results[2].Err)
	}
	for _, i := range []int{1, 3} {
		if !errors.Is(results[i].Err, scraper.ErrUpstream) {
			t.Errorf("result %d: expected upstream error, got %v", i, results[i].Err)
		}
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := newTestAnalyzer().AnalyzeAll(ctx, pageMap{}, utils.NewWorkerPool(1, 0), []Target{{URL: "https://shop.test/a"}})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("got %v; want context.Canceled", results[0].Err)
	}
}

func TestCollectListings(t *testing.T) {
	listing := `<div class="product-tuple-listing"><a href="/p/1"></a>
		<p class="product-title">boAt Rockerz 450</p><span class="lfloat product-price">Rs. 1,499</span></div>`
	src := pageMap{"https://www.snapdeal.com/products/audio": listing}

	products, failed := newTestAnalyzer().CollectListings(context.Background(), src, utils.NewWorkerPool(2, 0), []ListingTarget{
		{URL: "https://www.snapdeal.com/products/audio", Spec: "snapdeal", Category: "Audio"},
		{URL: "https://www.snapdeal.com/products/gone", Spec: "snapdeal"},
		{URL: "https://example.test", Spec: "unknown"},
	})
	if failed != 2 {
		t.Errorf("failed = %d; want 2", failed)
	}
	if len(products) != 1 || products[0].Name != "boAt Rockerz 450" || products[0].Category != "Audio" {
		t.Errorf("products: %+v", products)
	}
}
