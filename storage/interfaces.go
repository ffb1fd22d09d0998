package storage

import (
	"context"
	"time"

	"product-intel/models"
)

// ProductStore is the persistence surface the pipeline needs. *Store
// implements it for PostgreSQL and SQLite.
type ProductStore interface {
	SaveProduct(ctx context.Context, p models.ProductRecord) (int64, error)
	SaveReviews(ctx context.Context, productID int64, reviews []models.ScoredReview) (int, error)
	RecordPrice(ctx context.Context, productID int64, price float64, at time.Time) error
	PriceHistory(ctx context.Context, productID int64) ([]models.PricePoint, error)
	Categories(ctx context.Context) ([]string, error)
	CategoryItems(ctx context.Context, category string) ([]models.ClusterItem, error)
	ProductStats(ctx context.Context, productID int64) (models.AggregateStats, error)
	RecentReviewLabels(ctx context.Context, productID int64, limit int) ([]string, error)
	Close() error
}

// RawProductWriter is the interface for persisting unprocessed extracted data.
type RawProductWriter interface {
	WriteRaw(products []models.RawProduct) error
	Close() error
}

var (
	_ ProductStore     = (*Store)(nil)
	_ RawProductWriter = (*CSVWriter)(nil)
)
