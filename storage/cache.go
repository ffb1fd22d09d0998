package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"product-intel/models"
)

const (
	summaryPrefix = "product-intel:summary:"
	clusterPrefix = "product-intel:clusters:"
)

// InsightCache keeps computed product summaries and category clusters in
// Redis so repeated runs can skip unchanged products. Entries expire after
// the configured TTL.
type InsightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewInsightCache creates a cache over client. ttl <= 0 stores entries
// without expiry.
func NewInsightCache(client *redis.Client, ttl time.Duration) *InsightCache {
	return &InsightCache{client: client, ttl: ttl}
}

// Summary returns the cached summary of a product. ok is false on a miss.
func (c *InsightCache) Summary(ctx context.Context, productID int64) (s models.ProductSummary, ok bool, err error) {
	ok, err = c.get(ctx, summaryPrefix+strconv.FormatInt(productID, 10), &s)
	return s, ok, err
}

// PutSummary caches the summary of a product.
func (c *InsightCache) PutSummary(ctx context.Context, productID int64, s models.ProductSummary) error {
	return c.put(ctx, summaryPrefix+strconv.FormatInt(productID, 10), s)
}

// Clusters returns the cached clustering of a category.
func (c *InsightCache) Clusters(ctx context.Context, category string) (a models.ClusterAssignment, ok bool, err error) {
	ok, err = c.get(ctx, clusterPrefix+category, &a)
	return a, ok, err
}

// PutClusters caches the clustering of a category.
func (c *InsightCache) PutClusters(ctx context.Context, category string, a models.ClusterAssignment) error {
	return c.put(ctx, clusterPrefix+category, a)
}

// Invalidate drops the cached summary of a product and the clusters of its
// category.
func (c *InsightCache) Invalidate(ctx context.Context, productID int64, category string) error {
	err := c.client.Del(ctx, summaryPrefix+strconv.FormatInt(productID, 10), clusterPrefix+category).Err()
	if err != nil {
		return fmt.Errorf("redis: invalidate: %w", err)
	}
	return nil
}

func (c *InsightCache) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *InsightCache) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}
