package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-intel/models"
)

func setupTestCache(t *testing.T, ttl time.Duration) (*InsightCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewInsightCache(client, ttl), mr
}

func TestInsightCacheSummaryRoundTrip(t *testing.T) {
	cache, _ := setupTestCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := cache.Summary(ctx, 7)
	require.NoError(t, err)
	assert.False(t, ok)

	want := models.ProductSummary{
		Report: models.InsightReport{ProductName: "Tata Tea Gold", ReviewCount: 3, AvgRating: models.Float(4.33),
			Insights: []string{"Excellent customer satisfaction with high ratings"}},
		Trend: models.TrendResult{Trend: models.TrendStable, Prediction: models.Float(385)},
	}
	require.NoError(t, cache.PutSummary(ctx, 7, want))

	got, ok, err := cache.Summary(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Report, got.Report)
	assert.Equal(t, *want.Trend.Prediction, *got.Trend.Prediction)
}

func TestInsightCacheExpires(t *testing.T) {
	cache, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.PutClusters(ctx, "Electronics", models.ClusterAssignment{
		0: {{ID: 1, Name: "M32", Price: 16999}},
		1: {{ID: 2, Name: "Redmi", Price: 13999}},
	}))
	got, ok, err := cache.Clusters(ctx, "Electronics")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1][0].ID)

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Clusters(ctx, "Electronics")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsightCacheInvalidate(t *testing.T) {
	cache, mr := setupTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, cache.PutSummary(ctx, 1, models.ProductSummary{}))
	require.NoError(t, cache.PutClusters(ctx, "Audio", models.ClusterAssignment{}))
	require.NoError(t, cache.Invalidate(ctx, 1, "Audio"))

	assert.False(t, mr.Exists(summaryPrefix+"1"))
	assert.False(t, mr.Exists(clusterPrefix+"Audio"))
}

func TestInsightCacheReportsConnectionErrors(t *testing.T) {
	cache, mr := setupTestCache(t, time.Minute)
	mr.Close()

	_, _, err := cache.Summary(context.Background(), 1)
	assert.Error(t, err)
}
