package models

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Trend labels.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// SentimentResult is the fused polarity of a piece of text.
type SentimentResult struct {
	Score      float64 `json:"sentiment_score"`
	Label      string  `json:"sentiment_label"`
	Confidence float64 `json:"confidence"`
}

// TrendResult is the outcome of a price forecast. Prediction is nil when
// there was not enough history to fit a line.
type TrendResult struct {
	Trend      string   `json:"trend"`
	Prediction *float64 `json:"prediction"`
	Confidence float64  `json:"confidence"`
}

// ClusterItem is one product offered to the clusterer.
type ClusterItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
}

// ClusterRequest groups the items of one category.
type ClusterRequest struct {
	Category string        `json:"category"`
	Items    []ClusterItem `json:"items"`
}

// ClusterMember is the projection of an item inside a cluster.
type ClusterMember struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ClusterAssignment maps an arbitrary cluster id to its members. Ids only
// group items; they are not stable across calls.
type ClusterAssignment map[int][]ClusterMember

// ClusterResponse is the wire shape of a clustering run.
type ClusterResponse struct {
	Clusters ClusterAssignment `json:"clusters"`
}

// AggregateStats summarises the reviews of one product. AvgRating and
// AvgSentiment stay nil when no review carried the value.
type AggregateStats struct {
	ProductName  string
	Category     string
	Price        *float64
	ReviewCount  int
	AvgRating    *float64
	AvgSentiment *float64
}

// InsightReport is the per-product payload handed to the dashboard layer.
type InsightReport struct {
	ProductName  string   `json:"product_name"`
	Category     string   `json:"category"`
	Price        *float64 `json:"price"`
	ReviewCount  int      `json:"review_count"`
	AvgRating    *float64 `json:"avg_rating"`
	AvgSentiment *float64 `json:"avg_sentiment"`
	Insights     []string `json:"insights"`
}

// Feature is a weighted term mined from review text.
type Feature struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// SentimentBreakdown counts review labels for the dashboard summary.
type SentimentBreakdown struct {
	Positive           int     `json:"positive"`
	Neutral            int     `json:"neutral"`
	Negative           int     `json:"negative"`
	Total              int     `json:"total"`
	PositivePercentage float64 `json:"positive_percentage"`
}

// ProductSummary is everything computed for one product in a run.
type ProductSummary struct {
	Product   ProductRecord      `json:"product"`
	Report    InsightReport      `json:"report"`
	Breakdown SentimentBreakdown `json:"sentiment_breakdown"`
	Trend     TrendResult        `json:"trend"`
	Features  []Feature          `json:"features"`
}

// RunReport collects the per-product summaries and category clusters of a
// pipeline run.
type RunReport struct {
	Products []ProductSummary             `json:"products"`
	Clusters map[string]ClusterAssignment `json:"clusters"`
	Failed   int                          `json:"failed"`
}
