package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"product-intel/models"
	"product-intel/utils"
)

// Insight messages.
const (
	InsightHighVolume        = "High review volume indicates strong market presence"
	InsightHighRating        = "Excellent customer satisfaction with high ratings"
	InsightLowRating         = "Below average ratings suggest quality concerns"
	InsightPositiveSentiment = "Positive sentiment indicates customer satisfaction"
	InsightNegativeSentiment = "Negative sentiment indicates customer dissatisfaction"
	InsightPositiveMomentum  = "Strong positive review momentum"
	InsightNegativeMomentum  = "Concerning negative review trend"
)

// labelCounts tallies recent review labels.
type labelCounts struct {
	positive, negative int
}

type insightRule struct {
	message string
	fires   func(models.AggregateStats, labelCounts) bool
}

// insightRules is evaluated in order. Each group is a set of mutually
// exclusive alternatives; the first rule of a group that fires wins.
var insightRules = [][]insightRule{
	{
		{InsightHighVolume, func(s models.AggregateStats, _ labelCounts) bool { return s.ReviewCount > 100 }},
	},
	{
		{InsightHighRating, func(s models.AggregateStats, _ labelCounts) bool { return s.AvgRating != nil && *s.AvgRating > 4.0 }},
		{InsightLowRating, func(s models.AggregateStats, _ labelCounts) bool { return s.AvgRating != nil && *s.AvgRating < 3.0 }},
	},
	{
		{InsightPositiveSentiment, func(s models.AggregateStats, _ labelCounts) bool {
			return s.AvgSentiment != nil && *s.AvgSentiment > 0.3
		}},
		{InsightNegativeSentiment, func(s models.AggregateStats, _ labelCounts) bool {
			return s.AvgSentiment != nil && *s.AvgSentiment < -0.3
		}},
	},
	{
		{InsightPositiveMomentum, func(_ models.AggregateStats, c labelCounts) bool { return c.positive > 2*c.negative }},
		{InsightNegativeMomentum, func(_ models.AggregateStats, c labelCounts) bool { return c.negative > c.positive }},
	},
}

// SynthesizeInsights applies the insight rules to aggregate stats and the
// labels of recent reviews. Absent aggregates never fire a rule and an empty
// label list never yields a momentum insight.
func SynthesizeInsights(agg models.AggregateStats, labels []string) []string {
	var counts labelCounts
	for _, l := range labels {
		switch l {
		case models.SentimentPositive:
			counts.positive++
		case models.SentimentNegative:
			counts.negative++
		}
	}

	insights := []string{}
	for _, group := range insightRules {
		for _, rule := range group {
			if rule.fires(agg, counts) {
				insights = append(insights, rule.message)
				break
			}
		}
	}
	return insights
}

// Aggregate computes review statistics for a product. Averages stay nil when
// no review carries the value.
func Aggregate(p models.ProductRecord, reviews []models.ScoredReview) models.AggregateStats {
	agg := models.AggregateStats{
		ProductName: p.Name,
		Category:    p.Category,
		Price:       p.Price,
		ReviewCount: len(reviews),
	}

	var ratings, sentiments []float64
	for _, r := range reviews {
		if r.Rating != nil {
			ratings = append(ratings, float64(*r.Rating))
		}
		sentiments = append(sentiments, r.Sentiment.Score)
	}
	if m, err := stats.Mean(ratings); err == nil {
		agg.AvgRating = &m
	}
	if m, err := stats.Mean(sentiments); err == nil {
		agg.AvgSentiment = &m
	}
	return agg
}

// BuildReport assembles the dashboard payload. Averages are rounded to two
// decimals after the rules have seen the exact values.
func BuildReport(agg models.AggregateStats, labels []string) models.InsightReport {
	return models.InsightReport{
		ProductName:  agg.ProductName,
		Category:     agg.Category,
		Price:        agg.Price,
		ReviewCount:  agg.ReviewCount,
		AvgRating:    roundPtr(agg.AvgRating),
		AvgSentiment: roundPtr(agg.AvgSentiment),
		Insights:     SynthesizeInsights(agg, labels),
	}
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

// InsightService turns stored product data into summaries and prints the
// run report.
type InsightService struct {
	logger *utils.Logger
}

// NewInsightService returns a service logging under "insights".
func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger.Named("insights")}
}

// Summarize builds the per-product summary from its review aggregates, the
// review texts seen this run, its price history and the labels of its most
// recent reviews.
func (s *InsightService) Summarize(p models.ProductRecord, agg models.AggregateStats, reviewTexts []string,
	history []models.PricePoint, recentLabels []string) models.ProductSummary {

	summary := models.ProductSummary{
		Product:   p,
		Report:    BuildReport(agg, recentLabels),
		Breakdown: NewSentimentBreakdown(recentLabels),
		Trend:     ForecastTrend(history),
		Features:  TopFeatures(reviewTexts),
	}
	s.logger.Debug("%s: %d reviews, %d insights, trend %s",
		p.Name, agg.ReviewCount, len(summary.Report.Insights), summary.Trend.Trend)
	return summary
}

func (s *InsightService) Print(r *models.RunReport) {
	sep := strings.Repeat("═", 64)
	thin := strings.Repeat("─", 64)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 PRODUCT INTELLIGENCE REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Products analysed : \033[1m%d\033[0m\n", len(r.Products))
	fmt.Printf("  Failed pages      : \033[1m%d\033[0m\n", r.Failed)
	fmt.Println()

	for _, p := range r.Products {
		rep := p.Report
		fmt.Printf("\033[1;33m  %s\033[0m\n", truncate(rep.ProductName, 60))
		fmt.Printf("  %s\n", thin)
		fmt.Printf("  Category : %s\n", rep.Category)
		if rep.Price != nil {
			fmt.Printf("  Price    : \033[1;32m₹%.2f\033[0m\n", *rep.Price)
		}
		fmt.Printf("  Reviews  : %d", rep.ReviewCount)
		if rep.AvgRating != nil {
			fmt.Printf("  (avg %.2f ★)", *rep.AvgRating)
		}
		if rep.AvgSentiment != nil {
			fmt.Printf("  sentiment %+.2f", *rep.AvgSentiment)
		}
		fmt.Println()
		if b := p.Breakdown; b.Total > 0 {
			fmt.Printf("  Mood     : %d positive / %d neutral / %d negative (%.1f%% positive)\n",
				b.Positive, b.Neutral, b.Negative, b.PositivePercentage)
		}

		fmt.Printf("  Trend    : %s", p.Trend.Trend)
		if p.Trend.Prediction != nil {
			fmt.Printf(" → ₹%.2f in 30 days (confidence %.2f)", *p.Trend.Prediction, p.Trend.Confidence)
		}
		fmt.Println()

		if len(p.Features) > 0 {
			terms := make([]string, len(p.Features))
			for i, f := range p.Features {
				terms[i] = f.Feature
			}
			fmt.Printf("  Features : %s\n", strings.Join(terms, ", "))
		}
		for _, insight := range rep.Insights {
			fmt.Printf("  \033[1;32m•\033[0m %s\n", insight)
		}
		fmt.Println()
	}

	if len(r.Clusters) > 0 {
		fmt.Printf("\033[1;33m  Similar Products by Category\033[0m\n")
		fmt.Printf("  %s\n", thin)

		categories := make([]string, 0, len(r.Clusters))
		for c := range r.Clusters {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		for _, c := range categories {
			fmt.Printf("  \033[1m%s\033[0m\n", c)
			ids := make([]int, 0, len(r.Clusters[c]))
			for id := range r.Clusters[c] {
				ids = append(ids, id)
			}
			sort.Ints(ids)
			for _, id := range ids {
				names := make([]string, 0, len(r.Clusters[c][id]))
				for _, m := range r.Clusters[c][id] {
					names = append(names, truncate(m.Name, 24))
				}
				fmt.Printf("    group %d: %s\n", id+1, strings.Join(names, " | "))
			}
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
