package services

import (
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"product-intel/models"
)

const (
	minTrendPoints  = 3
	forecastHorizon = 30 // days past the last observation
	slopeThreshold  = 0.1
	maxConfidence   = 0.95
)

// ForecastTrend fits an ordinary least-squares line to price over whole days
// since the first observation and extrapolates it forecastHorizon days past
// the latest one. Fewer than three points is reported as insufficient data.
func ForecastTrend(points []models.PricePoint) models.TrendResult {
	if len(points) < minTrendPoints {
		return models.TrendResult{Trend: models.TrendInsufficientData}
	}

	start := points[0].RecordedAt
	for _, p := range points[1:] {
		if p.RecordedAt.Before(start) {
			start = p.RecordedAt
		}
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	maxDays := 0.0
	for i, p := range points {
		xs[i] = math.Floor(p.RecordedAt.Sub(start).Hours() / 24)
		// centred on the first price so constant series fit exactly
		ys[i] = p.Price - points[0].Price
		maxDays = math.Max(maxDays, xs[i])
	}

	slope, intercept := leastSquares(xs, ys)
	intercept += points[0].Price

	prediction := round2(slope*(maxDays+forecastHorizon) + intercept)

	trend := models.TrendStable
	switch {
	case slope > slopeThreshold:
		trend = models.TrendIncreasing
	case slope < -slopeThreshold:
		trend = models.TrendDecreasing
	}

	return models.TrendResult{
		Trend:      trend,
		Prediction: &prediction,
		Confidence: math.Min(maxConfidence, math.Abs(slope)*10),
	}
}

// leastSquares returns the OLS slope and intercept of ys over xs. A series
// with no spread in x has slope 0 and passes through the mean of ys.
func leastSquares(xs, ys []float64) (slope, intercept float64) {
	if stat.Variance(xs, nil) == 0 {
		return 0, stat.Mean(ys, nil)
	}
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	return slope, intercept
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}

// PricePointsSince keeps the points recorded at or after since, preserving
// order.
func PricePointsSince(points []models.PricePoint, since time.Time) []models.PricePoint {
	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		if !p.RecordedAt.Before(since) {
			out = append(out, p)
		}
	}
	return out
}
