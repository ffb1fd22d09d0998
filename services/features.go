package services

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"

	"product-intel/models"
)

const (
	featureVocabulary = 20
	topFeatureCount   = 10
)

// TopFeatures treats all review texts as one document and returns the ten
// highest weighted unigrams and bigrams with scores rounded to three
// decimals. No reviews yields no features.
func TopFeatures(reviews []string) []models.Feature {
	text := strings.TrimSpace(strings.Join(reviews, " "))
	if text == "" {
		return []models.Feature{}
	}

	vocab, rows := Vectorizer{MaxTerms: featureVocabulary, MaxNGram: 2}.FitTransform([]string{text})
	features := make([]models.Feature, len(vocab))
	for j, term := range vocab {
		features[j] = models.Feature{Feature: term, Score: rows[0][j]}
	}
	sort.SliceStable(features, func(a, b int) bool { return features[a].Score > features[b].Score })

	if len(features) > topFeatureCount {
		features = features[:topFeatureCount]
	}
	for i := range features {
		features[i].Score = round3(features[i].Score)
	}
	return features
}

func round3(v float64) float64 {
	r, err := stats.Round(v, 3)
	if err != nil {
		return v
	}
	return r
}
