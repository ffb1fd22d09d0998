package services

import (
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"github.com/montanaflynn/stats"

	"product-intel/models"
)

// Label thresholds on the fused score. Scores exactly on a threshold are
// neutral.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

var wordRegexp = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)?`)

// PolarityEstimator maps text to a signed score in [-1, 1]. Implementations
// must be pure functions of their input.
type PolarityEstimator interface {
	Polarity(text string) float64
}

// SentimentScorer fuses two independent estimators with equal weight.
type SentimentScorer struct {
	lexical PolarityEstimator
	social  PolarityEstimator
}

// sharedVader loads the VADER lexicon once per process.
var sharedVader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// NewSentimentScorer returns the scorer backed by the lexical estimator and
// the VADER compound estimator, both over the VADER lexicon.
func NewSentimentScorer() *SentimentScorer {
	vader := sharedVader()
	return &SentimentScorer{lexical: NewLexicalEstimator(vader.Lexicon), social: NewVaderEstimator(vader)}
}

// NewSentimentScorerWith builds a scorer from arbitrary estimators.
func NewSentimentScorerWith(lexical, social PolarityEstimator) *SentimentScorer {
	return &SentimentScorer{lexical: lexical, social: social}
}

// Score returns the averaged polarity of text, its label and confidence.
// The reported score is rounded to two decimals; label and confidence use
// the unrounded value.
func (s *SentimentScorer) Score(text string) models.SentimentResult {
	a := s.lexical.Polarity(text)
	b := s.social.Polarity(text)
	combined := (a + b) / 2

	return models.SentimentResult{
		Score:      round2(combined),
		Label:      SentimentLabel(combined),
		Confidence: math.Abs(combined),
	}
}

// SentimentLabel classifies a fused score.
func SentimentLabel(score float64) string {
	switch {
	case score > PositiveThreshold:
		return models.SentimentPositive
	case score < NegativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ScoreReviews scores every review independently.
func (s *SentimentScorer) ScoreReviews(reviews []models.ReviewRecord) []models.ScoredReview {
	out := make([]models.ScoredReview, len(reviews))
	for i, r := range reviews {
		out[i] = models.ScoredReview{ReviewRecord: r, Sentiment: s.Score(r.ReviewText)}
	}
	return out
}

// LexicalEstimator averages the polarity of opinion words, scaling each by a
// preceding intensifier and damping-and-flipping it after a negation.
type LexicalEstimator struct {
	lexicon map[string]float64
}

// NewLexicalEstimator builds the estimator over valence ratings on [-4, 4]
// such as the VADER lexicon. Ratings are scaled to [-1, 1]; the curated
// product-review words override them.
func NewLexicalEstimator(valences map[string]float64) LexicalEstimator {
	lex := make(map[string]float64, len(valences)+len(polarityLexicon))
	for w, v := range valences {
		lex[normaliseToken(w)] = clamp(v/4, -1, 1)
	}
	for w, v := range polarityLexicon {
		lex[w] = v
	}
	return LexicalEstimator{lexicon: lex}
}

func (e LexicalEstimator) Polarity(text string) float64 {
	const negationWindow = 3

	var (
		assessments []float64
		intensity   = 1.0
		negatedFor  = 0
	)
	for _, raw := range wordRegexp.FindAllString(text, -1) {
		tok := normaliseToken(raw)
		if isNegation(raw, tok) {
			negatedFor = negationWindow
			continue
		}
		if m, ok := polarityIntensifiers[tok]; ok {
			intensity *= m
			continue
		}
		if p, ok := e.lookup(tok); ok {
			v := p * intensity
			if negatedFor > 0 {
				v *= -0.5
			}
			assessments = append(assessments, clamp(v, -1, 1))
			negatedFor = 0
		} else if negatedFor > 0 {
			negatedFor--
		}
		intensity = 1
	}

	if len(assessments) == 0 {
		return 0
	}
	var sum float64
	for _, v := range assessments {
		sum += v
	}
	return clamp(sum/float64(len(assessments)), -1, 1)
}

func (e LexicalEstimator) lookup(tok string) (float64, bool) {
	if e.lexicon == nil {
		p, ok := polarityLexicon[tok]
		return p, ok
	}
	p, ok := e.lexicon[tok]
	return p, ok
}

// VaderEstimator reports the VADER compound score, tuned for short informal
// text: capitalisation, boosters, negation, "but" clauses and punctuation
// all shift the valence.
type VaderEstimator struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVaderEstimator wraps an analyzer. The analyzer is read-only after
// construction and may be shared.
func NewVaderEstimator(a *govader.SentimentIntensityAnalyzer) VaderEstimator {
	return VaderEstimator{analyzer: a}
}

func (e VaderEstimator) Polarity(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return clamp(e.analyzer.PolarityScores(text).Compound, -1, 1)
}

func normaliseToken(raw string) string {
	return strings.ReplaceAll(strings.ToLower(raw), "'", "")
}

func isNegation(raw, tok string) bool {
	return negations[tok] || strings.HasSuffix(strings.ToLower(raw), "n't")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// NewSentimentBreakdown counts labels; the positive share is a percentage
// rounded to one decimal.
func NewSentimentBreakdown(labels []string) models.SentimentBreakdown {
	var b models.SentimentBreakdown
	for _, l := range labels {
		switch l {
		case models.SentimentPositive:
			b.Positive++
		case models.SentimentNegative:
			b.Negative++
		default:
			b.Neutral++
		}
	}
	b.Total = len(labels)
	if b.Total > 0 {
		pct, _ := stats.Round(float64(b.Positive)/float64(b.Total)*100, 1)
		b.PositivePercentage = pct
	}
	return b
}
