package services

import (
	"testing"

	"product-intel/models"
)

type fixedPolarity float64

func (f fixedPolarity) Polarity(string) float64 { return float64(f) }

func TestSentimentLabelBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.1, models.SentimentNeutral},
		{-0.1, models.SentimentNeutral},
		{0.1000001, models.SentimentPositive},
		{-0.1000001, models.SentimentNegative},
		{0, models.SentimentNeutral},
		{1, models.SentimentPositive},
		{-1, models.SentimentNegative},
	}
	for _, tt := range tests {
		if got := SentimentLabel(tt.score); got != tt.want {
			t.Errorf("SentimentLabel(%v) = %q; want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreAveragesEstimators(t *testing.T) {
	s := NewSentimentScorerWith(fixedPolarity(0.6), fixedPolarity(-0.2))
	got := s.Score("anything")
	if got.Score != 0.2 || got.Label != models.SentimentPositive {
		t.Errorf("Score = %+v; want 0.2 positive", got)
	}
	if got.Confidence < 0.1999 || got.Confidence > 0.2001 {
		t.Errorf("Confidence = %v; want 0.2", got.Confidence)
	}

	edge := NewSentimentScorerWith(fixedPolarity(0.1), fixedPolarity(0.1)).Score("x")
	if edge.Label != models.SentimentNeutral {
		t.Errorf("score exactly 0.1 labelled %q", edge.Label)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s := NewSentimentScorer()
	texts := []string{
		"Great phone, the battery is excellent!",
		"NOT worth it. Screen broke in a week",
		"The product is good but the delivery was terribly slow???",
		"",
	}
	for _, text := range texts {
		first := s.Score(text)
		for i := 0; i < 5; i++ {
			if again := s.Score(text); again != first {
				t.Fatalf("Score(%q) changed: %+v then %+v", text, first, again)
			}
		}
	}
}

func TestScoreEmptyTextIsNeutral(t *testing.T) {
	got := NewSentimentScorer().Score("")
	want := models.SentimentResult{Score: 0, Label: models.SentimentNeutral, Confidence: 0}
	if got != want {
		t.Errorf("Score(\"\") = %+v; want %+v", got, want)
	}
}

func TestScoreLabelsExamples(t *testing.T) {
	s := NewSentimentScorer()
	tests := []struct {
		text string
		want string
	}{
		{"Great phone, the battery is excellent!", models.SentimentPositive},
		{"Absolutely love it, highly recommend", models.SentimentPositive},
		{"Terrible quality, the screen broke after a week. Waste of money.", models.SentimentNegative},
		{"not good", models.SentimentNegative},
		{"It arrived on Tuesday in a box.", models.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := s.Score(tt.text); got.Label != tt.want {
			t.Errorf("Score(%q) = %+v; want label %q", tt.text, got, tt.want)
		}
	}
}

func TestEstimatorsStayInRange(t *testing.T) {
	texts := []string{
		"BEST BEST BEST best product EVER!!!!!!",
		"worst worst worst horrible awful terrible junk scam",
		"very very very very good",
	}
	for _, text := range texts {
		vader := sharedVader()
		for _, est := range []PolarityEstimator{NewLexicalEstimator(vader.Lexicon), NewVaderEstimator(vader)} {
			if p := est.Polarity(text); p < -1 || p > 1 {
				t.Errorf("%T.Polarity(%q) = %v; out of [-1, 1]", est, text, p)
			}
		}
	}
}

func TestVaderEstimatorButShiftsWeight(t *testing.T) {
	est := NewVaderEstimator(sharedVader())
	whole := est.Polarity("The camera is great but the battery is bad")
	if whole >= 0 {
		t.Errorf("clause after but should dominate, got %v", whole)
	}
}

func TestScoreEverydayReviews(t *testing.T) {
	s := NewSentimentScorer()
	tests := []struct {
		text string
		want string
	}{
		{"Worked flawlessly, terrific sound, I adore it", models.SentimentPositive},
		{"Stopped working after two days, utterly unreliable and poorly made", models.SentimentNegative},
		{"Disappointment. The battery drains quickly and the charger overheats", models.SentimentNegative},
		{"Crisp display and snappy performance, a real bargain", models.SentimentPositive},
	}
	for _, tt := range tests {
		if got := s.Score(tt.text); got.Label != tt.want {
			t.Errorf("Score(%q) = %+v; want label %q", tt.text, got, tt.want)
		}
	}
}

func TestLexicalEstimatorUsesFullLexicon(t *testing.T) {
	est := NewLexicalEstimator(map[string]float64{"splendid": 2.8, "dreadful": -3.4, "great": -4})
	if p := est.Polarity("splendid"); p != 0.7 {
		t.Errorf("Polarity(splendid) = %v; want 0.7", p)
	}
	if p := est.Polarity("dreadful"); p != -0.85 {
		t.Errorf("Polarity(dreadful) = %v; want -0.85", p)
	}
	if p := est.Polarity("great"); p != polarityLexicon["great"] {
		t.Errorf("curated rating should win, got %v", p)
	}
	if p := est.Polarity("not splendid"); p != -0.35 {
		t.Errorf("Polarity(not splendid) = %v; want -0.35", p)
	}
}

func TestSentimentBreakdown(t *testing.T) {
	b := NewSentimentBreakdown([]string{
		models.SentimentPositive, models.SentimentPositive,
		models.SentimentNegative, models.SentimentNeutral,
	})
	if b.Positive != 2 || b.Negative != 1 || b.Neutral != 1 || b.Total != 4 {
		t.Errorf("counts: %+v", b)
	}
	if b.PositivePercentage != 50 {
		t.Errorf("PositivePercentage = %v; want 50", b.PositivePercentage)
	}
	if empty := NewSentimentBreakdown(nil); empty.PositivePercentage != 0 {
		t.Errorf("empty breakdown: %+v", empty)
	}
}
