package services

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var termRegexp = regexp.MustCompile(`\w\w+`)

// englishStopWords are dropped before n-grams are formed.
var englishStopWords = toSet(`a about above after again against all almost alone along already also
although always am among an and another any anyhow anyone anything anyway anywhere are around as at
back be became because become becomes been before beforehand behind being below beside besides between
beyond both but by can cannot could did do does doing done down due during each eg either else elsewhere
enough etc even ever every everyone everything everywhere except few for former formerly from further
get give go had has hasnt have having he hence her here hers herself him himself his how however i ie if
in inc indeed into is it its itself just keep last latter least less ltd made many may me meanwhile might
mine more moreover most mostly much must my myself neither never nevertheless next no nobody none nor not
nothing now nowhere of off often on once one only onto or other others otherwise our ours ourselves out
over own per perhaps please put rather re same see seem seemed seeming seems several she should since so
some somehow someone something sometime sometimes somewhere still such than that the their theirs them
themselves then there thereafter thereby therefore these they this those though through throughout thru
thus to together too toward towards under until up upon us very via was we well were what whatever when
whenever where whereas wherever whether which while who whoever whole whom whose why will with within
without would yet you your yours yourself yourselves`)

func toSet(words string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		set[w] = true
	}
	return set
}

// Vectorizer builds L2-normalised TF-IDF rows over a vocabulary of at most
// MaxTerms entries, chosen by corpus frequency with ties broken
// alphabetically. IDF is smoothed: ln((1+n)/(1+df)) + 1.
type Vectorizer struct {
	MaxTerms int
	MaxNGram int
}

// FitTransform returns the vocabulary and one row per document, in input
// order. Documents with no known term yield a zero row.
func (v Vectorizer) FitTransform(docs []string) ([]string, [][]float64) {
	maxN := v.MaxNGram
	if maxN < 1 {
		maxN = 1
	}

	counts := make([]map[string]int, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		counts[i] = termCounts(doc, maxN)
		for term, c := range counts[i] {
			total[term] += c
			df[term]++
		}
	}

	vocab := make([]string, 0, len(total))
	for term := range total {
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(a, b int) bool {
		if total[vocab[a]] != total[vocab[b]] {
			return total[vocab[a]] > total[vocab[b]]
		}
		return vocab[a] < vocab[b]
	})
	if v.MaxTerms > 0 && len(vocab) > v.MaxTerms {
		vocab = vocab[:v.MaxTerms]
	}
	// column order is alphabetical once the vocabulary is fixed
	sort.Strings(vocab)

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i := range docs {
		row := make([]float64, len(vocab))
		var norm float64
		for j, term := range vocab {
			row[j] = float64(counts[i][term]) * idf[j]
			norm += row[j] * row[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}
	return vocab, rows
}

func termCounts(doc string, maxN int) map[string]int {
	var words []string
	for _, w := range termRegexp.FindAllString(strings.ToLower(doc), -1) {
		if !englishStopWords[w] {
			words = append(words, w)
		}
	}

	counts := make(map[string]int)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(words); i++ {
			counts[strings.Join(words[i:i+n], " ")]++
		}
	}
	return counts
}
