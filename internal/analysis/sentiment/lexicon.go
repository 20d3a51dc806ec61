// Package sentiment scores article text on a [-1, 1] polarity scale with
// POSITIVE / NEGATIVE / NEUTRAL labels.
//
// Two interchangeable scorers are provided: Lexicon, a fast deterministic
// valence-lexicon scorer that needs no network, and Model, a slower
// LLM-backed scorer. Both satisfy Scorer; the pipeline picks one per
// request.
package sentiment

import (
	"context"
	"log"
	"math"
	"strings"

	"github.com/stratlens/stratlens/pkg/models"
)

// Label cutoffs on the compound score. Scores in (-0.05, 0.05) are NEUTRAL.
const (
	positiveCutoff = 0.05
	negativeCutoff = -0.05
)

// Result is one scored text.
type Result struct {
	Label string
	Score float64
}

// Scorer maps raw text to a sentiment label and score.
// Implementations degrade per-text failures to NEUTRAL/0.0 rather than
// failing the batch.
type Scorer interface {
	Name() string
	Score(ctx context.Context, text string) (Result, error)
}

// valence weights for general-news vocabulary, lowercase. Multi-word
// entries match before their single-word stems would.
var positiveValence = map[string]float64{
	"record high":  2.4,
	"breakthrough": 2.2,
	"surge":        1.9,
	"soar":         1.9,
	"rally":        1.7,
	"outperform":   1.6,
	"upgrade":      1.5,
	"strong":       1.4,
	"growth":       1.4,
	"profit":       1.3,
	"win":          1.3,
	"success":      1.3,
	"innovative":   1.2,
	"boost":        1.2,
	"recovery":     1.2,
	"gain":         1.1,
	"expand":       1.1,
	"positive":     1.0,
	"improve":      1.0,
	"optimistic":   1.0,
	"partnership":  0.8,
	"launch":       0.6,
}

var negativeValence = map[string]float64{
	"fraud":         -2.6,
	"scandal":       -2.4,
	"crash":         -2.3,
	"plunge":        -2.0,
	"lawsuit":       -1.8,
	"investigation": -1.6,
	"layoff":        -1.6,
	"recall":        -1.5,
	"downgrade":     -1.5,
	"slump":         -1.5,
	"loss":          -1.4,
	"decline":       -1.3,
	"fail":          -1.3,
	"weak":          -1.2,
	"miss":          -1.1,
	"fall":          -1.1,
	"warning":       -1.1,
	"concern":       -1.0,
	"negative":      -1.0,
	"cut":           -0.9,
	"risk":          -0.8,
	"delay":         -0.8,
}

// Lexicon is the fast offline scorer. It sums matched valence weights and
// squashes the total into [-1, 1] the way VADER normalizes its compound
// score. Safe for concurrent use.
type Lexicon struct{}

// NewLexicon returns the lexicon scorer.
func NewLexicon() *Lexicon { return &Lexicon{} }

func (l *Lexicon) Name() string { return "fast" }

// Score never returns an error; empty or signal-free text is NEUTRAL/0.
func (l *Lexicon) Score(_ context.Context, text string) (Result, error) {
	lower := strings.ToLower(text)

	sum := 0.0
	for word, weight := range positiveValence {
		if strings.Contains(lower, word) {
			sum += weight
		}
	}
	for word, weight := range negativeValence {
		if strings.Contains(lower, word) {
			sum += weight
		}
	}

	score := compound(sum)
	return Result{Label: LabelFor(score), Score: score}, nil
}

// compound squashes an unbounded valence sum into [-1, 1].
func compound(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+15)
}

// LabelFor maps a [-1, 1] score to its sentiment label using the
// standard ±0.05 cutoffs.
func LabelFor(score float64) string {
	switch {
	case score >= positiveCutoff:
		return models.SentimentPositive
	case score <= negativeCutoff:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// ScoreArticles scores every article in place. The fast scorer reads the
// combined title+description text; the deep scorer reads only the title,
// matching its shorter input budget. A per-article scoring failure
// degrades that article to NEUTRAL/0.0 and never aborts the batch.
func ScoreArticles(ctx context.Context, s Scorer, articles []models.Article) {
	for i := range articles {
		text := articles[i].FullText()
		if s.Name() == "deep" {
			text = articles[i].Title
		}

		res, err := s.Score(ctx, text)
		if err != nil {
			log.Printf("sentiment: %s scorer failed on article %d: %v", s.Name(), i, err)
			res = Result{Label: models.SentimentNeutral, Score: 0}
		}
		articles[i].SentimentLabel = res.Label
		articles[i].SentimentScore = res.Score
	}
}
