// Package debate runs the same prompt against several models at once,
// scores the answers with a lexical evaluator and picks a winner.
package debate

import (
	"math"
	"strings"
)

// Criteria names understood by the evaluator.
const (
	CriterionClarity      = "clarity"
	CriterionDetailLevel  = "detail_level"
	CriterionTone         = "tone"
	CriterionCreativity   = "creativity"
	CriterionAccuracy     = "accuracy"
	CriterionRelevance    = "relevance"
	CriterionCompleteness = "completeness"
)

var defaultWeights = map[string]float64{
	CriterionClarity:      0.2,
	CriterionDetailLevel:  0.15,
	CriterionTone:         0.1,
	CriterionCreativity:   0.1,
	CriterionAccuracy:     0.2,
	CriterionRelevance:    0.15,
	CriterionCompleteness: 0.1,
}

// criterionOrder keeps weighted sums deterministic across runs.
var criterionOrder = []string{
	CriterionClarity,
	CriterionDetailLevel,
	CriterionTone,
	CriterionCreativity,
	CriterionAccuracy,
	CriterionRelevance,
	CriterionCompleteness,
}

type wordRange struct {
	lo, hi float64
}

var detailRanges = map[string]wordRange{
	"low":       {0, 100},
	"medium":    {100, 300},
	"high":      {300, 1000},
	"very_high": {1000, math.Inf(1)},
}

var toneIndicators = map[string][]string{
	"formal":       {"therefore", "however", "furthermore", "moreover", "nevertheless"},
	"informal":     {"gonna", "kinda", "stuff", "yeah", "cool"},
	"friendly":     {"thanks", "hope", "help", "glad", "welcome"},
	"professional": {"analysis", "strategy", "implementation", "optimization", "efficiency"},
	"creative":     {"imagine", "creative", "innovative", "unique", "original"},
}

var creativeWords = []string{
	"innovative", "creative", "unique", "original",
	"imagine", "visualize", "example", "metaphor",
}

var exampleMarkers = []string{"for example", "imagine", "as if", "similar to"}

// Criteria steers the evaluator. The zero value scores with the default
// weights, a medium detail target and a neutral tone.
type Criteria struct {
	DetailLevel    string
	Tone           string
	Keywords       []string
	ExpectedTopics []string
	Weights        map[string]float64
}

// Evaluator scores answer texts with cheap lexical heuristics. It has no
// model of meaning; it rewards structure, length in the requested band,
// tone and vocabulary markers, and keyword coverage.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate scores text against every criterion and returns the per-criterion
// scores, each in [0, 1]. Accuracy is not scored; nothing lexical can judge it.
func (e *Evaluator) Evaluate(text string, c Criteria) map[string]float64 {
	detail := c.DetailLevel
	if detail == "" {
		detail = "medium"
	}
	tone := c.Tone
	if tone == "" {
		tone = "neutral"
	}

	return map[string]float64{
		CriterionClarity:      scoreClarity(text),
		CriterionDetailLevel:  scoreDetail(text, detail),
		CriterionTone:         scoreTone(text, tone),
		CriterionCreativity:   scoreCreativity(text),
		CriterionRelevance:    scoreCoverage(text, c.Keywords),
		CriterionCompleteness: scoreCoverage(text, c.ExpectedTopics),
	}
}

// OverallScore folds per-criterion scores into one number using the given
// weights, falling back to the defaults. The divisor never drops below 1,
// so partial score sets scale down rather than up.
func (e *Evaluator) OverallScore(scores map[string]float64, weights map[string]float64) float64 {
	total := 0.0
	totalWeight := 0.0
	for _, criterion := range criterionOrder {
		score, ok := scores[criterion]
		if !ok {
			continue
		}
		weight, ok := weights[criterion]
		if !ok {
			if weight, ok = defaultWeights[criterion]; !ok {
				weight = 0.1
			}
		}
		total += score * weight
		totalWeight += weight
	}
	return total / math.Max(totalWeight, 1.0)
}

func scoreClarity(text string) float64 {
	sentences := strings.Split(text, ".")
	words := 0
	for _, s := range sentences {
		words += len(strings.Fields(s))
	}
	avg := float64(words) / math.Max(float64(len(sentences)), 1)

	var lengthScore float64
	switch {
	case avg >= 10 && avg <= 25:
		lengthScore = 1.0
	case (avg >= 5 && avg < 10) || (avg > 25 && avg <= 35):
		lengthScore = 0.7
	default:
		lengthScore = 0.4
	}

	structure := 0.5
	if strings.Contains(text, "\n") {
		structure += 0.3
	}
	for _, marker := range []string{"1.", "2.", "-", "*"} {
		if strings.Contains(text, marker) {
			structure += 0.2
			break
		}
	}

	return math.Min((lengthScore+structure)/2, 1.0)
}

func scoreDetail(text, level string) float64 {
	wc := float64(len(strings.Fields(text)))
	r, ok := detailRanges[level]
	if !ok {
		r = detailRanges["medium"]
	}
	switch {
	case wc >= r.lo && wc <= r.hi:
		return 1.0
	case wc >= r.lo*0.7 && wc <= r.hi*1.3:
		return 0.7
	default:
		return 0.3
	}
}

func scoreTone(text, tone string) float64 {
	indicators := toneIndicators[tone]
	if len(indicators) == 0 {
		return 0.5
	}
	lower := strings.ToLower(text)
	matches := 0
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			matches++
		}
	}
	return math.Min(float64(matches)/math.Max(float64(len(indicators))*0.3, 1), 1.0)
}

func scoreCreativity(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	matches := 0
	for _, w := range creativeWords {
		if strings.Contains(lower, w) {
			matches++
		}
	}
	score += math.Min(float64(matches)*0.1, 0.3)

	for _, m := range exampleMarkers {
		if strings.Contains(lower, m) {
			score += 0.3
			break
		}
	}

	words := strings.Fields(lower)
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	diversity := float64(len(unique)) / math.Max(float64(len(words)), 1)
	score += math.Min(diversity, 0.4)

	return math.Min(score, 1.0)
}

// scoreCoverage backs both relevance and completeness: the fraction of the
// given terms present in the text, or a neutral 0.8 when no terms were asked.
func scoreCoverage(text string, terms []string) float64 {
	if len(terms) == 0 {
		return 0.8
	}
	lower := strings.ToLower(text)
	matches := 0
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			matches++
		}
	}
	return math.Min(float64(matches)/float64(len(terms)), 1.0)
}
