package debate

import (
	"math"
	"strings"
	"testing"
)

const scoreTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < scoreTolerance
}

func TestEvaluateShortText(t *testing.T) {
	e := NewEvaluator()
	scores := e.Evaluate("Short answer.", Criteria{})

	want := map[string]float64{
		CriterionClarity:      0.45,
		CriterionDetailLevel:  0.3,
		CriterionTone:         0.5,
		CriterionCreativity:   0.4,
		CriterionRelevance:    0.8,
		CriterionCompleteness: 0.8,
	}
	for criterion, wantScore := range want {
		if got := scores[criterion]; !almostEqual(got, wantScore) {
			t.Errorf("%s = %v, want %v", criterion, got, wantScore)
		}
	}
	if _, ok := scores[CriterionAccuracy]; ok {
		t.Error("accuracy should not be scored")
	}

	if got := e.OverallScore(scores, nil); !almostEqual(got, 0.425) {
		t.Errorf("OverallScore() = %v, want 0.425", got)
	}
}

func TestScoreClarityRewardsStructure(t *testing.T) {
	structured := "Here is a considered answer that runs to about fifteen words in every sentence, more or less.\nKey points:\n- first point worth making here today\n- second point worth making here today"
	if got := scoreClarity(structured); !almostEqual(got, 1.0) {
		t.Errorf("scoreClarity(structured) = %v, want 1.0", got)
	}

	flat := "word"
	if got := scoreClarity(flat); got >= scoreClarity(structured) {
		t.Errorf("flat text scored %v, should be below structured", got)
	}
}

func TestScoreDetail(t *testing.T) {
	text := func(words int) string {
		return strings.TrimSpace(strings.Repeat("word ", words))
	}

	tests := []struct {
		name  string
		text  string
		level string
		want  float64
	}{
		{name: "medium in range", text: text(150), level: "medium", want: 1.0},
		{name: "medium near range", text: text(350), level: "medium", want: 0.7},
		{name: "medium far off", text: text(2), level: "medium", want: 0.3},
		{name: "high too short", text: text(150), level: "high", want: 0.3},
		{name: "high near range", text: text(250), level: "high", want: 0.7},
		{name: "very_high open ended", text: text(1500), level: "very_high", want: 1.0},
		{name: "unknown level falls back to medium", text: text(150), level: "extreme", want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreDetail(tt.text, tt.level); !almostEqual(got, tt.want) {
				t.Errorf("scoreDetail() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreTone(t *testing.T) {
	tests := []struct {
		name string
		text string
		tone string
		want float64
	}{
		{name: "formal markers", text: "However, the result holds; therefore we proceed.", tone: "formal", want: 1.0},
		{name: "no markers", text: "plain text", tone: "informal", want: 0.0},
		{name: "unrecognized tone is neutral", text: "anything at all", tone: "neutral", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreTone(tt.text, tt.tone); !almostEqual(got, tt.want) {
				t.Errorf("scoreTone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreCoverage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
		want  float64
	}{
		{name: "no terms is neutral", text: "anything", terms: nil, want: 0.8},
		{name: "half covered", text: "all about go routines", terms: []string{"go", "rust"}, want: 0.5},
		{name: "case insensitive", text: "GoLang is fine", terms: []string{"golang"}, want: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreCoverage(tt.text, tt.terms); !almostEqual(got, tt.want) {
				t.Errorf("scoreCoverage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverallScore(t *testing.T) {
	e := NewEvaluator()

	// All six evaluated criteria at 1.0 sum to weight 0.8 while the divisor
	// clamps to 1.0, so a perfect response still tops out at 0.8.
	perfect := map[string]float64{
		CriterionClarity:      1.0,
		CriterionDetailLevel:  1.0,
		CriterionTone:         1.0,
		CriterionCreativity:   1.0,
		CriterionRelevance:    1.0,
		CriterionCompleteness: 1.0,
	}
	if got := e.OverallScore(perfect, nil); !almostEqual(got, 0.8) {
		t.Errorf("OverallScore(perfect) = %v, want 0.8", got)
	}

	if got := e.OverallScore(map[string]float64{}, nil); !almostEqual(got, 0.0) {
		t.Errorf("OverallScore(empty) = %v, want 0", got)
	}

	custom := map[string]float64{CriterionClarity: 2.0}
	scores := map[string]float64{CriterionClarity: 0.5}
	if got := e.OverallScore(scores, custom); !almostEqual(got, 0.5) {
		t.Errorf("OverallScore(custom weights) = %v, want 0.5", got)
	}
}
