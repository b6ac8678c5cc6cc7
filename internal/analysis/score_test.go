package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestAggregate_EmptyFindingsUseDefaults(t *testing.T) {
	got := Aggregate(nil, nil, 0)
	assert.Equal(t, model.Scores{Pronunciation: 85, Grammar: 95, Fluency: 80, Overall: 87}, got)
}

func TestGrammarScore_MonotoneAndFloored(t *testing.T) {
	want := []float64{95, 85, 75, 65, 55, 50, 50, 50}
	for n, w := range want {
		assert.Equal(t, w, GrammarScore(n), "findings=%d", n)
	}
}

func TestFluencyScore_Bands(t *testing.T) {
	tests := []struct {
		tokens int
		want   float64
	}{
		{0, 80},
		{9, 80},
		{10, 95},
		{50, 95},
		{100, 95},
		{101, 90},
		{5000, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FluencyScore(tt.tokens), "tokens=%d", tt.tokens)
	}
}

func TestPronunciationScore_Mean(t *testing.T) {
	findings := []model.PronunciationFinding{{Score: 70}, {Score: 85}}
	assert.Equal(t, 77.5, PronunciationScore(findings))
}

func TestOverallMatchesRoundedSubScores(t *testing.T) {
	e := New()
	transcripts := []string{
		"Hello there",
		"I are happy. I saw a apple.",
		"The weather was very unique today.",
		"Three thrilling rivers wove through the valley while we traveled north",
		strings.Repeat("word ", 120),
		"We is late and you is early. A owl was there! Very unique, more unique.",
	}
	for _, tr := range transcripts {
		s := e.Analyze(tr, "").Scores
		mean := float64(s.Pronunciation+s.Grammar+s.Fluency) / 3
		assert.Equal(t, int(math.Round(mean)), s.Overall, "transcript %q", tr)

		assert.GreaterOrEqual(t, s.Pronunciation, 0)
		assert.LessOrEqual(t, s.Pronunciation, 100)
		assert.GreaterOrEqual(t, s.Grammar, 50)
		assert.LessOrEqual(t, s.Grammar, 95)
		assert.GreaterOrEqual(t, s.Fluency, 60)
		assert.LessOrEqual(t, s.Fluency, 95)
	}
}
