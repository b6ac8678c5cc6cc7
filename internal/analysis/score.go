package analysis

import (
	"math"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const (
	// NeutralPronunciationScore is used when there are no words to score.
	NeutralPronunciationScore = 85.0

	grammarCeiling     = 95.0
	grammarFloor       = 50.0
	grammarErrorCost   = 10.0
	fluencyBase        = 100.0
	fluencyCeiling     = 95.0
	fluencyFloor       = 60.0
	shortSpeechWords   = 10
	shortSpeechPenalty = 20.0
	longSpeechWords    = 100
	longSpeechPenalty  = 10.0
)

// Aggregate converts findings and the token count into rounded scores.
// Overall is the rounded mean of the unrounded sub-scores.
func Aggregate(pronunciation []model.PronunciationFinding, grammar []model.GrammarFinding, tokenCount int) model.Scores {
	p := PronunciationScore(pronunciation)
	g := GrammarScore(len(grammar))
	f := FluencyScore(tokenCount)
	return model.Scores{
		Pronunciation: roundScore(p, 0, 100),
		Grammar:       roundScore(g, grammarFloor, grammarCeiling),
		Fluency:       roundScore(f, fluencyFloor, fluencyCeiling),
		Overall:       roundScore(OverallMean(pronunciation, grammar, tokenCount), 0, 100),
	}
}

// OverallMean is the unrounded mean of the three sub-scores.
func OverallMean(pronunciation []model.PronunciationFinding, grammar []model.GrammarFinding, tokenCount int) float64 {
	p := PronunciationScore(pronunciation)
	g := GrammarScore(len(grammar))
	f := FluencyScore(tokenCount)
	return clamp((p+g+f)/3, 0, 100)
}

// PronunciationScore is the mean finding score, or the neutral default.
func PronunciationScore(findings []model.PronunciationFinding) float64 {
	if len(findings) == 0 {
		return NeutralPronunciationScore
	}
	sum := 0.0
	for _, f := range findings {
		sum += float64(f.Score)
	}
	return clamp(sum/float64(len(findings)), 0, 100)
}

// GrammarScore deducts a fixed cost per finding, floored at 50.
func GrammarScore(findingCount int) float64 {
	return clamp(grammarCeiling-grammarErrorCost*float64(findingCount), grammarFloor, grammarCeiling)
}

// FluencyScore penalizes very short or very long speech.
func FluencyScore(tokenCount int) float64 {
	score := fluencyBase
	switch {
	case tokenCount < shortSpeechWords:
		score -= shortSpeechPenalty
	case tokenCount > longSpeechWords:
		score -= longSpeechPenalty
	}
	return clamp(score, fluencyFloor, fluencyCeiling)
}

func roundScore(v, lo, hi float64) int {
	return int(math.Round(clamp(v, lo, hi)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
