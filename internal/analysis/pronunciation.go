package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/verte-zerg/tuispeak/internal/model"
)

const (
	// MinBaseScore and MaxBaseScore bound the score a word starts from.
	MinBaseScore = 85.0
	MaxBaseScore = 95.0

	// FlagThreshold is the score below which a word gets rule guidance.
	FlagThreshold = 80.0

	pronunciationFloor = 60.0
	maxRulePenalty     = 25.0
	goodPronunciation  = "Good pronunciation!"
)

// SoundRule describes a difficult sound and how to practice it.
// Difficulty is in [0,1]; higher difficulty means a smaller penalty.
type SoundRule struct {
	Sound      string
	Difficulty float64
	Guidance   string
}

// DefaultSoundRules returns the built-in rules in evaluation order.
func DefaultSoundRules() []SoundRule {
	return []SoundRule{
		{Sound: "th", Difficulty: 0.7, Guidance: "Focus on tongue placement between teeth for 'th' sounds"},
		{Sound: "r", Difficulty: 0.8, Guidance: "Curl tongue tip slightly back for clear 'r' sounds"},
		{Sound: "w", Difficulty: 0.9, Guidance: "Round lips more prominently for 'w' sounds"},
		{Sound: "v", Difficulty: 0.8, Guidance: "Touch lower lip with upper teeth for 'v' sounds"},
		{Sound: "l", Difficulty: 0.85, Guidance: "Place tongue tip against roof of mouth for 'l' sounds"},
	}
}

// Matches reports whether the sound occurs anywhere in word.
func (r SoundRule) Matches(word string) bool {
	return strings.Contains(word, r.Sound)
}

// Penalty is the score deduction applied when the rule matches.
func (r SoundRule) Penalty() float64 {
	return maxRulePenalty * (1 - r.Difficulty)
}

// Annotate brackets every occurrence of the sound, e.g. /wo[r]d/.
func (r SoundRule) Annotate(word string) string {
	return "/" + strings.ReplaceAll(word, r.Sound, "["+r.Sound+"]") + "/"
}

// ValidateRules reports malformed rule data.
func ValidateRules(rules []SoundRule) error {
	var errs []error
	for i, rule := range rules {
		if rule.Sound == "" {
			errs = append(errs, fmt.Errorf("rule %d: sound is empty", i))
		}
		if rule.Difficulty < 0 || rule.Difficulty > 1 || math.IsNaN(rule.Difficulty) {
			errs = append(errs, fmt.Errorf("rule %d (%q): difficulty %v outside [0,1]", i, rule.Sound, rule.Difficulty))
		}
		if strings.TrimSpace(rule.Guidance) == "" {
			errs = append(errs, fmt.Errorf("rule %d (%q): guidance is empty", i, rule.Sound))
		}
	}
	return errors.Join(errs...)
}

// BaseScorer supplies the starting score for a word.
type BaseScorer interface {
	BaseScore(word string) float64
}

// BaseScorerFunc adapts a function to BaseScorer.
type BaseScorerFunc func(word string) float64

// BaseScore implements BaseScorer.
func (f BaseScorerFunc) BaseScore(word string) float64 {
	return f(word)
}

// StableBase derives a base score in [85,95] from a hash of the word, so the
// same word always starts from the same score.
type StableBase struct{}

// BaseScore implements BaseScorer.
func (StableBase) BaseScore(word string) float64 {
	span := uint64(MaxBaseScore-MinBaseScore) + 1
	return MinBaseScore + float64(xxhash.Sum64String(word)%span)
}

// PronunciationAnalyzer scores words against sound rules.
type PronunciationAnalyzer struct {
	rules []SoundRule
	base  BaseScorer
}

// NewPronunciationAnalyzer builds an analyzer. A nil base uses StableBase.
func NewPronunciationAnalyzer(rules []SoundRule, base BaseScorer) *PronunciationAnalyzer {
	if base == nil {
		base = StableBase{}
	}
	return &PronunciationAnalyzer{
		rules: append([]SoundRule(nil), rules...),
		base:  base,
	}
}

// Rules returns a copy of the analyzer's rules.
func (a *PronunciationAnalyzer) Rules() []SoundRule {
	return append([]SoundRule(nil), a.rules...)
}

// Analyze returns one finding per token, in token order.
func (a *PronunciationAnalyzer) Analyze(tokens []string) ([]model.PronunciationFinding, error) {
	if err := ValidateRules(a.rules); err != nil {
		return nil, fmt.Errorf("invalid sound rules: %w", err)
	}
	findings := make([]model.PronunciationFinding, 0, len(tokens))
	for _, word := range tokens {
		findings = append(findings, a.ScoreWord(word, a.base.BaseScore(word)))
	}
	return findings, nil
}

// ScoreWord applies every matching rule to word starting from base.
// The result depends only on its arguments.
func (a *PronunciationAnalyzer) ScoreWord(word string, base float64) model.PronunciationFinding {
	score := clamp(base, MinBaseScore, MaxBaseScore)
	finding := model.PronunciationFinding{
		Word:       word,
		Suggestion: goodPronunciation,
	}
	for _, rule := range a.rules {
		if !rule.Matches(word) {
			continue
		}
		score = math.Max(pronunciationFloor, score-rule.Penalty())
		if score < FlagThreshold {
			finding.Suggestion = rule.Guidance
			finding.PhoneticCorrection = rule.Annotate(word)
		}
	}
	finding.Score = int(math.Round(clamp(score, 0, 100)))
	return finding
}
