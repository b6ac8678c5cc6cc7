package analysis

import (
	"regexp"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// GrammarRule checks one lowercased sentence.
// Returns the finding and true when the rule applies.
type GrammarRule interface {
	Name() string
	Check(sentence string) (model.GrammarFinding, bool)
}

// DefaultGrammarRules returns the built-in rules. Every rule is evaluated for
// every sentence; order only affects the order of findings.
func DefaultGrammarRules() []GrammarRule {
	return []GrammarRule{
		&AgreementRule{},
		&ArticleRule{},
		&RedundantModifierRule{},
	}
}

// GrammarAnalyzer applies grammar rules to sentences.
type GrammarAnalyzer struct {
	rules []GrammarRule
}

// NewGrammarAnalyzer builds an analyzer over rules.
func NewGrammarAnalyzer(rules []GrammarRule) *GrammarAnalyzer {
	return &GrammarAnalyzer{rules: append([]GrammarRule(nil), rules...)}
}

// Analyze returns all findings, grouped by sentence in sentence order.
func (a *GrammarAnalyzer) Analyze(sentences []Sentence) []model.GrammarFinding {
	findings := []model.GrammarFinding{}
	for _, s := range sentences {
		text := strings.ToLower(strings.TrimSpace(s.Text))
		if text == "" {
			continue
		}
		for _, rule := range a.rules {
			finding, ok := rule.Check(text)
			if !ok {
				continue
			}
			finding.SentenceIndex = s.Index
			findings = append(findings, finding)
		}
	}
	return findings
}

type agreementFix struct {
	pattern *regexp.Regexp
	fixed   string
}

var agreementFixes = []agreementFix{
	{pattern: regexp.MustCompile(`\bi are\b`), fixed: "I am"},
	{pattern: regexp.MustCompile(`\byou is\b`), fixed: "you are"},
	{pattern: regexp.MustCompile(`\bwe is\b`), fixed: "we are"},
}

// AgreementRule flags subject-verb disagreement such as "i are".
type AgreementRule struct{}

// Name implements GrammarRule.
func (r *AgreementRule) Name() string { return "subject-verb" }

// Check implements GrammarRule.
func (r *AgreementRule) Check(sentence string) (model.GrammarFinding, bool) {
	matched := false
	corrected := sentence
	for _, fix := range agreementFixes {
		if !fix.pattern.MatchString(corrected) {
			continue
		}
		matched = true
		corrected = fix.pattern.ReplaceAllLiteralString(corrected, fix.fixed)
	}
	if !matched {
		return model.GrammarFinding{}, false
	}
	return model.GrammarFinding{
		Error:       "Subject-verb disagreement",
		Correction:  corrected,
		Explanation: "Make sure the subject and verb agree in number and person",
	}, true
}

var (
	articleBeforeVowel = regexp.MustCompile(`(?i)\ba\s+([aeiou])`)
	anBeforeVowel      = regexp.MustCompile(`(?i)\ban\s+[aeiou]`)
)

// ArticleRule flags "a" before a vowel-initial word. A sentence that already
// uses "an" correctly somewhere is left alone.
type ArticleRule struct{}

// Name implements GrammarRule.
func (r *ArticleRule) Name() string { return "article" }

// Check implements GrammarRule.
func (r *ArticleRule) Check(sentence string) (model.GrammarFinding, bool) {
	if !articleBeforeVowel.MatchString(sentence) || anBeforeVowel.MatchString(sentence) {
		return model.GrammarFinding{}, false
	}
	return model.GrammarFinding{
		Error:       "Article usage",
		Correction:  articleBeforeVowel.ReplaceAllString(sentence, "an ${1}"),
		Explanation: "Use 'an' before words that start with vowel sounds",
	}, true
}

var redundantUnique = regexp.MustCompile(`\b(very|more)\s+unique\b`)

// RedundantModifierRule flags "very unique" and "more unique".
type RedundantModifierRule struct{}

// Name implements GrammarRule.
func (r *RedundantModifierRule) Name() string { return "redundant-modifier" }

// Check implements GrammarRule.
func (r *RedundantModifierRule) Check(sentence string) (model.GrammarFinding, bool) {
	if !redundantUnique.MatchString(sentence) {
		return model.GrammarFinding{}, false
	}
	return model.GrammarFinding{
		Error:       "Redundant modifier",
		Correction:  redundantUnique.ReplaceAllString(sentence, "unique"),
		Explanation: "'Unique' is already absolute - avoid modifying it with 'very' or 'more'",
	}, true
}
