package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// Status describes which branch produced a Result.
type Status int

const (
	// StatusOK means the transcript was analyzed.
	StatusOK Status = iota
	// StatusNoSpeech means the transcript was empty or whitespace only.
	StatusNoSpeech
	// StatusFault means analysis failed and fallback feedback was returned.
	StatusFault
)

// String returns a lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoSpeech:
		return "no-speech"
	case StatusFault:
		return "fault"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the full outcome of analyzing one transcript.
type Result struct {
	Feedback     model.Feedback
	Scores       model.Scores
	TokenCount   int
	OriginalText string
	Status       Status
}

// Option configures an Engine.
type Option func(*Engine)

// WithBaseScorer replaces the deterministic base scorer.
func WithBaseScorer(b BaseScorer) Option {
	return func(e *Engine) {
		e.base = b
	}
}

// WithSoundRules replaces the pronunciation rules.
func WithSoundRules(rules []SoundRule) Option {
	return func(e *Engine) {
		e.soundRules = rules
	}
}

// WithGrammarRules replaces the grammar rules.
func WithGrammarRules(rules []GrammarRule) Option {
	return func(e *Engine) {
		e.grammarRules = rules
	}
}

// WithSynonyms replaces the vocabulary table.
func WithSynonyms(synonyms map[string][]string) Option {
	return func(e *Engine) {
		e.synonyms = synonyms
	}
}

// WithLogger sets the logger used to report analysis faults.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs the analyzers and composes feedback.
// An Engine is read-only after New and safe for concurrent use.
type Engine struct {
	base         BaseScorer
	soundRules   []SoundRule
	grammarRules []GrammarRule
	synonyms     map[string][]string
	logger       *slog.Logger

	pronunciation *PronunciationAnalyzer
	grammar       *GrammarAnalyzer
	vocabulary    *VocabularyAnalyzer
}

// New builds an Engine with the default rule sets unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		base:         StableBase{},
		soundRules:   DefaultSoundRules(),
		grammarRules: DefaultGrammarRules(),
		synonyms:     DefaultSynonyms(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(e)
	}
	e.pronunciation = NewPronunciationAnalyzer(e.soundRules, e.base)
	e.grammar = NewGrammarAnalyzer(e.grammarRules)
	e.vocabulary = NewVocabularyAnalyzer(e.synonyms)
	return e
}

// SoundRules returns the pronunciation rules in use.
func (e *Engine) SoundRules() []SoundRule {
	return e.pronunciation.Rules()
}

// AnalyzeComplete returns feedback for transcript. It never fails: empty input
// and internal faults yield fixed-message feedback. originalText is carried
// but not compared against the transcript.
func (e *Engine) AnalyzeComplete(transcript, originalText string) model.Feedback {
	return e.Analyze(transcript, originalText).Feedback
}

// Analyze is AnalyzeComplete plus scores and status.
func (e *Engine) Analyze(transcript, originalText string) (res Result) {
	res.OriginalText = originalText
	if strings.TrimSpace(transcript) == "" {
		res.Feedback = MessageFeedback(NoSpeechMessage)
		res.Status = StatusNoSpeech
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("analysis panicked", "panic", fmt.Sprint(r), "transcript_len", len(transcript))
			res = faultResult(originalText)
		}
	}()

	tokens := Tokenize(transcript)
	pronunciation, err := e.pronunciation.Analyze(tokens.Words)
	if err != nil {
		e.logger.Warn("pronunciation analysis failed", "err", err)
		return faultResult(originalText)
	}
	grammar := e.grammar.Analyze(tokens.Sentences)
	vocabulary := e.vocabulary.Analyze(transcript)

	scores := Aggregate(pronunciation, grammar, len(tokens.Words))
	mean := OverallMean(pronunciation, grammar, len(tokens.Words))
	return Result{
		Feedback:     Compose(pronunciation, grammar, vocabulary, mean),
		Scores:       scores,
		TokenCount:   len(tokens.Words),
		OriginalText: originalText,
		Status:       StatusOK,
	}
}

func faultResult(originalText string) Result {
	return Result{
		Feedback:     MessageFeedback(AnalysisErrorMessage),
		OriginalText: originalText,
		Status:       StatusFault,
	}
}
