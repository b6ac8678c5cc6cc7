// Package model defines shared data structures.
package model

import "time"

// PronunciationFinding is the per-word pronunciation result.
// PhoneticCorrection is empty when the word was not flagged.
type PronunciationFinding struct {
	Word               string `json:"word" yaml:"word"`
	Score              int    `json:"score" yaml:"score"`
	Suggestion         string `json:"suggestion" yaml:"suggestion"`
	PhoneticCorrection string `json:"phoneticCorrection,omitempty" yaml:"phonetic_correction,omitempty"`
}

// GrammarFinding is a single rule hit inside one sentence.
type GrammarFinding struct {
	Error         string `json:"error" yaml:"error"`
	Correction    string `json:"correction" yaml:"correction"`
	Explanation   string `json:"explanation" yaml:"explanation"`
	SentenceIndex int    `json:"sentenceIndex" yaml:"sentence_index"`
}

// VocabularyFinding suggests stronger alternatives for a plain word.
type VocabularyFinding struct {
	Word         string   `json:"word" yaml:"word"`
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	Context      string   `json:"context" yaml:"context"`
}

// Feedback is the complete analysis of one transcript.
type Feedback struct {
	Pronunciation []PronunciationFinding `json:"pronunciation" yaml:"pronunciation"`
	Grammar       []GrammarFinding       `json:"grammar" yaml:"grammar"`
	Vocabulary    []VocabularyFinding    `json:"vocabulary" yaml:"vocabulary"`
	Overall       string                 `json:"overall" yaml:"overall"`
}

// Scores holds the rounded sub-scores and the composite score.
type Scores struct {
	Pronunciation int `json:"pronunciation" yaml:"pronunciation"`
	Grammar       int `json:"grammar" yaml:"grammar"`
	Fluency       int `json:"fluency" yaml:"fluency"`
	Overall       int `json:"overall" yaml:"overall"`
}

// PracticeSession captures a completed recording and its analysis.
type PracticeSession struct {
	ID              string    `json:"id" yaml:"id"`
	UserID          string    `json:"userId" yaml:"user_id"`
	Transcript      string    `json:"transcript" yaml:"transcript"`
	OriginalText    string    `json:"originalText,omitempty" yaml:"original_text,omitempty"`
	Scores          Scores    `json:"scores" yaml:"scores"`
	Feedback        Feedback  `json:"feedback" yaml:"feedback"`
	XPGained        int       `json:"xpGained" yaml:"xp_gained"`
	DurationSeconds int       `json:"durationSeconds" yaml:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp" yaml:"timestamp"`
}

// Config defines practice settings.
type Config struct {
	User       string
	Lesson     string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
	Jitter     bool
}

// VoiceConfig selects and tunes the text-to-speech voice.
type VoiceConfig struct {
	Command string
	Voice   string
	Lang    string
	Rate    float64
	Pitch   float64
	Volume  float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	User        string
	Since       *time.Time
	Last        int
	CurveWindow int
	Sounds      string
}

// SoundStats stores per-sound pronunciation stats for a session.
type SoundStats struct {
	Sound    string
	Matched  int
	Flagged  int
	ScoreSum int64
}

// SoundAggregate aggregates sound stats across sessions.
type SoundAggregate struct {
	Sound    string
	Matched  int
	Flagged  int
	ScoreSum int64
}

// WordStats records a flagged word with its phonetic key.
type WordStats struct {
	Word        string
	PhoneticKey string
	Score       int
}

// WordAggregate groups flagged words that sound alike.
type WordAggregate struct {
	PhoneticKey string
	Words       []string
	Count       int
	ScoreSum    int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID       int64
	UID             string
	EndedAt         time.Time
	Scores          Scores
	XP              int
	DurationSeconds int
}
