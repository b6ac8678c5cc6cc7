package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuispeak/internal/lesson"
	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/speech"
	"github.com/verte-zerg/tuispeak/internal/stats"
	"github.com/verte-zerg/tuispeak/internal/store"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// displayThreshold hides pronunciation findings that scored this high or better
// in text output. Structured formats carry every finding.
const displayThreshold = 85

type analyzeOutput struct {
	Status    string         `json:"status" yaml:"status"`
	Scores    model.Scores   `json:"scores" yaml:"scores"`
	Feedback  model.Feedback `json:"feedback" yaml:"feedback"`
	Original  string         `json:"originalText,omitempty" yaml:"original_text,omitempty"`
	SessionID string         `json:"sessionId,omitempty" yaml:"session_id,omitempty"`
	XPGained  int            `json:"xpGained,omitempty" yaml:"xp_gained,omitempty"`
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("--format must be one of text, json, yaml")
	}
}

func speechTranscript(r io.Reader) (string, error) {
	results, err := speech.DecodeResults(r)
	if err != nil {
		return "", fmt.Errorf("failed to read recognizer output: %w", err)
	}
	return speech.FinalTranscript(results), nil
}

func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to write json: %w", err)
		}
		return nil
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func writeAnalyzeOutput(w io.Writer, format string, out analyzeOutput) error {
	if format != formatText {
		return writeStructured(w, format, out)
	}
	var b strings.Builder
	if out.Status == "ok" {
		fmt.Fprintln(&b, scoreLine(out.Scores))
		fmt.Fprintln(&b)
	}
	fmt.Fprintln(&b, out.Feedback.Overall)
	writeFindings(&b, out.Feedback)
	if out.SessionID != "" {
		fmt.Fprintln(&b)
		fmt.Fprintf(&b, "Saved session %s (+%d XP)\n", out.SessionID, out.XPGained)
	}
	return writeString(w, b.String())
}

func writeSession(w io.Writer, format string, ps model.PracticeSession) error {
	if format != formatText {
		return writeStructured(w, format, ps)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", ps.ID)
	fmt.Fprintf(&b, "Date: %s\n", ps.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if ps.UserID != "" {
		fmt.Fprintf(&b, "User: %s\n", ps.UserID)
	}
	fmt.Fprintf(&b, "Duration: %ds  XP: %d\n", ps.DurationSeconds, ps.XPGained)
	if ps.OriginalText != "" {
		fmt.Fprintf(&b, "Original: %s\n", ps.OriginalText)
	}
	fmt.Fprintf(&b, "Transcript: %s\n\n", ps.Transcript)
	fmt.Fprintln(&b, scoreLine(ps.Scores))
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, ps.Feedback.Overall)
	writeFindings(&b, ps.Feedback)
	return writeString(w, b.String())
}

func scoreLine(s model.Scores) string {
	return fmt.Sprintf("Overall %d  Pronunciation %d  Grammar %d  Fluency %d",
		s.Overall, s.Pronunciation, s.Grammar, s.Fluency)
}

func writeFindings(b *strings.Builder, fb model.Feedback) {
	var pron []model.PronunciationFinding
	for _, p := range fb.Pronunciation {
		if p.Score < displayThreshold {
			pron = append(pron, p)
		}
	}
	if len(pron) > 0 {
		fmt.Fprintln(b, "\nPronunciation")
		for _, p := range pron {
			line := fmt.Sprintf("  %s %d", p.Word, p.Score)
			if p.PhoneticCorrection != "" {
				line += " " + p.PhoneticCorrection
			}
			fmt.Fprintf(b, "%s  %s\n", line, p.Suggestion)
		}
	}
	if len(fb.Grammar) > 0 {
		fmt.Fprintln(b, "\nGrammar")
		for _, g := range fb.Grammar {
			fmt.Fprintf(b, "  [sentence %d] %s: %s\n    %s\n", g.SentenceIndex+1, g.Error, g.Correction, g.Explanation)
		}
	}
	if len(fb.Vocabulary) > 0 {
		fmt.Fprintln(b, "\nVocabulary")
		for _, v := range fb.Vocabulary {
			fmt.Fprintf(b, "  %s -> %s\n", v.Word, strings.Join(v.Alternatives, ", "))
		}
	}
}

func writeLessons(w io.Writer, lessons []lesson.Lesson) error {
	if len(lessons) == 0 {
		return writeString(w, "No lessons found.\n")
	}
	var b strings.Builder
	for _, l := range lessons {
		source := "builtin"
		if l.Path != "" {
			source = l.Path
		}
		fmt.Fprintf(&b, "%s\t%d prompts\t%s\t%s\n", l.Name, len(l.Prompts), l.Title, source)
	}
	return writeString(w, b.String())
}

func writePlainStats(ctx context.Context, w io.Writer, st *store.Store, cfg model.StatsConfig) error {
	report, err := stats.BuildReport(ctx, st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	var buf bytes.Buffer
	if err := stats.RenderSummary(&buf, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) > 0 {
		if err := stats.RenderCurves(&buf, report.Sessions, cfg.CurveWindow); err != nil {
			return err
		}
		if err := stats.RenderSoundTable(&buf, report.SoundAggsWindow); err != nil {
			return err
		}
		sounds := splitSounds(cfg.Sounds)
		if len(sounds) == 0 {
			sounds = stats.TopSoundsByFrequency(report.SoundAggsAll, 3)
		}
		perSession, err := st.ListSoundStatsForSessions(ctx, report.SessionIDs(), sounds)
		if err != nil {
			return fmt.Errorf("failed to load sound stats: %w", err)
		}
		if err := stats.RenderSoundCurves(&buf, report.Sessions, perSession, sounds, cfg.CurveWindow); err != nil {
			return err
		}
		if err := stats.RenderWeakWords(&buf, report.WeakWords); err != nil {
			return err
		}
	}
	_, err = buf.WriteTo(w)
	return err
}

func splitSounds(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeString(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
