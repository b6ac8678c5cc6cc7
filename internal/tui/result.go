package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// displayThreshold hides pronunciation findings that scored this high or better.
const displayThreshold = 85

// renderResult lays out scores and findings for a saved session.
func renderResult(ps model.PracticeSession, width int) string {
	paragraph := lipgloss.NewStyle()
	if width > 0 {
		paragraph = paragraph.Width(width)
	}
	s := ps.Scores
	lines := []string{
		sectionStyle.Render("Scores"),
		fmt.Sprintf("%s %s  %s %s  %s %s  %s %s  %s",
			labelStyle.Render("Overall"), scoreStyle(s.Overall).Render(fmt.Sprint(s.Overall)),
			labelStyle.Render("Pronunciation"), scoreStyle(s.Pronunciation).Render(fmt.Sprint(s.Pronunciation)),
			labelStyle.Render("Grammar"), scoreStyle(s.Grammar).Render(fmt.Sprint(s.Grammar)),
			labelStyle.Render("Fluency"), scoreStyle(s.Fluency).Render(fmt.Sprint(s.Fluency)),
			labelStyle.Render(fmt.Sprintf("+%d XP", ps.XPGained)),
		),
		"",
		paragraph.Render(ps.Feedback.Overall),
		"",
		sectionStyle.Render("You said"),
		paragraph.Render(ps.Transcript),
	}
	lines = append(lines, renderFindings(ps.Feedback, paragraph)...)
	return strings.Join(lines, "\n")
}

func renderFindings(fb model.Feedback, paragraph lipgloss.Style) []string {
	var lines []string
	pron := displayedPronunciation(fb.Pronunciation)
	if len(pron) > 0 {
		lines = append(lines, "", sectionStyle.Render("Pronunciation"))
		for _, p := range pron {
			line := fmt.Sprintf("%s %s", p.Word, scoreStyle(p.Score).Render(fmt.Sprint(p.Score)))
			if p.PhoneticCorrection != "" {
				line += "  " + labelStyle.Render(p.PhoneticCorrection)
			}
			lines = append(lines, line, paragraph.Render("  "+p.Suggestion))
		}
	}
	if len(fb.Grammar) > 0 {
		lines = append(lines, "", sectionStyle.Render("Grammar"))
		for _, g := range fb.Grammar {
			lines = append(lines,
				fmt.Sprintf("%q -> %q", g.Error, g.Correction),
				paragraph.Render("  "+g.Explanation),
			)
		}
	}
	if len(fb.Vocabulary) > 0 {
		lines = append(lines, "", sectionStyle.Render("Vocabulary"))
		for _, v := range fb.Vocabulary {
			lines = append(lines, fmt.Sprintf("%s -> %s", v.Word, strings.Join(v.Alternatives, ", ")))
		}
	}
	return lines
}

// renderMessage shows feedback that carries no findings, such as no speech.
func renderMessage(message string, width int) string {
	style := errorStyle
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(message)
}

func displayedPronunciation(findings []model.PronunciationFinding) []model.PronunciationFinding {
	out := make([]model.PronunciationFinding, 0, len(findings))
	for _, f := range findings {
		if f.Score < displayThreshold {
			out = append(out, f)
		}
	}
	return out
}

// flaggedWords lists words that received rule guidance, without repeats.
func flaggedWords(findings []model.PronunciationFinding) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range findings {
		if f.PhoneticCorrection == "" || seen[f.Word] {
			continue
		}
		seen[f.Word] = true
		out = append(out, f.Word)
	}
	return out
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 90:
		return goodScoreStyle
	case score >= 70:
		return fairScoreStyle
	default:
		return errorStyle
	}
}
