// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/session"
)

const sparkChars = " .:-=+*#%@"

// shortIDLen is enough of a session id to pass to show.
const shortIDLen = 8

// Summary holds headline numbers over a set of sessions.
type Summary struct {
	Sessions         int
	AvgOverall       float64
	AvgPronunciation float64
	AvgGrammar       float64
	AvgFluency       float64
	BestOverall      int
	TotalXP          int
	Level            int
	PracticeSeconds  int
}

// Summarize computes headline numbers for sessions.
func Summarize(sessions []model.SessionAggregate) Summary {
	sum := Summary{Sessions: len(sessions), Level: session.Level(0)}
	if len(sessions) == 0 {
		return sum
	}
	var overall, pron, grammar, fluency float64
	for _, s := range sessions {
		overall += float64(s.Scores.Overall)
		pron += float64(s.Scores.Pronunciation)
		grammar += float64(s.Scores.Grammar)
		fluency += float64(s.Scores.Fluency)
		sum.TotalXP += s.XP
		sum.PracticeSeconds += s.DurationSeconds
		if s.Scores.Overall > sum.BestOverall {
			sum.BestOverall = s.Scores.Overall
		}
	}
	n := float64(len(sessions))
	sum.AvgOverall = overall / n
	sum.AvgPronunciation = pron / n
	sum.AvgGrammar = grammar / n
	sum.AvgFluency = fluency / n
	sum.Level = session.Level(sum.TotalXP)
	return sum
}

// AvgScore is the mean pronunciation score of words containing the sound.
func AvgScore(agg model.SoundAggregate) float64 {
	if agg.Matched == 0 {
		return 0
	}
	return float64(agg.ScoreSum) / float64(agg.Matched)
}

// FlagRate is the share of matching words that were flagged, in [0,1].
func FlagRate(agg model.SoundAggregate) float64 {
	if agg.Matched == 0 {
		return 0
	}
	return float64(agg.Flagged) / float64(agg.Matched)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[min(max(idx, 0), last)])
	}
	return b.String()
}

// OverallSeries returns the overall score of each session in order.
func OverallSeries(sessions []model.SessionAggregate) []float64 {
	out := make([]float64, len(sessions))
	for i, s := range sessions {
		out[i] = float64(s.Scores.Overall)
	}
	return out
}

// RenderSummary prints a summary block for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Avg Overall: %.1f", s.AvgOverall),
		fmt.Sprintf("Best Overall: %d", s.BestOverall),
		fmt.Sprintf("Avg Pronunciation: %.1f", s.AvgPronunciation),
		fmt.Sprintf("Avg Grammar: %.1f", s.AvgGrammar),
		fmt.Sprintf("Avg Fluency: %.1f", s.AvgFluency),
		fmt.Sprintf("Total XP: %d (level %d)", s.TotalXP, s.Level),
		fmt.Sprintf("Trend: %s", Sparkline(OverallSeries(sessions))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints score curves.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window int) error {
	return RenderCurvesWithSize(w, sessions, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints score curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, window, totalWidth, height int, useColor bool) error {
	if len(sessions) == 0 {
		return nil
	}
	overall := make([]float64, len(sessions))
	pron := make([]float64, len(sessions))
	grammar := make([]float64, len(sessions))
	fluency := make([]float64, len(sessions))
	for i, s := range sessions {
		overall[i] = float64(s.Scores.Overall)
		pron[i] = float64(s.Scores.Pronunciation)
		grammar[i] = float64(s.Scores.Grammar)
		fluency[i] = float64(s.Scores.Fluency)
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotScores(w, "Score Curves", []Series{
		{Name: "Overall", Values: MovingAverage(overall, window)},
		{Name: "Pronunciation", Values: MovingAverage(pron, window)},
		{Name: "Grammar", Values: MovingAverage(grammar, window)},
		{Name: "Fluency", Values: MovingAverage(fluency, window)},
	}, width, height, useColor)
}

// RenderSoundTable prints per-sound aggregates, most often flagged first.
func RenderSoundTable(w io.Writer, aggs []model.SoundAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No sound stats found.")
		return err
	}
	rows := SortByWeakness(aggs)

	if _, err := fmt.Fprintln(w, "Per-Sound (Windowed)"); err != nil {
		return err
	}
	headers := []string{"Sound", "Avg Score", "Flag Rate", "Words", "Flagged"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Sound,
			fmt.Sprintf("%.1f", AvgScore(r)),
			fmt.Sprintf("%.2f%%", FlagRate(r)*100),
			fmt.Sprintf("%d", r.Matched),
			fmt.Sprintf("%d", r.Flagged),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSoundCurves prints per-sound curves.
func RenderSoundCurves(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.SoundAggregate, sounds []string, window int) error {
	return RenderSoundCurvesWithSize(w, sessions, perSession, sounds, window, 0, defaultPlotHeight, false)
}

// RenderSoundCurvesWithSize prints per-sound curves sized to a given total width.
// Sessions where a sound did not occur repeat the previous value.
func RenderSoundCurvesWithSize(w io.Writer, sessions []model.SessionAggregate, perSession map[int64]map[string]model.SoundAggregate, sounds []string, window, totalWidth, height int, useColor bool) error {
	if len(sounds) == 0 || len(sessions) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per-Sound Curves"); err != nil {
		return err
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	for _, sound := range sounds {
		scores := make([]float64, 0, len(sessions))
		flags := make([]float64, 0, len(sessions))
		for _, s := range sessions {
			agg, ok := perSession[s.SessionID][sound]
			switch {
			case ok && agg.Matched > 0:
				scores = append(scores, AvgScore(agg))
				flags = append(flags, FlagRate(agg)*100)
			case len(scores) > 0:
				scores = append(scores, scores[len(scores)-1])
				flags = append(flags, flags[len(flags)-1])
			}
		}
		if len(scores) == 0 {
			continue
		}
		if err := PlotScores(w, fmt.Sprintf("Sound %s", sound), []Series{
			{Name: "Avg Score", Values: MovingAverage(scores, window)},
			{Name: "Flag Rate %", Values: MovingAverage(flags, window)},
		}, width, height, useColor); err != nil {
			return err
		}
	}
	return nil
}

// RenderWeakWords prints flagged words grouped by how they sound.
func RenderWeakWords(w io.Writer, words []model.WordAggregate) error {
	if len(words) == 0 {
		_, err := fmt.Fprintln(w, "No weak words found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Weak Words"); err != nil {
		return err
	}
	headers := []string{"Sounds Like", "Words", "Times", "Avg Score"}
	rows := make([][]string, 0, len(words))
	for _, wa := range words {
		avg := 0.0
		if wa.Count > 0 {
			avg = float64(wa.ScoreSum) / float64(wa.Count)
		}
		rows = append(rows, []string{
			wa.PhoneticKey,
			strings.Join(wa.Words, ", "),
			fmt.Sprintf("%d", wa.Count),
			fmt.Sprintf("%.1f", avg),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SortByWeakness returns a copy of aggs with the weakest sounds first.
func SortByWeakness(aggs []model.SoundAggregate) []model.SoundAggregate {
	out := make([]model.SoundAggregate, len(aggs))
	copy(out, aggs)
	sortByWeakness(out)
	return out
}

// sortByWeakness orders by flag rate, then by lower average score, then by sound.
func sortByWeakness(aggs []model.SoundAggregate) {
	sort.Slice(aggs, func(i, j int) bool {
		fi, fj := FlagRate(aggs[i]), FlagRate(aggs[j])
		if fi != fj {
			return fi > fj
		}
		ai, aj := AvgScore(aggs[i]), AvgScore(aggs[j])
		if ai != aj {
			return ai < aj
		}
		return aggs[i].Sound < aggs[j].Sound
	})
}

// RenderHistory prints one row per session, oldest first.
func RenderHistory(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	headers := []string{"ID", "Date", "Overall", "Pron", "Grammar", "Fluency", "XP", "Duration"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		id := s.UID
		if len(id) > shortIDLen {
			id = id[:shortIDLen]
		}
		rows = append(rows, []string{
			id,
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", s.Scores.Overall),
			fmt.Sprintf("%d", s.Scores.Pronunciation),
			fmt.Sprintf("%d", s.Scores.Grammar),
			fmt.Sprintf("%d", s.Scores.Fluency),
			fmt.Sprintf("%d", s.XP),
			fmt.Sprintf("%ds", s.DurationSeconds),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
