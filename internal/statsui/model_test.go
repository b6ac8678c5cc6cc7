package statsui

import (
	"testing"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestParseSounds(t *testing.T) {
	got := parseSounds(" TH, r  l,th\t")
	want := []string{"th", "r", "l"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(parseSounds(" , ")) != 0 {
		t.Fatalf("expected no sounds for separators only")
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct {
		in, next, prev int
	}{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("next(%d): expected %d, got %d", c.in, c.next, got)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prev(%d): expected %d, got %d", c.in, c.prev, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	base := model.StatsConfig{CurveWindow: 5, Sounds: "th"}
	cfg, err := parseFilter(base, []string{"ana", "2026-01-02", "10", "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.User != "ana" || cfg.Last != 10 || cfg.CurveWindow != 3 || cfg.Sounds != "th" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2026-01-02" {
		t.Fatalf("unexpected since: %v", cfg.Since)
	}

	bad := [][]string{
		{"", "01/02/2026", "", ""},
		{"", "", "-1", ""},
		{"", "", "", "0"},
		{"", "", "", "x"},
	}
	for _, values := range bad {
		if _, err := parseFilter(base, values); err == nil {
			t.Fatalf("expected error for %v", values)
		}
	}
}

func TestFitLines(t *testing.T) {
	out := fitLines("a\nb\nc", 3, 2)
	if out != "a  \nb  " {
		t.Fatalf("unexpected fit: %q", out)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
}

func TestBuildSoundTableOrdersWeakFirst(t *testing.T) {
	aggs := []model.SoundAggregate{
		{Sound: "l", Matched: 4, Flagged: 0, ScoreSum: 340},
		{Sound: "th", Matched: 4, Flagged: 2, ScoreSum: 300},
	}
	tbl := buildSoundTable(aggs, 60, 10)
	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "th" || rows[0][2] != "50.00%" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
}
