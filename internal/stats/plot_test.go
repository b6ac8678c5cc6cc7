package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestPlotScores(t *testing.T) {
	var buf bytes.Buffer
	err := PlotScores(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{60, 70, 80, 70, 60}},
		{Name: "B", Values: []float64{90, 90, 95, 95, 100}},
	}, 5, 4, false)
	if err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected 6 lines of output, got %d: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "100 │ ") {
		t.Fatalf("expected fixed top label, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "  0 │ ") {
		t.Fatalf("expected fixed bottom label, got %q", lines[4])
	}
}

func TestPlotPinsOutOfRangeValues(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, "", []Series{{Name: "X", Values: []float64{150, -20}}}, 10, 2, false); err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	top := strings.TrimPrefix(lines[0], "100 │ ")
	bottom := strings.TrimPrefix(lines[1], "  0 │ ")
	if strings.Trim(top, "\u2800") == "" || strings.Trim(bottom, "\u2800") == "" {
		t.Fatalf("expected dots on both edge rows: %q", buf.String())
	}
}

func TestPlotSkipsEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotScores(&buf, "Empty", []Series{{Name: "A"}}, 10, 4, false); err != nil {
		t.Fatalf("PlotScores failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + runewidth.StringWidth(axisSeparator)
	if got := PlotWidthFor(80); got != 80-axisWidth {
		t.Fatalf("expected width %d, got %d", 80-axisWidth, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestResample(t *testing.T) {
	got := resample([]float64{0, 10}, 3)
	if got[0] != 0 || got[1] != 5 || got[2] != 10 {
		t.Fatalf("unexpected stretch: %v", got)
	}
	got = resample([]float64{1, 3, 5, 7}, 2)
	if got[0] != 2 || got[1] != 6 {
		t.Fatalf("unexpected buckets: %v", got)
	}
}

func TestDotBit(t *testing.T) {
	var mask uint8
	for col := 0; col < 2; col++ {
		for row := 0; row < 4; row++ {
			mask |= dotBit(col, row)
		}
	}
	if mask != 0xff {
		t.Fatalf("expected all eight dots, got %#x", mask)
	}
}
