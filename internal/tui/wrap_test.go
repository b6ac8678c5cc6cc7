package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesMarksWeakSounds(t *testing.T) {
	runes := buildStyledRunes("The rat", []string{"th", "r"})
	if len(runes) != 7 {
		t.Fatalf("expected 7 runes, got %d", len(runes))
	}
	if runes[0].s != weakStyle.Render("T") || runes[1].s != weakStyle.Render("h") {
		t.Fatalf("expected weak style for case-insensitive th")
	}
	if runes[2].s != promptStyle.Render("e") {
		t.Fatalf("expected prompt style for e")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected space to be marked")
	}
	if runes[4].s != weakStyle.Render("r") {
		t.Fatalf("expected weak style for r")
	}
}

func TestBuildStyledRunesNoWeakSounds(t *testing.T) {
	runes := buildStyledRunes("ab", nil)
	for i, r := range runes {
		if r.s != promptStyle.Render(string("ab"[i])) {
			t.Fatalf("expected prompt style at %d", i)
		}
	}
}

func TestWeakMaskOverlaps(t *testing.T) {
	mask := weakMask([]rune("worth"), []string{"or", "rt", ""})
	want := []bool{false, true, true, true, false}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("unexpected mask: %v", mask)
		}
	}
}

func TestWrapStyledRunesWrapsAtSpaces(t *testing.T) {
	runes := buildStyledRunes("one two three", nil)
	wrapped := wrapStyledRunes(runes, 8)
	lines := strings.Split(wrapped, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), wrapped)
	}
	if lineWidthOf(buildStyledRunes("one two", nil)) != 7 {
		t.Fatalf("unexpected width")
	}
}

func TestWrapStyledRunesSplitsLongWords(t *testing.T) {
	runes := buildStyledRunes("abcdef", nil)
	wrapped := wrapStyledRunes(runes, 4)
	if strings.Count(wrapped, "\n") != 1 {
		t.Fatalf("expected one break, got %q", wrapped)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	runes := buildStyledRunes("日本 語", nil)
	if runes[0].width != 2 {
		t.Fatalf("expected wide rune width 2, got %d", runes[0].width)
	}
	wrapped := wrapStyledRunes(runes, 5)
	if strings.Count(wrapped, "\n") != 1 {
		t.Fatalf("expected one break, got %q", wrapped)
	}
}
