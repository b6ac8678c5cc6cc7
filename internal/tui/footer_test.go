package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		config:      model.Config{FocusWeak: true},
		weakSounds:  []string{"th", "r"},
		hasLast:     true,
		lastOverall: 87,
		overallSum:  250,
		sessions:    3,
		totalXP:     1500,
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Last 87", "Avg 83.3 over 3", "XP 1500", "Level 2", "Weak th, r"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	out := (&Model{}).renderFooter()
	if strings.Contains(out, "Last") || !strings.Contains(out, "XP 0 · Level 1") {
		t.Fatalf("unexpected footer: %s", out)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
