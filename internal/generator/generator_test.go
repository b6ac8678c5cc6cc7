package generator

import (
	"testing"

	"github.com/verte-zerg/tuispeak/internal/analysis"
)

func TestPick(t *testing.T) {
	g := NewWithSeed(1)
	if got := g.Pick(nil); got != "" {
		t.Fatalf("expected empty pick, got %q", got)
	}
	prompts := []string{"a", "b", "c"}
	for i := 0; i < 50; i++ {
		got := g.Pick(prompts)
		if got != "a" && got != "b" && got != "c" {
			t.Fatalf("unexpected prompt %q", got)
		}
	}
}

func TestPickWeightedFavorsWeakSounds(t *testing.T) {
	g := NewWithSeed(42)
	prompts := []string{"cat sat mat", "three thin thorns"}
	counts := map[string]int{}
	for i := 0; i < 2000; i++ {
		counts[g.PickWeighted(prompts, []string{"th"}, 5)]++
	}
	// weights 1 and 16
	if counts["three thin thorns"] < 1600 {
		t.Fatalf("expected weak prompt to dominate, got %v", counts)
	}
	if counts["cat sat mat"] == 0 {
		t.Fatalf("expected other prompt to still appear, got %v", counts)
	}
}

func TestPickWeightedWithoutWeakSounds(t *testing.T) {
	g := NewWithSeed(3)
	if got := g.PickWeighted([]string{"only"}, nil, 3); got != "only" {
		t.Fatalf("unexpected prompt %q", got)
	}
	if got := g.PickWeighted(nil, []string{"r"}, 3); got != "" {
		t.Fatalf("expected empty pick, got %q", got)
	}
}

func TestWeakOccurrences(t *testing.T) {
	if got := WeakOccurrences("The Three Rivers", []string{"th", "r", ""}); got != 5 {
		t.Fatalf("expected 5 occurrences, got %d", got)
	}
}

func TestJitterBounds(t *testing.T) {
	j := NewWithSeed(7).NewJitter()
	for i := 0; i < 200; i++ {
		v := j.BaseScore("word")
		if v < analysis.MinBaseScore || v > analysis.MaxBaseScore {
			t.Fatalf("base %v out of range", v)
		}
	}
	var _ analysis.BaseScorer = j
}
