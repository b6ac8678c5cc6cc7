package stats

import (
	"testing"

	"github.com/verte-zerg/tuispeak/internal/model"
)

func TestTopSoundsByFrequency(t *testing.T) {
	aggs := []model.SoundAggregate{
		{Sound: "th", Matched: 4},
		{Sound: "r", Matched: 4},
		{Sound: "w", Matched: 1},
	}
	top := TopSoundsByFrequency(aggs, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 sounds, got %d", len(top))
	}
	if top[0] != "r" || top[1] != "th" {
		t.Fatalf("unexpected order: %v", top)
	}
	if got := TopSoundsByFrequency(aggs, 0); got != nil {
		t.Fatalf("expected nil for n=0, got %v", got)
	}
}
