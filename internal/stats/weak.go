package stats

import (
	"github.com/verte-zerg/tuispeak/internal/model"
)

// SelectWeakSounds returns up to top sounds ordered from weakest.
// Sounds that were never flagged are not weak. top <= 0 means no limit.
func SelectWeakSounds(aggs []model.SoundAggregate, top int) []string {
	candidates := make([]model.SoundAggregate, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Flagged > 0 && agg.Sound != "" {
			candidates = append(candidates, agg)
		}
	}
	sortByWeakness(candidates)
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	out := make([]string, 0, top)
	for _, agg := range candidates[:top] {
		out = append(out, agg.Sound)
	}
	return out
}
