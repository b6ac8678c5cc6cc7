package stats

import (
	"sort"

	"github.com/verte-zerg/tuispeak/internal/model"
)

// TopSoundsByFrequency returns the n sounds that occurred in the most words.
func TopSoundsByFrequency(aggs []model.SoundAggregate, n int) []string {
	if n <= 0 || len(aggs) == 0 {
		return nil
	}
	items := make([]model.SoundAggregate, len(aggs))
	copy(items, aggs)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Matched == items[j].Matched {
			return items[i].Sound < items[j].Sound
		}
		return items[i].Matched > items[j].Matched
	})
	n = min(n, len(items))
	out := make([]string, 0, n)
	for _, agg := range items[:n] {
		out = append(out, agg.Sound)
	}
	return out
}
