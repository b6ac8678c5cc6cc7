package stats

import (
	"context"

	"github.com/verte-zerg/tuispeak/internal/model"
	"github.com/verte-zerg/tuispeak/internal/store"
)

const weakWordLimit = 20

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions         []model.SessionAggregate
	WindowSessionIDs []int64
	SoundAggsAll     []model.SoundAggregate
	SoundAggsWindow  []model.SoundAggregate
	WeakWords        []model.WordAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	allIDs := sessionIDs(sessions)
	windowIDs := lastSessionIDs(sessions, cfg.CurveWindow)
	soundAggsAll, err := st.ListSoundAggregatesForSessions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	soundAggsWindow, err := st.ListSoundAggregatesForSessions(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	weakWords, err := st.ListWeakWords(ctx, windowIDs, weakWordLimit)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Sessions:         sessions,
		WindowSessionIDs: windowIDs,
		SoundAggsAll:     soundAggsAll,
		SoundAggsWindow:  soundAggsWindow,
		WeakWords:        weakWords,
	}, nil
}

// SessionIDs returns the ids of the report's sessions in order.
func (r Report) SessionIDs() []int64 {
	return sessionIDs(r.Sessions)
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}

func lastSessionIDs(sessions []model.SessionAggregate, window int) []int64 {
	if window <= 0 || len(sessions) <= window {
		return sessionIDs(sessions)
	}
	return sessionIDs(sessions[len(sessions)-window:])
}
