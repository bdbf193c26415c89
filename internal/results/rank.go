package results

import (
	"context"
	"sort"
	"time"
)

// rankedRider pairs a rider with their raw elapsed time.
type rankedRider struct {
	riderID string
	elapsed time.Duration
}

// Rank returns the stage's finishing order.
//
// On a mass-start stage the finish timeline already is the finishing order.
// On a time trial riders are ordered by finish minus start; riders with equal
// elapsed times keep their finish order.
func (e *Engine) Rank(ctx context.Context, stage StageView) ([]string, error) {
	finishes, err := e.store.Finishes(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	if !stage.Kind.IsTimeTrial() {
		ids := make([]string, len(finishes))
		for i, f := range finishes {
			ids[i] = f.RiderID
		}
		return ids, nil
	}

	ranked, err := e.timeTrialOrder(ctx, stage.ID, finishes)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.riderID
	}
	return ids, nil
}

// timeTrialOrder sorts riders holding both a start and a finish by elapsed
// time.
func (e *Engine) timeTrialOrder(ctx context.Context, stageID string, finishes []TimedEntry) ([]rankedRider, error) {
	starts, err := e.startTimes(ctx, stageID)
	if err != nil {
		return nil, err
	}
	ranked := make([]rankedRider, 0, len(finishes))
	for _, f := range finishes {
		start, ok := starts[f.RiderID]
		if !ok {
			continue
		}
		ranked = append(ranked, rankedRider{riderID: f.RiderID, elapsed: f.Time.Sub(start)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].elapsed < ranked[j].elapsed
	})
	return ranked, nil
}

// startTimes indexes the stage's start timeline by rider.
func (e *Engine) startTimes(ctx context.Context, stageID string) (map[string]TimeOfDay, error) {
	starts, err := e.store.Starts(ctx, stageID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]TimeOfDay, len(starts))
	for _, s := range starts {
		out[s.RiderID] = s.Time
	}
	return out, nil
}
