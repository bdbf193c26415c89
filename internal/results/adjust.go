package results

import (
	"context"
	"time"
)

// AdjustedElapsed returns the rider's elapsed time after the bunched-finish
// rule. ok is false when the rider has no start recorded in the stage.
//
// Time trials are never adjusted. On mass-start stages the rider is credited
// with the finish time of the first rider of their bunch: the chain of
// finishers each less than the bunch gap behind the one before.
func (e *Engine) AdjustedElapsed(ctx context.Context, stage StageView, riderID string) (elapsed time.Duration, ok bool, err error) {
	entries, err := e.store.Find(ctx, stage.ID, riderID)
	if err != nil || entries == nil {
		return 0, false, err
	}
	if stage.Kind.IsTimeTrial() {
		return entries.Finish.Time.Sub(entries.Start.Time), true, nil
	}

	finishes, err := e.store.Finishes(ctx, stage.ID)
	if err != nil {
		return 0, false, err
	}
	i := indexOfRider(finishes, riderID)
	if i < 0 {
		return entries.Finish.Time.Sub(entries.Start.Time), true, nil
	}
	lead := bunchLeader(finishes, i, e.bunchGap)
	return finishes[lead].Time.Sub(entries.Start.Time), true, nil
}

// RankedAdjustedElapsedTimes returns adjusted elapsed times aligned with
// Rank. Riders of one bunch share a time.
func (e *Engine) RankedAdjustedElapsedTimes(ctx context.Context, stage StageView) ([]time.Duration, error) {
	finishes, err := e.store.Finishes(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	if stage.Kind.IsTimeTrial() {
		ranked, err := e.timeTrialOrder(ctx, stage.ID, finishes)
		if err != nil {
			return nil, err
		}
		out := make([]time.Duration, len(ranked))
		for i, r := range ranked {
			out[i] = r.elapsed
		}
		return out, nil
	}

	starts, err := e.startTimes(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	out := make([]time.Duration, len(finishes))
	lead := 0
	for i, f := range finishes {
		if i == 0 || f.Time.Sub(finishes[i-1].Time) >= e.bunchGap {
			lead = i
		}
		out[i] = finishes[lead].Time.Sub(starts[f.RiderID])
	}
	return out, nil
}

// bunchLeader walks back from position i while the gap to the previous
// finisher stays under gap and returns the position it stops at.
func bunchLeader(finishes []TimedEntry, i int, gap time.Duration) int {
	for i > 0 && finishes[i].Time.Sub(finishes[i-1].Time) < gap {
		i--
	}
	return i
}

func indexOfRider(entries []TimedEntry, riderID string) int {
	for i, e := range entries {
		if e.RiderID == riderID {
			return i
		}
	}
	return -1
}
