package results

import (
	"context"
	"fmt"
	"time"
)

// DefaultBunchGap is the largest gap to the rider ahead, exclusive, at which
// a mass-start finisher is still credited with the time of that rider.
const DefaultBunchGap = time.Second

// Engine derives ranks, adjusted times and points from a Store. It holds no
// per-stage state of its own; callers serialise writes and reads of the same
// stage.
type Engine struct {
	store    Store
	bunchGap time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithBunchGap overrides DefaultBunchGap.
func WithBunchGap(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.bunchGap = d
		}
	}
}

// NewEngine creates an Engine reading from and writing to store.
func NewEngine(store Store, opts ...EngineOption) *Engine {
	e := &Engine{store: store, bunchGap: DefaultBunchGap}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the backing store.
func (e *Engine) Store() Store {
	return e.store
}

// Register records a rider's times in a stage. times holds the start, one
// checkpoint per segment in location order, then the finish.
func (e *Engine) Register(ctx context.Context, stage StageView, riderID string, times []TimeOfDay) error {
	if want := len(stage.Segments) + 2; len(times) != want {
		return fmt.Errorf("stage %s: got %d times, want %d: %w", stage.ID, len(times), want, ErrWrongCheckpointCount)
	}
	reg := Registration{
		StageID:     stage.ID,
		RiderID:     riderID,
		Start:       times[0],
		Checkpoints: make([]SegmentTime, len(stage.Segments)),
		Finish:      times[len(times)-1],
	}
	for i, seg := range stage.Segments {
		reg.Checkpoints[i] = SegmentTime{SegmentID: seg.ID, Time: times[i+1]}
	}
	return e.store.Commit(ctx, reg)
}

// Delete removes the rider's result from the stage. It is a no-op when the
// rider has none.
func (e *Engine) Delete(ctx context.Context, stage StageView, riderID string) error {
	return e.store.RemoveAll(ctx, stage.ID, riderID)
}

// RiderResults returns the rider's checkpoint times in segment order followed
// by the elapsed time from start to finish. found is false when the rider has
// no result in the stage.
func (e *Engine) RiderResults(ctx context.Context, stage StageView, riderID string) (checkpoints []TimeOfDay, elapsed time.Duration, found bool, err error) {
	entries, err := e.store.Find(ctx, stage.ID, riderID)
	if err != nil || entries == nil {
		return nil, 0, false, err
	}
	checkpoints = make([]TimeOfDay, 0, len(stage.Segments))
	for _, seg := range stage.Segments {
		cp, err := e.store.FindAtSegment(ctx, seg.ID, riderID)
		if err != nil {
			return nil, 0, false, err
		}
		if cp == nil {
			return nil, 0, false, fmt.Errorf("stage %s rider %s: no checkpoint at segment %s", stage.ID, riderID, seg.ID)
		}
		checkpoints = append(checkpoints, cp.Time)
	}
	return checkpoints, entries.Finish.Time.Sub(entries.Start.Time), true, nil
}
