package results

import "context"

// Finish-line payouts by stage kind, first place first.
var stagePointsTable = map[StageKind][]int{
	KindFlat:           {50, 30, 20, 18, 16, 14, 12, 10, 8, 7, 6, 5, 4, 3, 2},
	KindMediumMountain: {30, 25, 22, 19, 17, 15, 13, 11, 9, 7, 6, 5, 4, 3, 2},
	KindHighMountain:   {20, 17, 15, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
	KindTimeTrial:      {20, 17, 15, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
}

// intermediateSprintPoints pays the first riders across a sprint checkpoint.
var intermediateSprintPoints = []int{20, 17, 15, 13, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}

// Mountain payouts by climb category.
var mountainPointsTable = map[SegmentType][]int{
	SegmentHC: {20, 15, 12, 10, 8, 6, 4, 2},
	SegmentC1: {10, 8, 6, 4, 2, 1},
	SegmentC2: {5, 3, 2, 1},
	SegmentC3: {2, 1},
	SegmentC4: {1},
}

// StagePoints returns the finish-line payout table for a stage kind.
func StagePoints(kind StageKind) []int {
	return append([]int(nil), stagePointsTable[kind]...)
}

// MountainPoints returns the payout table for a climb category, or nil for a
// sprint.
func MountainPoints(t SegmentType) []int {
	return append([]int(nil), mountainPointsTable[t]...)
}

// PointsInStage returns stage and intermediate-sprint points aligned with
// Rank.
//
// A time trial pays by rank position. A mass-start stage pays by arrival at
// the finish line and, for every sprint segment, by arrival at its
// checkpoint. Points from every source add up per rider.
func (e *Engine) PointsInStage(ctx context.Context, stage StageView) ([]int, error) {
	rank, err := e.Rank(ctx, stage)
	if err != nil {
		return nil, err
	}
	tally := newTally(rank)
	table := stagePointsTable[stage.Kind]

	if stage.Kind.IsTimeTrial() {
		for i, riderID := range rank {
			if i == len(table) {
				break
			}
			tally.award(riderID, table[i])
		}
		return tally.points, nil
	}

	finishes, err := e.store.Finishes(ctx, stage.ID)
	if err != nil {
		return nil, err
	}
	tally.awardInOrder(finishes, table)

	for _, seg := range stage.Segments {
		if seg.Type != SegmentSprint {
			continue
		}
		arrivals, err := e.store.Checkpoints(ctx, seg.ID)
		if err != nil {
			return nil, err
		}
		tally.awardInOrder(arrivals, intermediateSprintPoints)
	}
	return tally.points, nil
}

// MountainPointsInStage returns mountain points aligned with Rank. Every
// climb pays its category table by checkpoint arrival order.
func (e *Engine) MountainPointsInStage(ctx context.Context, stage StageView) ([]int, error) {
	rank, err := e.Rank(ctx, stage)
	if err != nil {
		return nil, err
	}
	tally := newTally(rank)
	for _, seg := range stage.Segments {
		table, ok := mountainPointsTable[seg.Type]
		if !ok {
			continue
		}
		arrivals, err := e.store.Checkpoints(ctx, seg.ID)
		if err != nil {
			return nil, err
		}
		tally.awardInOrder(arrivals, table)
	}
	return tally.points, nil
}

// tally accumulates points into a slice aligned with a rank.
type tally struct {
	position map[string]int
	points   []int
}

func newTally(rank []string) *tally {
	t := &tally{
		position: make(map[string]int, len(rank)),
		points:   make([]int, len(rank)),
	}
	for i, id := range rank {
		t.position[id] = i
	}
	return t
}

// award adds pts to the rider; riders missing from the rank are skipped.
func (t *tally) award(riderID string, pts int) {
	if i, ok := t.position[riderID]; ok {
		t.points[i] += pts
	}
}

// awardInOrder pays table[i] to the rider of arrivals[i] while both last.
func (t *tally) awardInOrder(arrivals []TimedEntry, table []int) {
	for i, a := range arrivals {
		if i == len(table) {
			return
		}
		t.award(a.RiderID, table[i])
	}
}
