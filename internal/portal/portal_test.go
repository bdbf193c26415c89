package portal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/results"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type fixture struct {
	p      *Portal
	race   string
	team   string
	riders []string
}

func newTestPortal(t *testing.T) *Portal {
	t.Helper()
	store := results.NewMemStore()
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })
	return New(store,
		WithAllocator(ids.NewSequenceAllocator()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// newFixture creates one race and one team of n riders.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()
	p := newTestPortal(t)
	race, err := p.CreateRace("Tour", "")
	require.NoError(t, err)
	team, err := p.CreateTeam("Jumbo", "")
	require.NoError(t, err)
	f := &fixture{p: p, race: race, team: team}
	for i := 0; i < n; i++ {
		id, err := p.CreateRider(team, fmt.Sprintf("Rider%d", i), 1990)
		require.NoError(t, err)
		f.riders = append(f.riders, id)
	}
	return f
}

// stage adds a stage of the given kind with one sprint at 50km per sprints
// entry and concludes its preparation.
func (f *fixture) stage(t *testing.T, name string, kind results.StageKind, sprints int) string {
	t.Helper()
	id, err := f.p.AddStage(f.race, course.StageSpec{
		Name:      name,
		Length:    180,
		StartTime: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
		Kind:      kind,
	})
	require.NoError(t, err)
	for i := 0; i < sprints; i++ {
		_, err := f.p.AddSprint(id, float64(50*(i+1)))
		require.NoError(t, err)
	}
	require.NoError(t, f.p.ConcludePreparation(id))
	return id
}

func clock(t *testing.T, s ...string) []results.TimeOfDay {
	t.Helper()
	out := make([]results.TimeOfDay, len(s))
	for i, v := range s {
		var err error
		out[i], err = results.ParseTimeOfDay(v)
		require.NoError(t, err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

func TestPortal_RegisterAndRank(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	stage := f.stage(t, "one", results.KindFlat, 0)
	r := f.riders

	require.NoError(t, f.p.RegisterResult(ctx, stage, r[0], clock(t, "12:00:00", "15:00:00.5")...))
	require.NoError(t, f.p.RegisterResult(ctx, stage, r[1], clock(t, "12:00:00", "15:00:00")...))
	require.NoError(t, f.p.RegisterResult(ctx, stage, r[2], clock(t, "12:00:00", "15:00:03")...))

	rank, err := f.p.Rank(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{r[1], r[0], r[2]}, rank)

	times, err := f.p.RankedAdjustedElapsedTimes(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3 * time.Hour, 3 * time.Hour, 3*time.Hour + 3*time.Second}, times)

	adj, ok, err := f.p.AdjustedElapsed(ctx, stage, r[0])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3*time.Hour, adj)

	points, err := f.p.PointsInStage(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []int{50, 30, 20}, points)

	mountain, err := f.p.MountainPointsInStage(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, mountain)
}

func TestPortal_RegisterErrors(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	ready := f.stage(t, "ready", results.KindFlat, 1)
	prep, err := f.p.AddStage(f.race, course.StageSpec{Name: "prep", Length: 100, Kind: results.KindFlat})
	require.NoError(t, err)
	rider := f.riders[0]
	good := clock(t, "12:00:00", "13:00:00", "15:00:00")

	tests := []struct {
		name  string
		stage string
		rider string
		times []results.TimeOfDay
		want  error
	}{
		{"unknown stage", "stage-99", rider, good, results.ErrUnknownStage},
		{"unknown rider", ready, "rider-99", good, results.ErrUnknownRider},
		{"in preparation", prep, rider, clock(t, "12:00:00", "15:00:00"), results.ErrWrongStageState},
		{"too few times", ready, rider, good[:2], results.ErrWrongCheckpointCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.p.RegisterResult(ctx, tt.stage, tt.rider, tt.times...)
			require.ErrorIs(t, err, tt.want)
		})
	}

	require.NoError(t, f.p.RegisterResult(ctx, ready, rider, good...))
	require.ErrorIs(t, f.p.RegisterResult(ctx, ready, rider, good...), results.ErrDuplicateResult)
}

func TestPortal_DeleteResult(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	stage := f.stage(t, "one", results.KindFlat, 0)
	r := f.riders

	require.NoError(t, f.p.RegisterResult(ctx, stage, r[0], clock(t, "12:00:00", "15:00:00")...))
	require.NoError(t, f.p.RegisterResult(ctx, stage, r[1], clock(t, "12:00:00", "15:01:00")...))

	require.NoError(t, f.p.DeleteResult(ctx, stage, r[0]))
	require.NoError(t, f.p.DeleteResult(ctx, stage, r[0]))

	rank, err := f.p.Rank(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{r[1]}, rank)

	assert.ErrorIs(t, f.p.DeleteResult(ctx, "stage-99", r[0]), results.ErrUnknownStage)
	assert.ErrorIs(t, f.p.DeleteResult(ctx, stage, "rider-99"), results.ErrUnknownRider)
}

func TestPortal_RiderResults(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	stage := f.stage(t, "one", results.KindFlat, 2)
	r := f.riders

	require.NoError(t, f.p.RegisterResult(ctx, stage, r[0], clock(t, "12:00:00", "13:00:00", "14:00:00", "15:30:00")...))

	got, found, err := f.p.RiderResults(ctx, stage, r[0])
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, clock(t, "13:00:00", "14:00:00"), got.Checkpoints)
	assert.Equal(t, 3*time.Hour+30*time.Minute, got.Elapsed)

	_, found, err = f.p.RiderResults(ctx, stage, r[1])
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = f.p.RiderResults(ctx, stage, "rider-99")
	assert.ErrorIs(t, err, results.ErrUnknownRider)
}

func TestPortal_AdjustedElapsedErrors(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	stage := f.stage(t, "one", results.KindFlat, 0)

	_, _, err := f.p.AdjustedElapsed(ctx, "stage-99", f.riders[0])
	assert.ErrorIs(t, err, results.ErrUnknownStage)
	_, _, err = f.p.AdjustedElapsed(ctx, stage, "rider-99")
	assert.ErrorIs(t, err, results.ErrUnknownRider)

	_, ok, err := f.p.AdjustedElapsed(ctx, stage, f.riders[0])
	require.NoError(t, err)
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------
// Cascades
// ---------------------------------------------------------------------------

func TestPortal_RemoveRiderDropsResults(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	s1 := f.stage(t, "one", results.KindFlat, 1)
	s2 := f.stage(t, "two", results.KindTimeTrial, 0)
	r := f.riders

	for _, rid := range r {
		require.NoError(t, f.p.RegisterResult(ctx, s1, rid, clock(t, "12:00:00", "13:00:00", "15:00:00")...))
		require.NoError(t, f.p.RegisterResult(ctx, s2, rid, clock(t, "12:00:00", "12:40:00")...))
	}

	require.NoError(t, f.p.RemoveRider(ctx, r[0]))
	for _, sid := range []string{s1, s2} {
		rank, err := f.p.Rank(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, []string{r[1]}, rank, sid)
	}
	assert.ErrorIs(t, f.p.RemoveRider(ctx, r[0]), results.ErrUnknownRider)

	require.NoError(t, f.p.RemoveTeam(ctx, f.team))
	rank, err := f.p.Rank(ctx, s1)
	require.NoError(t, err)
	assert.Empty(t, rank)
	assert.Empty(t, f.p.TeamIDs())
}

func TestPortal_RemoveStageAndRace(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	s1 := f.stage(t, "one", results.KindFlat, 1)
	s2 := f.stage(t, "two", results.KindFlat, 0)
	rider := f.riders[0]
	require.NoError(t, f.p.RegisterResult(ctx, s1, rider, clock(t, "12:00:00", "13:00:00", "15:00:00")...))
	require.NoError(t, f.p.RegisterResult(ctx, s2, rider, clock(t, "12:00:00", "15:00:00")...))

	require.NoError(t, f.p.RemoveStage(ctx, s1))
	_, err := f.p.Rank(ctx, s1)
	assert.ErrorIs(t, err, results.ErrUnknownStage)

	n, err := f.p.NumberOfStages(f.race)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, f.p.RemoveRace(ctx, f.race))
	assert.Empty(t, f.p.RaceIDs())
	_, err = f.p.Stage(s2)
	assert.ErrorIs(t, err, results.ErrUnknownStage)

	// The rider no longer has results anywhere, so removing them touches no stage.
	require.NoError(t, f.p.RemoveRider(ctx, rider))
}

func TestPortal_SegmentsFrozenAfterPreparation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	stage, err := f.p.AddStage(f.race, course.StageSpec{Name: "one", Length: 120, Kind: results.KindHighMountain})
	require.NoError(t, err)

	climb, err := f.p.AddClimb(stage, course.ClimbSpec{Location: 110, Type: results.SegmentHC, AverageGradient: 7.5, Length: 10})
	require.NoError(t, err)
	sprint, err := f.p.AddSprint(stage, 60)
	require.NoError(t, err)

	segs, err := f.p.StageSegments(stage)
	require.NoError(t, err)
	assert.Equal(t, []string{sprint, climb}, segs)

	require.NoError(t, f.p.RemoveSegment(ctx, sprint))
	require.NoError(t, f.p.ConcludePreparation(stage))
	assert.ErrorIs(t, f.p.RemoveSegment(ctx, climb), results.ErrWrongStageState)

	length, err := f.p.StageLength(stage)
	require.NoError(t, err)
	assert.InDelta(t, 120.0, length, 1e-9)
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestPortal_ConcurrentStages(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()
	stages := []string{
		f.stage(t, "one", results.KindFlat, 1),
		f.stage(t, "two", results.KindFlat, 1),
		f.stage(t, "three", results.KindFlat, 1),
	}

	var wg sync.WaitGroup
	for _, sid := range stages {
		for i, rid := range f.riders {
			wg.Add(1)
			go func(sid, rid string, i int) {
				defer wg.Done()
				finish := results.ClockTime(15, 0, i*2)
				assert.NoError(t, f.p.RegisterResult(ctx, sid, rid, results.ClockTime(12, 0, 0), results.ClockTime(13, 0, 0), finish))
				_, err := f.p.Rank(ctx, sid)
				assert.NoError(t, err)
			}(sid, rid, i)
		}
	}
	wg.Wait()

	for _, sid := range stages {
		rank, err := f.p.Rank(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, f.riders, rank)
	}
}
