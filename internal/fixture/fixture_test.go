package fixture

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/results"
)

func newTestPortal(t *testing.T) *portal.Portal {
	t.Helper()
	store := results.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })
	return portal.New(store,
		portal.WithAllocator(ids.NewSequenceAllocator()),
		portal.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// Tests run from internal/fixture/, so the relative path is ../../testdata/...
func applyTour(t *testing.T) (*portal.Portal, *Applied) {
	t.Helper()
	f, err := Load("../../testdata/fixtures/tour.yaml")
	require.NoError(t, err)
	p := newTestPortal(t)
	applied, err := f.Apply(context.Background(), p)
	require.NoError(t, err)
	return p, applied
}

func TestApply_Tour(t *testing.T) {
	p, a := applyTour(t)
	ctx := context.Background()

	assert.Len(t, a.Teams, 2)
	assert.Len(t, a.Riders, 6)
	n, err := p.NumberOfStages(a.RaceID)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	details, err := p.RaceDetails(a.RaceID)
	require.NoError(t, err)
	assert.InDelta(t, 494.5, details.TotalLength, 1e-9)

	final, err := p.Stage(a.Stages["final-flat"])
	require.NoError(t, err)
	assert.Equal(t, course.StatePreparation, final.State)

	mountain, err := p.StageSegments(a.Stages["high-mountain"])
	require.NoError(t, err)
	assert.Len(t, mountain, 3)

	_, err = p.Rank(ctx, a.Stages["chrono"])
	require.NoError(t, err)
}

func TestApply_OpeningFlatClassification(t *testing.T) {
	p, a := applyTour(t)
	ctx := context.Background()
	stage := a.Stages["opening-flat"]
	r := a.Riders

	rank, err := p.Rank(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{r["Alice"], r["Bea"], r["Cleo"], r["Dana"], r["Edie"], r["Fay"]}, rank)

	// Bea and Cleo each finish under a second behind the rider ahead.
	cleo, ok, err := p.AdjustedElapsed(ctx, stage, r["Cleo"])
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4*time.Hour+30*time.Minute, cleo)

	points, err := p.PointsInStage(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []int{65, 50, 33, 35, 27, 24}, points)
}

func TestApply_TimeTrialRanksByElapsed(t *testing.T) {
	p, a := applyTour(t)
	r := a.Riders

	rank, err := p.Rank(context.Background(), a.Stages["chrono"])
	require.NoError(t, err)
	assert.Equal(t, []string{r["Dana"], r["Bea"], r["Edie"], r["Fay"]}, rank)

	points, err := p.PointsInStage(context.Background(), a.Stages["chrono"])
	require.NoError(t, err)
	assert.Equal(t, []int{20, 17, 15, 13}, points)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("race:\n  name: Tour\n  laps: 3\n"))
	assert.Error(t, err)
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown rider",
			doc: `
race: {name: Tour}
stages:
  - {name: one, kind: flat, length: 100, results: [{rider: Ghost, times: ["12:00:00", "15:00:00"]}]}
`,
			want: results.ErrUnknownRider,
		},
		{
			name: "results in preparation",
			doc: `
race: {name: Tour}
teams: [{name: Jumbo, riders: [{name: Alice, yearOfBirth: 1995}]}]
stages:
  - {name: one, kind: flat, length: 100, preparation: true, results: [{rider: Alice, times: ["12:00:00", "15:00:00"]}]}
`,
			want: results.ErrWrongStageState,
		},
		{
			name: "wrong checkpoint count",
			doc: `
race: {name: Tour}
teams: [{name: Jumbo, riders: [{name: Alice, yearOfBirth: 1995}]}]
stages:
  - {name: one, kind: flat, length: 100, sprints: [50], results: [{rider: Alice, times: ["12:00:00", "15:00:00"]}]}
`,
			want: results.ErrWrongCheckpointCount,
		},
		{
			name: "segment on time trial",
			doc: `
race: {name: Tour}
stages:
  - {name: tt, kind: time-trial, length: 30, sprints: [10]}
`,
			want: results.ErrWrongStageKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			_, err = f.Apply(context.Background(), newTestPortal(t))
			require.ErrorIs(t, err, tt.want)
		})
	}
}
