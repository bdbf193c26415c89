package results

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(stageID, riderID string, start TimeOfDay, finish TimeOfDay, cps ...SegmentTime) Registration {
	return Registration{StageID: stageID, RiderID: riderID, Start: start, Checkpoints: cps, Finish: finish}
}

func TestMemStore_CommitAndFind(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	require.NoError(t, s.InitSchema(ctx))

	reg := registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 0)})
	require.NoError(t, s.Commit(ctx, reg))

	got, err := s.Find(ctx, "s1", "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ClockTime(12, 0, 0), got.Start.Time)
	assert.Equal(t, ClockTime(15, 0, 0), got.Finish.Time)

	cp, err := s.FindAtSegment(ctx, "seg1", "r1")
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, ClockTime(13, 0, 0), cp.Time)
}

func TestMemStore_FindNotFound(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	got, err := s.Find(ctx, "nope", "r1")
	require.NoError(t, err)
	assert.Nil(t, got)

	cp, err := s.FindAtSegment(ctx, "nope", "r1")
	require.NoError(t, err)
	assert.Nil(t, cp)

	starts, err := s.Starts(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, starts)
}

func TestMemStore_DuplicateCommitLeavesStoreUnchanged(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	first := registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 0)})
	require.NoError(t, s.Commit(ctx, first))

	again := registration("s1", "r1", ClockTime(12, 0, 1), ClockTime(15, 0, 1),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 1)})
	err := s.Commit(ctx, again)
	require.ErrorIs(t, err, ErrDuplicateResult)

	finishes, err := s.Finishes(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, finishes, 1)
	assert.Equal(t, ClockTime(15, 0, 0), finishes[0].Time)

	cps, err := s.Checkpoints(ctx, "seg1")
	require.NoError(t, err)
	require.Len(t, cps, 1)
}

func TestMemStore_RepeatedSegmentIsRejectedAtomically(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	reg := registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 0)},
		SegmentTime{SegmentID: "seg1", Time: ClockTime(14, 0, 0)})
	require.ErrorIs(t, s.Commit(ctx, reg), ErrDuplicateResult)

	starts, err := s.Starts(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, starts, "no partial registration")
}

func TestMemStore_RemoveAllIsIdempotent(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 0)})))
	require.NoError(t, s.Commit(ctx, registration("s1", "r2", ClockTime(12, 0, 0), ClockTime(15, 1, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 1, 0)})))

	require.NoError(t, s.RemoveAll(ctx, "s1", "r1"))
	require.NoError(t, s.RemoveAll(ctx, "s1", "r1"))
	require.NoError(t, s.RemoveAll(ctx, "unknown-stage", "r1"))

	finishes, err := s.Finishes(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, riderOrder(finishes))

	cps, err := s.Checkpoints(ctx, "seg1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, riderOrder(cps))

	stages, err := s.StagesForRider(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, stages)
}

func TestMemStore_ReverseIndex(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, registration("s2", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0))))
	require.NoError(t, s.Commit(ctx, registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0))))
	require.NoError(t, s.Commit(ctx, registration("s1", "r2", ClockTime(12, 0, 0), ClockTime(15, 0, 0))))

	stages, err := s.StagesForRider(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, stages)

	require.NoError(t, s.DropStage(ctx, "s1"))

	stages, err = s.StagesForRider(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s2"}, stages)

	stages, err = s.StagesForRider(ctx, "r2")
	require.NoError(t, err)
	assert.Empty(t, stages)
}

func TestMemStore_DropSegment(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, registration("s1", "r1", ClockTime(12, 0, 0), ClockTime(15, 0, 0),
		SegmentTime{SegmentID: "seg1", Time: ClockTime(13, 0, 0)})))
	require.NoError(t, s.DropSegment(ctx, "seg1"))
	require.NoError(t, s.DropSegment(ctx, "seg1"))

	cps, err := s.Checkpoints(ctx, "seg1")
	require.NoError(t, err)
	assert.Empty(t, cps)

	got, err := s.Find(ctx, "s1", "r1")
	require.NoError(t, err)
	assert.NotNil(t, got, "start and finish survive a segment drop")
}
