package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/results"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPortal(t *testing.T) *portal.Portal {
	t.Helper()
	store := results.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })
	return portal.New(store, portal.WithAllocator(ids.NewSequenceAllocator()), portal.WithLogger(quietLogger()))
}

func startTestServer(t *testing.T) (*Client, string) {
	t.Helper()
	srv := NewServer(newTestPortal(t), quietLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL + "/"), ts.URL + "/"
}

func postRaw(t *testing.T, url, body string) Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func tod(t *testing.T, s string) results.TimeOfDay {
	t.Helper()
	v, err := results.ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

// ---------------------------------------------------------------------------
// Round trips
// ---------------------------------------------------------------------------

func TestClient_BuildRaceAndQueryResults(t *testing.T) {
	c, _ := startTestServer(t)
	ctx := context.Background()

	race, err := c.CreateRace(ctx, "Tour", "")
	require.NoError(t, err)
	stage, err := c.AddStage(ctx, race, course.StageSpec{
		Name: "one", Length: 150, Kind: results.KindFlat,
		StartTime: time.Date(2026, time.July, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	sprint, err := c.AddSprint(ctx, stage, 70)
	require.NoError(t, err)
	climb, err := c.AddClimb(ctx, stage, course.ClimbSpec{Location: 120, Type: results.SegmentC3, AverageGradient: 4, Length: 3})
	require.NoError(t, err)
	require.NoError(t, c.ConcludePreparation(ctx, stage))

	segs, err := c.StageSegments(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{sprint, climb}, segs)

	team, err := c.CreateTeam(ctx, "Jumbo", "")
	require.NoError(t, err)
	a, err := c.CreateRider(ctx, team, "Alice", 1995)
	require.NoError(t, err)
	b, err := c.CreateRider(ctx, team, "Bea", 1996)
	require.NoError(t, err)

	require.NoError(t, c.RegisterResult(ctx, stage, a,
		tod(t, "12:00:00"), tod(t, "13:40:00"), tod(t, "14:50:01"), tod(t, "15:30:00")))
	require.NoError(t, c.RegisterResult(ctx, stage, b,
		tod(t, "12:00:00"), tod(t, "13:39:59"), tod(t, "14:50:00"), tod(t, "15:30:00.75")))

	rank, err := c.Rank(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, rank)

	times, err := c.RankedAdjustedElapsedTimes(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{3*time.Hour + 30*time.Minute, 3*time.Hour + 30*time.Minute}, times)

	adj, ok, err := c.AdjustedElapsed(ctx, stage, b)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3*time.Hour+30*time.Minute, adj)

	points, err := c.PointsInStage(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []int{50 + 17, 30 + 20}, points)

	mountain, err := c.MountainPointsInStage(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, mountain)

	res, found, err := c.RiderResults(ctx, stage, b)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []results.TimeOfDay{tod(t, "13:39:59"), tod(t, "14:50:00")}, res.Checkpoints)
	assert.Equal(t, 3*time.Hour+30*time.Minute+750*time.Millisecond, res.Elapsed)

	require.NoError(t, c.DeleteResult(ctx, stage, a))
	rank, err = c.Rank(ctx, stage)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, rank)

	_, ok, err = c.AdjustedElapsed(ctx, stage, a)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_CourseAndRoster(t *testing.T) {
	c, _ := startTestServer(t)
	ctx := context.Background()

	race, err := c.CreateRace(ctx, "Tour", "desc")
	require.NoError(t, err)
	stage, err := c.AddStage(ctx, race, course.StageSpec{Name: "one", Length: 42.5, Kind: results.KindTimeTrial})
	require.NoError(t, err)

	races, err := c.RaceIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{race}, races)

	stages, err := c.RaceStages(ctx, race)
	require.NoError(t, err)
	assert.Equal(t, []string{stage}, stages)

	n, err := c.NumberOfStages(ctx, race)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	length, err := c.StageLength(ctx, stage)
	require.NoError(t, err)
	assert.InDelta(t, 42.5, length, 1e-9)

	details, err := c.RaceDetails(ctx, race)
	require.NoError(t, err)
	assert.Equal(t, "desc", details.Description)

	team, err := c.CreateTeam(ctx, "Jumbo", "")
	require.NoError(t, err)
	rider, err := c.CreateRider(ctx, team, "Alice", 1995)
	require.NoError(t, err)
	riders, err := c.TeamRiders(ctx, team)
	require.NoError(t, err)
	assert.Equal(t, []string{rider}, riders)

	require.NoError(t, c.RemoveRider(ctx, rider))
	require.NoError(t, c.RemoveTeam(ctx, team))
	teams, err := c.TeamIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, teams)

	require.NoError(t, c.RemoveStage(ctx, stage))
	require.NoError(t, c.RemoveRace(ctx, race))
	races, err = c.RaceIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, races)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

func TestClient_DomainErrorsCrossTheWire(t *testing.T) {
	c, _ := startTestServer(t)
	ctx := context.Background()

	_, err := c.Rank(ctx, "stage-9")
	require.ErrorIs(t, err, results.ErrUnknownStage)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, ErrCodeUnknownStage, rpcErr.Code)
	assert.Equal(t, MethodRank, rpcErr.Method)

	race, err := c.CreateRace(ctx, "Tour", "")
	require.NoError(t, err)
	_, err = c.CreateRace(ctx, "Tour", "")
	assert.ErrorIs(t, err, results.ErrDuplicateName)

	_, err = c.AddStage(ctx, race, course.StageSpec{Name: "short", Length: 3, Kind: results.KindFlat})
	assert.ErrorIs(t, err, results.ErrInvalidLength)

	_, err = c.CreateRider(ctx, "team-9", "Nobody", 1990)
	assert.ErrorIs(t, err, results.ErrUnknownTeam)
}

func TestCodeFor(t *testing.T) {
	for _, c := range errorCodes {
		assert.Equal(t, c.code, codeFor(c.err))
		assert.Equal(t, c.err, sentinelFor(c.code))
	}
	assert.Equal(t, ErrCodeInternal, codeFor(io.EOF))
	assert.Nil(t, sentinelFor(ErrCodeInternal))
}

func TestServer_ProtocolErrors(t *testing.T) {
	_, url := startTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"parse error", `{not json`, ErrCodeParse},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"results/rank"}`, ErrCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"tasks/get"}`, ErrCodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":1,"method":"results/rank","params":{"stageId":7}}`, ErrCodeInvalidParams},
		{"bad time", `{"jsonrpc":"2.0","id":1,"method":"results/register","params":{"stageId":"s","riderId":"r","times":["25:99"]}}`, ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postRaw(t, url, tt.body)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv := NewServer(newTestPortal(t), quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, addr) }()

	c := NewClient("http://"+addr+"/", WithTimeout(time.Second))
	require.Eventually(t, func() bool {
		_, err := c.RaceIDs(context.Background())
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
