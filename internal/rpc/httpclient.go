package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/results"
)

// Client calls a remote portal over HTTP/JSON-RPC.
type Client struct {
	endpoint  string
	http      *http.Client
	requestID atomic.Int64
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a client posting to endpoint, e.g. http://127.0.0.1:8640/.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---------- Results ----------

func (c *Client) RegisterResult(ctx context.Context, stageID, riderID string, times ...results.TimeOfDay) error {
	return c.call(ctx, MethodRegisterResult, RegisterParams{StageID: stageID, RiderID: riderID, Times: times}, nil)
}

func (c *Client) DeleteResult(ctx context.Context, stageID, riderID string) error {
	return c.call(ctx, MethodDeleteResult, StageRiderParams{StageID: stageID, RiderID: riderID}, nil)
}

func (c *Client) Rank(ctx context.Context, stageID string) ([]string, error) {
	return c.ids(ctx, MethodRank, StageParams{StageID: stageID})
}

func (c *Client) AdjustedElapsed(ctx context.Context, stageID, riderID string) (time.Duration, bool, error) {
	var out AdjustedResult
	if err := c.call(ctx, MethodAdjustedElapsed, StageRiderParams{StageID: stageID, RiderID: riderID}, &out); err != nil {
		return 0, false, err
	}
	if !out.Found || out.Elapsed == nil {
		return 0, false, nil
	}
	return out.Elapsed.Value(), true, nil
}

func (c *Client) RankedAdjustedElapsedTimes(ctx context.Context, stageID string) ([]time.Duration, error) {
	var out DurationsResult
	if err := c.call(ctx, MethodRankedAdjusted, StageParams{StageID: stageID}, &out); err != nil {
		return nil, err
	}
	ds := make([]time.Duration, len(out.Elapsed))
	for i, d := range out.Elapsed {
		ds[i] = d.Value()
	}
	return ds, nil
}

func (c *Client) PointsInStage(ctx context.Context, stageID string) ([]int, error) {
	var out PointsResult
	err := c.call(ctx, MethodPoints, StageParams{StageID: stageID}, &out)
	return out.Points, err
}

func (c *Client) MountainPointsInStage(ctx context.Context, stageID string) ([]int, error) {
	var out PointsResult
	err := c.call(ctx, MethodMountainPoints, StageParams{StageID: stageID}, &out)
	return out.Points, err
}

func (c *Client) RiderResults(ctx context.Context, stageID, riderID string) (portal.RiderResult, bool, error) {
	var out RiderResultsResult
	if err := c.call(ctx, MethodRiderResults, StageRiderParams{StageID: stageID, RiderID: riderID}, &out); err != nil {
		return portal.RiderResult{}, false, err
	}
	if !out.Found || out.Elapsed == nil {
		return portal.RiderResult{}, false, nil
	}
	return portal.RiderResult{Checkpoints: out.Checkpoints, Elapsed: out.Elapsed.Value()}, true, nil
}

// ---------- Course ----------

func (c *Client) CreateRace(ctx context.Context, name, description string) (string, error) {
	return c.id(ctx, MethodCreateRace, NameParams{Name: name, Description: description})
}

func (c *Client) RaceIDs(ctx context.Context) ([]string, error) {
	return c.ids(ctx, MethodListRaces, Empty{})
}

func (c *Client) RaceDetails(ctx context.Context, raceID string) (course.RaceDetails, error) {
	var out course.RaceDetails
	err := c.call(ctx, MethodRaceDetails, RaceParams{RaceID: raceID}, &out)
	return out, err
}

func (c *Client) RemoveRace(ctx context.Context, raceID string) error {
	return c.call(ctx, MethodRemoveRace, RaceParams{RaceID: raceID}, nil)
}

func (c *Client) NumberOfStages(ctx context.Context, raceID string) (int, error) {
	var out CountResult
	err := c.call(ctx, MethodNumberOfStages, RaceParams{RaceID: raceID}, &out)
	return out.Count, err
}

func (c *Client) AddStage(ctx context.Context, raceID string, spec course.StageSpec) (string, error) {
	return c.id(ctx, MethodAddStage, AddStageParams{RaceID: raceID, Stage: spec})
}

func (c *Client) RaceStages(ctx context.Context, raceID string) ([]string, error) {
	return c.ids(ctx, MethodRaceStages, RaceParams{RaceID: raceID})
}

func (c *Client) StageLength(ctx context.Context, stageID string) (float64, error) {
	var out LengthResult
	err := c.call(ctx, MethodStageLength, StageParams{StageID: stageID}, &out)
	return out.Length, err
}

func (c *Client) RemoveStage(ctx context.Context, stageID string) error {
	return c.call(ctx, MethodRemoveStage, StageParams{StageID: stageID}, nil)
}

func (c *Client) ConcludePreparation(ctx context.Context, stageID string) error {
	return c.call(ctx, MethodConcludePreparation, StageParams{StageID: stageID}, nil)
}

func (c *Client) AddClimb(ctx context.Context, stageID string, spec course.ClimbSpec) (string, error) {
	return c.id(ctx, MethodAddClimb, AddClimbParams{StageID: stageID, Climb: spec})
}

func (c *Client) AddSprint(ctx context.Context, stageID string, location float64) (string, error) {
	return c.id(ctx, MethodAddSprint, AddSprintParams{StageID: stageID, Location: location})
}

func (c *Client) StageSegments(ctx context.Context, stageID string) ([]string, error) {
	return c.ids(ctx, MethodStageSegments, StageParams{StageID: stageID})
}

func (c *Client) RemoveSegment(ctx context.Context, segmentID string) error {
	return c.call(ctx, MethodRemoveSegment, SegmentParams{SegmentID: segmentID}, nil)
}

// ---------- Roster ----------

func (c *Client) CreateTeam(ctx context.Context, name, description string) (string, error) {
	return c.id(ctx, MethodCreateTeam, NameParams{Name: name, Description: description})
}

func (c *Client) RemoveTeam(ctx context.Context, teamID string) error {
	return c.call(ctx, MethodRemoveTeam, TeamParams{TeamID: teamID}, nil)
}

func (c *Client) TeamIDs(ctx context.Context) ([]string, error) {
	return c.ids(ctx, MethodListTeams, Empty{})
}

func (c *Client) TeamRiders(ctx context.Context, teamID string) ([]string, error) {
	return c.ids(ctx, MethodTeamRiders, TeamParams{TeamID: teamID})
}

func (c *Client) CreateRider(ctx context.Context, teamID, name string, yearOfBirth int) (string, error) {
	return c.id(ctx, MethodCreateRider, CreateRiderParams{TeamID: teamID, Name: name, YearOfBirth: yearOfBirth})
}

func (c *Client) RemoveRider(ctx context.Context, riderID string) error {
	return c.call(ctx, MethodRemoveRider, RiderParams{RiderID: riderID}, nil)
}

// ---------- Transport ----------

func (c *Client) id(ctx context.Context, method string, params any) (string, error) {
	var out IDResult
	err := c.call(ctx, method, params, &out)
	return out.ID, err
}

func (c *Client) ids(ctx context.Context, method string, params any) ([]string, error) {
	var out IDsResult
	err := c.call(ctx, method, params, &out)
	return out.IDs, err
}

// nextID returns a monotonically increasing request ID for JSON-RPC calls.
func (c *Client) nextID() int64 {
	return c.requestID.Add(1)
}

// call performs a JSON-RPC 2.0 call over HTTP POST.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("rpc: marshal params: %w", err)
	}

	body, err := json.Marshal(Request{
		JSONRPC: JSONRPCVersion,
		ID:      c.nextID(),
		Method:  method,
		Params:  paramsJSON,
	})
	if err != nil {
		return fmt.Errorf("rpc: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("rpc: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rpc: %s: HTTP %d: %s", method, resp.StatusCode, string(respBody))
	}

	var rpcResp Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return fmt.Errorf("rpc: decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return &RPCError{
			Method:  method,
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
			Data:    rpcResp.Error.Data,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("rpc: decode result: %w", err)
		}
	}
	return nil
}
