package mcptools

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/report"
	"github.com/dusk-indust/stageresults/internal/results"
)

// ResultsService handles MCP tool calls by delegating to a portal.
type ResultsService struct {
	portal *portal.Portal
}

// NewResultsService creates a ResultsService over p.
func NewResultsService(p *portal.Portal) *ResultsService {
	return &ResultsService{portal: p}
}

func elapsed(d time.Duration) Elapsed {
	return Elapsed{Duration: d.String(), Clock: results.FormatClock(d)}
}

// --- Results ---

// RegisterResult records a rider's times in a stage.
func (s *ResultsService) RegisterResult(ctx context.Context, _ *mcp.CallToolRequest, in RegisterResultInput) (*mcp.CallToolResult, AckOutput, error) {
	times := make([]results.TimeOfDay, len(in.Times))
	for i, v := range in.Times {
		t, err := results.ParseTimeOfDay(v)
		if err != nil {
			return nil, AckOutput{}, err
		}
		times[i] = t
	}
	if err := s.portal.RegisterResult(ctx, in.StageID, in.RiderID, times...); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// DeleteResult removes a rider's result from a stage.
func (s *ResultsService) DeleteResult(ctx context.Context, _ *mcp.CallToolRequest, in StageRiderInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.DeleteResult(ctx, in.StageID, in.RiderID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// Rank lists riders in finishing order.
func (s *ResultsService) Rank(ctx context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, RankOutput, error) {
	ids, err := s.portal.Rank(ctx, in.StageID)
	if err != nil {
		return nil, RankOutput{}, err
	}
	return nil, RankOutput{RiderIDs: nonNil(ids)}, nil
}

// AdjustedElapsed returns one rider's bunch-adjusted elapsed time.
func (s *ResultsService) AdjustedElapsed(ctx context.Context, _ *mcp.CallToolRequest, in StageRiderInput) (*mcp.CallToolResult, AdjustedElapsedOutput, error) {
	d, ok, err := s.portal.AdjustedElapsed(ctx, in.StageID, in.RiderID)
	if err != nil || !ok {
		return nil, AdjustedElapsedOutput{}, err
	}
	e := elapsed(d)
	return nil, AdjustedElapsedOutput{Found: true, Elapsed: &e}, nil
}

// RankedAdjustedElapsed returns adjusted times next to the rank they align
// with.
func (s *ResultsService) RankedAdjustedElapsed(ctx context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, RankedAdjustedOutput, error) {
	ids, err := s.portal.Rank(ctx, in.StageID)
	if err != nil {
		return nil, RankedAdjustedOutput{}, err
	}
	times, err := s.portal.RankedAdjustedElapsedTimes(ctx, in.StageID)
	if err != nil {
		return nil, RankedAdjustedOutput{}, err
	}
	out := RankedAdjustedOutput{RiderIDs: nonNil(ids), Elapsed: make([]Elapsed, len(times))}
	for i, d := range times {
		out.Elapsed[i] = elapsed(d)
	}
	return nil, out, nil
}

// Points returns points-classification points aligned with the rank.
func (s *ResultsService) Points(ctx context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, PointsOutput, error) {
	return s.points(ctx, in.StageID, s.portal.PointsInStage)
}

// MountainPoints returns mountain-classification points aligned with the
// rank.
func (s *ResultsService) MountainPoints(ctx context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, PointsOutput, error) {
	return s.points(ctx, in.StageID, s.portal.MountainPointsInStage)
}

func (s *ResultsService) points(ctx context.Context, stageID string, fn func(context.Context, string) ([]int, error)) (*mcp.CallToolResult, PointsOutput, error) {
	ids, err := s.portal.Rank(ctx, stageID)
	if err != nil {
		return nil, PointsOutput{}, err
	}
	pts, err := fn(ctx, stageID)
	if err != nil {
		return nil, PointsOutput{}, err
	}
	return nil, PointsOutput{RiderIDs: nonNil(ids), Points: nonNil(pts)}, nil
}

// RiderResults returns a rider's checkpoint times and elapsed time.
func (s *ResultsService) RiderResults(ctx context.Context, _ *mcp.CallToolRequest, in StageRiderInput) (*mcp.CallToolResult, RiderResultsOutput, error) {
	res, found, err := s.portal.RiderResults(ctx, in.StageID, in.RiderID)
	if err != nil || !found {
		return nil, RiderResultsOutput{}, err
	}
	out := RiderResultsOutput{Found: true, Checkpoints: make([]string, len(res.Checkpoints))}
	for i, cp := range res.Checkpoints {
		out.Checkpoints[i] = cp.String()
	}
	e := elapsed(res.Elapsed)
	out.Elapsed = &e
	return nil, out, nil
}

// --- Course ---

// CreateRace adds a race.
func (s *ResultsService) CreateRace(_ context.Context, _ *mcp.CallToolRequest, in NameInput) (*mcp.CallToolResult, IDOutput, error) {
	id, err := s.portal.CreateRace(in.Name, in.Description)
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// ListRaces lists race identifiers.
func (s *ResultsService) ListRaces(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, IDsOutput, error) {
	return nil, IDsOutput{IDs: nonNil(s.portal.RaceIDs())}, nil
}

// RaceDetails summarises a race.
func (s *ResultsService) RaceDetails(_ context.Context, _ *mcp.CallToolRequest, in RaceInput) (*mcp.CallToolResult, RaceDetailsOutput, error) {
	d, err := s.portal.RaceDetails(in.RaceID)
	if err != nil {
		return nil, RaceDetailsOutput{}, err
	}
	return nil, RaceDetailsOutput(d), nil
}

// RemoveRace deletes a race with its stages and results.
func (s *ResultsService) RemoveRace(ctx context.Context, _ *mcp.CallToolRequest, in RaceInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.RemoveRace(ctx, in.RaceID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// AddStage adds a stage in preparation to a race.
func (s *ResultsService) AddStage(_ context.Context, _ *mcp.CallToolRequest, in AddStageInput) (*mcp.CallToolResult, IDOutput, error) {
	spec := course.StageSpec{
		Name:        in.Name,
		Description: in.Description,
		Length:      in.Length,
		Kind:        results.StageKind(in.Kind),
	}
	if in.StartTime != "" {
		t, err := time.Parse(time.RFC3339, in.StartTime)
		if err != nil {
			return nil, IDOutput{}, fmt.Errorf("startTime: %w", err)
		}
		spec.StartTime = t
	}
	id, err := s.portal.AddStage(in.RaceID, spec)
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// RaceStages lists a race's stages by start time.
func (s *ResultsService) RaceStages(_ context.Context, _ *mcp.CallToolRequest, in RaceInput) (*mcp.CallToolResult, IDsOutput, error) {
	ids, err := s.portal.RaceStages(in.RaceID)
	if err != nil {
		return nil, IDsOutput{}, err
	}
	return nil, IDsOutput{IDs: nonNil(ids)}, nil
}

// StageLength returns a stage's length.
func (s *ResultsService) StageLength(_ context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, StageLengthOutput, error) {
	l, err := s.portal.StageLength(in.StageID)
	if err != nil {
		return nil, StageLengthOutput{}, err
	}
	return nil, StageLengthOutput{Length: l}, nil
}

// RemoveStage deletes a stage and its results.
func (s *ResultsService) RemoveStage(ctx context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.RemoveStage(ctx, in.StageID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// ConcludePreparation opens a stage for results.
func (s *ResultsService) ConcludePreparation(_ context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.ConcludePreparation(in.StageID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// AddClimb adds a categorized climb.
func (s *ResultsService) AddClimb(_ context.Context, _ *mcp.CallToolRequest, in AddClimbInput) (*mcp.CallToolResult, IDOutput, error) {
	id, err := s.portal.AddClimb(in.StageID, course.ClimbSpec{
		Location:        in.Location,
		Type:            results.SegmentType(in.Type),
		AverageGradient: in.AverageGradient,
		Length:          in.Length,
	})
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// AddSprint adds an intermediate sprint.
func (s *ResultsService) AddSprint(_ context.Context, _ *mcp.CallToolRequest, in AddSprintInput) (*mcp.CallToolResult, IDOutput, error) {
	id, err := s.portal.AddSprint(in.StageID, in.Location)
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// StageSegments lists a stage's segments by location.
func (s *ResultsService) StageSegments(_ context.Context, _ *mcp.CallToolRequest, in StageInput) (*mcp.CallToolResult, IDsOutput, error) {
	ids, err := s.portal.StageSegments(in.StageID)
	if err != nil {
		return nil, IDsOutput{}, err
	}
	return nil, IDsOutput{IDs: nonNil(ids)}, nil
}

// RemoveSegment deletes a segment from a stage in preparation.
func (s *ResultsService) RemoveSegment(ctx context.Context, _ *mcp.CallToolRequest, in SegmentInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.RemoveSegment(ctx, in.SegmentID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// RaceReport renders every stage classification of a race as text.
func (s *ResultsService) RaceReport(ctx context.Context, _ *mcp.CallToolRequest, in RaceInput) (*mcp.CallToolResult, RaceReportOutput, error) {
	rep, err := report.NewBuilder(s.portal).Build(ctx, in.RaceID)
	if err != nil {
		return nil, RaceReportOutput{}, err
	}
	var buf bytes.Buffer
	if err := report.Write(&buf, rep, report.FormatText); err != nil {
		return nil, RaceReportOutput{}, err
	}
	return nil, RaceReportOutput{Text: buf.String()}, nil
}

// --- Roster ---

// CreateTeam adds a team.
func (s *ResultsService) CreateTeam(_ context.Context, _ *mcp.CallToolRequest, in NameInput) (*mcp.CallToolResult, IDOutput, error) {
	id, err := s.portal.CreateTeam(in.Name, in.Description)
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// RemoveTeam deletes a team, its riders and their results.
func (s *ResultsService) RemoveTeam(ctx context.Context, _ *mcp.CallToolRequest, in TeamInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.RemoveTeam(ctx, in.TeamID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

// ListTeams lists team identifiers.
func (s *ResultsService) ListTeams(_ context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, IDsOutput, error) {
	return nil, IDsOutput{IDs: nonNil(s.portal.TeamIDs())}, nil
}

// TeamRiders lists a team's riders.
func (s *ResultsService) TeamRiders(_ context.Context, _ *mcp.CallToolRequest, in TeamInput) (*mcp.CallToolResult, IDsOutput, error) {
	ids, err := s.portal.TeamRiders(in.TeamID)
	if err != nil {
		return nil, IDsOutput{}, err
	}
	return nil, IDsOutput{IDs: nonNil(ids)}, nil
}

// CreateRider adds a rider to a team.
func (s *ResultsService) CreateRider(_ context.Context, _ *mcp.CallToolRequest, in CreateRiderInput) (*mcp.CallToolResult, IDOutput, error) {
	id, err := s.portal.CreateRider(in.TeamID, in.Name, in.YearOfBirth)
	if err != nil {
		return nil, IDOutput{}, err
	}
	return nil, IDOutput{ID: id}, nil
}

// RemoveRider deletes a rider and their results.
func (s *ResultsService) RemoveRider(ctx context.Context, _ *mcp.CallToolRequest, in RiderInput) (*mcp.CallToolResult, AckOutput, error) {
	if err := s.portal.RemoveRider(ctx, in.RiderID); err != nil {
		return nil, AckOutput{}, err
	}
	return nil, AckOutput{OK: true}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
