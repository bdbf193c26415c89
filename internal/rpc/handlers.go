package rpc

import (
	"context"
	"time"
)

func (s *Server) routes() map[string]handlerFunc {
	p := s.portal
	return map[string]handlerFunc{
		// Results.
		MethodRegisterResult: method(func(ctx context.Context, in RegisterParams) (any, error) {
			return Empty{}, p.RegisterResult(ctx, in.StageID, in.RiderID, in.Times...)
		}),
		MethodDeleteResult: method(func(ctx context.Context, in StageRiderParams) (any, error) {
			return Empty{}, p.DeleteResult(ctx, in.StageID, in.RiderID)
		}),
		MethodRank: method(func(ctx context.Context, in StageParams) (any, error) {
			ids, err := p.Rank(ctx, in.StageID)
			return IDsResult{IDs: nonNil(ids)}, err
		}),
		MethodAdjustedElapsed: method(func(ctx context.Context, in StageRiderParams) (any, error) {
			d, ok, err := p.AdjustedElapsed(ctx, in.StageID, in.RiderID)
			if err != nil || !ok {
				return AdjustedResult{}, err
			}
			w := NewDuration(d)
			return AdjustedResult{Found: true, Elapsed: &w}, nil
		}),
		MethodRankedAdjusted: method(func(ctx context.Context, in StageParams) (any, error) {
			times, err := p.RankedAdjustedElapsedTimes(ctx, in.StageID)
			return DurationsResult{Elapsed: durations(times)}, err
		}),
		MethodPoints: method(func(ctx context.Context, in StageParams) (any, error) {
			pts, err := p.PointsInStage(ctx, in.StageID)
			return PointsResult{Points: nonNil(pts)}, err
		}),
		MethodMountainPoints: method(func(ctx context.Context, in StageParams) (any, error) {
			pts, err := p.MountainPointsInStage(ctx, in.StageID)
			return PointsResult{Points: nonNil(pts)}, err
		}),
		MethodRiderResults: method(func(ctx context.Context, in StageRiderParams) (any, error) {
			res, found, err := p.RiderResults(ctx, in.StageID, in.RiderID)
			if err != nil || !found {
				return RiderResultsResult{}, err
			}
			w := NewDuration(res.Elapsed)
			return RiderResultsResult{Found: true, Checkpoints: res.Checkpoints, Elapsed: &w}, nil
		}),

		// Course.
		MethodCreateRace: method(func(_ context.Context, in NameParams) (any, error) {
			id, err := p.CreateRace(in.Name, in.Description)
			return IDResult{ID: id}, err
		}),
		MethodListRaces: method(func(context.Context, Empty) (any, error) {
			return IDsResult{IDs: p.RaceIDs()}, nil
		}),
		MethodRaceDetails: method(func(_ context.Context, in RaceParams) (any, error) {
			return p.RaceDetails(in.RaceID)
		}),
		MethodRemoveRace: method(func(ctx context.Context, in RaceParams) (any, error) {
			return Empty{}, p.RemoveRace(ctx, in.RaceID)
		}),
		MethodNumberOfStages: method(func(_ context.Context, in RaceParams) (any, error) {
			n, err := p.NumberOfStages(in.RaceID)
			return CountResult{Count: n}, err
		}),
		MethodAddStage: method(func(_ context.Context, in AddStageParams) (any, error) {
			id, err := p.AddStage(in.RaceID, in.Stage)
			return IDResult{ID: id}, err
		}),
		MethodRaceStages: method(func(_ context.Context, in RaceParams) (any, error) {
			ids, err := p.RaceStages(in.RaceID)
			return IDsResult{IDs: nonNil(ids)}, err
		}),
		MethodStageLength: method(func(_ context.Context, in StageParams) (any, error) {
			l, err := p.StageLength(in.StageID)
			return LengthResult{Length: l}, err
		}),
		MethodRemoveStage: method(func(ctx context.Context, in StageParams) (any, error) {
			return Empty{}, p.RemoveStage(ctx, in.StageID)
		}),
		MethodConcludePreparation: method(func(_ context.Context, in StageParams) (any, error) {
			return Empty{}, p.ConcludePreparation(in.StageID)
		}),
		MethodAddClimb: method(func(_ context.Context, in AddClimbParams) (any, error) {
			id, err := p.AddClimb(in.StageID, in.Climb)
			return IDResult{ID: id}, err
		}),
		MethodAddSprint: method(func(_ context.Context, in AddSprintParams) (any, error) {
			id, err := p.AddSprint(in.StageID, in.Location)
			return IDResult{ID: id}, err
		}),
		MethodStageSegments: method(func(_ context.Context, in StageParams) (any, error) {
			ids, err := p.StageSegments(in.StageID)
			return IDsResult{IDs: nonNil(ids)}, err
		}),
		MethodRemoveSegment: method(func(ctx context.Context, in SegmentParams) (any, error) {
			return Empty{}, p.RemoveSegment(ctx, in.SegmentID)
		}),

		// Roster.
		MethodCreateTeam: method(func(_ context.Context, in NameParams) (any, error) {
			id, err := p.CreateTeam(in.Name, in.Description)
			return IDResult{ID: id}, err
		}),
		MethodRemoveTeam: method(func(ctx context.Context, in TeamParams) (any, error) {
			return Empty{}, p.RemoveTeam(ctx, in.TeamID)
		}),
		MethodListTeams: method(func(context.Context, Empty) (any, error) {
			return IDsResult{IDs: p.TeamIDs()}, nil
		}),
		MethodTeamRiders: method(func(_ context.Context, in TeamParams) (any, error) {
			ids, err := p.TeamRiders(in.TeamID)
			return IDsResult{IDs: nonNil(ids)}, err
		}),
		MethodCreateRider: method(func(_ context.Context, in CreateRiderParams) (any, error) {
			id, err := p.CreateRider(in.TeamID, in.Name, in.YearOfBirth)
			return IDResult{ID: id}, err
		}),
		MethodRemoveRider: method(func(ctx context.Context, in RiderParams) (any, error) {
			return Empty{}, p.RemoveRider(ctx, in.RiderID)
		}),
	}
}

func durations(ds []time.Duration) []Duration {
	out := make([]Duration, len(ds))
	for i, d := range ds {
		out[i] = NewDuration(d)
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
