// Package portal is the single entry point for managing races, teams and
// stage results. It wires the course registry, the roster and the results
// engine together and serialises access per stage.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/results"
	"github.com/dusk-indust/stageresults/internal/roster"
)

// Portal is safe for concurrent use.
type Portal struct {
	course *course.Registry
	roster *roster.Roster
	engine *results.Engine
	locks  *stageLocks
	log    *slog.Logger
}

type options struct {
	alloc    ids.Allocator
	log      *slog.Logger
	bunchGap time.Duration
}

// Option configures a Portal.
type Option func(*options)

// WithAllocator sets the identifier allocator. Defaults to UUIDs.
func WithAllocator(a ids.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithBunchGap overrides results.DefaultBunchGap.
func WithBunchGap(d time.Duration) Option {
	return func(o *options) { o.bunchGap = d }
}

// New creates a Portal storing results in store. The caller owns store and
// must have initialised its schema.
func New(store results.Store, opts ...Option) *Portal {
	o := options{alloc: ids.UUIDAllocator{}, log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Portal{
		course: course.NewRegistry(o.alloc),
		roster: roster.New(o.alloc),
		engine: results.NewEngine(store, results.WithBunchGap(o.bunchGap)),
		locks:  newStageLocks(),
		log:    o.log,
	}
}

// RiderResult is a rider's checkpoint times in segment order and the elapsed
// time from start to finish.
type RiderResult struct {
	Checkpoints []results.TimeOfDay `json:"checkpoints"`
	Elapsed     time.Duration       `json:"elapsed"`
}

// ---------- Results ----------

// RegisterResult records a rider's start, one checkpoint per segment and
// finish. The stage must have concluded preparation. On failure nothing is
// recorded.
func (p *Portal) RegisterResult(ctx context.Context, stageID, riderID string, times ...results.TimeOfDay) error {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()

	stage, err := p.course.Stage(stageID)
	if err != nil {
		return err
	}
	if err := p.roster.RequireRider(riderID); err != nil {
		return err
	}
	if stage.State != course.StateAwaitingResults {
		return fmt.Errorf("stage %s is %s: %w", stageID, stage.State, results.ErrWrongStageState)
	}
	if err := p.engine.Register(ctx, stage.View(), riderID, times); err != nil {
		return err
	}
	p.log.Debug("result registered", "stage", stageID, "rider", riderID)
	return nil
}

// DeleteResult removes a rider's result from a stage. Deleting an absent
// result is a no-op.
func (p *Portal) DeleteResult(ctx context.Context, stageID, riderID string) error {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()

	stage, err := p.course.Stage(stageID)
	if err != nil {
		return err
	}
	if err := p.roster.RequireRider(riderID); err != nil {
		return err
	}
	if err := p.engine.Delete(ctx, stage.View(), riderID); err != nil {
		return err
	}
	p.log.Debug("result deleted", "stage", stageID, "rider", riderID)
	return nil
}

// Rank returns rider identifiers in finishing order.
func (p *Portal) Rank(ctx context.Context, stageID string) ([]string, error) {
	var out []string
	err := p.read(stageID, func(view results.StageView) (err error) {
		out, err = p.engine.Rank(ctx, view)
		return err
	})
	return out, err
}

// AdjustedElapsed returns the rider's bunch-adjusted elapsed time. ok is
// false when the rider has no result in the stage.
func (p *Portal) AdjustedElapsed(ctx context.Context, stageID, riderID string) (elapsed time.Duration, ok bool, err error) {
	if err := p.roster.RequireRider(riderID); err != nil {
		return 0, false, err
	}
	err = p.read(stageID, func(view results.StageView) (err error) {
		elapsed, ok, err = p.engine.AdjustedElapsed(ctx, view, riderID)
		return err
	})
	return elapsed, ok, err
}

// RankedAdjustedElapsedTimes returns adjusted elapsed times aligned with Rank.
func (p *Portal) RankedAdjustedElapsedTimes(ctx context.Context, stageID string) ([]time.Duration, error) {
	var out []time.Duration
	err := p.read(stageID, func(view results.StageView) (err error) {
		out, err = p.engine.RankedAdjustedElapsedTimes(ctx, view)
		return err
	})
	return out, err
}

// PointsInStage returns points-classification points aligned with Rank.
func (p *Portal) PointsInStage(ctx context.Context, stageID string) ([]int, error) {
	var out []int
	err := p.read(stageID, func(view results.StageView) (err error) {
		out, err = p.engine.PointsInStage(ctx, view)
		return err
	})
	return out, err
}

// MountainPointsInStage returns mountain-classification points aligned with
// Rank.
func (p *Portal) MountainPointsInStage(ctx context.Context, stageID string) ([]int, error) {
	var out []int
	err := p.read(stageID, func(view results.StageView) (err error) {
		out, err = p.engine.MountainPointsInStage(ctx, view)
		return err
	})
	return out, err
}

// RiderResults returns the rider's recorded result. found is false when the
// rider has none in the stage.
func (p *Portal) RiderResults(ctx context.Context, stageID, riderID string) (res RiderResult, found bool, err error) {
	if err := p.roster.RequireRider(riderID); err != nil {
		return RiderResult{}, false, err
	}
	err = p.read(stageID, func(view results.StageView) (err error) {
		res.Checkpoints, res.Elapsed, found, err = p.engine.RiderResults(ctx, view, riderID)
		return err
	})
	if err != nil || !found {
		return RiderResult{}, false, err
	}
	return res, true, nil
}

// read runs fn under the stage's read lock.
func (p *Portal) read(stageID string, fn func(results.StageView) error) error {
	lock := p.locks.get(stageID)
	lock.RLock()
	defer lock.RUnlock()

	stage, err := p.course.Stage(stageID)
	if err != nil {
		return err
	}
	return fn(stage.View())
}

// ---------- Races and stages ----------

// CreateRace adds a race.
func (p *Portal) CreateRace(name, description string) (string, error) {
	id, err := p.course.CreateRace(name, description)
	if err != nil {
		return "", err
	}
	p.log.Info("race created", "race", id, "name", name)
	return id, nil
}

// RaceIDs lists races in creation order.
func (p *Portal) RaceIDs() []string { return p.course.RaceIDs() }

// Race returns the race with its stage identifiers.
func (p *Portal) Race(raceID string) (course.Race, error) { return p.course.Race(raceID) }

// RaceDetails returns the race summary.
func (p *Portal) RaceDetails(raceID string) (course.RaceDetails, error) {
	return p.course.RaceDetails(raceID)
}

// NumberOfStages returns how many stages the race has.
func (p *Portal) NumberOfStages(raceID string) (int, error) {
	stageIDs, err := p.course.StageIDs(raceID)
	if err != nil {
		return 0, err
	}
	return len(stageIDs), nil
}

// RemoveRace deletes the race, its stages and every result in them.
func (p *Portal) RemoveRace(ctx context.Context, raceID string) error {
	stageIDs, err := p.course.StageIDs(raceID)
	if err != nil {
		return err
	}
	for _, sid := range stageIDs {
		if err := p.RemoveStage(ctx, sid); err != nil {
			return err
		}
	}
	if _, err := p.course.RemoveRace(raceID); err != nil {
		return err
	}
	p.log.Info("race removed", "race", raceID, "stages", len(stageIDs))
	return nil
}

// AddStage adds a stage in preparation to a race.
func (p *Portal) AddStage(raceID string, spec course.StageSpec) (string, error) {
	id, err := p.course.AddStage(raceID, spec)
	if err != nil {
		return "", err
	}
	p.log.Info("stage added", "race", raceID, "stage", id, "kind", spec.Kind)
	return id, nil
}

// RaceStages returns the race's stage identifiers ordered by start time.
func (p *Portal) RaceStages(raceID string) ([]string, error) { return p.course.StageIDs(raceID) }

// Stage returns the stage with its segments.
func (p *Portal) Stage(stageID string) (course.Stage, error) { return p.course.Stage(stageID) }

// StageLength returns the stage length in kilometres.
func (p *Portal) StageLength(stageID string) (float64, error) {
	st, err := p.course.Stage(stageID)
	if err != nil {
		return 0, err
	}
	return st.Length, nil
}

// RemoveStage deletes the stage, its segments and its results.
func (p *Portal) RemoveStage(ctx context.Context, stageID string) error {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()

	st, err := p.course.Stage(stageID)
	if err != nil {
		return err
	}
	if err := p.engine.Store().DropStage(ctx, stageID); err != nil {
		return fmt.Errorf("drop results of stage %s: %w", stageID, err)
	}
	if err := p.course.RemoveStage(stageID); err != nil {
		return err
	}
	p.locks.forget(stageID)
	p.log.Info("stage removed", "stage", stageID, "race", st.RaceID)
	return nil
}

// ConcludePreparation freezes the stage's segments and opens it for results.
func (p *Portal) ConcludePreparation(stageID string) error {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()

	if err := p.course.ConcludePreparation(stageID); err != nil {
		return err
	}
	p.log.Info("stage awaiting results", "stage", stageID)
	return nil
}

// ---------- Segments ----------

// AddClimb adds a categorized climb to a stage in preparation.
func (p *Portal) AddClimb(stageID string, spec course.ClimbSpec) (string, error) {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()
	return p.course.AddClimb(stageID, spec)
}

// AddSprint adds an intermediate sprint to a stage in preparation.
func (p *Portal) AddSprint(stageID string, location float64) (string, error) {
	lock := p.locks.get(stageID)
	lock.Lock()
	defer lock.Unlock()
	return p.course.AddSprint(stageID, location)
}

// StageSegments returns the stage's segment identifiers in location order.
func (p *Portal) StageSegments(stageID string) ([]string, error) {
	return p.course.StageSegments(stageID)
}

// RemoveSegment deletes a segment from a stage in preparation.
func (p *Portal) RemoveSegment(ctx context.Context, segmentID string) error {
	seg, err := p.course.Segment(segmentID)
	if err != nil {
		return err
	}
	lock := p.locks.get(seg.StageID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := p.course.RemoveSegment(segmentID); err != nil {
		return err
	}
	return p.engine.Store().DropSegment(ctx, segmentID)
}

// ---------- Teams and riders ----------

// CreateTeam adds a team.
func (p *Portal) CreateTeam(name, description string) (string, error) {
	return p.roster.CreateTeam(name, description)
}

// TeamIDs lists teams in creation order.
func (p *Portal) TeamIDs() []string { return p.roster.TeamIDs() }

// TeamRiders returns the team's rider identifiers.
func (p *Portal) TeamRiders(teamID string) ([]string, error) { return p.roster.TeamRiders(teamID) }

// Rider returns the rider.
func (p *Portal) Rider(riderID string) (roster.Rider, error) { return p.roster.Rider(riderID) }

// CreateRider adds a rider to a team.
func (p *Portal) CreateRider(teamID, name string, yearOfBirth int) (string, error) {
	return p.roster.CreateRider(teamID, name, yearOfBirth)
}

// RemoveRider deletes the rider and every result they recorded.
func (p *Portal) RemoveRider(ctx context.Context, riderID string) error {
	if err := p.dropRiderResults(ctx, riderID); err != nil {
		return err
	}
	if err := p.roster.RemoveRider(riderID); err != nil {
		return err
	}
	p.log.Info("rider removed", "rider", riderID)
	return nil
}

// RemoveTeam deletes the team, its riders and their results.
func (p *Portal) RemoveTeam(ctx context.Context, teamID string) error {
	riders, err := p.roster.TeamRiders(teamID)
	if err != nil {
		return err
	}
	for _, rid := range riders {
		if err := p.dropRiderResults(ctx, rid); err != nil {
			return err
		}
	}
	if _, err := p.roster.RemoveTeam(teamID); err != nil {
		return err
	}
	p.log.Info("team removed", "team", teamID, "riders", len(riders))
	return nil
}

func (p *Portal) dropRiderResults(ctx context.Context, riderID string) error {
	if err := p.roster.RequireRider(riderID); err != nil {
		return err
	}
	stageIDs, err := p.engine.Store().StagesForRider(ctx, riderID)
	if err != nil {
		return err
	}
	for _, sid := range stageIDs {
		lock := p.locks.get(sid)
		lock.Lock()
		err := p.engine.Store().RemoveAll(ctx, sid, riderID)
		lock.Unlock()
		if err != nil {
			return fmt.Errorf("drop results of rider %s in stage %s: %w", riderID, sid, err)
		}
	}
	return nil
}
