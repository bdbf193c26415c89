// Package report assembles per-stage classification tables for a race and
// renders them as text, JSON or YAML.
package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/results"
	"github.com/dusk-indust/stageresults/internal/roster"
)

// Source is the read side of the portal a report needs.
type Source interface {
	Race(raceID string) (course.Race, error)
	Stage(stageID string) (course.Stage, error)
	Rider(riderID string) (roster.Rider, error)
	Rank(ctx context.Context, stageID string) ([]string, error)
	RankedAdjustedElapsedTimes(ctx context.Context, stageID string) ([]time.Duration, error)
	PointsInStage(ctx context.Context, stageID string) ([]int, error)
	MountainPointsInStage(ctx context.Context, stageID string) ([]int, error)
}

// RaceReport is the top-level export structure.
type RaceReport struct {
	RaceID      string        `json:"raceId" yaml:"raceId"`
	Name        string        `json:"name" yaml:"name"`
	GeneratedAt string        `json:"generatedAt" yaml:"generatedAt"`
	Stages      []StageReport `json:"stages" yaml:"stages"`
}

// StageReport is one stage's classification in rank order.
type StageReport struct {
	StageID   string            `json:"stageId" yaml:"stageId"`
	Name      string            `json:"name" yaml:"name"`
	Kind      results.StageKind `json:"kind" yaml:"kind"`
	Length    float64           `json:"length" yaml:"length"`
	StartTime string            `json:"startTime" yaml:"startTime"`
	Rows      []Row             `json:"rows" yaml:"rows"`
}

// Row is one rider's line in a stage classification.
type Row struct {
	Position       int    `json:"position" yaml:"position"`
	RiderID        string `json:"riderId" yaml:"riderId"`
	RiderName      string `json:"riderName" yaml:"riderName"`
	Elapsed        string `json:"elapsed" yaml:"elapsed"`
	Points         int    `json:"points" yaml:"points"`
	MountainPoints int    `json:"mountainPoints" yaml:"mountainPoints"`
}

// Builder builds race reports, one goroutine per stage.
type Builder struct {
	src Source
	now func() time.Time
}

// NewBuilder creates a Builder reading from src.
func NewBuilder(src Source) *Builder {
	return &Builder{src: src, now: time.Now}
}

// Build assembles the report for a race. The first stage that fails cancels
// the remaining ones and its error is returned.
func (b *Builder) Build(ctx context.Context, raceID string) (*RaceReport, error) {
	race, err := b.src.Race(raceID)
	if err != nil {
		return nil, err
	}

	stages := make([]StageReport, len(race.StageIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, sid := range race.StageIDs {
		g.Go(func() error {
			sr, err := b.stage(gctx, sid)
			if err != nil {
				return fmt.Errorf("stage %s: %w", sid, err)
			}
			stages[i] = *sr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &RaceReport{
		RaceID:      race.ID,
		Name:        race.Name,
		GeneratedAt: b.now().UTC().Format(time.RFC3339),
		Stages:      stages,
	}, nil
}

func (b *Builder) stage(ctx context.Context, stageID string) (*StageReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, err := b.src.Stage(stageID)
	if err != nil {
		return nil, err
	}
	rank, err := b.src.Rank(ctx, stageID)
	if err != nil {
		return nil, err
	}
	times, err := b.src.RankedAdjustedElapsedTimes(ctx, stageID)
	if err != nil {
		return nil, err
	}
	points, err := b.src.PointsInStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	mountain, err := b.src.MountainPointsInStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	// Results may change between the reads above; only report aligned data.
	if len(times) != len(rank) || len(points) != len(rank) || len(mountain) != len(rank) {
		return nil, fmt.Errorf("results changed while building report")
	}

	sr := &StageReport{
		StageID:   st.ID,
		Name:      st.Name,
		Kind:      st.Kind,
		Length:    st.Length,
		StartTime: st.StartTime.UTC().Format(time.RFC3339),
		Rows:      make([]Row, len(rank)),
	}
	for i, rid := range rank {
		name := rid
		if rd, err := b.src.Rider(rid); err == nil {
			name = rd.Name
		}
		sr.Rows[i] = Row{
			Position:       i + 1,
			RiderID:        rid,
			RiderName:      name,
			Elapsed:        results.FormatClock(times[i]),
			Points:         points[i],
			MountainPoints: mountain[i],
		}
	}
	return sr, nil
}
