// Package fixture loads a race described in YAML and replays it through the
// portal: teams and riders, stages with their segments, then results.
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/portal"
	"github.com/dusk-indust/stageresults/internal/results"
)

// File is the YAML document.
type File struct {
	Race   RaceDef    `yaml:"race"`
	Teams  []TeamDef  `yaml:"teams"`
	Stages []StageDef `yaml:"stages"`
}

type RaceDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

type TeamDef struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Riders      []RiderDef `yaml:"riders"`
}

type RiderDef struct {
	Name        string `yaml:"name"`
	YearOfBirth int    `yaml:"yearOfBirth"`
}

// StageDef describes a stage. Unless Preparation is set the stage is opened
// for results after its segments are added.
type StageDef struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Kind        results.StageKind  `yaml:"kind"`
	Length      float64            `yaml:"length"`
	StartTime   time.Time          `yaml:"startTime"`
	Sprints     []float64          `yaml:"sprints,omitempty"`
	Climbs      []course.ClimbSpec `yaml:"climbs,omitempty"`
	Preparation bool               `yaml:"preparation,omitempty"`
	Results     []ResultDef        `yaml:"results,omitempty"`
}

// ResultDef is one rider's clock readings: start, one per segment in
// location order, finish.
type ResultDef struct {
	Rider string   `yaml:"rider"`
	Times []string `yaml:"times"`
}

// Applied maps fixture names to the identifiers the portal allocated.
type Applied struct {
	RaceID string
	Teams  map[string]string
	Riders map[string]string
	Stages map[string]string
}

// Load reads and decodes a fixture file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document. Unknown fields are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// Apply replays the fixture into p. It stops at the first failing operation.
func (f *File) Apply(ctx context.Context, p *portal.Portal) (*Applied, error) {
	out := &Applied{
		Teams:  make(map[string]string),
		Riders: make(map[string]string),
		Stages: make(map[string]string),
	}

	for _, td := range f.Teams {
		tid, err := p.CreateTeam(td.Name, td.Description)
		if err != nil {
			return nil, fmt.Errorf("team %q: %w", td.Name, err)
		}
		out.Teams[td.Name] = tid
		for _, rd := range td.Riders {
			if _, dup := out.Riders[rd.Name]; dup {
				return nil, fmt.Errorf("rider %q listed twice", rd.Name)
			}
			rid, err := p.CreateRider(tid, rd.Name, rd.YearOfBirth)
			if err != nil {
				return nil, fmt.Errorf("rider %q: %w", rd.Name, err)
			}
			out.Riders[rd.Name] = rid
		}
	}

	raceID, err := p.CreateRace(f.Race.Name, f.Race.Description)
	if err != nil {
		return nil, fmt.Errorf("race %q: %w", f.Race.Name, err)
	}
	out.RaceID = raceID

	for _, sd := range f.Stages {
		sid, err := applyStage(ctx, p, raceID, sd, out.Riders)
		if err != nil {
			return nil, fmt.Errorf("stage %q: %w", sd.Name, err)
		}
		out.Stages[sd.Name] = sid
	}
	return out, nil
}

func applyStage(ctx context.Context, p *portal.Portal, raceID string, sd StageDef, riders map[string]string) (string, error) {
	sid, err := p.AddStage(raceID, course.StageSpec{
		Name:        sd.Name,
		Description: sd.Description,
		Length:      sd.Length,
		StartTime:   sd.StartTime,
		Kind:        sd.Kind,
	})
	if err != nil {
		return "", err
	}
	for _, loc := range sd.Sprints {
		if _, err := p.AddSprint(sid, loc); err != nil {
			return "", fmt.Errorf("sprint at %.1fkm: %w", loc, err)
		}
	}
	for _, c := range sd.Climbs {
		if _, err := p.AddClimb(sid, c); err != nil {
			return "", fmt.Errorf("climb at %.1fkm: %w", c.Location, err)
		}
	}
	if sd.Preparation {
		if len(sd.Results) > 0 {
			return "", fmt.Errorf("results on a stage in preparation: %w", results.ErrWrongStageState)
		}
		return sid, nil
	}
	if err := p.ConcludePreparation(sid); err != nil {
		return "", err
	}

	for _, rd := range sd.Results {
		rid, ok := riders[rd.Rider]
		if !ok {
			return "", fmt.Errorf("result for %q: %w", rd.Rider, results.ErrUnknownRider)
		}
		times := make([]results.TimeOfDay, len(rd.Times))
		for i, s := range rd.Times {
			if times[i], err = results.ParseTimeOfDay(s); err != nil {
				return "", fmt.Errorf("result for %q: %w", rd.Rider, err)
			}
		}
		if err := p.RegisterResult(ctx, sid, rid, times...); err != nil {
			return "", fmt.Errorf("result for %q: %w", rd.Rider, err)
		}
	}
	return sid, nil
}
