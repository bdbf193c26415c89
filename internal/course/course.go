// Package course holds races, their stages and the segments of each stage,
// and enforces the stage lifecycle: segments change only during preparation,
// results are accepted only once preparation has concluded.
package course

import (
	"time"

	"github.com/dusk-indust/stageresults/internal/results"
)

// MinStageLength is the length, in kilometres, every stage must exceed.
const MinStageLength = 5.0

// State is a stage's lifecycle state. The only transition is
// StatePreparation -> StateAwaitingResults.
type State string

const (
	StatePreparation     State = "preparation"
	StateAwaitingResults State = "awaiting-results"
)

// Race is a named sequence of stages ordered by start time.
type Race struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	StageIDs    []string `json:"stageIds" yaml:"stageIds"`
}

// RaceDetails summarises a race.
type RaceDetails struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	StageCount  int     `json:"stageCount"`
	TotalLength float64 `json:"totalLength"`
}

// StageSpec describes a stage to add to a race.
type StageSpec struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Length      float64           `json:"length" yaml:"length"`
	StartTime   time.Time         `json:"startTime" yaml:"startTime"`
	Kind        results.StageKind `json:"kind" yaml:"kind"`
}

// Stage is one racing day. Segments are kept in ascending location order.
type Stage struct {
	ID          string            `json:"id"`
	RaceID      string            `json:"raceId"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Length      float64           `json:"length"`
	StartTime   time.Time         `json:"startTime"`
	Kind        results.StageKind `json:"kind"`
	State       State             `json:"state"`
	Segments    []Segment         `json:"segments"`
}

// View returns the part of the stage the results engine reads.
func (s Stage) View() results.StageView {
	v := results.StageView{
		ID:       s.ID,
		Kind:     s.Kind,
		Segments: make([]results.SegmentView, len(s.Segments)),
	}
	for i, seg := range s.Segments {
		v.Segments[i] = results.SegmentView{ID: seg.ID, Type: seg.Type}
	}
	return v
}

// SegmentIDs returns the segment identifiers in location order.
func (s Stage) SegmentIDs() []string {
	out := make([]string, len(s.Segments))
	for i, seg := range s.Segments {
		out[i] = seg.ID
	}
	return out
}

// Segment is an intermediate sprint or a categorized climb. AverageGradient
// and Length apply to climbs only.
type Segment struct {
	ID              string              `json:"id"`
	StageID         string              `json:"stageId"`
	Location        float64             `json:"location"`
	Type            results.SegmentType `json:"type"`
	AverageGradient float64             `json:"averageGradient,omitempty"`
	Length          float64             `json:"length,omitempty"`
}

// ClimbSpec describes a categorized climb to add to a stage.
type ClimbSpec struct {
	Location        float64             `json:"location" yaml:"location"`
	Type            results.SegmentType `json:"type" yaml:"type"`
	AverageGradient float64             `json:"averageGradient" yaml:"averageGradient"`
	Length          float64             `json:"length" yaml:"length"`
}
