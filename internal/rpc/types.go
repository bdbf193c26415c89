package rpc

import (
	"time"

	"github.com/dusk-indust/stageresults/internal/course"
	"github.com/dusk-indust/stageresults/internal/results"
)

// Duration carries an elapsed time both as a Go duration string and as a
// clock reading. Nanos is authoritative when decoding.
type Duration struct {
	Duration string `json:"duration"`
	Clock    string `json:"clock"`
	Nanos    int64  `json:"nanos"`
}

// NewDuration wraps d for the wire.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d.String(), Clock: results.FormatClock(d), Nanos: int64(d)}
}

// Value returns the wrapped duration.
func (d Duration) Value() time.Duration { return time.Duration(d.Nanos) }

// ---------- Params ----------

type StageParams struct {
	StageID string `json:"stageId"`
}

type StageRiderParams struct {
	StageID string `json:"stageId"`
	RiderID string `json:"riderId"`
}

type RegisterParams struct {
	StageID string              `json:"stageId"`
	RiderID string              `json:"riderId"`
	Times   []results.TimeOfDay `json:"times"`
}

type NameParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type RaceParams struct {
	RaceID string `json:"raceId"`
}

type AddStageParams struct {
	RaceID string           `json:"raceId"`
	Stage  course.StageSpec `json:"stage"`
}

type AddClimbParams struct {
	StageID string           `json:"stageId"`
	Climb   course.ClimbSpec `json:"climb"`
}

type AddSprintParams struct {
	StageID  string  `json:"stageId"`
	Location float64 `json:"location"`
}

type SegmentParams struct {
	SegmentID string `json:"segmentId"`
}

type TeamParams struct {
	TeamID string `json:"teamId"`
}

type CreateRiderParams struct {
	TeamID      string `json:"teamId"`
	Name        string `json:"name"`
	YearOfBirth int    `json:"yearOfBirth"`
}

type RiderParams struct {
	RiderID string `json:"riderId"`
}

// ---------- Results ----------

type Empty struct{}

type IDResult struct {
	ID string `json:"id"`
}

type IDsResult struct {
	IDs []string `json:"ids"`
}

type CountResult struct {
	Count int `json:"count"`
}

type LengthResult struct {
	Length float64 `json:"length"`
}

type AdjustedResult struct {
	Found   bool      `json:"found"`
	Elapsed *Duration `json:"elapsed,omitempty"`
}

type DurationsResult struct {
	Elapsed []Duration `json:"elapsed"`
}

type PointsResult struct {
	Points []int `json:"points"`
}

type RiderResultsResult struct {
	Found       bool                `json:"found"`
	Checkpoints []results.TimeOfDay `json:"checkpoints,omitempty"`
	Elapsed     *Duration           `json:"elapsed,omitempty"`
}
