package mcptools

// --- MCP Tool Types ---
// Times of day travel as "HH:MM:SS[.fff]" strings, durations as Go duration
// strings plus a clock rendering.

// StageInput names a stage.
type StageInput struct {
	StageID string `json:"stageId" jsonschema:"stage identifier"`
}

// StageRiderInput names a stage and a rider.
type StageRiderInput struct {
	StageID string `json:"stageId" jsonschema:"stage identifier"`
	RiderID string `json:"riderId" jsonschema:"rider identifier"`
}

// RegisterResultInput is the input for the register_result tool.
type RegisterResultInput struct {
	StageID string   `json:"stageId" jsonschema:"stage identifier"`
	RiderID string   `json:"riderId" jsonschema:"rider identifier"`
	Times   []string `json:"times" jsonschema:"clock readings HH:MM:SS[.fff]: start, one per segment in location order, finish"`
}

// AckOutput reports a completed mutation.
type AckOutput struct {
	OK bool `json:"ok"`
}

// RankOutput is the result of the rank tool.
type RankOutput struct {
	RiderIDs []string `json:"riderIds"`
}

// Elapsed is a duration in both renderings.
type Elapsed struct {
	Duration string `json:"duration"`
	Clock    string `json:"clock"`
}

// AdjustedElapsedOutput is the result of the adjusted_elapsed tool.
type AdjustedElapsedOutput struct {
	Found   bool     `json:"found"`
	Elapsed *Elapsed `json:"elapsed,omitempty"`
}

// RankedAdjustedOutput is the result of the ranked_adjusted_elapsed tool.
type RankedAdjustedOutput struct {
	RiderIDs []string  `json:"riderIds"`
	Elapsed  []Elapsed `json:"elapsed"`
}

// PointsOutput is the result of the points and mountain_points tools.
type PointsOutput struct {
	RiderIDs []string `json:"riderIds"`
	Points   []int    `json:"points"`
}

// RiderResultsOutput is the result of the rider_results tool.
type RiderResultsOutput struct {
	Found       bool     `json:"found"`
	Checkpoints []string `json:"checkpoints,omitempty"`
	Elapsed     *Elapsed `json:"elapsed,omitempty"`
}

// NameInput creates a named race or team.
type NameInput struct {
	Name        string `json:"name" jsonschema:"unique name, at most 30 characters, no whitespace"`
	Description string `json:"description,omitempty" jsonschema:"free text description"`
}

// IDOutput carries a newly allocated identifier.
type IDOutput struct {
	ID string `json:"id"`
}

// IDsOutput lists identifiers.
type IDsOutput struct {
	IDs []string `json:"ids"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// RaceInput names a race.
type RaceInput struct {
	RaceID string `json:"raceId" jsonschema:"race identifier"`
}

// RaceDetailsOutput is the result of the race_details tool.
type RaceDetailsOutput struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	StageCount  int     `json:"stageCount"`
	TotalLength float64 `json:"totalLength"`
}

// AddStageInput is the input for the add_stage tool.
type AddStageInput struct {
	RaceID      string  `json:"raceId" jsonschema:"race identifier"`
	Name        string  `json:"name" jsonschema:"stage name, unique within the race"`
	Description string  `json:"description,omitempty" jsonschema:"free text description"`
	Length      float64 `json:"length" jsonschema:"length in kilometres, above 5"`
	StartTime   string  `json:"startTime,omitempty" jsonschema:"RFC 3339 start time"`
	Kind        string  `json:"kind" jsonschema:"flat, medium-mountain, high-mountain or time-trial"`
}

// StageLengthOutput is the result of the stage_length tool.
type StageLengthOutput struct {
	Length float64 `json:"length"`
}

// AddClimbInput is the input for the add_climb tool.
type AddClimbInput struct {
	StageID         string  `json:"stageId" jsonschema:"stage identifier"`
	Location        float64 `json:"location" jsonschema:"kilometre mark of the summit"`
	Type            string  `json:"type" jsonschema:"c4, c3, c2, c1 or hc"`
	AverageGradient float64 `json:"averageGradient" jsonschema:"average gradient in percent"`
	Length          float64 `json:"length" jsonschema:"climb length in kilometres"`
}

// AddSprintInput is the input for the add_sprint tool.
type AddSprintInput struct {
	StageID  string  `json:"stageId" jsonschema:"stage identifier"`
	Location float64 `json:"location" jsonschema:"kilometre mark of the sprint line"`
}

// SegmentInput names a segment.
type SegmentInput struct {
	SegmentID string `json:"segmentId" jsonschema:"segment identifier"`
}

// TeamInput names a team.
type TeamInput struct {
	TeamID string `json:"teamId" jsonschema:"team identifier"`
}

// CreateRiderInput is the input for the create_rider tool.
type CreateRiderInput struct {
	TeamID      string `json:"teamId" jsonschema:"team identifier"`
	Name        string `json:"name" jsonschema:"rider name"`
	YearOfBirth int    `json:"yearOfBirth" jsonschema:"year of birth, 1900 or later"`
}

// RiderInput names a rider.
type RiderInput struct {
	RiderID string `json:"riderId" jsonschema:"rider identifier"`
}

// RaceReportOutput is the result of the race_report tool.
type RaceReportOutput struct {
	Text string `json:"text"`
}
