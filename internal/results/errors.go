package results

import "errors"

// Sentinel errors shared by the engine, the course registry and the roster.
// Callers match them with errors.Is; producers wrap them with the offending ID.
var (
	ErrUnknownStage         = errors.New("unknown stage")
	ErrUnknownRider         = errors.New("unknown rider")
	ErrUnknownSegment       = errors.New("unknown segment")
	ErrUnknownRace          = errors.New("unknown race")
	ErrUnknownTeam          = errors.New("unknown team")
	ErrDuplicateResult      = errors.New("duplicate result")
	ErrWrongCheckpointCount = errors.New("wrong checkpoint count")
	ErrWrongStageState      = errors.New("wrong stage state")
	ErrWrongStageKind       = errors.New("wrong stage kind")
	ErrInvalidLocation      = errors.New("invalid location")
	ErrInvalidLength        = errors.New("invalid length")
	ErrInvalidSegmentType   = errors.New("invalid segment type")
	ErrInvalidName          = errors.New("invalid name")
	ErrInvalidBirthYear     = errors.New("invalid year of birth")
	ErrDuplicateName        = errors.New("name already in use")
)
