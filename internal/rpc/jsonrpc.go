package rpc

import "encoding/json"

// JSONRPCVersion is the JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is a JSON-RPC 2.0 error object.
type ErrorObject struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Standard JSON-RPC error codes.
const (
	ErrCodeParse          = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternal       = -32603
)

// Results method names.
const (
	MethodRegisterResult  = "results/register"
	MethodDeleteResult    = "results/delete"
	MethodRank            = "results/rank"
	MethodAdjustedElapsed = "results/adjusted"
	MethodRankedAdjusted  = "results/rankedAdjusted"
	MethodPoints          = "results/points"
	MethodMountainPoints  = "results/mountainPoints"
	MethodRiderResults    = "results/rider"
)

// Course method names.
const (
	MethodCreateRace          = "course/createRace"
	MethodListRaces           = "course/listRaces"
	MethodRaceDetails         = "course/raceDetails"
	MethodRemoveRace          = "course/removeRace"
	MethodNumberOfStages      = "course/numberOfStages"
	MethodAddStage            = "course/addStage"
	MethodRaceStages          = "course/raceStages"
	MethodStageLength         = "course/stageLength"
	MethodRemoveStage         = "course/removeStage"
	MethodConcludePreparation = "course/concludePreparation"
	MethodAddClimb            = "course/addClimb"
	MethodAddSprint           = "course/addSprint"
	MethodStageSegments       = "course/stageSegments"
	MethodRemoveSegment       = "course/removeSegment"
)

// Roster method names.
const (
	MethodCreateTeam  = "roster/createTeam"
	MethodRemoveTeam  = "roster/removeTeam"
	MethodListTeams   = "roster/listTeams"
	MethodTeamRiders  = "roster/teamRiders"
	MethodCreateRider = "roster/createRider"
	MethodRemoveRider = "roster/removeRider"
)
