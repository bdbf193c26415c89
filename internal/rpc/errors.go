package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dusk-indust/stageresults/internal/results"
)

// Application error codes, one per domain sentinel.
const (
	ErrCodeUnknownStage         = -32010
	ErrCodeUnknownRider         = -32011
	ErrCodeUnknownSegment       = -32012
	ErrCodeUnknownRace          = -32013
	ErrCodeUnknownTeam          = -32014
	ErrCodeDuplicateResult      = -32015
	ErrCodeWrongCheckpointCount = -32016
	ErrCodeWrongStageState      = -32017
	ErrCodeWrongStageKind       = -32018
	ErrCodeInvalidLocation      = -32019
	ErrCodeInvalidLength        = -32020
	ErrCodeInvalidName          = -32021
	ErrCodeDuplicateName        = -32022
	ErrCodeInvalidSegmentType   = -32023
	ErrCodeInvalidBirthYear     = -32024
)

var errorCodes = []struct {
	code int
	err  error
}{
	{ErrCodeUnknownStage, results.ErrUnknownStage},
	{ErrCodeUnknownRider, results.ErrUnknownRider},
	{ErrCodeUnknownSegment, results.ErrUnknownSegment},
	{ErrCodeUnknownRace, results.ErrUnknownRace},
	{ErrCodeUnknownTeam, results.ErrUnknownTeam},
	{ErrCodeDuplicateResult, results.ErrDuplicateResult},
	{ErrCodeWrongCheckpointCount, results.ErrWrongCheckpointCount},
	{ErrCodeWrongStageState, results.ErrWrongStageState},
	{ErrCodeWrongStageKind, results.ErrWrongStageKind},
	{ErrCodeInvalidLocation, results.ErrInvalidLocation},
	{ErrCodeInvalidLength, results.ErrInvalidLength},
	{ErrCodeInvalidName, results.ErrInvalidName},
	{ErrCodeDuplicateName, results.ErrDuplicateName},
	{ErrCodeInvalidSegmentType, results.ErrInvalidSegmentType},
	{ErrCodeInvalidBirthYear, results.ErrInvalidBirthYear},
}

// codeFor maps a handler error to its JSON-RPC error code.
func codeFor(err error) int {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ErrCodeInternal
}

// sentinelFor returns the domain error behind an application code, or nil.
func sentinelFor(code int) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// RPCError is a JSON-RPC error returned by the server. It unwraps to the
// matching domain sentinel so callers can use errors.Is across the wire.
type RPCError struct {
	Method  string
	Code    int
	Message string
	Data    json.RawMessage
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("rpc: %s: error %d: %s (data: %s)", e.Method, e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("rpc: %s: error %d: %s", e.Method, e.Code, e.Message)
}

// Unwrap returns the domain sentinel for application codes.
func (e *RPCError) Unwrap() error {
	return sentinelFor(e.Code)
}
