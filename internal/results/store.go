package results

import (
	"context"
	"io"
)

// Store is the interface for the per-stage result storage backend.
// Implementations: MemStore (default), KuzuStore (embedded database, cgo).
//
// Every sequence a Store returns is ordered by ascending time, ties in
// registration order.
type Store interface {
	io.Closer

	// InitSchema is called once before any result is committed.
	InitSchema(ctx context.Context) error

	// Write operations.

	// Commit inserts the start, every checkpoint and the finish of reg as one
	// unit. If the rider already has any of these entries nothing is written
	// and the error wraps ErrDuplicateResult.
	Commit(ctx context.Context, reg Registration) error
	// RemoveAll drops the rider's start, finish and checkpoints in the stage.
	// Removing a result that does not exist is not an error.
	RemoveAll(ctx context.Context, stageID, riderID string) error
	// DropStage removes every result recorded for the stage.
	DropStage(ctx context.Context, stageID string) error
	// DropSegment removes every checkpoint recorded at the segment.
	DropSegment(ctx context.Context, segmentID string) error

	// Point lookups. Absent entries are reported as nil, not as errors.
	Find(ctx context.Context, stageID, riderID string) (*RiderEntries, error)
	FindAtSegment(ctx context.Context, segmentID, riderID string) (*TimedEntry, error)

	// Ordered sequences.
	Starts(ctx context.Context, stageID string) ([]TimedEntry, error)
	Finishes(ctx context.Context, stageID string) ([]TimedEntry, error)
	Checkpoints(ctx context.Context, segmentID string) ([]TimedEntry, error)

	// StagesForRider lists the stages holding a result for the rider.
	StagesForRider(ctx context.Context, riderID string) ([]string, error)
}
