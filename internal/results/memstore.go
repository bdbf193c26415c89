package results

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Compile-time assertion: *MemStore satisfies Store.
var _ Store = (*MemStore)(nil)

// stageRecord holds the timelines of one stage.
type stageRecord struct {
	starts      Timeline
	finishes    Timeline
	checkpoints map[string]*Timeline // key: segmentID
}

// MemStore implements Store using Go maps. Thread-safe via sync.RWMutex.
type MemStore struct {
	mu           sync.RWMutex
	stages       map[string]*stageRecord
	segmentStage map[string]string              // segmentID -> stageID
	riderStages  map[string]map[string]struct{} // riderID -> stageIDs
}

// NewMemStore returns an initialized MemStore ready for use.
func NewMemStore() *MemStore {
	return &MemStore{
		stages:       make(map[string]*stageRecord),
		segmentStage: make(map[string]string),
		riderStages:  make(map[string]map[string]struct{}),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// Commit checks every timeline touched by reg before inserting anything, so
// a rejected registration leaves the store as it was.
func (m *MemStore) Commit(_ context.Context, reg Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.stages[reg.StageID]
	if rec != nil {
		if rec.starts.Has(reg.RiderID) || rec.finishes.Has(reg.RiderID) {
			return fmt.Errorf("stage %s rider %s: %w", reg.StageID, reg.RiderID, ErrDuplicateResult)
		}
		for _, cp := range reg.Checkpoints {
			if tl := rec.checkpoints[cp.SegmentID]; tl != nil && tl.Has(reg.RiderID) {
				return fmt.Errorf("segment %s rider %s: %w", cp.SegmentID, reg.RiderID, ErrDuplicateResult)
			}
		}
	}
	seen := make(map[string]bool, len(reg.Checkpoints))
	for _, cp := range reg.Checkpoints {
		if seen[cp.SegmentID] {
			return fmt.Errorf("segment %s listed twice: %w", cp.SegmentID, ErrDuplicateResult)
		}
		seen[cp.SegmentID] = true
	}

	if rec == nil {
		rec = &stageRecord{checkpoints: make(map[string]*Timeline)}
		m.stages[reg.StageID] = rec
	}
	// Nothing below can fail: every timeline was checked above.
	_ = rec.starts.Insert(TimedEntry{RiderID: reg.RiderID, Time: reg.Start})
	for _, cp := range reg.Checkpoints {
		tl := rec.checkpoints[cp.SegmentID]
		if tl == nil {
			tl = &Timeline{}
			rec.checkpoints[cp.SegmentID] = tl
			m.segmentStage[cp.SegmentID] = reg.StageID
		}
		_ = tl.Insert(TimedEntry{RiderID: reg.RiderID, Time: cp.Time})
	}
	_ = rec.finishes.Insert(TimedEntry{RiderID: reg.RiderID, Time: reg.Finish})

	stages := m.riderStages[reg.RiderID]
	if stages == nil {
		stages = make(map[string]struct{})
		m.riderStages[reg.RiderID] = stages
	}
	stages[reg.StageID] = struct{}{}
	return nil
}

// RemoveAll removes the rider's entries from every timeline of the stage.
func (m *MemStore) RemoveAll(_ context.Context, stageID, riderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.stages[stageID]
	if rec == nil {
		return nil
	}
	rec.starts.Remove(riderID)
	rec.finishes.Remove(riderID)
	for _, tl := range rec.checkpoints {
		tl.Remove(riderID)
	}
	m.unindex(riderID, stageID)
	return nil
}

// DropStage forgets the stage and every checkpoint timeline under it.
func (m *MemStore) DropStage(_ context.Context, stageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.stages[stageID]
	if rec == nil {
		return nil
	}
	for segID := range rec.checkpoints {
		delete(m.segmentStage, segID)
	}
	for _, e := range rec.starts.entries {
		m.unindex(e.RiderID, stageID)
	}
	delete(m.stages, stageID)
	return nil
}

// DropSegment forgets the checkpoint timeline of the segment.
func (m *MemStore) DropSegment(_ context.Context, segmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stageID, ok := m.segmentStage[segmentID]
	if !ok {
		return nil
	}
	delete(m.stages[stageID].checkpoints, segmentID)
	delete(m.segmentStage, segmentID)
	return nil
}

// Find returns the rider's start and finish in the stage, or nil.
func (m *MemStore) Find(_ context.Context, stageID, riderID string) (*RiderEntries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.stages[stageID]
	if rec == nil {
		return nil, nil
	}
	start := rec.starts.Find(riderID)
	finish := rec.finishes.Find(riderID)
	if start == nil || finish == nil {
		return nil, nil
	}
	return &RiderEntries{Start: *start, Finish: *finish}, nil
}

// FindAtSegment returns the rider's checkpoint at the segment, or nil.
func (m *MemStore) FindAtSegment(_ context.Context, segmentID, riderID string) (*TimedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tl := m.checkpointTimeline(segmentID)
	if tl == nil {
		return nil, nil
	}
	return tl.Find(riderID), nil
}

// Starts returns the stage's start entries in time order.
func (m *MemStore) Starts(_ context.Context, stageID string) ([]TimedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.stages[stageID]
	if rec == nil {
		return []TimedEntry{}, nil
	}
	return rec.starts.Entries(), nil
}

// Finishes returns the stage's finish entries in time order.
func (m *MemStore) Finishes(_ context.Context, stageID string) ([]TimedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec := m.stages[stageID]
	if rec == nil {
		return []TimedEntry{}, nil
	}
	return rec.finishes.Entries(), nil
}

// Checkpoints returns the segment's checkpoint entries in time order.
func (m *MemStore) Checkpoints(_ context.Context, segmentID string) ([]TimedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tl := m.checkpointTimeline(segmentID)
	if tl == nil {
		return []TimedEntry{}, nil
	}
	return tl.Entries(), nil
}

// StagesForRider returns the IDs of stages holding a result for the rider,
// sorted for deterministic output.
func (m *MemStore) StagesForRider(_ context.Context, riderID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.riderStages[riderID]))
	for id := range m.riderStages[riderID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// checkpointTimeline resolves a segment's timeline. Caller holds m.mu.
func (m *MemStore) checkpointTimeline(segmentID string) *Timeline {
	stageID, ok := m.segmentStage[segmentID]
	if !ok {
		return nil
	}
	return m.stages[stageID].checkpoints[segmentID]
}

// unindex drops stageID from the rider's reverse index. Caller holds m.mu.
func (m *MemStore) unindex(riderID, stageID string) {
	stages := m.riderStages[riderID]
	if stages == nil {
		return
	}
	delete(stages, stageID)
	if len(stages) == 0 {
		delete(m.riderStages, riderID)
	}
}
