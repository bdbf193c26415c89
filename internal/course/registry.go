package course

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dusk-indust/stageresults/internal/ids"
	"github.com/dusk-indust/stageresults/internal/names"
	"github.com/dusk-indust/stageresults/internal/results"
)

// Registry is a concurrency-safe in-memory store of races, stages and
// segments, indexed by identifier. Races are also kept in creation order for
// listing.
type Registry struct {
	mu        sync.RWMutex
	ids       ids.Allocator
	races     map[string]*Race
	raceOrder []string
	stages    map[string]*Stage
	segments  map[string]string // segmentID -> stageID
}

// NewRegistry returns an empty Registry allocating identifiers from alloc.
func NewRegistry(alloc ids.Allocator) *Registry {
	return &Registry{
		ids:      alloc,
		races:    make(map[string]*Race),
		stages:   make(map[string]*Stage),
		segments: make(map[string]string),
	}
}

// ---------- Races ----------

// CreateRace adds a race and returns its identifier. Race names are unique.
func (r *Registry) CreateRace(name, description string) (string, error) {
	if err := names.Validate(name); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, race := range r.races {
		if race.Name == name {
			return "", fmt.Errorf("race %q: %w", name, results.ErrDuplicateName)
		}
	}
	id := r.ids.Next(ids.KindRace)
	r.races[id] = &Race{ID: id, Name: name, Description: description, StageIDs: []string{}}
	r.raceOrder = append(r.raceOrder, id)
	return id, nil
}

// RaceIDs returns every race identifier in creation order.
func (r *Registry) RaceIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.raceOrder...)
}

// Race returns a copy of the race.
func (r *Registry) Race(id string) (Race, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	race, ok := r.races[id]
	if !ok {
		return Race{}, fmt.Errorf("race %s: %w", id, results.ErrUnknownRace)
	}
	out := *race
	out.StageIDs = append([]string{}, race.StageIDs...)
	return out, nil
}

// RaceDetails returns the race summary: stage count and total length.
func (r *Registry) RaceDetails(id string) (RaceDetails, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	race, ok := r.races[id]
	if !ok {
		return RaceDetails{}, fmt.Errorf("race %s: %w", id, results.ErrUnknownRace)
	}
	d := RaceDetails{
		ID:          race.ID,
		Name:        race.Name,
		Description: race.Description,
		StageCount:  len(race.StageIDs),
	}
	for _, sid := range race.StageIDs {
		d.TotalLength += r.stages[sid].Length
	}
	return d, nil
}

// RemoveRace deletes the race with its stages and segments and returns the
// identifiers of the removed stages.
func (r *Registry) RemoveRace(id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	race, ok := r.races[id]
	if !ok {
		return nil, fmt.Errorf("race %s: %w", id, results.ErrUnknownRace)
	}
	removed := append([]string{}, race.StageIDs...)
	for _, sid := range removed {
		r.dropStage(sid)
	}
	delete(r.races, id)
	for i, rid := range r.raceOrder {
		if rid == id {
			r.raceOrder = append(r.raceOrder[:i], r.raceOrder[i+1:]...)
			break
		}
	}
	return removed, nil
}

// ---------- Stages ----------

// AddStage creates a stage in preparation and inserts it into the race by
// start time. Stage names are unique within a race.
func (r *Registry) AddStage(raceID string, spec StageSpec) (string, error) {
	if err := names.Validate(spec.Name); err != nil {
		return "", err
	}
	if !spec.Kind.Valid() {
		return "", fmt.Errorf("stage kind %q: %w", spec.Kind, results.ErrWrongStageKind)
	}
	if spec.Length <= MinStageLength {
		return "", fmt.Errorf("stage length %.2fkm not above %.0fkm: %w", spec.Length, MinStageLength, results.ErrInvalidLength)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	race, ok := r.races[raceID]
	if !ok {
		return "", fmt.Errorf("race %s: %w", raceID, results.ErrUnknownRace)
	}
	for _, sid := range race.StageIDs {
		if r.stages[sid].Name == spec.Name {
			return "", fmt.Errorf("stage %q: %w", spec.Name, results.ErrDuplicateName)
		}
	}

	id := r.ids.Next(ids.KindStage)
	r.stages[id] = &Stage{
		ID:          id,
		RaceID:      raceID,
		Name:        spec.Name,
		Description: spec.Description,
		Length:      spec.Length,
		StartTime:   spec.StartTime,
		Kind:        spec.Kind,
		State:       StatePreparation,
		Segments:    []Segment{},
	}
	i := sort.Search(len(race.StageIDs), func(i int) bool {
		return r.stages[race.StageIDs[i]].StartTime.After(spec.StartTime)
	})
	race.StageIDs = append(race.StageIDs, "")
	copy(race.StageIDs[i+1:], race.StageIDs[i:])
	race.StageIDs[i] = id
	return id, nil
}

// StageIDs returns the race's stage identifiers ordered by start time.
func (r *Registry) StageIDs(raceID string) ([]string, error) {
	race, err := r.Race(raceID)
	if err != nil {
		return nil, err
	}
	return race.StageIDs, nil
}

// Stage returns a copy of the stage including its segments.
func (r *Registry) Stage(id string) (Stage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.stages[id]
	if !ok {
		return Stage{}, fmt.Errorf("stage %s: %w", id, results.ErrUnknownStage)
	}
	out := *st
	out.Segments = append([]Segment{}, st.Segments...)
	return out, nil
}

// RemoveStage deletes the stage and its segments.
func (r *Registry) RemoveStage(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stages[id]
	if !ok {
		return fmt.Errorf("stage %s: %w", id, results.ErrUnknownStage)
	}
	race := r.races[st.RaceID]
	for i, sid := range race.StageIDs {
		if sid == id {
			race.StageIDs = append(race.StageIDs[:i], race.StageIDs[i+1:]...)
			break
		}
	}
	r.dropStage(id)
	return nil
}

// ConcludePreparation moves the stage to StateAwaitingResults. It fails if
// the stage has already left preparation.
func (r *Registry) ConcludePreparation(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stages[id]
	if !ok {
		return fmt.Errorf("stage %s: %w", id, results.ErrUnknownStage)
	}
	if st.State != StatePreparation {
		return fmt.Errorf("stage %s is %s: %w", id, st.State, results.ErrWrongStageState)
	}
	st.State = StateAwaitingResults
	return nil
}

// ---------- Segments ----------

// AddClimb adds a categorized climb to a stage in preparation.
func (r *Registry) AddClimb(stageID string, spec ClimbSpec) (string, error) {
	if !spec.Type.IsClimb() {
		return "", fmt.Errorf("segment type %q is not a climb: %w", spec.Type, results.ErrInvalidSegmentType)
	}
	return r.addSegment(stageID, Segment{
		Location:        spec.Location,
		Type:            spec.Type,
		AverageGradient: spec.AverageGradient,
		Length:          spec.Length,
	})
}

// AddSprint adds an intermediate sprint to a stage in preparation.
func (r *Registry) AddSprint(stageID string, location float64) (string, error) {
	return r.addSegment(stageID, Segment{Location: location, Type: results.SegmentSprint})
}

// StageSegments returns the stage's segment identifiers in location order.
func (r *Registry) StageSegments(stageID string) ([]string, error) {
	st, err := r.Stage(stageID)
	if err != nil {
		return nil, err
	}
	return st.SegmentIDs(), nil
}

// Segment returns a copy of the segment.
func (r *Registry) Segment(id string) (Segment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sid, ok := r.segments[id]
	if !ok {
		return Segment{}, fmt.Errorf("segment %s: %w", id, results.ErrUnknownSegment)
	}
	for _, seg := range r.stages[sid].Segments {
		if seg.ID == id {
			return seg, nil
		}
	}
	return Segment{}, fmt.Errorf("segment %s: %w", id, results.ErrUnknownSegment)
}

// RemoveSegment deletes a segment from a stage in preparation and returns
// the stage identifier.
func (r *Registry) RemoveSegment(id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sid, ok := r.segments[id]
	if !ok {
		return "", fmt.Errorf("segment %s: %w", id, results.ErrUnknownSegment)
	}
	st := r.stages[sid]
	if st.State != StatePreparation {
		return "", fmt.Errorf("stage %s is %s: %w", sid, st.State, results.ErrWrongStageState)
	}
	for i, seg := range st.Segments {
		if seg.ID == id {
			st.Segments = append(st.Segments[:i], st.Segments[i+1:]...)
			break
		}
	}
	delete(r.segments, id)
	return sid, nil
}

// addSegment validates placement and inserts seg by location.
func (r *Registry) addSegment(stageID string, seg Segment) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.stages[stageID]
	if !ok {
		return "", fmt.Errorf("stage %s: %w", stageID, results.ErrUnknownStage)
	}
	if seg.Location <= 0 || seg.Location > st.Length {
		return "", fmt.Errorf("location %.2fkm outside (0, %.2f]: %w", seg.Location, st.Length, results.ErrInvalidLocation)
	}
	if st.State != StatePreparation {
		return "", fmt.Errorf("stage %s is %s: %w", stageID, st.State, results.ErrWrongStageState)
	}
	if st.Kind.IsTimeTrial() {
		return "", fmt.Errorf("stage %s is a time trial: %w", stageID, results.ErrWrongStageKind)
	}
	i := sort.Search(len(st.Segments), func(i int) bool {
		return st.Segments[i].Location >= seg.Location
	})
	if i < len(st.Segments) && st.Segments[i].Location == seg.Location {
		return "", fmt.Errorf("location %.2fkm already holds segment %s: %w", seg.Location, st.Segments[i].ID, results.ErrInvalidLocation)
	}

	seg.ID = r.ids.Next(ids.KindSegment)
	seg.StageID = stageID
	st.Segments = append(st.Segments, Segment{})
	copy(st.Segments[i+1:], st.Segments[i:])
	st.Segments[i] = seg
	r.segments[seg.ID] = stageID
	return seg.ID, nil
}

// dropStage forgets a stage and its segments. Caller holds r.mu and has
// already detached the stage from its race.
func (r *Registry) dropStage(id string) {
	for _, seg := range r.stages[id].Segments {
		delete(r.segments, seg.ID)
	}
	delete(r.stages, id)
}
