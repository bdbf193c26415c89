package results

import (
	"fmt"
	"sort"
)

// Timeline is a sequence of TimedEntry kept in ascending time order, with a
// rider index for point lookups. Entries with equal times keep the order in
// which they were inserted. The zero value is an empty timeline.
type Timeline struct {
	entries []TimedEntry
	times   map[string]TimeOfDay // riderID -> time
}

// Len returns the number of entries.
func (tl *Timeline) Len() int {
	return len(tl.entries)
}

// Has reports whether riderID already has an entry.
func (tl *Timeline) Has(riderID string) bool {
	_, ok := tl.times[riderID]
	return ok
}

// Insert places e after every entry whose time is not later than e.Time.
// It fails with ErrDuplicateResult if the rider already has an entry.
func (tl *Timeline) Insert(e TimedEntry) error {
	if tl.Has(e.RiderID) {
		return fmt.Errorf("rider %s: %w", e.RiderID, ErrDuplicateResult)
	}
	if tl.times == nil {
		tl.times = make(map[string]TimeOfDay)
	}
	i := sort.Search(len(tl.entries), func(i int) bool {
		return tl.entries[i].Time > e.Time
	})
	tl.entries = append(tl.entries, TimedEntry{})
	copy(tl.entries[i+1:], tl.entries[i:])
	tl.entries[i] = e
	tl.times[e.RiderID] = e.Time
	return nil
}

// Index returns the position of riderID in the timeline, or -1.
func (tl *Timeline) Index(riderID string) int {
	t, ok := tl.times[riderID]
	if !ok {
		return -1
	}
	// Only the run of entries sharing t needs scanning.
	i := sort.Search(len(tl.entries), func(i int) bool {
		return tl.entries[i].Time >= t
	})
	for ; i < len(tl.entries) && tl.entries[i].Time == t; i++ {
		if tl.entries[i].RiderID == riderID {
			return i
		}
	}
	return -1
}

// Find returns the rider's entry, or nil when absent.
func (tl *Timeline) Find(riderID string) *TimedEntry {
	t, ok := tl.times[riderID]
	if !ok {
		return nil
	}
	return &TimedEntry{RiderID: riderID, Time: t}
}

// Remove deletes the rider's entry and reports whether one existed.
func (tl *Timeline) Remove(riderID string) bool {
	i := tl.Index(riderID)
	if i < 0 {
		return false
	}
	tl.entries = append(tl.entries[:i], tl.entries[i+1:]...)
	delete(tl.times, riderID)
	return true
}

// Entries returns a copy of the ordered entries.
func (tl *Timeline) Entries() []TimedEntry {
	out := make([]TimedEntry, len(tl.entries))
	copy(out, tl.entries)
	return out
}
