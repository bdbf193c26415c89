// Package ids allocates identifiers for races, stages, segments, teams and
// riders. Allocators are owned by whoever creates entities and injected into
// them; there is no package-level counter.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Kind names the entity an identifier is allocated for.
type Kind string

const (
	KindRace    Kind = "race"
	KindStage   Kind = "stage"
	KindSegment Kind = "segment"
	KindTeam    Kind = "team"
	KindRider   Kind = "rider"
)

// Allocator hands out identifiers that are unique per allocator.
type Allocator interface {
	Next(kind Kind) string
}

// UUIDAllocator returns random version 4 UUIDs regardless of kind.
type UUIDAllocator struct{}

// Compile-time interface checks.
var (
	_ Allocator = UUIDAllocator{}
	_ Allocator = (*SequenceAllocator)(nil)
)

// Next returns a new random UUID.
func (UUIDAllocator) Next(_ Kind) string {
	return uuid.NewString()
}

// SequenceAllocator returns readable identifiers such as "stage-3", counting
// from 1 for each kind. Safe for concurrent use.
type SequenceAllocator struct {
	mu   sync.Mutex
	next map[Kind]int
}

// NewSequenceAllocator returns an allocator with every counter at 1.
func NewSequenceAllocator() *SequenceAllocator {
	return &SequenceAllocator{next: make(map[Kind]int)}
}

// Next returns the next identifier for kind.
func (a *SequenceAllocator) Next(kind Kind) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next[kind]++
	return fmt.Sprintf("%s-%d", kind, a.next[kind])
}
